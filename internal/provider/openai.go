package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/circuitbreaker"
	"github.com/sashabaranov/go-openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIConfig struct {
	APIKeys  []string
	BaseURL  string
	Strategy string
	Timeout  time.Duration
	Breaker  circuitbreaker.Config
}

// OpenAI completes prompts through the chat completions API.
type OpenAI struct {
	pool    *KeyPool
	timeout time.Duration
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, ErrNoKeys
	}

	strategy, err := NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	slots := make([]*Slot, 0, len(cfg.APIKeys))
	for i, key := range cfg.APIKeys {
		clientCfg := openai.DefaultConfig(key)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}

		breakerCfg := cfg.Breaker
		breakerCfg.Name = fmt.Sprintf("key-%d", i)

		slots = append(slots, &Slot{
			Label:   breakerCfg.Name,
			Breaker: circuitbreaker.New(breakerCfg),
			client:  openai.NewClientWithConfig(clientCfg),
		})
	}

	return &OpenAI{
		pool:    NewKeyPool(slots, strategy),
		timeout: cfg.Timeout,
	}, nil
}

func (o *OpenAI) Pool() *KeyPool {
	return o.pool
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (*Completion, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var completion Completion
	err := o.pool.Do(ctx, func(ctx context.Context, slot *Slot) error {
		resp, err := slot.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: req.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.Prompt,
				},
			},
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", slot.Label, err)
		}

		if len(resp.Choices) > 0 {
			completion.Text = resp.Choices[0].Message.Content
		}
		completion.TokensConsumed = resp.Usage.TotalTokens
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &completion, nil
}
