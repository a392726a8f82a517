// Package provider talks to the LLM completion API on behalf of the gateway.
package provider

import (
	"context"
	"errors"
)

// ErrNoKeys is returned when every credential in the pool is unavailable.
var ErrNoKeys = errors.New("no completion api key available")

type Request struct {
	Model       string
	Prompt      string
	Temperature float32
	MaxTokens   int // 0 leaves the provider default
}

type Completion struct {
	Text           string
	TokensConsumed int
}

// Provider produces a single completion for a prompt.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}
