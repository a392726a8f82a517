package gateway

import (
	"strings"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
)

type DoubtRequest struct {
	Subject  string `json:"subject"`
	Chapter  string `json:"chapter"`
	Topic    string `json:"topic"`
	Question string `json:"question"`
}

// Validate trims every field in place and rejects the first empty one.
func (r *DoubtRequest) Validate() error {
	return requireAll(
		field{"subject", &r.Subject},
		field{"chapter", &r.Chapter},
		field{"topic", &r.Topic},
		field{"question", &r.Question},
	)
}

type DerivationRequest struct {
	Subject string `json:"subject"`
	Chapter string `json:"chapter"`
	Formula string `json:"formula"`
}

func (r *DerivationRequest) Validate() error {
	return requireAll(
		field{"subject", &r.Subject},
		field{"chapter", &r.Chapter},
		field{"formula", &r.Formula},
	)
}

type field struct {
	name  string
	value *string
}

func requireAll(fields ...field) error {
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return apperr.Required(f.name)
		}
	}
	return nil
}

type DoubtResult struct {
	Answer          string        `json:"result"`
	Doubt           *models.Doubt `json:"doubt"`
	TokensRemaining int           `json:"tokensRemaining"`
}

type DerivationResult struct {
	Steps           string             `json:"result"`
	Derivation      *models.Derivation `json:"derivation"`
	TokensRemaining int                `json:"tokensRemaining"`
}
