package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindDoubt       = "doubt"
	KindDerivation  = "derivation"
	KindExplanation = "explanation"
)

// Represents one completed AI provider call
type UsageEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Tier      Tier      `gorm:"index" json:"tier"`
	Model     string    `gorm:"index" json:"model"`
	Kind      string    `gorm:"index" json:"kind"`
	Tokens    int       `json:"tokens"`
	LatencyMs int       `json:"latency_ms"`
	Metered   bool      `json:"metered"`
}

func (UsageEvent) TableName() string {
	return "usage_events"
}

// Aggregated usage for one tier, model or kind
type UsageBreakdown struct {
	Key      string `json:"key"`
	Requests int64  `json:"requests"`
	Tokens   int64  `json:"tokens"`
}

// Usage totals for one hour
type UsageBucket struct {
	Hour     time.Time `json:"hour"`
	Requests int64     `json:"requests"`
	Tokens   int64     `json:"tokens"`
}
