package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Doubt is a student question answered by the AI tutor. A nil AIResponse
// means the provider call never completed.
type Doubt struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Subject    string    `gorm:"not null" json:"subject"`
	Chapter    string    `gorm:"not null" json:"chapter"`
	Topic      string    `gorm:"not null" json:"topic"`
	Question   string    `gorm:"not null" json:"question"`
	AIResponse *string   `json:"aiResponse"`
	IsResolved bool      `gorm:"not null;default:false" json:"isResolved"`
	TokensUsed int       `gorm:"not null;default:0" json:"tokensUsed"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (d *Doubt) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (Doubt) TableName() string {
	return "doubts"
}

// Derivation is a step-by-step derivation request. A nil DerivationSteps
// means the provider call never completed.
type Derivation struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	Subject           string         `gorm:"not null" json:"subject"`
	Chapter           string         `gorm:"not null" json:"chapter"`
	Formula           string         `gorm:"not null" json:"formula"`
	DerivationSteps   *string        `json:"derivationSteps"`
	VisualizationData datatypes.JSON `json:"visualizationData,omitempty"`
	TokensUsed        int            `gorm:"not null;default:0" json:"tokensUsed"`
	CreatedAt         time.Time      `gorm:"index" json:"createdAt"`
}

func (d *Derivation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (Derivation) TableName() string {
	return "derivations"
}
