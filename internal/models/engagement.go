package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quest struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id" yaml:"-"`
	Title        string         `gorm:"not null" json:"title" yaml:"title"`
	Description  string         `gorm:"not null" json:"description" yaml:"description"`
	QuestType    string         `gorm:"not null" json:"questType" yaml:"quest_type"`
	Requirements datatypes.JSON `gorm:"not null" json:"requirements" yaml:"-"`
	Rewards      datatypes.JSON `gorm:"not null" json:"rewards" yaml:"-"`
	XPReward     int            `gorm:"not null" json:"xpReward" yaml:"xp_reward"`
	Difficulty   string         `gorm:"not null" json:"difficulty" yaml:"difficulty"`
	IsActive     bool           `gorm:"not null;default:true" json:"isActive" yaml:"is_active"`
}

func (q *Quest) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (Quest) TableName() string {
	return "quests"
}

type UserQuest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	QuestID     uuid.UUID  `gorm:"type:uuid;not null" json:"questId"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	StartedAt   time.Time  `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (q *UserQuest) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.StartedAt.IsZero() {
		q.StartedAt = time.Now()
	}
	return nil
}

func (UserQuest) TableName() string {
	return "user_quests"
}

type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id" yaml:"-"`
	Title       string    `gorm:"not null" json:"title" yaml:"title"`
	Description string    `gorm:"not null" json:"description" yaml:"description"`
	Icon        string    `gorm:"not null" json:"icon" yaml:"icon"`
	Category    string    `gorm:"not null" json:"category" yaml:"category"`
	Requirement string    `gorm:"not null" json:"requirement" yaml:"requirement"`
	Rarity      string    `gorm:"not null" json:"rarity" yaml:"rarity"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	AchievementID uuid.UUID `gorm:"type:uuid;not null" json:"achievementId"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlockedAt"`
}

func (a *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now()
	}
	return nil
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
