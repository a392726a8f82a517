package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Lesson struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id" yaml:"-"`
	ClassLevel     string                      `gorm:"index;not null" json:"classLevel" yaml:"class_level"`
	Subject        string                      `gorm:"index;not null" json:"subject" yaml:"subject"`
	Chapter        string                      `gorm:"not null" json:"chapter" yaml:"chapter"`
	Topic          string                      `gorm:"not null" json:"topic" yaml:"topic"`
	Title          string                      `gorm:"not null" json:"title" yaml:"title"`
	Description    string                      `gorm:"not null" json:"description" yaml:"description"`
	Content        string                      `gorm:"not null" json:"content" yaml:"content"`
	StoryScenes    datatypes.JSON              `json:"storyScenes,omitempty" yaml:"-"`
	Visualizations datatypes.JSON              `json:"visualizations,omitempty" yaml:"-"`
	KeyPoints      datatypes.JSONSlice[string] `gorm:"not null" json:"keyPoints" yaml:"key_points"`
	Difficulty     string                      `gorm:"not null;default:'medium'" json:"difficulty" yaml:"difficulty"`
	Order          int                         `gorm:"not null" json:"order" yaml:"order"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (Lesson) TableName() string {
	return "lessons"
}

// Quiz is a lesson question. TargetsWeakArea tags the topic it drills, if any.
type Quiz struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id" yaml:"-"`
	LessonID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"lessonId" yaml:"-"`
	Question        string         `gorm:"not null" json:"question" yaml:"question"`
	QuestionType    string         `gorm:"not null" json:"questionType" yaml:"question_type"`
	Options         datatypes.JSON `json:"options,omitempty" yaml:"-"`
	CorrectAnswer   string         `gorm:"not null" json:"correctAnswer" yaml:"correct_answer"`
	Explanation     string         `gorm:"not null" json:"explanation" yaml:"explanation"`
	Difficulty      string         `gorm:"not null" json:"difficulty" yaml:"difficulty"`
	TargetsWeakArea *string        `json:"targetsWeakArea" yaml:"targets_weak_area"`
	Position        int            `gorm:"not null;default:0" json:"position" yaml:"-"`
	CreatedAt       time.Time      `json:"createdAt" yaml:"-"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (Quiz) TableName() string {
	return "quizzes"
}

// WeakArea returns the quiz's weak-area tag, or "" when untagged.
func (q Quiz) WeakArea() string {
	if q.TargetsWeakArea == nil {
		return ""
	}
	return *q.TargetsWeakArea
}

type QuizResult struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index:idx_quiz_results_user_lesson;not null" json:"userId"`
	QuizID        uuid.UUID `gorm:"type:uuid;not null" json:"quizId"`
	LessonID      uuid.UUID `gorm:"type:uuid;index:idx_quiz_results_user_lesson;not null" json:"lessonId"`
	UserAnswer    string    `gorm:"not null" json:"userAnswer"`
	IsCorrect     bool      `gorm:"not null" json:"isCorrect"`
	TimeSpent     int       `gorm:"not null" json:"timeSpent"`
	AIExplanation *string   `json:"aiExplanation"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *QuizResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

type UserProgress struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID                   `gorm:"type:uuid;index;not null" json:"userId"`
	LessonID     uuid.UUID                   `gorm:"type:uuid;not null" json:"lessonId"`
	Completed    bool                        `gorm:"not null;default:false" json:"completed"`
	Score        *int                        `json:"score"`
	TimeSpent    int                         `gorm:"not null;default:0" json:"timeSpent"`
	WeakAreas    datatypes.JSONSlice[string] `json:"weakAreas"`
	LastAccessed time.Time                   `gorm:"not null" json:"lastAccessed"`
	CompletedAt  *time.Time                  `json:"completedAt"`
}

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.LastAccessed.IsZero() {
		p.LastAccessed = time.Now()
	}
	return nil
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// ProgressUpdate carries the fields a student may change on a progress record.
type ProgressUpdate struct {
	Completed *bool    `json:"completed"`
	Score     *int     `json:"score"`
	TimeSpent *int     `json:"timeSpent"`
	WeakAreas []string `json:"weakAreas"`
}
