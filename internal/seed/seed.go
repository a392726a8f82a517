// Package seed loads starter content (lessons, quizzes, quests and
// achievements) from YAML into an empty store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

//go:embed default.yaml
var defaultContent []byte

type Store interface {
	CountLessons(ctx context.Context) (int64, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	CreateQuest(ctx context.Context, quest *models.Quest) error
	CreateAchievement(ctx context.Context, achievement *models.Achievement) error
}

type Document struct {
	Lessons      []Lesson             `yaml:"lessons"`
	Quests       []Quest              `yaml:"quests"`
	Achievements []models.Achievement `yaml:"achievements"`
}

type Lesson struct {
	models.Lesson  `yaml:",inline"`
	StoryScenes    []map[string]interface{} `yaml:"story_scenes"`
	Visualizations map[string]interface{}   `yaml:"visualizations"`
	Quizzes        []Quiz                   `yaml:"quizzes"`
}

type Quiz struct {
	models.Quiz `yaml:",inline"`
	Options     map[string]string `yaml:"options"`
}

type Quest struct {
	models.Quest `yaml:",inline"`
	Requirements map[string]interface{} `yaml:"requirements"`
	Rewards      map[string]interface{} `yaml:"rewards"`
}

// Result counts what Apply inserted.
type Result struct {
	Skipped      bool
	Lessons      int
	Quizzes      int
	Quests       int
	Achievements int
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &doc, nil
}

// Load reads the seed file at path, or the built-in content when path is empty.
func Load(path string) (*Document, error) {
	if path == "" {
		return Parse(defaultContent)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Apply inserts the document unless the store already holds lessons.
func Apply(ctx context.Context, store Store, doc *Document) (Result, error) {
	var result Result

	count, err := store.CountLessons(ctx)
	if err != nil {
		return result, err
	}
	if count > 0 {
		result.Skipped = true
		return result, nil
	}

	for _, l := range doc.Lessons {
		lesson := l.Lesson
		if lesson.StoryScenes, err = toJSON(l.StoryScenes); err != nil {
			return result, err
		}
		if lesson.Visualizations, err = toJSON(l.Visualizations); err != nil {
			return result, err
		}
		if lesson.KeyPoints == nil {
			lesson.KeyPoints = datatypes.JSONSlice[string]{}
		}
		if err := store.CreateLesson(ctx, &lesson); err != nil {
			return result, fmt.Errorf("create lesson %q: %w", lesson.Title, err)
		}
		result.Lessons++

		for i, q := range l.Quizzes {
			quiz := q.Quiz
			quiz.LessonID = lesson.ID
			quiz.Position = i
			if quiz.Options, err = toJSON(q.Options); err != nil {
				return result, err
			}
			if err := store.CreateQuiz(ctx, &quiz); err != nil {
				return result, fmt.Errorf("create quiz for %q: %w", lesson.Title, err)
			}
			result.Quizzes++
		}
	}

	for _, q := range doc.Quests {
		quest := q.Quest
		if quest.Requirements, err = toJSON(q.Requirements); err != nil {
			return result, err
		}
		if quest.Rewards, err = toJSON(q.Rewards); err != nil {
			return result, err
		}
		if err := store.CreateQuest(ctx, &quest); err != nil {
			return result, fmt.Errorf("create quest %q: %w", quest.Title, err)
		}
		result.Quests++
	}

	for _, a := range doc.Achievements {
		achievement := a
		if err := store.CreateAchievement(ctx, &achievement); err != nil {
			return result, fmt.Errorf("create achievement %q: %w", achievement.Title, err)
		}
		result.Achievements++
	}

	log.Printf("Seeded %d lessons, %d quizzes, %d quests, %d achievements",
		result.Lessons, result.Quizzes, result.Quests, result.Achievements)
	return result, nil
}

// Empty values become JSON {} so NOT NULL columns accept them.
func toJSON(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode seed field: %w", err)
	}
	if string(data) == "null" {
		return datatypes.JSON("{}"), nil
	}
	return datatypes.JSON(data), nil
}
