// Package quiz picks quizzes that drill a student's weak areas and grades
// submitted answers.
package quiz

import "github.com/aman-churiwal/tutor-gateway/internal/models"

const (
	// DefaultLimit is the number of quizzes served per adaptive selection.
	DefaultLimit = 5

	// WeakAreaThreshold is the accuracy below which a tagged topic counts as weak.
	WeakAreaThreshold = 0.7
)

type tally struct {
	correct int
	total   int
}

// WeakAreas returns the tags whose accuracy across results is below the
// threshold. A result counts toward the tag of the quiz it answered; results
// for untagged or unknown quizzes are ignored.
func WeakAreas(results []models.QuizResult, quizzes []models.Quiz) map[string]bool {
	tags := make(map[string]string, len(quizzes))
	for _, q := range quizzes {
		if tag := q.WeakArea(); tag != "" {
			tags[q.ID.String()] = tag
		}
	}

	stats := make(map[string]*tally)
	for _, r := range results {
		tag, ok := tags[r.QuizID.String()]
		if !ok {
			continue
		}

		t, ok := stats[tag]
		if !ok {
			t = &tally{}
			stats[tag] = t
		}
		t.total++
		if r.IsCorrect {
			t.correct++
		}
	}

	weak := make(map[string]bool)
	for tag, t := range stats {
		if t.total > 0 && float64(t.correct)/float64(t.total) < WeakAreaThreshold {
			weak[tag] = true
		}
	}
	return weak
}

// Select orders the lesson's quizzes so those targeting a weak area come
// first, keeps the lesson order within each group, and truncates to limit.
func Select(results []models.QuizResult, quizzes []models.Quiz, limit int) []models.Quiz {
	weak := WeakAreas(results, quizzes)

	selected := make([]models.Quiz, 0, len(quizzes))
	rest := make([]models.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if weak[q.WeakArea()] {
			selected = append(selected, q)
		} else {
			rest = append(rest, q)
		}
	}
	selected = append(selected, rest...)

	if limit >= 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
