package scoring

import (
	"math"

	"github.com/prepbox/examsim-backend/internal/model"
)

// Grade counts the questions whose stored answer strictly equals the
// correct option index. Unanswered entries never match.
func Grade(questions []model.Question, answers model.AnswerMap) model.Score {
	score := model.Score{Total: len(questions)}
	for _, q := range questions {
		if sel, ok := answers[q.ID]; ok && sel == q.Correct {
			score.Correct++
		}
	}
	return score
}

// Percent returns round(100 * correct / total), defined as 0 when
// total is 0.
func Percent(s model.Score) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Correct) / float64(s.Total)))
}

// OwnerStats aggregates an owner's historical attempts.
type OwnerStats struct {
	AttemptCount   int `json:"attempt_count"`
	BestPercent    int `json:"best_percent"`
	AveragePercent int `json:"average_percent"`
}

// Aggregate computes best and average percentage across all of the
// owner's attempts, unweighted by recency.
func Aggregate(attempts []model.Attempt, owner string) OwnerStats {
	var stats OwnerStats
	sum := 0
	for _, a := range attempts {
		if a.Owner != owner {
			continue
		}
		stats.AttemptCount++
		sum += a.Percent
		if a.Percent > stats.BestPercent {
			stats.BestPercent = a.Percent
		}
	}
	if stats.AttemptCount > 0 {
		stats.AveragePercent = int(math.Round(float64(sum) / float64(stats.AttemptCount)))
	}
	return stats
}

// FilterByOwner returns the owner's attempts, most recent first.
func FilterByOwner(attempts []model.Attempt, owner string) []model.Attempt {
	out := make([]model.Attempt, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].Owner == owner {
			out = append(out, attempts[i])
		}
	}
	return out
}
