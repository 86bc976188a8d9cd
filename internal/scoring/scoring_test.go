package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepbox/examsim-backend/internal/model"
)

func TestGradeCountsStrictMatches(t *testing.T) {
	questions := []model.Question{
		{ID: "a", Options: []string{"x", "y"}, Correct: 0},
		{ID: "b", Options: []string{"x", "y"}, Correct: 1},
		{ID: "c", Options: []string{"x", "y"}, Correct: 1},
	}
	answers := model.AnswerMap{
		"a": 0,                // correct
		"b": 0,                // wrong
		"c": model.Unanswered, // never matches
	}

	score := Grade(questions, answers)
	assert.Equal(t, model.Score{Correct: 1, Total: 3}, score)
	assert.LessOrEqual(t, score.Correct, score.Total)
}

func TestPercentRounding(t *testing.T) {
	tests := []struct {
		name    string
		score   model.Score
		percent int
	}{
		{"zero total", model.Score{Correct: 0, Total: 0}, 0},
		{"one third rounds to 33", model.Score{Correct: 1, Total: 3}, 33},
		{"two thirds rounds to 67", model.Score{Correct: 2, Total: 3}, 67},
		{"half", model.Score{Correct: 1, Total: 2}, 50},
		{"full", model.Score{Correct: 10, Total: 10}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.percent, Percent(tt.score))
		})
	}
}

func TestAggregateBestAndAverage(t *testing.T) {
	attempts := []model.Attempt{
		{Owner: "alice", Percent: 80},
		{Owner: "alice", Percent: 60},
		{Owner: "bob", Percent: 100},
	}

	stats := Aggregate(attempts, "alice")
	assert.Equal(t, 2, stats.AttemptCount)
	assert.Equal(t, 80, stats.BestPercent)
	assert.Equal(t, 70, stats.AveragePercent)
}

func TestAggregateEmptyHistory(t *testing.T) {
	stats := Aggregate(nil, "alice")
	assert.Equal(t, OwnerStats{}, stats)
}

func TestFilterByOwnerMostRecentFirst(t *testing.T) {
	attempts := []model.Attempt{
		{ID: "1", Owner: "alice"},
		{ID: "2", Owner: "bob"},
		{ID: "3", Owner: "alice"},
	}

	got := FilterByOwner(attempts, "alice")
	assert.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
}
