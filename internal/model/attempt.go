package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Score is the correct/total pair for one graded attempt.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Attempt is an immutable record of one submitted (or timed-out) exam
// session. It is created exactly once per submission and never mutated;
// the store only drops the oldest records past the retention cap.
type Attempt struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       Score     `json:"score"`
	Percent     int       `json:"percent"`
	ElapsedSec  int       `json:"elapsed_seconds"`
	AllottedSec int       `json:"allotted_seconds"`
	Answers     AnswerMap `json:"answers"`
	QuestionIDs []string  `json:"question_ids"`
}

// NewAttemptID derives an attempt identifier from the submission
// timestamp plus a random suffix. Uniqueness is not cryptographically
// guaranteed, collisions are astronomically unlikely.
func NewAttemptID(submittedAt time.Time) string {
	return fmt.Sprintf("%d-%s", submittedAt.UnixMilli(), uuid.NewString()[:8])
}
