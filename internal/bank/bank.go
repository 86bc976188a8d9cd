package bank

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/prepbox/examsim-backend/internal/model"
)

// Bank holds the static question bank. It is loaded once at startup
// and read-only thereafter.
type Bank struct {
	questions []model.Question
	byID      map[string]model.Question
}

// New builds a bank from an in-memory question list. It validates that
// IDs are unique and every correct index is in range.
func New(questions []model.Question) (*Bank, error) {
	byID := make(map[string]model.Question, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: empty id", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("question %q: duplicate id", q.ID)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %q: needs at least 2 options", q.ID)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("question %q: correct index %d out of range", q.ID, q.Correct)
		}
		byID[q.ID] = q
	}
	return &Bank{questions: questions, byID: byID}, nil
}

// Load reads and validates the question bank JSON file at path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse bank file: %w", err)
	}
	return New(questions)
}

// Size returns the number of questions in the bank.
func (b *Bank) Size() int {
	return len(b.questions)
}

// Get returns the question with the given ID.
func (b *Bank) Get(id string) (model.Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// Sample draws min(n, bank size) questions without replacement using a
// uniform shuffle.
func (b *Bank) Sample(n int) []model.Question {
	if n > len(b.questions) {
		n = len(b.questions)
	}
	if n <= 0 {
		return []model.Question{}
	}
	perm := rand.Perm(len(b.questions))
	out := make([]model.Question, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, b.questions[idx])
	}
	return out
}
