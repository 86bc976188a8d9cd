package model

// Unanswered is the sentinel stored for a question the user has not
// selected an option for.
const Unanswered = -1

// Question represents a single multiple-choice question from the bank.
// Questions are immutable after the bank is loaded.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// AnswerMap maps a question ID to the selected option index, or
// Unanswered. Keys are fixed at exam start; values mutate freely until
// submission.
type AnswerMap map[string]int

// Clone returns a deep copy, used to snapshot answers into an attempt.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
