package model

// Phase enumerates the stages of the exam session lifecycle.
type Phase string

const (
	PhaseLogin     Phase = "LOGIN"
	PhaseDashboard Phase = "DASHBOARD"
	PhaseExam      Phase = "EXAM"
	PhaseResult    Phase = "RESULT"
	PhaseReview    Phase = "REVIEW"
	PhaseProgress  Phase = "PROGRESS"
)

// LoginRequest is the payload for the login intent. A blank or
// whitespace-only username is rejected silently by the state machine,
// so it is not enforced at the binding layer.
type LoginRequest struct {
	Username string `json:"username" binding:"max=64"`
}

// AnswerRequest is the payload for selecting an option.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Option     int    `json:"option" binding:"min=0"`
}

// UpdateSettingsRequest is the payload for changing the runtime exam
// configuration.
type UpdateSettingsRequest struct {
	QuestionCount int `json:"question_count" binding:"required,min=1,max=500"`
	DurationSec   int `json:"duration_seconds" binding:"required,min=10,max=86400"`
}
