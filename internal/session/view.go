package session

import (
	"context"

	"github.com/prepbox/examsim-backend/internal/model"
	"github.com/prepbox/examsim-backend/internal/scoring"
)

// View is the phase-conditional state surface: the current phase plus
// exactly one populated variant carrying only that phase's data.
type View struct {
	Phase     model.Phase    `json:"phase"`
	DarkTheme bool           `json:"dark_theme"`
	Login     *LoginView     `json:"login,omitempty"`
	Dashboard *DashboardView `json:"dashboard,omitempty"`
	Exam      *ExamView      `json:"exam,omitempty"`
	Result    *ResultView    `json:"result,omitempty"`
	Review    *ReviewView    `json:"review,omitempty"`
	Progress  *ProgressView  `json:"progress,omitempty"`
}

// LoginView pre-fills the form with the last-used identifier.
type LoginView struct {
	LastLogin string `json:"last_login,omitempty"`
}

// DashboardView summarizes the configured exam for its owner.
type DashboardView struct {
	Owner         string `json:"owner"`
	BankSize      int    `json:"bank_size"`
	QuestionCount int    `json:"question_count"`
	DurationSec   int    `json:"duration_seconds"`
}

// ExamQuestion is a question as surfaced during the exam: the correct
// index and explanation are withheld until review.
type ExamQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ExamView is the live exam surface.
type ExamView struct {
	Owner        string          `json:"owner"`
	Questions    []ExamQuestion  `json:"questions"`
	Answers      model.AnswerMap `json:"answers"`
	TimerArmed   bool            `json:"timer_armed"`
	RemainingSec int             `json:"remaining_seconds"`
	DurationSec  int             `json:"duration_seconds"`
}

// ResultView carries the just-submitted attempt.
type ResultView struct {
	Attempt model.Attempt `json:"attempt"`
}

// ReviewItem pairs a question with the recorded selection.
type ReviewItem struct {
	Question model.Question `json:"question"`
	Selected int            `json:"selected"`
	Correct  bool           `json:"is_correct"`
}

// ReviewView shows per-question correctness with explanations.
type ReviewView struct {
	Owner   string       `json:"owner"`
	Score   model.Score  `json:"score"`
	Percent int          `json:"percent"`
	Items   []ReviewItem `json:"items"`
}

// ProgressView aggregates the owner's attempt history.
type ProgressView struct {
	Owner  string             `json:"owner"`
	Stats  scoring.OwnerStats `json:"stats"`
	Recent []model.Attempt    `json:"recent_attempts"`
}

// viewLocked renders the variant for the current phase. Caller holds mu.
func (c *Controller) viewLocked(ctx context.Context) View {
	v := View{Phase: c.phase, DarkTheme: c.darkTheme}

	switch c.phase {
	case model.PhaseLogin:
		last, found, err := c.store.LastLogin(ctx)
		if err != nil {
			// Degrade to an empty pre-fill.
			c.log.Warn().Err(err).Msg("Read last login failed")
		}
		lv := &LoginView{}
		if found {
			lv.LastLogin = last
		}
		v.Login = lv

	case model.PhaseDashboard:
		v.Dashboard = &DashboardView{
			Owner:         c.owner,
			BankSize:      c.bank.Size(),
			QuestionCount: c.settings.QuestionCount,
			DurationSec:   c.settings.DurationSec,
		}

	case model.PhaseExam:
		remaining, armed := c.remainingLocked()
		questions := make([]ExamQuestion, len(c.questions))
		for i, q := range c.questions {
			questions[i] = ExamQuestion{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
		}
		v.Exam = &ExamView{
			Owner:        c.owner,
			Questions:    questions,
			Answers:      c.answers,
			TimerArmed:   armed,
			RemainingSec: remaining,
			DurationSec:  c.settings.DurationSec,
		}

	case model.PhaseResult:
		if c.lastAttempt != nil {
			v.Result = &ResultView{Attempt: *c.lastAttempt}
		}

	case model.PhaseReview:
		items := make([]ReviewItem, len(c.questions))
		for i, q := range c.questions {
			sel := model.Unanswered
			if s, ok := c.answers[q.ID]; ok {
				sel = s
			}
			items[i] = ReviewItem{
				Question: q,
				Selected: sel,
				Correct:  sel == q.Correct,
			}
		}
		score := scoring.Grade(c.questions, c.answers)
		v.Review = &ReviewView{
			Owner:   c.owner,
			Score:   score,
			Percent: scoring.Percent(score),
			Items:   items,
		}

	case model.PhaseProgress:
		if c.progress != nil {
			v.Progress = c.progress
		}
	}

	return v
}
