// Package session implements the exam session state machine and the
// countdown timer that drives implicit submission.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepbox/examsim-backend/internal/bank"
	"github.com/prepbox/examsim-backend/internal/model"
	"github.com/prepbox/examsim-backend/internal/scoring"
	"github.com/prepbox/examsim-backend/internal/store"
)

// Settings is the runtime exam configuration.
type Settings struct {
	QuestionCount int `json:"question_count"`
	DurationSec   int `json:"duration_seconds"`
}

// countdown is the armed timer state. A nil countdown means the timer
// is disarmed.
type countdown struct {
	remaining int
	stop      chan struct{}
}

// Controller owns the single exam session: phase, sampled questions,
// in-progress answers, and the countdown timer. Every intent and every
// timer tick is serialized by mu, so there is exactly one logical
// writer at a time.
type Controller struct {
	mu sync.Mutex

	bank  *bank.Bank
	store store.Store
	log   zerolog.Logger

	settings Settings

	phase     model.Phase
	owner     string
	darkTheme bool

	questions   []model.Question
	answers     model.AnswerMap
	startedAt   time.Time
	submittedAt time.Time
	lastAttempt *model.Attempt
	progress    *ProgressView

	timer *countdown

	subscribers map[chan Event]struct{}

	// now and tickInterval are swapped out by tests.
	now          func() time.Time
	tickInterval time.Duration
}

// NewController creates a controller in the login phase.
func NewController(b *bank.Bank, st store.Store, settings Settings, log zerolog.Logger) *Controller {
	return &Controller{
		bank:         b,
		store:        st,
		log:          log,
		settings:     settings,
		phase:        model.PhaseLogin,
		subscribers:  make(map[chan Event]struct{}),
		now:          time.Now,
		tickInterval: time.Second,
	}
}

// Login handles the login intent. A blank or whitespace-only username
// is rejected silently: no transition, no error surfaced. A valid
// username is recorded as the last login (best effort) and moves the
// session to the dashboard.
func (c *Controller) Login(ctx context.Context, username string) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	username = strings.TrimSpace(username)
	if c.phase != model.PhaseLogin || username == "" {
		return c.viewLocked(ctx)
	}

	if err := c.store.SetLastLogin(ctx, username); err != nil {
		c.log.Warn().Err(err).Msg("Persist last login failed")
	}

	c.owner = username
	c.setPhaseLocked(model.PhaseDashboard)
	return c.viewLocked(ctx)
}

// Logout clears the owner and all exam-scoped state from any phase and
// returns to login. Durable attempt history survives.
func (c *Controller) Logout(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.owner = ""
	c.clearExamLocked()
	c.setPhaseLocked(model.PhaseLogin)
	return c.viewLocked(ctx)
}

// StartExam samples a fresh question subset and enters the exam phase.
// Valid from the dashboard and, as "restart", from the result phase.
// The timer is not yet armed; every sampled question starts unanswered.
func (c *Controller) StartExam(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != model.PhaseDashboard && c.phase != model.PhaseResult {
		return c.viewLocked(ctx)
	}

	c.disarmLocked()
	c.questions = c.bank.Sample(c.settings.QuestionCount)
	c.answers = make(model.AnswerMap, len(c.questions))
	for _, q := range c.questions {
		c.answers[q.ID] = model.Unanswered
	}
	c.startedAt = time.Time{}
	c.submittedAt = time.Time{}
	c.setPhaseLocked(model.PhaseExam)
	return c.viewLocked(ctx)
}

// StartTimer arms the countdown and records the start timestamp.
// Arming is guarded: calling it again while armed, or outside the exam
// phase, has no effect.
func (c *Controller) StartTimer(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != model.PhaseExam || c.timer != nil {
		return c.viewLocked(ctx)
	}

	t := &countdown{
		remaining: c.settings.DurationSec,
		stop:      make(chan struct{}),
	}
	c.timer = t
	c.startedAt = c.now()
	go c.runTicker(t)

	c.log.Info().Int("duration_sec", t.remaining).Msg("Timer armed")
	return c.viewLocked(ctx)
}

// SelectAnswer records a single-select answer, overwriting any prior
// selection. It is a no-op unless the exam phase is active, the timer
// is armed, the question belongs to the sampled subset, and the option
// index is in range.
func (c *Controller) SelectAnswer(ctx context.Context, questionID string, option int) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != model.PhaseExam || c.timer == nil {
		return c.viewLocked(ctx)
	}
	if _, ok := c.answers[questionID]; !ok {
		return c.viewLocked(ctx)
	}
	q, ok := c.bank.Get(questionID)
	if !ok || option < 0 || option >= len(q.Options) {
		return c.viewLocked(ctx)
	}

	c.answers[questionID] = option
	return c.viewLocked(ctx)
}

// Submit handles the explicit submit intent. Submitting outside the
// exam phase is a no-op, which also guards the timer's edge-triggered
// implicit submit against re-firing.
func (c *Controller) Submit(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.submitLocked(ctx)
	return c.viewLocked(ctx)
}

// Review moves from result to the answer review. Pure view transition.
func (c *Controller) Review(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != model.PhaseResult {
		return c.viewLocked(ctx)
	}
	c.setPhaseLocked(model.PhaseReview)
	return c.viewLocked(ctx)
}

// Dashboard returns to the dashboard from review, progress or result,
// clearing exam-scoped state.
func (c *Controller) Dashboard(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case model.PhaseReview, model.PhaseProgress, model.PhaseResult:
		c.clearExamLocked()
		c.setPhaseLocked(model.PhaseDashboard)
	}
	return c.viewLocked(ctx)
}

// Progress moves to the read-only progress view. Allowed from any
// phase with a known owner except the exam itself.
func (c *Controller) Progress(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owner == "" || c.phase == model.PhaseExam || c.phase == model.PhaseLogin {
		return c.viewLocked(ctx)
	}

	attempts, err := c.store.Attempts(ctx)
	if err != nil {
		// Storage failures degrade to an empty history.
		c.log.Warn().Err(err).Msg("Read attempts failed")
		attempts = nil
	}

	c.progress = &ProgressView{
		Owner:  c.owner,
		Stats:  scoring.Aggregate(attempts, c.owner),
		Recent: scoring.FilterByOwner(attempts, c.owner),
	}
	c.setPhaseLocked(model.PhaseProgress)
	return c.viewLocked(ctx)
}

// ToggleTheme flips the session theme flag.
func (c *Controller) ToggleTheme(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.darkTheme = !c.darkTheme
	return c.viewLocked(ctx)
}

// State returns the current phase view without mutating anything.
func (c *Controller) State(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked(ctx)
}

// Settings returns the current runtime exam configuration.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings changes the runtime exam configuration. If the
// allotted duration changes while the timer is armed, the countdown
// re-seeds to the new full duration.
func (c *Controller) UpdateSettings(s Settings) Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	durationChanged := s.DurationSec != c.settings.DurationSec
	c.settings = s
	if durationChanged && c.timer != nil {
		c.timer.remaining = s.DurationSec
	}
	return c.settings
}

// Attempts returns the full persisted history, oldest first.
func (c *Controller) Attempts(ctx context.Context) ([]model.Attempt, error) {
	return c.store.Attempts(ctx)
}

// Shutdown disarms the timer and drops all event subscribers.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disarmLocked()
	for ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, ch)
	}
}

// ─── Internal transitions (callers hold mu) ─────────────────────────

// submitLocked performs the submit transition: compute elapsed time and
// score, build and persist the attempt, move to result. No-op outside
// the exam phase.
func (c *Controller) submitLocked(ctx context.Context) {
	if c.phase != model.PhaseExam {
		return
	}

	c.disarmLocked()
	c.submittedAt = c.now()

	elapsed := 0
	if !c.startedAt.IsZero() {
		elapsed = int(c.submittedAt.Sub(c.startedAt).Seconds())
		if elapsed < 0 {
			// Clock skew: floor at zero rather than report.
			elapsed = 0
		}
	}

	score := scoring.Grade(c.questions, c.answers)
	attempt := model.Attempt{
		ID:          model.NewAttemptID(c.submittedAt),
		Owner:       c.owner,
		SubmittedAt: c.submittedAt,
		Score:       score,
		Percent:     scoring.Percent(score),
		ElapsedSec:  elapsed,
		AllottedSec: c.settings.DurationSec,
		Answers:     c.answers.Clone(),
		QuestionIDs: questionIDs(c.questions),
	}

	// Best-effort persistence: a failed write is logged, never blocks
	// the transition to the result phase.
	if err := c.store.AppendAttempt(ctx, attempt); err != nil {
		c.log.Warn().Err(err).Str("attempt_id", attempt.ID).Msg("Persist attempt failed")
	}

	c.lastAttempt = &attempt
	c.setPhaseLocked(model.PhaseResult)

	c.log.Info().
		Str("attempt_id", attempt.ID).
		Int("correct", score.Correct).
		Int("total", score.Total).
		Int("percent", attempt.Percent).
		Int("elapsed_sec", elapsed).
		Msg("Exam submitted")
}

// clearExamLocked drops the sampled subset, answers, timestamps and
// disarms the timer.
func (c *Controller) clearExamLocked() {
	c.disarmLocked()
	c.questions = nil
	c.answers = nil
	c.startedAt = time.Time{}
	c.submittedAt = time.Time{}
	c.lastAttempt = nil
	c.progress = nil
}

func (c *Controller) setPhaseLocked(p model.Phase) {
	if c.phase == p {
		return
	}
	c.phase = p
	c.publishLocked(Event{Type: EventPhase, Phase: p})
}

func questionIDs(questions []model.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
