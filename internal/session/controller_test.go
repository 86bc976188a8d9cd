package session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepbox/examsim-backend/internal/bank"
	"github.com/prepbox/examsim-backend/internal/model"
	"github.com/prepbox/examsim-backend/internal/store"
)

// clock is a controllable time source for elapsed-time assertions.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func makeBank(t *testing.T, n int) *bank.Bank {
	t.Helper()
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:      fmt.Sprintf("q-%d", i),
			Prompt:  fmt.Sprintf("prompt %d", i),
			Options: []string{"a", "b", "c", "d"},
			Correct: i % 4,
		}
	}
	b, err := bank.New(qs)
	require.NoError(t, err)
	return b
}

func newTestController(t *testing.T, bankSize, questionCount, durationSec int) (*Controller, *clock, store.Store) {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "examsim.json"), 50)
	c := NewController(makeBank(t, bankSize), st, Settings{
		QuestionCount: questionCount,
		DurationSec:   durationSec,
	}, zerolog.Nop())

	clk := &clock{t: time.Unix(1700000000, 0)}
	c.now = clk.Now
	// Keep the background ticker idle so tests drive ticks directly.
	c.tickInterval = time.Hour
	return c, clk, st
}

// armedTimer snapshots the current countdown under the lock.
func (c *Controller) armedTimer() *countdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer
}

// advanceTicks applies n one-second decrements, advancing the clock in
// lockstep, and stops early if the timer disarms (auto-submit).
func advanceTicks(c *Controller, clk *clock, n int) {
	for i := 0; i < n; i++ {
		t := c.armedTimer()
		if t == nil {
			return
		}
		clk.Advance(time.Second)
		c.tick(t)
	}
}

func TestLoginTransitionsAndPersists(t *testing.T) {
	ctx := context.Background()
	c, _, st := newTestController(t, 10, 5, 60)

	v := c.Login(ctx, "  alice  ")
	assert.Equal(t, model.PhaseDashboard, v.Phase)
	require.NotNil(t, v.Dashboard)
	assert.Equal(t, "alice", v.Dashboard.Owner)

	last, found, err := st.LastLogin(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", last)
}

func TestBlankLoginIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	c, _, st := newTestController(t, 10, 5, 60)

	for _, input := range []string{"", "   ", "\t\n"} {
		v := c.Login(ctx, input)
		assert.Equal(t, model.PhaseLogin, v.Phase, "input %q must not transition", input)
	}

	_, found, err := st.LastLogin(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoginViewPrefillsLastLogin(t *testing.T) {
	ctx := context.Background()
	c, _, st := newTestController(t, 10, 5, 60)
	require.NoError(t, st.SetLastLogin(ctx, "bob"))

	v := c.State(ctx)
	require.NotNil(t, v.Login)
	assert.Equal(t, "bob", v.Login.LastLogin)
}

func TestStartExamSamplesUniqueUnanswered(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 20, 8, 60)
	c.Login(ctx, "alice")

	v := c.StartExam(ctx)
	require.Equal(t, model.PhaseExam, v.Phase)
	require.NotNil(t, v.Exam)
	require.Len(t, v.Exam.Questions, 8)
	assert.False(t, v.Exam.TimerArmed)

	seen := make(map[string]bool)
	for _, q := range v.Exam.Questions {
		assert.False(t, seen[q.ID], "duplicate sampled question %s", q.ID)
		seen[q.ID] = true
		assert.Equal(t, model.Unanswered, v.Exam.Answers[q.ID])
	}
}

func TestStartExamDegradesToBankSize(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 3, 10, 60)
	c.Login(ctx, "alice")

	v := c.StartExam(ctx)
	require.NotNil(t, v.Exam)
	assert.Len(t, v.Exam.Questions, 3)
}

func TestStartTimerArmsOnce(t *testing.T) {
	ctx := context.Background()
	c, clk, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	c.StartExam(ctx)

	v := c.StartTimer(ctx)
	require.NotNil(t, v.Exam)
	assert.True(t, v.Exam.TimerArmed)
	assert.Equal(t, 60, v.Exam.RemainingSec)
	first := c.armedTimer()
	require.NotNil(t, first)

	// A second start while armed must not re-seed or re-arm.
	advanceTicks(c, clk, 10)
	v = c.StartTimer(ctx)
	assert.Same(t, first, c.armedTimer())
	assert.Equal(t, 50, v.Exam.RemainingSec)
}

func TestStartTimerOutsideExamIsNoop(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)

	c.StartTimer(ctx)
	assert.Nil(t, c.armedTimer())
}

func TestSelectAnswerRequiresArmedTimer(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	v := c.StartExam(ctx)
	qid := v.Exam.Questions[0].ID

	// Timer not yet armed: selection is a no-op.
	v = c.SelectAnswer(ctx, qid, 1)
	assert.Equal(t, model.Unanswered, v.Exam.Answers[qid])

	c.StartTimer(ctx)
	v = c.SelectAnswer(ctx, qid, 1)
	assert.Equal(t, 1, v.Exam.Answers[qid])
}

func TestSelectAnswerOverwritesAndValidates(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	v := c.StartExam(ctx)
	qid := v.Exam.Questions[0].ID
	c.StartTimer(ctx)

	c.SelectAnswer(ctx, qid, 1)
	v = c.SelectAnswer(ctx, qid, 3)
	assert.Equal(t, 3, v.Exam.Answers[qid], "single-select overwrites")

	// Out-of-range option and unknown question are no-ops.
	v = c.SelectAnswer(ctx, qid, 4)
	assert.Equal(t, 3, v.Exam.Answers[qid])
	v = c.SelectAnswer(ctx, "nope", 0)
	assert.NotContains(t, v.Exam.Answers, "nope")
}

func TestSubmitOutsideExamIsNoop(t *testing.T) {
	ctx := context.Background()
	c, _, st := newTestController(t, 10, 5, 60)

	v := c.Submit(ctx)
	assert.Equal(t, model.PhaseLogin, v.Phase)

	c.Login(ctx, "alice")
	v = c.Submit(ctx)
	assert.Equal(t, model.PhaseDashboard, v.Phase)

	attempts, err := st.Attempts(ctx)
	require.NoError(t, err)
	assert.Empty(t, attempts, "no-op submits must not persist attempts")
}

func TestSubmitGradesAndPersists(t *testing.T) {
	ctx := context.Background()
	c, clk, st := newTestController(t, 10, 4, 600)
	c.Login(ctx, "alice")
	v := c.StartExam(ctx)
	c.StartTimer(ctx)

	// Answer the first two questions correctly via the bank's key.
	for _, eq := range v.Exam.Questions[:2] {
		q, ok := c.bank.Get(eq.ID)
		require.True(t, ok)
		c.SelectAnswer(ctx, eq.ID, q.Correct)
	}

	clk.Advance(90 * time.Second)
	v = c.Submit(ctx)
	require.Equal(t, model.PhaseResult, v.Phase)
	require.NotNil(t, v.Result)

	attempt := v.Result.Attempt
	assert.Equal(t, "alice", attempt.Owner)
	assert.Equal(t, model.Score{Correct: 2, Total: 4}, attempt.Score)
	assert.Equal(t, 50, attempt.Percent)
	assert.Equal(t, 90, attempt.ElapsedSec)
	assert.Equal(t, 600, attempt.AllottedSec)
	assert.Len(t, attempt.QuestionIDs, 4)

	attempts, err := st.Attempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, attempt.ID, attempts[0].ID)
}

func TestElapsedFlooredAtZeroOnClockSkew(t *testing.T) {
	ctx := context.Background()
	c, clk, _ := newTestController(t, 10, 4, 600)
	c.Login(ctx, "alice")
	c.StartExam(ctx)
	c.StartTimer(ctx)

	clk.Advance(-time.Hour)
	v := c.Submit(ctx)
	require.NotNil(t, v.Result)
	assert.Equal(t, 0, v.Result.Attempt.ElapsedSec)
}

func TestCountdownZeroAutoSubmitsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	c, clk, st := newTestController(t, 10, 5, 3)
	c.Login(ctx, "alice")
	c.StartExam(ctx)
	c.StartTimer(ctx)

	timer := c.armedTimer()
	require.NotNil(t, timer)

	advanceTicks(c, clk, 3)
	assert.Equal(t, model.PhaseResult, c.State(ctx).Phase)
	assert.Nil(t, c.armedTimer(), "auto-submit must disarm")

	// A straggling tick from the old countdown must not re-fire.
	assert.True(t, c.tick(timer))
	assert.Equal(t, model.PhaseResult, c.State(ctx).Phase)

	attempts, err := st.Attempts(ctx)
	require.NoError(t, err)
	assert.Len(t, attempts, 1, "exactly one attempt per countdown expiry")
}

func TestFullDurationTimeoutScenario(t *testing.T) {
	// Bank of 100, exam size 100, 90 minutes, no answers: the timeout
	// produces one auto-submitted attempt scoring 0/100.
	ctx := context.Background()
	c, clk, st := newTestController(t, 100, 100, 5400)
	c.Login(ctx, "alice")
	c.StartExam(ctx)
	c.StartTimer(ctx)

	advanceTicks(c, clk, 5400)

	attempts, err := st.Attempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	a := attempts[0]
	assert.Equal(t, model.Score{Correct: 0, Total: 100}, a.Score)
	assert.Equal(t, 0, a.Percent)
	assert.Equal(t, 5400, a.ElapsedSec)
	assert.Equal(t, 5400, a.AllottedSec)
}

func TestUpdateSettingsReseedsArmedTimer(t *testing.T) {
	ctx := context.Background()
	c, clk, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	c.StartExam(ctx)
	c.StartTimer(ctx)
	advanceTicks(c, clk, 20)

	got := c.UpdateSettings(Settings{QuestionCount: 5, DurationSec: 120})
	assert.Equal(t, 120, got.DurationSec)

	v := c.State(ctx)
	require.NotNil(t, v.Exam)
	assert.Equal(t, 120, v.Exam.RemainingSec, "duration change re-seeds the countdown")

	// Same duration again: no re-seed.
	advanceTicks(c, clk, 5)
	c.UpdateSettings(Settings{QuestionCount: 7, DurationSec: 120})
	assert.Equal(t, 115, c.State(ctx).Exam.RemainingSec)
}

func TestRestartFromResultResamples(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	v := c.StartExam(ctx)
	qid := v.Exam.Questions[0].ID
	c.StartTimer(ctx)
	c.SelectAnswer(ctx, qid, 2)
	c.Submit(ctx)

	v = c.StartExam(ctx)
	require.Equal(t, model.PhaseExam, v.Phase)
	assert.False(t, v.Exam.TimerArmed)
	for id, sel := range v.Exam.Answers {
		assert.Equal(t, model.Unanswered, sel, "question %s must reset", id)
	}
}

func TestReviewAndDashboardTransitions(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	c.StartExam(ctx)
	c.StartTimer(ctx)
	c.Submit(ctx)

	// Review is only reachable from result.
	v := c.Review(ctx)
	require.Equal(t, model.PhaseReview, v.Phase)
	require.NotNil(t, v.Review)
	assert.Len(t, v.Review.Items, 5)

	v = c.Dashboard(ctx)
	require.Equal(t, model.PhaseDashboard, v.Phase)

	// Review from the dashboard is a no-op.
	v = c.Review(ctx)
	assert.Equal(t, model.PhaseDashboard, v.Phase)
}

func TestProgressAggregatesOwnerHistory(t *testing.T) {
	ctx := context.Background()
	c, _, st := newTestController(t, 10, 5, 60)
	require.NoError(t, st.AppendAttempt(ctx, model.Attempt{ID: "1", Owner: "alice", Percent: 80}))
	require.NoError(t, st.AppendAttempt(ctx, model.Attempt{ID: "2", Owner: "alice", Percent: 60}))
	require.NoError(t, st.AppendAttempt(ctx, model.Attempt{ID: "3", Owner: "bob", Percent: 100}))

	c.Login(ctx, "alice")
	v := c.Progress(ctx)
	require.Equal(t, model.PhaseProgress, v.Phase)
	require.NotNil(t, v.Progress)
	assert.Equal(t, 80, v.Progress.Stats.BestPercent)
	assert.Equal(t, 70, v.Progress.Stats.AveragePercent)
	assert.Equal(t, 2, v.Progress.Stats.AttemptCount)
	require.Len(t, v.Progress.Recent, 2)
	assert.Equal(t, "2", v.Progress.Recent[0].ID, "most recent first")
}

func TestProgressBlockedDuringExamAndLogin(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)

	v := c.Progress(ctx)
	assert.Equal(t, model.PhaseLogin, v.Phase)

	c.Login(ctx, "alice")
	c.StartExam(ctx)
	v = c.Progress(ctx)
	assert.Equal(t, model.PhaseExam, v.Phase)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)
	c.Login(ctx, "alice")
	c.StartExam(ctx)
	c.StartTimer(ctx)

	v := c.Logout(ctx)
	assert.Equal(t, model.PhaseLogin, v.Phase)
	assert.Nil(t, c.armedTimer(), "logout disarms the timer")

	// The next session starts clean.
	v = c.Login(ctx, "bob")
	assert.Equal(t, "bob", v.Dashboard.Owner)
}

func TestToggleTheme(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, 10, 5, 60)

	assert.True(t, c.ToggleTheme(ctx).DarkTheme)
	assert.False(t, c.ToggleTheme(ctx).DarkTheme)
}

func TestSubscribersReceiveTickAndPhaseEvents(t *testing.T) {
	ctx := context.Background()
	c, clk, _ := newTestController(t, 10, 5, 60)

	events, cancel := c.Subscribe()
	defer cancel()

	c.Login(ctx, "alice")
	ev := <-events
	assert.Equal(t, EventPhase, ev.Type)
	assert.Equal(t, model.PhaseDashboard, ev.Phase)

	c.StartExam(ctx)
	<-events // exam phase event
	c.StartTimer(ctx)
	advanceTicks(c, clk, 1)

	ev = <-events
	assert.Equal(t, EventTick, ev.Type)
	assert.Equal(t, 59, ev.RemainingSec)
}
