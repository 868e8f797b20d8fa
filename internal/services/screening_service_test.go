package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/screening-service/internal/advisory"
	"github.com/SAP-F-2025/screening-service/internal/events"
	"github.com/SAP-F-2025/screening-service/internal/memorygame"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/quiz"
	"github.com/SAP-F-2025/screening-service/internal/repositories"
	"github.com/SAP-F-2025/screening-service/internal/repositories/memory"
	"github.com/SAP-F-2025/screening-service/internal/scoring"
)

type MockAdvisor struct {
	mock.Mock
}

func (m *MockAdvisor) Name() string { return "mock" }

func (m *MockAdvisor) Comment(ctx context.Context, s advisory.Summary) ([]string, error) {
	args := m.Called(ctx, s)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

type heldTimer struct{ stopped bool }

func (h *heldTimer) Stop() bool {
	h.stopped = true
	return true
}

// holdScheduler never fires; mismatched pairs stay face-up.
func holdScheduler(time.Duration, func()) memorygame.Stopper { return &heldTimer{} }

// friday is 2026-10-16, a Friday.
var friday = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

var correctAnswers = map[string]string{
	"q1": "Пятница", "q2": "Казахстан", "q3": "675", "q4": "это фрукты",
	"q5": "Рим", "q6": "пес", "q7": "189 178 167",
}

type fixture struct {
	svc       *screeningService
	repo      repositories.SessionRepository
	advisor   *MockAdvisor
	publisher *events.MockEventPublisher
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		repo:      memory.NewSessionMemory(),
		advisor:   new(MockAdvisor),
		publisher: events.NewMockEventPublisher(logger),
		now:       friday,
	}
	f.svc = newScreeningService(ScreeningConfig{
		SessionTTL:      time.Hour,
		AdvisoryTimeout: time.Second,
		Location:        time.UTC,
		GameOptions:     []memorygame.Option{memorygame.WithScheduler(holdScheduler)},
		Now:             func() time.Time { return f.now },
	}, f.repo, f.advisor, f.publisher, logger)
	t.Cleanup(f.svc.Close)
	return f
}

// toGame walks a fresh session to step 3.
func (f *fixture) toGame(t *testing.T, answers map[string]string) string {
	t.Helper()
	ctx := context.Background()

	view, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	id := view.ID

	_, err = f.svc.SubmitOrientation(ctx, id, answers)
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, id, quiz.StepClock)
	require.NoError(t, err)
	_, err = f.svc.UploadClock(ctx, id, "clock.png", 2048)
	require.NoError(t, err)
	view, err = f.svc.Advance(ctx, id, quiz.StepMemory)
	require.NoError(t, err)
	require.Equal(t, memorygame.StatusInProgress, view.Game.Status)
	return id
}

// solve matches every pair using the symbols in the snapshot.
func (f *fixture) solve(t *testing.T, id string) {
	t.Helper()
	view, err := f.svc.GetSession(context.Background(), id)
	require.NoError(t, err)

	seen := map[string]int{}
	for i, c := range view.Game.Cards {
		j, ok := seen[c.Symbol]
		if !ok {
			seen[c.Symbol] = i
			continue
		}
		_, err := f.svc.SelectCard(context.Background(), id, j)
		require.NoError(t, err)
		res, err := f.svc.SelectCard(context.Background(), id, i)
		require.NoError(t, err)
		require.Equal(t, memorygame.OutcomeMatched, res.Outcome)
	}
}

func TestScreeningService_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.advisor.On("Comment", mock.Anything, advisory.Summary{
		Total: 11, MaxTotal: 11, MMSE: 7, Clock: 1, Memory: 3, Moves: 6,
	}).Return([]string{"Продолжайте тренировки"}, nil)

	id := f.toGame(t, correctAnswers)
	f.solve(t, id)

	report, err := f.svc.Finish(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, report.SessionID)
	assert.Equal(t, 11, report.Breakdown.Total)
	assert.Equal(t, 6, report.Breakdown.Moves)
	assert.Equal(t, models.LevelNormal, report.Advice.Level)
	assert.Equal(t, scoring.NextMaintain, report.Advice.Next)
	assert.Equal(t, []string{"Продолжайте тренировки"}, report.Commentary)
	assert.Equal(t, models.ReportDisclaimer, report.Disclaimer)
	f.advisor.AssertExpectations(t)

	stored, err := f.svc.GetReport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report, stored)

	again, err := f.svc.Finish(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report, again)
	f.advisor.AssertNumberOfCalls(t, "Comment", 1)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventSessionStarted, published[0].Type)
	assert.Equal(t, events.EventScreeningCompleted, published[1].Type)
	data, ok := published[1].Data.(events.ScreeningCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 11, data.Total)
	assert.True(t, data.Commentary)
}

func TestScreeningService_ConcurrentFinishCompletesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.advisor.On("Comment", mock.Anything, mock.Anything).
		After(20*time.Millisecond).
		Return([]string{"совет"}, nil)

	id := f.toGame(t, correctAnswers)
	f.solve(t, id)

	const callers = 4
	reports := make([]*models.Report, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = f.svc.Finish(ctx, id)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, reports[0], reports[i])
	}
	f.advisor.AssertNumberOfCalls(t, "Comment", 1)

	completed := 0
	for _, e := range f.publisher.GetPublishedEvents() {
		if e.Type == events.EventScreeningCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)

	_, err := f.svc.RestartGame(ctx, id)
	var bre *BusinessRuleError
	require.ErrorAs(t, err, &bre)
	assert.Equal(t, "screening_finished", bre.Rule)
}

func TestScreeningService_AdvisorFailureLeavesNoCommentary(t *testing.T) {
	f := newFixture(t)
	f.advisor.On("Comment", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	id := f.toGame(t, map[string]string{"q1": "среда", "q2": "россия", "q3": "1", "q4": "-", "q5": "-", "q6": "-", "q7": "-"})
	f.solve(t, id)

	report, err := f.svc.Finish(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, report.Commentary)
	assert.Equal(t, 0, report.Breakdown.MMSEScore)
	assert.Equal(t, 4, report.Breakdown.Total)
	assert.Equal(t, models.LevelSevere, report.Advice.Level)
}

func TestScreeningService_StepGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	id := view.ID
	assert.Equal(t, quiz.StepOrientation, view.Step)
	assert.Equal(t, memorygame.StatusIdle, view.Game.Status)

	_, err = f.svc.Advance(ctx, id, quiz.StepClock)
	assert.ErrorIs(t, err, ErrStepBlocked)
	var bre *BusinessRuleError
	require.ErrorAs(t, err, &bre)
	assert.Equal(t, "orientation_incomplete", bre.Rule)

	_, err = f.svc.SubmitOrientation(ctx, id, map[string]string{"q1": "пятница"})
	require.NoError(t, err)
	_, err = f.svc.SubmitOrientation(ctx, id, correctAnswers)
	assert.ErrorIs(t, err, ErrAnswersAlreadySubmitted)

	_, err = f.svc.Advance(ctx, id, quiz.StepClock)
	assert.ErrorIs(t, err, ErrStepBlocked)
	assert.True(t, IsBusinessRule(err))
}

func TestScreeningService_NoSkippingAndClockRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	id := view.ID
	_, err = f.svc.SubmitOrientation(ctx, id, correctAnswers)
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, id, quiz.StepMemory)
	assert.ErrorIs(t, err, ErrStepBlocked)

	_, err = f.svc.UploadClock(ctx, id, "clock.png", 10)
	assert.ErrorIs(t, err, ErrStepBlocked, "upload before step 2")

	_, err = f.svc.Advance(ctx, id, quiz.StepClock)
	require.NoError(t, err)

	_, err = f.svc.UploadClock(ctx, id, "empty.png", 0)
	assert.True(t, IsValidation(err))

	_, err = f.svc.Advance(ctx, id, quiz.StepMemory)
	var bre *BusinessRuleError
	require.ErrorAs(t, err, &bre)
	assert.Equal(t, "clock_missing", bre.Rule)

	_, err = f.svc.SelectCard(ctx, id, 0)
	assert.ErrorIs(t, err, ErrStepBlocked)
}

func TestScreeningService_GameErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.toGame(t, correctAnswers)

	_, err := f.svc.SelectCard(ctx, id, 12)
	assert.ErrorIs(t, err, memorygame.ErrInvalidIndex)

	_, err = f.svc.Finish(ctx, id)
	assert.ErrorIs(t, err, ErrGameNotFinished)
	assert.True(t, IsConflict(err))

	_, err = f.svc.GetReport(ctx, id)
	assert.ErrorIs(t, err, ErrReportNotReady)
}

func TestScreeningService_MismatchAndRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.toGame(t, correctAnswers)

	view, err := f.svc.GetSession(ctx, id)
	require.NoError(t, err)
	cards := view.Game.Cards
	second := 1
	for cards[second].Symbol == cards[0].Symbol {
		second++
	}

	_, err = f.svc.SelectCard(ctx, id, 0)
	require.NoError(t, err)
	res, err := f.svc.SelectCard(ctx, id, second)
	require.NoError(t, err)
	assert.Equal(t, memorygame.OutcomeMismatched, res.Outcome)
	assert.True(t, res.Game.Locked)

	res, err = f.svc.SelectCard(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, memorygame.OutcomeIgnored, res.Outcome)

	snap, err := f.svc.RestartGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Moves)
	assert.False(t, snap.Locked)
	for _, c := range snap.Cards {
		assert.False(t, c.Revealed)
	}
}

func TestScreeningService_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFound(err))

	stale, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	f.now = friday.Add(50 * time.Minute)
	fresh, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.EvictIdle(ctx, friday.Add(61*time.Minute)))
	_, err = f.svc.GetSession(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.GetSession(ctx, fresh.ID)
	assert.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(ctx, fresh.ID))
	assert.ErrorIs(t, f.svc.DeleteSession(ctx, fresh.ID), ErrSessionNotFound)
}

func TestScreeningService_RunJanitorStopsWithContext(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateSession(context.Background())
	require.NoError(t, err)
	f.now = friday.Add(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		n, err := f.repo.Count(context.Background())
		return err == nil && n == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
