package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/SAP-F-2025/screening-service/internal/advisory"
	"github.com/SAP-F-2025/screening-service/internal/events"
	"github.com/SAP-F-2025/screening-service/internal/memorygame"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/quiz"
	"github.com/SAP-F-2025/screening-service/internal/repositories"
	"github.com/SAP-F-2025/screening-service/internal/scoring"
)

// ScreeningService drives screening sessions from the first question to the
// final report.
type ScreeningService interface {
	CreateSession(ctx context.Context) (*SessionView, error)
	GetSession(ctx context.Context, id string) (*SessionView, error)
	DeleteSession(ctx context.Context, id string) error

	SubmitOrientation(ctx context.Context, id string, answers map[string]string) (*SessionView, error)
	UploadClock(ctx context.Context, id, filename string, size int64) (*SessionView, error)
	Advance(ctx context.Context, id string, to quiz.Step) (*SessionView, error)

	SelectCard(ctx context.Context, id string, index int) (*CardResult, error)
	RestartGame(ctx context.Context, id string) (*memorygame.Snapshot, error)

	Finish(ctx context.Context, id string) (*models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)

	RunJanitor(ctx context.Context, interval time.Duration)
	Close()
}

type SessionView struct {
	ID            string                    `json:"id"`
	Step          quiz.Step                 `json:"step"`
	StepName      string                    `json:"step_name"`
	CreatedAt     time.Time                 `json:"created_at"`
	Answers       models.OrientationAnswers `json:"answers,omitempty"`
	ClockUploaded bool                      `json:"clock_uploaded"`
	Game          memorygame.Snapshot       `json:"game"`
	Finished      bool                      `json:"finished"`
}

type CardResult struct {
	Outcome memorygame.Outcome  `json:"outcome"`
	Game    memorygame.Snapshot `json:"game"`
}

type ScreeningConfig struct {
	SessionTTL      time.Duration
	AdvisoryTimeout time.Duration
	// Location is the timezone the weekday answer is checked in.
	Location    *time.Location
	GameOptions []memorygame.Option
	Now         func() time.Time
}

type screeningService struct {
	cfg       ScreeningConfig
	repo      repositories.SessionRepository
	advisor   advisory.Advisor
	publisher events.EventPublisher
	logger    *slog.Logger

	// finishing collapses concurrent Finish calls for one session.
	finishing singleflight.Group
}

func NewScreeningService(
	cfg ScreeningConfig,
	repo repositories.SessionRepository,
	advisor advisory.Advisor,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ScreeningService {
	return newScreeningService(cfg, repo, advisor, publisher, logger)
}

func newScreeningService(
	cfg ScreeningConfig,
	repo repositories.SessionRepository,
	advisor advisory.Advisor,
	publisher events.EventPublisher,
	logger *slog.Logger,
) *screeningService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AdvisoryTimeout <= 0 {
		cfg.AdvisoryTimeout = 20 * time.Second
	}
	if advisor == nil {
		advisor = advisory.NoopAdvisor{}
	}
	return &screeningService{
		cfg:       cfg,
		repo:      repo,
		advisor:   advisor,
		publisher: publisher,
		logger:    logger.With("service", "screening"),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *screeningService) CreateSession(ctx context.Context) (*SessionView, error) {
	now := s.cfg.Now()
	sess := quiz.NewSession(uuid.NewString(), now, quiz.WithGameOptions(s.cfg.GameOptions...))

	if err := s.repo.Create(ctx, sess); err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	sessionsCreated.Inc()
	sessionsActive.Inc()
	s.logger.Info("Screening session created", "session_id", sess.ID)
	s.publish(ctx, events.NewSessionStartedEvent(sess.ID, now))

	return s.view(sess), nil
}

func (s *screeningService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *screeningService) DeleteSession(ctx context.Context, id string) error {
	sess, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	sess.Close()
	sessionsActive.Dec()
	s.logger.Info("Screening session deleted", "session_id", id)
	return nil
}

// ===== QUIZ STEPS =====

func (s *screeningService) SubmitOrientation(ctx context.Context, id string, answers map[string]string) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if step := sess.Step(); step != quiz.StepOrientation {
		return nil, NewBusinessRuleError("orientation_closed", "orientation answers are accepted on step 1 only",
			map[string]interface{}{"current_step": int(step)})
	}
	if _, err := sess.SubmitOrientation(answers); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *screeningService) UploadClock(ctx context.Context, id, filename string, size int64) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if step := sess.Step(); step != quiz.StepClock {
		return nil, NewBusinessRuleError("clock_closed", "the clock drawing is accepted on step 2 only",
			map[string]interface{}{"current_step": int(step)})
	}
	if _, err := sess.AttachClockDrawing(filename, size, s.cfg.Now()); err != nil {
		if errors.Is(err, quiz.ErrEmptyUpload) {
			return nil, ValidationErrors{{Field: "file", Message: "must not be empty", Rule: "required"}}
		}
		return nil, err
	}
	s.logger.Debug("Clock drawing attached", "session_id", id, "filename", filename, "size", size)
	return s.view(sess), nil
}

func (s *screeningService) Advance(ctx context.Context, id string, to quiz.Step) (*SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	from := sess.Step()
	if err := sess.Next(to); err != nil {
		return nil, stepBlocked(err, from, to)
	}
	s.logger.Info("Screening step advanced", "session_id", id, "from", from.String(), "to", to.String())
	return s.view(sess), nil
}

// ===== MEMORY GAME =====

func (s *screeningService) SelectCard(ctx context.Context, id string, index int) (*CardResult, error) {
	sess, err := s.gameSession(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome, snap, err := sess.Game().SelectCard(index)
	if err != nil {
		return nil, err
	}
	cardSelections.WithLabelValues(string(outcome)).Inc()
	return &CardResult{Outcome: outcome, Game: snap}, nil
}

func (s *screeningService) RestartGame(ctx context.Context, id string) (*memorygame.Snapshot, error) {
	sess, err := s.gameSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.RestartGame(); err != nil {
		if errors.Is(err, quiz.ErrSessionFinished) {
			return nil, NewBusinessRuleError("screening_finished", "the game cannot be restarted after the screening is finished", nil)
		}
		if errors.Is(err, quiz.ErrInvalidStep) {
			return nil, stepBlocked(err, sess.Step(), quiz.StepMemory)
		}
		return nil, err
	}
	snap := sess.Game().Snapshot()
	return &snap, nil
}

func (s *screeningService) gameSession(ctx context.Context, id string) (*quiz.Session, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if step := sess.Step(); step != quiz.StepMemory {
		return nil, NewBusinessRuleError("game_not_started", "the memory game opens on step 3",
			map[string]interface{}{"current_step": int(step)})
	}
	return sess, nil
}

// ===== RESULTS =====

// Finish scores a session whose game is complete. Calling it again, also
// concurrently, returns the stored report.
func (s *screeningService) Finish(ctx context.Context, id string) (*models.Report, error) {
	v, err, _ := s.finishing.Do(id, func() (interface{}, error) {
		return s.finish(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	report := v.(models.Report)
	return &report, nil
}

func (s *screeningService) finish(ctx context.Context, id string) (models.Report, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return models.Report{}, err
	}
	if r, ok := sess.Report(); ok {
		return r, nil
	}

	now := s.cfg.Now()
	in, err := sess.Finish(scoring.WeekdayName(now.In(s.cfg.Location)))
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidStep) {
			return models.Report{}, stepBlocked(err, sess.Step(), quiz.StepMemory)
		}
		return models.Report{}, err
	}

	breakdown, advice := scoring.Evaluate(in)
	report := models.Report{
		SessionID:   id,
		Breakdown:   breakdown,
		Advice:      advice,
		Disclaimer:  models.ReportDisclaimer,
		CompletedAt: now,
	}
	report.Commentary = s.comment(ctx, breakdown)
	sess.SetReport(report)

	screeningsCompleted.WithLabelValues(string(advice.Level)).Inc()
	s.logger.Info("Screening finished",
		"session_id", id,
		"total", breakdown.Total,
		"level", advice.Level,
		"moves", breakdown.Moves)
	s.publish(ctx, events.NewScreeningCompletedEvent(report))

	return report, nil
}

func (s *screeningService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	r, ok := sess.Report()
	if !ok {
		return nil, ErrReportNotReady
	}
	return &r, nil
}

// comment asks the advisor for commentary. Failures leave the report
// without commentary.
func (s *screeningService) comment(ctx context.Context, b models.ScoreBreakdown) []string {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AdvisoryTimeout)
	defer cancel()

	provider := s.advisor.Name()
	lines, err := s.advisor.Comment(ctx, advisory.Summary{
		Total:    b.Total,
		MaxTotal: b.MaxTotal,
		MMSE:     b.MMSEScore,
		Clock:    b.ClockScore,
		Memory:   b.MemoryScore,
		Moves:    b.Moves,
	})
	if err != nil {
		advisoryRequests.WithLabelValues(provider, "error").Inc()
		s.logger.WarnContext(ctx, "Advisory commentary unavailable", "provider", provider, "error", err)
		return nil
	}
	advisoryRequests.WithLabelValues(provider, "ok").Inc()
	return lines
}

func (s *screeningService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		eventPublishFailures.Inc()
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}

// ===== REGISTRY =====

func (s *screeningService) session(ctx context.Context, id string) (*quiz.Session, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sess.Touch(s.cfg.Now())
	return sess, nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrSessionNotFound
	}
	return fmt.Errorf("session repository: %w", err)
}

func (s *screeningService) view(sess *quiz.Session) *SessionView {
	step := sess.Step()
	_, clock := sess.Clock()
	_, finished := sess.Report()
	return &SessionView{
		ID:            sess.ID,
		Step:          step,
		StepName:      step.String(),
		CreatedAt:     sess.CreatedAt,
		Answers:       sess.Answers(),
		ClockUploaded: clock,
		Game:          sess.Game().Snapshot(),
		Finished:      finished,
	}
}

// EvictIdle removes sessions idle for longer than the TTL and returns how
// many were removed.
func (s *screeningService) EvictIdle(ctx context.Context, now time.Time) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}

	stale, err := s.repo.DeleteIdleBefore(ctx, now.Add(-s.cfg.SessionTTL))
	if err != nil {
		s.logger.Error("Failed to evict idle sessions", "error", err)
		return 0
	}
	for _, sess := range stale {
		sess.Close()
	}
	if n := len(stale); n > 0 {
		sessionsEvicted.Add(float64(n))
		sessionsActive.Sub(float64(n))
		s.logger.Info("Evicted idle screening sessions", "count", n)
	}
	return len(stale)
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (s *screeningService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(ctx, s.cfg.Now())
		}
	}
}

// Close releases every session's pending game timer.
func (s *screeningService) Close() {
	all, err := s.repo.DeleteAll(context.Background())
	if err != nil {
		s.logger.Error("Failed to release sessions", "error", err)
		return
	}
	for _, sess := range all {
		sess.Close()
	}
	sessionsActive.Sub(float64(len(all)))
}
