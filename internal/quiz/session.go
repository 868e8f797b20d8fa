// Package quiz holds the state of one screening attempt as it moves through
// its three steps.
package quiz

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/memorygame"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/scoring"
)

type Step int

const (
	StepOrientation Step = 1
	StepClock       Step = 2
	StepMemory      Step = 3
)

func (s Step) Valid() bool {
	return s >= StepOrientation && s <= StepMemory
}

func (s Step) String() string {
	switch s {
	case StepOrientation:
		return "orientation"
	case StepClock:
		return "clock"
	case StepMemory:
		return "memory"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrInvalidStep             = errors.New("invalid step transition")
	ErrAnswersAlreadySubmitted = errors.New("orientation answers already submitted")
	ErrAnswersIncomplete       = errors.New("all orientation questions must be answered")
	ErrClockMissing            = errors.New("clock drawing not uploaded")
	ErrEmptyUpload             = errors.New("uploaded file is empty")
	ErrGameNotFinished         = errors.New("memory game is not finished")
	ErrSessionFinished         = errors.New("screening session already finished")
)

// StepCheck decides whether the session may leave its current step.
type StepCheck func(s *Session) error

// ClockDrawing records that a drawing was supplied. Only its presence is scored.
type ClockDrawing struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Option func(*Session)

// WithStepCheck replaces the check run before leaving step.
func WithStepCheck(step Step, check StepCheck) Option {
	return func(s *Session) {
		s.checks[step] = check
	}
}

// WithGameOptions configures the memory game owned by the session.
func WithGameOptions(opts ...memorygame.Option) Option {
	return func(s *Session) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

// Session is one quiz attempt. Methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	step     Step
	answers  models.OrientationAnswers
	clock    *ClockDrawing
	game     *memorygame.Engine
	gameOpts []memorygame.Option
	checks   map[Step]StepCheck
	report   *models.Report
	finished bool
	touched  time.Time
}

func NewSession(id string, now time.Time, opts ...Option) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		step:      StepOrientation,
		touched:   now,
		checks: map[Step]StepCheck{
			StepOrientation: requireAnswers,
			StepClock:       requireClock,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.game = memorygame.New(s.gameOpts...)
	return s
}

func requireAnswers(s *Session) error {
	if !s.answers.Complete() {
		return ErrAnswersIncomplete
	}
	return nil
}

func requireClock(s *Session) error {
	if s.clock == nil {
		return ErrClockMissing
	}
	return nil
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SubmitOrientation normalizes and stores the step 1 answers. They can be
// set only once.
func (s *Session) SubmitOrientation(raw map[string]string) (models.OrientationAnswers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answers != nil {
		return nil, ErrAnswersAlreadySubmitted
	}
	s.answers = models.NewOrientationAnswers(raw)
	return s.copyAnswers(), nil
}

// Answers returns a copy of the stored answers, or nil if none were submitted.
func (s *Session) Answers() models.OrientationAnswers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyAnswers()
}

func (s *Session) copyAnswers() models.OrientationAnswers {
	if s.answers == nil {
		return nil
	}
	out := make(models.OrientationAnswers, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// AttachClockDrawing records the uploaded drawing. A later upload replaces it.
func (s *Session) AttachClockDrawing(filename string, size int64, now time.Time) (ClockDrawing, error) {
	if size <= 0 {
		return ClockDrawing{}, ErrEmptyUpload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = &ClockDrawing{Filename: filename, Size: size, UploadedAt: now}
	return *s.clock, nil
}

// Clock returns the uploaded drawing, if any.
func (s *Session) Clock() (ClockDrawing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock == nil {
		return ClockDrawing{}, false
	}
	return *s.clock, true
}

// Next moves to the step right after the current one once its check passes.
// Entering the memory step deals the game if it was not dealt yet.
func (s *Session) Next(to Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !to.Valid() || to != s.step+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStep, s.step, to)
	}
	if check := s.checks[s.step]; check != nil {
		if err := check(s); err != nil {
			return err
		}
	}

	s.step = to
	if to == StepMemory && !s.game.Started() {
		s.game.Start()
	}
	return nil
}

// Game returns the memory game owned by the session.
func (s *Session) Game() *memorygame.Engine {
	return s.game
}

// Finish returns the scoring input for a session whose game is complete and
// freezes the game. Only the first successful call wins; later calls get
// ErrSessionFinished.
func (s *Session) Finish(referenceDay string) (scoring.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepMemory {
		return scoring.Input{}, fmt.Errorf("%w: finish from %s", ErrInvalidStep, s.step)
	}
	snap := s.game.Snapshot()
	if !snap.Finished() {
		return scoring.Input{}, ErrGameNotFinished
	}
	if s.finished {
		return scoring.Input{}, ErrSessionFinished
	}
	s.finished = true

	return scoring.Input{
		Answers:      s.copyAnswers(),
		ReferenceDay: referenceDay,
		ClockUpload:  s.clock != nil,
		MatchedPairs: snap.MatchedPairs,
		Moves:        snap.Moves,
	}, nil
}

// RestartGame redeals the memory game unless the session was finished.
func (s *Session) RestartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepMemory {
		return fmt.Errorf("%w: restart from %s", ErrInvalidStep, s.step)
	}
	if s.finished {
		return ErrSessionFinished
	}
	s.game.Restart()
	return nil
}

// SetReport stores the report produced for this session.
func (s *Session) SetReport(r models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &r
}

// Report returns the stored report, if the session was finished.
func (s *Session) Report() (models.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return models.Report{}, false
	}
	return *s.report, true
}

// Touch records activity for idle eviction.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

// IdleSince returns the time of the last recorded activity.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Close releases the game's pending timer.
func (s *Session) Close() {
	s.game.Close()
}
