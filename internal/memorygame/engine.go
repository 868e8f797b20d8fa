// Package memorygame implements the symbol-pair matching game used as the
// attention and working-memory stage of the screening.
package memorygame

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultSymbols are the six glyphs placed on the board, each twice.
var DefaultSymbols = []string{"🍏", "🧠", "🕰️", "💡", "🔑", "📚"}

// DefaultRevealDelay is how long a mismatched pair stays face-up.
const DefaultRevealDelay = 800 * time.Millisecond

var ErrInvalidIndex = errors.New("card index out of range")

type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeRevealed   Outcome = "revealed"
	OutcomeMatched    Outcome = "matched"
	OutcomeMismatched Outcome = "mismatched"
)

type Card struct {
	Symbol   string `json:"symbol"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
}

// Snapshot is a copy of the game state at one instant.
type Snapshot struct {
	Cards          []Card `json:"cards"`
	Moves          int    `json:"moves"`
	MatchedPairs   int    `json:"matched_pairs"`
	TotalPairs     int    `json:"total_pairs"`
	FirstSelection *int   `json:"first_selection,omitempty"`
	Locked         bool   `json:"locked"`
	Status         Status `json:"status"`
}

// Finished reports whether every pair has been matched.
func (s Snapshot) Finished() bool {
	return s.Status == StatusComplete
}

// Stopper cancels a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d without blocking the caller.
type Scheduler func(d time.Duration, f func()) Stopper

func timerScheduler(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

type Option func(*Engine)

// WithDelay sets how long a mismatched pair stays revealed. Non-positive values are ignored.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.delay = d
		}
	}
}

// WithRand sets the random source used to shuffle the deck.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithScheduler replaces time.AfterFunc for the deferred mismatch hide.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.schedule = s
		}
	}
}

// Engine is one game instance. It is safe for concurrent use; the deferred
// mismatch hide runs on its own goroutine and is tied to the epoch it was
// scheduled in.
type Engine struct {
	mu       sync.Mutex
	symbols  []string
	delay    time.Duration
	rng      *rand.Rand
	schedule Scheduler

	cards   []Card
	moves   int
	matched int
	first   int
	locked  bool
	started bool

	epoch   uint64
	pending Stopper
	hiding  [2]int
}

func New(opts ...Option) *Engine {
	e := &Engine{
		symbols:  DefaultSymbols,
		delay:    DefaultRevealDelay,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		schedule: timerScheduler,
		first:    -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start deals a fresh shuffled deck and resets all counters.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// Restart has the same effect as Start and may be called in any state.
func (e *Engine) Restart() {
	e.Start()
}

func (e *Engine) reset() {
	e.epoch++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}

	cards := make([]Card, 0, len(e.symbols)*2)
	for _, s := range e.symbols {
		cards = append(cards, Card{Symbol: s}, Card{Symbol: s})
	}
	// Fisher-Yates
	e.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	e.cards = cards
	e.moves = 0
	e.matched = 0
	e.first = -1
	e.locked = false
	e.started = true
}

// Started reports whether a deck has been dealt.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// SelectCard flips the card at index. A mismatch locks the board and the
// pair is hidden again after the reveal delay, so the state returned here
// may still change once SelectCard has returned.
func (e *Engine) SelectCard(index int) (Outcome, Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.cards) {
		return OutcomeIgnored, e.snapshot(), fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	card := &e.cards[index]
	if e.locked || card.Matched || index == e.first || e.complete() {
		return OutcomeIgnored, e.snapshot(), nil
	}

	card.Revealed = true
	if e.first < 0 {
		e.first = index
		return OutcomeRevealed, e.snapshot(), nil
	}

	e.moves++
	first := &e.cards[e.first]
	if first.Symbol == card.Symbol {
		first.Matched = true
		card.Matched = true
		e.matched++
		e.first = -1
		return OutcomeMatched, e.snapshot(), nil
	}

	e.locked = true
	a, b, epoch := e.first, index, e.epoch
	e.hiding = [2]int{a, b}
	e.pending = e.schedule(e.delay, func() {
		e.hidePair(epoch, a, b)
	})
	return OutcomeMismatched, e.snapshot(), nil
}

func (e *Engine) hidePair(epoch uint64, a, b int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch {
		return
	}
	e.hide(a, b)
}

func (e *Engine) hide(a, b int) {
	e.cards[a].Revealed = false
	e.cards[b].Revealed = false
	e.first = -1
	e.locked = false
	e.pending = nil
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Cards:        append([]Card(nil), e.cards...),
		Moves:        e.moves,
		MatchedPairs: e.matched,
		TotalPairs:   len(e.symbols),
		Locked:       e.locked,
		Status:       e.status(),
	}
	if e.first >= 0 {
		first := e.first
		s.FirstSelection = &first
	}
	return s
}

func (e *Engine) status() Status {
	switch {
	case !e.started:
		return StatusIdle
	case e.complete():
		return StatusComplete
	default:
		return StatusInProgress
	}
}

func (e *Engine) complete() bool {
	return e.started && e.matched == len(e.symbols)
}

// Close cancels a pending mismatch hide and applies it at once, so the board
// is left unlocked.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	if e.pending != nil {
		e.pending.Stop()
	}
	if e.locked {
		e.hide(e.hiding[0], e.hiding[1])
	}
	e.pending = nil
}
