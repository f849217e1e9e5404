// Package table runs a game session: it owns the GameState, applies actions
// one at a time, drives bot seats after their thinking delay and folds human
// seats whose turn timer runs out.
package table

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/sanity-io/litter"

	"github.com/djacobfi/8bit-poker/internal/bot"
	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/internal/randutil"
)

var (
	// ErrHalted wraps the invariant violation that stopped the table.
	ErrHalted = errors.New("table: halted")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("table: closed")
)

// Config holds session timing.
type Config struct {
	TurnDuration time.Duration // human turn limit, zero for none
	HandDelay    time.Duration // pause before the next hand
	AutoNextHand bool
}

// Table is one game session. All methods are safe for concurrent use.
type Table struct {
	id     string
	cfg    Config
	clock  quartz.Clock
	rng    *rand.Rand
	logger *log.Logger

	mu     sync.Mutex
	state  *game.GameState
	chips  int // chips seated when the table opened
	raked  int
	timer  *quartz.Timer
	gen    uint64 // bumped on every transition; stale callbacks compare against it
	halted error
	closed bool
	subs   []Subscriber

	queue      []Event // awaiting delivery, in transition order
	delivering bool
}

// Option configures a Table.
type Option func(*Table)

// WithClock sets the clock used for timers and timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) {
		t.clock = clock
	}
}

// WithRNG sets the random source for bot decisions and thinking delays.
func WithRNG(rng *rand.Rand) Option {
	return func(t *Table) {
		t.rng = rng
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithSubscriber registers fn for events.
func WithSubscriber(fn Subscriber) Option {
	return func(t *Table) {
		t.subs = append(t.subs, fn)
	}
}

// New opens a table around state, which must not have a hand in progress.
// The game's own clock should be the same one passed with WithClock.
func New(id string, state *game.GameState, cfg Config, opts ...Option) (*Table, error) {
	if state.Phase == game.PhasePlaying {
		return nil, game.ErrHandInProgress
	}

	t := &Table{
		id:     id,
		cfg:    cfg,
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
		state:  state.Clone(),
		chips:  game.ChipTotal(state.Players),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng, _ = randutil.NewFromTime()
	}
	t.logger = t.logger.With("table", id)
	return t, nil
}

// ID returns the table id.
func (t *Table) ID() string { return t.id }

// Subscribe registers fn for future events.
func (t *Table) Subscribe(fn Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// State returns a snapshot of the current game state.
func (t *Table) State() *game.GameState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Halted returns the error that halted the table, or nil.
func (t *Table) Halted() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.halted
}

// Close stops all timers. Pending callbacks become no-ops.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimer()
	t.gen++
	t.closed = true
}

// StartHand deals the next hand.
func (t *Table) StartHand() error {
	t.mu.Lock()
	events, err := t.startHandLocked()
	t.enqueueLocked(events)
	t.mu.Unlock()
	t.deliver()
	return err
}

// Submit validates and applies an action for playerID. Validation failures
// leave the table untouched and are returned as *game.ValidationError.
func (t *Table) Submit(playerID string, typ game.ActionType, amount int) (game.Action, error) {
	t.mu.Lock()
	action, events, err := t.applyLocked(playerID, typ, amount, nil)
	t.enqueueLocked(events)
	t.mu.Unlock()
	t.deliver()
	return action, err
}

func (t *Table) usable() error {
	switch {
	case t.halted != nil:
		return t.halted
	case t.closed:
		return ErrClosed
	}
	return nil
}

func (t *Table) startHandLocked() ([]Event, error) {
	if err := t.usable(); err != nil {
		return nil, err
	}

	next, err := game.StartHand(t.state)
	if errors.Is(err, game.ErrInvariant) {
		return t.halt(err)
	}
	if err != nil {
		return nil, err
	}

	t.state = next
	t.logger.Info("hand started", "hand", next.ID, "number", next.HandNumber, "dealer", next.Players[next.DealerIndex].Name)
	events := []Event{t.event(EventHandStart)}
	return t.afterTransition(events)
}

func (t *Table) applyLocked(playerID string, typ game.ActionType, amount int, decision *bot.Decision) (game.Action, []Event, error) {
	if err := t.usable(); err != nil {
		return game.Action{}, nil, err
	}

	prev := t.state
	next, action, err := game.SubmitAction(prev, playerID, typ, amount)
	if errors.Is(err, game.ErrInvariant) {
		events, herr := t.halt(err)
		return game.Action{}, events, herr
	}
	if err != nil {
		return game.Action{}, nil, err
	}

	t.state = next
	t.logger.Debug("action", "player", playerID, "action", action, "round", action.Round)

	ev := t.event(EventPlayerAction)
	ev.Action = &action
	ev.Decision = decision
	events := []Event{ev}
	if len(next.Community) != len(prev.Community) {
		events = append(events, t.event(EventStreetChange))
	}
	events, err = t.afterTransition(events)
	return action, events, err
}

// afterTransition settles the books if the hand ended and schedules
// whatever comes next.
func (t *Table) afterTransition(events []Event) ([]Event, error) {
	s := t.state
	if s.Phase == game.PhaseFinished {
		t.raked += s.Rake
		if got := game.ChipTotal(s.Players) + t.raked; got != t.chips {
			more, err := t.halt(fmt.Errorf("%w: table holds %d chips, expected %d", game.ErrInvariant, got, t.chips))
			return append(events, more...), err
		}
		for _, w := range game.ConsolidateWinners(s.Winners) {
			t.logger.Info("pot won", "hand", s.ID, "player", w.PlayerID, "amount", w.Amount)
		}
		events = append(events, t.event(EventHandEnd))
	}

	if err := t.schedule(); err != nil {
		more, err := t.halt(err)
		return append(events, more...), err
	}
	return events, nil
}

// schedule replaces the pending timer with the one the new state needs.
func (t *Table) schedule() error {
	t.stopTimer()
	t.gen++
	gen := t.gen
	s := t.state

	switch s.Phase {
	case game.PhaseFinished:
		if t.cfg.AutoNextHand && Funded(s) >= 2 {
			t.timer = t.clock.AfterFunc(t.cfg.HandDelay, func() {
				t.fire(gen, t.startHandLocked)
			}, "table", "next_hand")
		}

	case game.PhasePlaying:
		p := s.Current()
		if p == nil {
			return fmt.Errorf("%w: no player to act", game.ErrInvariant)
		}
		if p.IsBot() {
			d, err := bot.Decide(p, s, t.rng)
			if err != nil {
				return fmt.Errorf("%w: %w", game.ErrInvariant, err)
			}
			delay := bot.ReactionTime(*p.Bot, t.rng)
			id := p.ID
			t.timer = t.clock.AfterFunc(delay, func() {
				t.fire(gen, func() ([]Event, error) { return t.botActLocked(id, d) })
			}, "table", "bot")
			return nil
		}
		if t.cfg.TurnDuration > 0 {
			id := p.ID
			t.timer = t.clock.AfterFunc(t.cfg.TurnDuration, func() {
				t.fire(gen, func() ([]Event, error) { return t.timeoutLocked(id) })
			}, "table", "turn")
		}
	}
	return nil
}

// fire runs a timer callback unless the state moved on since it was set.
func (t *Table) fire(gen uint64, fn func() ([]Event, error)) {
	t.mu.Lock()
	if gen != t.gen || t.usable() != nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	events, err := fn()
	t.enqueueLocked(events)
	t.mu.Unlock()

	if err != nil && !errors.Is(err, ErrHalted) {
		t.logger.Warn("scheduled step failed", "error", err)
	}
	t.deliver()
}

func (t *Table) botActLocked(id string, d bot.Decision) ([]Event, error) {
	_, events, err := t.applyLocked(id, d.Action, d.Amount, &d)
	if _, ok := game.AsValidationError(err); ok {
		t.logger.Error("bot decision rejected, folding", "player", id, "decision", d, "error", err)
		_, events, err = t.applyLocked(id, game.Fold, 0, nil)
	}
	return events, err
}

func (t *Table) timeoutLocked(id string) ([]Event, error) {
	t.logger.Info("turn timed out", "player", id)
	ev := t.event(EventTurnTimeout)
	ev.PlayerID = id
	_, events, err := t.applyLocked(id, game.Fold, 0, nil)
	return append([]Event{ev}, events...), err
}

func (t *Table) halt(cause error) ([]Event, error) {
	t.stopTimer()
	t.gen++
	t.halted = fmt.Errorf("%w: %w", ErrHalted, cause)

	dump := litter.Options{HidePrivateFields: true}
	t.logger.Error("table halted", "error", cause, "state", dump.Sdump(t.state))

	ev := t.event(EventHalted)
	ev.Err = t.halted
	return []Event{ev}, t.halted
}

func (t *Table) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Table) event(typ EventType) Event {
	return Event{
		Type:    typ,
		TableID: t.id,
		HandID:  t.state.ID,
		Time:    t.clock.Now(),
		State:   t.state.Clone(),
	}
}

func (t *Table) enqueueLocked(events []Event) {
	t.queue = append(t.queue, events...)
}

// deliver hands queued events to subscribers. Only one goroutine delivers at
// a time, so subscribers see events in the order the transitions happened
// even when timers fire concurrently. A subscriber may call back into the
// table; its events are delivered after the current batch.
func (t *Table) deliver() {
	t.mu.Lock()
	if t.delivering {
		t.mu.Unlock()
		return
	}
	t.delivering = true
	for len(t.queue) > 0 {
		batch := t.queue
		t.queue = nil
		subs := append([]Subscriber(nil), t.subs...)
		t.mu.Unlock()

		for _, e := range batch {
			for _, fn := range subs {
				fn(e)
			}
		}
		t.mu.Lock()
	}
	t.delivering = false
	t.mu.Unlock()
}

// Funded counts the players who could be dealt into another hand.
func Funded(s *game.GameState) int {
	n := 0
	for _, p := range s.Players {
		if p.Chips > 0 {
			n++
		}
	}
	return n
}
