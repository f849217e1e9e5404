package table

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djacobfi/8bit-poker/internal/bot"
	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/internal/randutil"
	"github.com/djacobfi/8bit-poker/poker"
)

// recorder collects events in order.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *recorder) count(typ EventType) int {
	n := 0
	for _, got := range r.types() {
		if got == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i], true
		}
	}
	return Event{}, false
}

var quickBot = game.BotProfile{
	Difficulty:  game.Intermediate,
	Personality: game.Personality{Aggression: 0.5, BluffFrequency: 0.1, FoldTightness: 0.4},
	ReactionMin: 2 * time.Second,
	ReactionMax: 2 * time.Second,
}

type fixture struct {
	table *Table
	clock *quartz.Mock
	rec   *recorder
}

// newTable seats players described as "h" (human) or "b" (bot), each with
// 1000 chips, dealer at seat 0.
func newTable(t *testing.T, seats string, cfg Config, gameOpts ...game.GameOption) *fixture {
	t.Helper()
	clock := quartz.NewMock(t)

	players := make([]*game.Player, len(seats))
	for i, kind := range seats {
		id := fmt.Sprintf("%c%d", kind, i)
		if kind == 'b' {
			players[i] = game.NewBot(id, "Bot "+id, 1000, quickBot)
		} else {
			players[i] = game.NewHuman(id, "Human "+id, 1000)
		}
	}
	opts := append([]game.GameOption{game.WithClock(clock), game.WithRNG(randutil.New(1)), game.WithDealer(0)}, gameOpts...)
	g, err := game.CreateGame(players, 10, opts...)
	require.NoError(t, err)

	rec := &recorder{}
	tbl, err := New("t1", g, cfg,
		WithClock(clock),
		WithRNG(randutil.New(2)),
		WithLogger(log.New(io.Discard)),
		WithSubscriber(rec.record),
	)
	require.NoError(t, err)
	t.Cleanup(tbl.Close)
	return &fixture{table: tbl, clock: clock, rec: rec}
}

func (f *fixture) advanceNext(t *testing.T) time.Duration {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, w := f.clock.AdvanceNext()
	w.MustWait(ctx)
	return d
}

func (f *fixture) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f.clock.Advance(d).MustWait(ctx)
}

func TestTurnTimeoutFoldsHuman(t *testing.T) {
	t.Parallel()

	f := newTable(t, "hh", Config{TurnDuration: 20 * time.Second})
	require.NoError(t, f.table.StartHand())
	assert.Equal(t, "h0", f.table.State().Current().ID)

	assert.Equal(t, 20*time.Second, f.advanceNext(t))

	s := f.table.State()
	assert.Equal(t, game.PhaseFinished, s.Phase)
	assert.Equal(t, game.StatusFolded, s.PlayerByID("h0").Status)
	assert.Equal(t, 995, s.PlayerByID("h0").Chips)
	assert.Equal(t, 1005, s.PlayerByID("h1").Chips)

	// The rest of the board is dealt for the record before the pot is paid.
	assert.Equal(t, []EventType{EventHandStart, EventTurnTimeout, EventPlayerAction, EventStreetChange, EventHandEnd}, f.rec.types())
	ev, _ := f.rec.last(EventTurnTimeout)
	assert.Equal(t, "h0", ev.PlayerID)
}

func TestActionResetsTurnTimer(t *testing.T) {
	t.Parallel()

	f := newTable(t, "hh", Config{TurnDuration: 20 * time.Second})
	require.NoError(t, f.table.StartHand())

	f.advance(t, 15*time.Second)
	_, err := f.table.Submit("h0", game.Call, 0)
	require.NoError(t, err)

	// h1 gets a full turn, not what was left of h0's.
	assert.Equal(t, 20*time.Second, f.advanceNext(t))
	s := f.table.State()
	assert.Equal(t, game.StatusFolded, s.PlayerByID("h1").Status)
	assert.Equal(t, 1010, s.PlayerByID("h0").Chips)
	assert.Equal(t, 1, f.rec.count(EventTurnTimeout))
}

func TestBotActsAfterThinkingDelay(t *testing.T) {
	t.Parallel()

	f := newTable(t, "bh", Config{TurnDuration: 20 * time.Second})
	require.NoError(t, f.table.StartHand())
	require.Equal(t, "b0", f.table.State().Current().ID)
	assert.Empty(t, f.table.State().PlayerByID("b0").History, "decision is not applied before the delay")

	assert.Equal(t, 2*time.Second, f.advanceNext(t))

	s := f.table.State()
	require.Len(t, s.PlayerByID("b0").History, 1)
	ev, ok := f.rec.last(EventPlayerAction)
	require.True(t, ok)
	assert.Equal(t, "b0", ev.Action.PlayerID)
	require.NotNil(t, ev.Decision)
	assert.Equal(t, ev.Decision.Action, ev.Action.Type)
	assert.NotEmpty(t, ev.Decision.Reasoning)
}

func TestStaleBotActionIsCancelled(t *testing.T) {
	t.Parallel()

	f := newTable(t, "bh", Config{TurnDuration: 20 * time.Second})
	require.NoError(t, f.table.StartHand())

	// The state changes before the bot's timer fires.
	_, err := f.table.Submit("b0", game.Call, 0)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, f.advanceNext(t), "only the human's turn timer is pending")
	s := f.table.State()
	assert.Len(t, s.PlayerByID("b0").History, 1)
	assert.Equal(t, game.PhaseFinished, s.Phase)
}

func TestInvalidActionLeavesStateAlone(t *testing.T) {
	t.Parallel()

	f := newTable(t, "hhh", Config{})
	require.NoError(t, f.table.StartHand())
	before := f.table.State()

	_, err := f.table.Submit("h1", game.Call, 0)
	require.ErrorIs(t, err, game.ErrNotYourTurn)

	_, err = f.table.Submit("h0", game.Check, 0)
	verr, ok := game.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, game.RuleCannotCheck, verr.Rule)

	_, err = f.table.Submit("nobody", game.Fold, 0)
	require.ErrorIs(t, err, game.ErrUnknownPlayer)

	assert.Equal(t, before, f.table.State())
	assert.Equal(t, []EventType{EventHandStart}, f.rec.types())
}

func TestStreetChangeEvents(t *testing.T) {
	t.Parallel()

	f := newTable(t, "hh", Config{})
	require.NoError(t, f.table.StartHand())

	_, err := f.table.Submit("h0", game.Call, 0)
	require.NoError(t, err)
	_, err = f.table.Submit("h1", game.Check, 0)
	require.NoError(t, err)

	ev, ok := f.rec.last(EventStreetChange)
	require.True(t, ok)
	assert.Equal(t, game.Flop, ev.State.Round)
	assert.Len(t, ev.State.Community, 3)
}

func TestAutoNextHand(t *testing.T) {
	t.Parallel()

	f := newTable(t, "hh", Config{TurnDuration: 20 * time.Second, HandDelay: 10 * time.Second, AutoNextHand: true})
	require.NoError(t, f.table.StartHand())

	_, err := f.table.Submit("h0", game.Fold, 0)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, f.advanceNext(t))
	s := f.table.State()
	assert.Equal(t, 2, s.HandNumber)
	assert.Equal(t, game.PhasePlaying, s.Phase)
	assert.Equal(t, 2, f.rec.count(EventHandStart))
}

func TestBotTableConservesChips(t *testing.T) {
	t.Parallel()

	f := newTable(t, "bbbb", Config{HandDelay: time.Second, AutoNextHand: true}, game.WithRake(game.PercentRake(5, 1, 20)))
	require.NoError(t, f.table.StartHand())

	for steps := 0; f.rec.count(EventHandEnd) < 10; steps++ {
		require.Less(t, steps, 5000)
		s := f.table.State()
		if s.Phase == game.PhaseFinished && Funded(s) < 2 {
			break
		}
		f.advanceNext(t)
	}
	require.NoError(t, f.table.Halted())

	s := f.table.State()
	total := game.ChipTotal(s.Players)
	for _, e := range f.rec.events {
		if e.Type == EventHandEnd {
			total += e.State.Rake
		}
	}
	assert.Equal(t, 4000, total)
}

func TestDeckExhaustionHaltsTable(t *testing.T) {
	t.Parallel()

	short := poker.NewDeckFromCards(poker.MustParseCards("As Kd Qh Jc"))
	f := newTable(t, "hh", Config{TurnDuration: 20 * time.Second}, game.WithDeck(short))
	require.NoError(t, f.table.StartHand())

	_, err := f.table.Submit("h0", game.Call, 0)
	require.NoError(t, err)
	_, err = f.table.Submit("h1", game.Check, 0)
	require.ErrorIs(t, err, ErrHalted)
	require.ErrorIs(t, err, game.ErrInvariant)
	require.ErrorIs(t, err, poker.ErrDeckExhausted)

	require.ErrorIs(t, f.table.Halted(), ErrHalted)
	_, err = f.table.Submit("h1", game.Fold, 0)
	require.ErrorIs(t, err, ErrHalted)
	require.ErrorIs(t, f.table.StartHand(), ErrHalted)

	ev, ok := f.rec.last(EventHalted)
	require.True(t, ok)
	assert.ErrorIs(t, ev.Err, ErrHalted)
}

func TestCloseCancelsTimers(t *testing.T) {
	t.Parallel()

	f := newTable(t, "bh", Config{TurnDuration: 20 * time.Second})
	require.NoError(t, f.table.StartHand())
	f.table.Close()

	f.advance(t, 2*time.Second)
	assert.Empty(t, f.table.State().PlayerByID("b0").History)

	_, err := f.table.Submit("b0", game.Fold, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestSubscriberMayCallBack(t *testing.T) {
	t.Parallel()

	f := newTable(t, "hh", Config{})
	var chips []int
	f.table.Subscribe(func(e Event) {
		if e.Type == EventHandEnd {
			chips = append(chips, game.ChipTotal(f.table.State().Players))
		}
	})
	require.NoError(t, f.table.StartHand())
	_, err := f.table.Submit("h0", game.Fold, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2000}, chips)
}

func TestNewRejectsHandInProgress(t *testing.T) {
	t.Parallel()

	g, err := game.CreateGame([]*game.Player{game.NewHuman("a", "A", 100), game.NewHuman("b", "B", 100)}, 10)
	require.NoError(t, err)
	s, err := game.StartHand(g)
	require.NoError(t, err)

	_, err = New("t", s, Config{})
	require.ErrorIs(t, err, game.ErrHandInProgress)
}

func TestEventsArriveInOrderWithoutDelays(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		events []Event
		done   = make(chan struct{})
	)
	record := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
		if e.Type == EventHandEnd && e.State.HandNumber == 20 {
			close(done)
		}
	}

	players := make([]*game.Player, 4)
	for i := range players {
		players[i] = game.NewBot(fmt.Sprintf("b%d", i), fmt.Sprintf("Bot %d", i), 100000, bot.Profile(game.Advanced))
		players[i].Bot.ReactionMin, players[i].Bot.ReactionMax = 0, 0
	}
	clock := quartz.NewReal()
	g, err := game.CreateGame(players, 10, game.WithClock(clock), game.WithRNG(randutil.New(4)))
	require.NoError(t, err)
	tbl, err := New("order", g, Config{AutoNextHand: true},
		WithClock(clock), WithRNG(randutil.New(5)), WithSubscriber(record))
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.StartHand())
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("hands did not finish")
	}
	tbl.Close()

	mu.Lock()
	defer mu.Unlock()
	hand := 0
	for _, e := range events {
		switch e.Type {
		case EventHandStart:
			require.Equal(t, hand+1, e.State.HandNumber, "hand_start out of order")
			hand = e.State.HandNumber
		default:
			require.Equal(t, hand, e.State.HandNumber, "%s delivered outside its hand", e.Type)
		}
	}
}
