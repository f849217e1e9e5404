package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djacobfi/8bit-poker/internal/handid"
	"github.com/djacobfi/8bit-poker/poker"
)

func TestCreateGameValidation(t *testing.T) {
	t.Parallel()

	human := func(id string, chips int) *Player { return NewHuman(id, id, chips) }

	tests := []struct {
		name    string
		players []*Player
		bb      int
		opts    []GameOption
	}{
		{"one player", []*Player{human("a", 100)}, 10, nil},
		{"zero big blind", []*Player{human("a", 100), human("b", 100)}, 0, nil},
		{"duplicate ids", []*Player{human("a", 100), human("a", 100)}, 10, nil},
		{"empty id", []*Player{human("", 100), human("b", 100)}, 10, nil},
		{"negative chips", []*Player{human("a", -1), human("b", 100)}, 10, nil},
		{"small blind above big", []*Player{human("a", 100), human("b", 100)}, 10, []GameOption{WithSmallBlind(20)}},
		{"dealer out of range", []*Player{human("a", 100), human("b", 100)}, 10, []GameOption{WithDealer(2)}},
		{"bot without profile", []*Player{{ID: "a", Kind: Bot, Chips: 100}, human("b", 100)}, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateGame(tt.players, tt.bb, tt.opts...)
			require.ErrorIs(t, err, ErrInvalidGame)
		})
	}
}

func TestCreateGameCopiesPlayers(t *testing.T) {
	t.Parallel()

	players := []*Player{NewHuman("a", "A", 100), NewHuman("b", "B", 100)}
	g, err := CreateGame(players, 10)
	require.NoError(t, err)

	assert.Equal(t, PhaseWaiting, g.Phase)
	assert.Equal(t, 5, g.SmallBlind)
	assert.Equal(t, -1, g.CurrentPlayer)

	g.Players[0].Chips = 1
	assert.Equal(t, 100, players[0].Chips)
}

func TestStartHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()

	g := newGame(t, []int{1000, 1000, 1000})
	s := start(t, g)

	assert.Equal(t, PhaseWaiting, g.Phase, "input state must not change")
	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Equal(t, PreFlop, s.Round)
	assert.Equal(t, 1, s.HandNumber)
	require.NoError(t, handid.Validate(s.ID))

	assert.Equal(t, 0, s.DealerIndex)
	assert.True(t, s.Players[0].IsDealer)
	assert.Equal(t, 1, s.SmallBlindIndex)
	assert.Equal(t, 2, s.BigBlindIndex)
	assert.Equal(t, []int{1000, 995, 990}, chipsOf(s))
	assert.Equal(t, 5, s.Players[1].Bet)
	assert.Equal(t, 10, s.Players[2].Bet)
	assert.Equal(t, 10, s.CurrentBet)
	assert.Equal(t, 10, s.MinRaise)
	assert.Equal(t, 0, s.CurrentPlayer, "first to act is the seat after the big blind")

	seen := make(map[poker.Card]bool)
	for _, p := range s.Players {
		require.Len(t, p.HoleCards, 2)
		for _, c := range p.HoleCards {
			assert.False(t, seen[c])
			seen[c] = true
		}
	}
	assert.Equal(t, poker.DeckSize-6, s.deck.Remaining())
	assert.Empty(t, s.Community)

	_, err := StartHand(s)
	require.ErrorIs(t, err, ErrHandInProgress)
}

func TestHeadsUpDealerPostsSmallBlindAndActsFirst(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000}))
	assert.Equal(t, 0, s.DealerIndex)
	assert.Equal(t, 0, s.SmallBlindIndex)
	assert.Equal(t, 1, s.BigBlindIndex)
	assert.Equal(t, 0, s.CurrentPlayer)

	s = act(t, s, "p0", Call, 0)
	assert.Equal(t, 1, s.CurrentPlayer, "big blind has the option")
	s = act(t, s, "p1", Check, 0)

	assert.Equal(t, Flop, s.Round)
	assert.Len(t, s.Community, 3)
	assert.Equal(t, 1, s.CurrentPlayer, "big blind acts first after the flop")
	assert.Equal(t, 0, s.CurrentBet)
	assert.Equal(t, 10, s.MinRaise)
	require.Len(t, s.Pots, 1)
	assert.Equal(t, 20, s.Pots[0].Amount)
}

func TestBigBlindOption(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000, 1000}))
	s = act(t, s, "p0", Call, 0)
	s = act(t, s, "p1", Call, 0)

	require.Equal(t, 2, s.CurrentPlayer)
	assert.Equal(t, PreFlop, s.Round)

	types := make(map[ActionType]ValidAction)
	for _, va := range ValidActions(s) {
		types[va.Type] = va
	}
	assert.Contains(t, types, Check)
	assert.Contains(t, types, Raise)
	assert.Equal(t, 20, types[Raise].Min)
	assert.NotContains(t, types, Call)

	s = act(t, s, "p2", Raise, 30)
	assert.Equal(t, 0, s.CurrentPlayer, "a raise reopens the action")
	s = act(t, s, "p0", Call, 0)
	s = act(t, s, "p1", Call, 0)

	assert.Equal(t, Flop, s.Round)
	assert.Equal(t, 90, TotalPot(s.Pots))
	assert.Equal(t, 1, s.CurrentPlayer, "first active seat left of the button")
}

func TestFullStreetProgression(t *testing.T) {
	t.Parallel()

	deck := riggedDeck(0, []string{"AsAh", "KsKh", "2c7d"}, "Ad 9c 4h Jc 3s")
	s := start(t, newGame(t, []int{1000, 1000, 1000}, WithDeck(deck)))

	s = act(t, s, "p0", Call, 0)
	s = act(t, s, "p1", Call, 0)
	s = act(t, s, "p2", Check, 0)
	require.Equal(t, Flop, s.Round)
	assert.Equal(t, poker.MustParseCards("Ad 9c 4h"), s.Community)

	for _, round := range []Round{Flop, Turn, River} {
		require.Equal(t, round, s.Round)
		s = act(t, s, "p1", Check, 0)
		s = act(t, s, "p2", Check, 0)
		s = act(t, s, "p0", Check, 0)
	}

	assert.Equal(t, Showdown, s.Round)
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, -1, s.CurrentPlayer)
	assert.Len(t, s.Community, 5)
	require.Len(t, s.Winners, 1)
	assert.Equal(t, "p0", s.Winners[0].PlayerID)
	assert.Equal(t, 30, s.Winners[0].Amount)
	require.NotNil(t, s.Winners[0].Hand)
	assert.Equal(t, poker.ThreeOfAKind, s.Winners[0].Hand.Type)
	assert.Equal(t, []int{1020, 990, 990}, chipsOf(s))
	require.NoError(t, s.CheckConservation(3000))
}

func TestFoldToWinEndsHandImmediately(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000, 1000}))
	s = act(t, s, "p0", Fold, 0)
	s = act(t, s, "p1", Fold, 0)

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, -1, s.CurrentPlayer)
	assert.Len(t, s.Community, 5, "board is dealt for the record")
	assert.Equal(t, Refund{PlayerID: "p2", Amount: 5}, s.Refund)
	require.Len(t, s.Winners, 1)
	assert.Equal(t, WinnerInfo{PlayerID: "p2", PotIndex: 0, Amount: 10}, s.Winners[0])
	assert.Equal(t, []int{1000, 995, 1005}, chipsOf(s))
	require.NoError(t, s.CheckConservation(3000))

	_, _, err := SubmitAction(s, "p2", Check, 0)
	requireRule(t, err, RuleHandNotInProgress)
}

func TestDealerRotates(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000, 1000}))
	firstID := s.ID
	s = act(t, s, "p0", Fold, 0)
	s = act(t, s, "p1", Fold, 0)

	s = start(t, s)
	assert.Equal(t, 2, s.HandNumber)
	assert.NotEqual(t, firstID, s.ID)
	assert.Equal(t, 1, s.DealerIndex)
	assert.Equal(t, 2, s.SmallBlindIndex)
	assert.Equal(t, 0, s.BigBlindIndex)
	assert.Equal(t, 1, s.CurrentPlayer)
	assert.False(t, s.Players[0].IsDealer)
	assert.True(t, s.Players[1].IsDealer)
	for _, p := range s.Players {
		assert.Empty(t, p.History, "history starts fresh each hand")
	}
}

func TestWithDealer(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000, 1000}, WithDealer(2)))
	assert.Equal(t, 2, s.DealerIndex)
	assert.Equal(t, 0, s.SmallBlindIndex)
	assert.Equal(t, 1, s.BigBlindIndex)
}

func TestBrokePlayersSitOut(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{0, 1000, 1000}))
	assert.Equal(t, StatusSittingOut, s.Players[0].Status)
	assert.Empty(t, s.Players[0].HoleCards)
	assert.Equal(t, 1, s.DealerIndex)
	assert.Equal(t, 1, s.SmallBlindIndex, "heads-up between the funded seats")
	assert.Equal(t, 2, s.BigBlindIndex)

	_, _, err := SubmitAction(s, "p0", Fold, 0)
	requireRule(t, err, RulePlayerSittingOut)

	_, err = StartHand(newGame(t, []int{0, 0, 1000}))
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestBustedPlayerCannotStartNextHand(t *testing.T) {
	t.Parallel()

	deck := riggedDeck(0, []string{"AsAh", "7c2d"}, "Kd 9c 4h Jc 3s")
	s := start(t, newGame(t, []int{500, 500}, WithDeck(deck)))
	s = act(t, s, "p0", AllIn, 0)
	s = act(t, s, "p1", Call, 0)

	require.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, []int{1000, 0}, chipsOf(s))

	_, err := StartHand(s)
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestAllInRunsOutBoard(t *testing.T) {
	t.Parallel()

	deck := riggedDeck(0, []string{"AsAh", "KsKh", "QsQh"}, "2c 7d 9h Jc 3s")
	s := start(t, newGame(t, []int{50, 100, 200}, WithDeck(deck)))

	s = act(t, s, "p0", AllIn, 0)
	s = act(t, s, "p1", AllIn, 0)
	s = act(t, s, "p2", AllIn, 0)

	require.Equal(t, PhaseFinished, s.Phase)
	assert.Len(t, s.Community, 5)
	require.Len(t, s.Pots, 2)
	assert.Equal(t, 150, s.Pots[0].Amount)
	assert.Equal(t, 100, s.Pots[1].Amount)
	assert.Equal(t, Refund{PlayerID: "p2", Amount: 100}, s.Refund)
	assert.Equal(t, []int{150, 100, 100}, chipsOf(s))
	require.NoError(t, s.CheckConservation(350))
}

func TestBlindAllInSkipsBetting(t *testing.T) {
	t.Parallel()

	// The small blind cannot cover its blind, leaving one player who can bet.
	s := start(t, newGame(t, []int{3, 1000}))
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Len(t, s.Community, 5)
	require.NoError(t, s.CheckConservation(1003))
}

func TestShortBigBlindStillSetsCallAmount(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000, 4}))
	assert.Equal(t, StatusAllIn, s.Players[2].Status)
	assert.Equal(t, 10, s.CurrentBet)

	s = act(t, s, "p0", Call, 0)
	assert.Equal(t, 10, s.Players[0].Bet)
	s = act(t, s, "p1", Call, 0)
	assert.Equal(t, Flop, s.Round)
	require.NoError(t, s.CheckConservation(2004))
}

func TestShortBigBlindHeadsUpCallsOnlyTheLiveBet(t *testing.T) {
	t.Parallel()

	// The big blind is all-in for 4 and the small blind's 5 already covers it.
	s := start(t, newGame(t, []int{1000, 4}))
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Empty(t, s.Players[0].History, "small blind is never asked to add chips")
	assert.Len(t, s.Community, 5)
	assert.Equal(t, Refund{PlayerID: "p0", Amount: 1}, s.Refund)
	require.NoError(t, s.CheckConservation(1004))
}

func TestSubmitActionLeavesInputUntouched(t *testing.T) {
	t.Parallel()

	s := start(t, newGame(t, []int{1000, 1000, 1000}))
	before := s.Clone()

	next := act(t, s, "p0", Raise, 40)
	assert.Equal(t, before, s)
	assert.NotEqual(t, s.CurrentBet, next.CurrentBet)

	_, _, err := SubmitAction(s, "p0", Raise, 15)
	require.Error(t, err)
	assert.Equal(t, before, s)
}

func TestActionsAreRecorded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := quartz.NewMock(t)
	s := start(t, newGame(t, []int{1000, 1000, 1000}, WithClock(clock)))

	clock.Advance(3 * time.Second).MustWait(ctx)
	s, action, err := SubmitAction(s, "p0", Raise, 30)
	require.NoError(t, err)

	assert.Equal(t, Action{
		PlayerID:  "p0",
		Type:      Raise,
		Amount:    30,
		To:        30,
		Timestamp: clock.Now(),
		Round:     PreFlop,
	}, action)
	assert.Equal(t, []Action{action}, s.Players[0].History)
	assert.Equal(t, clock.Now(), s.LastActionAt)
	assert.Equal(t, "raise to 30", action.String())
}

func TestDeckExhaustionIsAnInvariantViolation(t *testing.T) {
	t.Parallel()

	short := poker.NewDeckFromCards(poker.MustParseCards("As Ks Qs"))
	_, err := StartHand(newGame(t, []int{1000, 1000}, WithDeck(short)))
	require.ErrorIs(t, err, ErrInvariant)
	require.ErrorIs(t, err, poker.ErrDeckExhausted)

	// Enough for hole cards and the flop only.
	flopOnly := poker.NewDeckFromCards(poker.MustParseCards("As Ks Qs Js Ts 9s 8s"))
	s := start(t, newGame(t, []int{1000, 1000}, WithDeck(flopOnly)))
	s = act(t, s, "p0", Call, 0)
	s = act(t, s, "p1", Check, 0)
	require.Equal(t, Flop, s.Round)

	// After the flop the big blind acts first; the button's check needs the turn.
	s = act(t, s, "p1", Check, 0)
	_, _, err = SubmitAction(s, "p0", Check, 0)
	require.ErrorIs(t, err, ErrInvariant)
	require.ErrorIs(t, err, poker.ErrDeckExhausted)
}
