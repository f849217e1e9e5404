package game

import (
	"fmt"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/djacobfi/8bit-poker/internal/handid"
	"github.com/djacobfi/8bit-poker/internal/randutil"
	"github.com/djacobfi/8bit-poker/poker"
)

func newGame(t *testing.T, chips []int, opts ...GameOption) *GameState {
	t.Helper()
	players := make([]*Player, len(chips))
	for i, c := range chips {
		players[i] = NewHuman(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), c)
	}
	clock := quartz.NewMock(t)
	base := []GameOption{
		WithClock(clock),
		WithRNG(randutil.New(1)),
		WithHandIDs(handid.NewGenerator(clock, randutil.Reader(randutil.New(2)))),
	}
	g, err := CreateGame(players, 10, append(base, opts...)...)
	require.NoError(t, err)
	return g
}

func start(t *testing.T, g *GameState) *GameState {
	t.Helper()
	s, err := StartHand(g)
	require.NoError(t, err)
	return s
}

func act(t *testing.T, s *GameState, id string, typ ActionType, amount int) *GameState {
	t.Helper()
	next, _, err := SubmitAction(s, id, typ, amount)
	require.NoError(t, err, "%s %s %d", id, typ, amount)
	return next
}

func requireRule(t *testing.T, err error, rule Rule) {
	t.Helper()
	verr, ok := AsValidationError(err)
	require.True(t, ok, "expected validation error %s, got %v", rule, err)
	require.Equal(t, rule, verr.Rule)
}

// riggedDeck orders a deck so that seat i receives holes[i] and the board
// comes out as given, assuming every seat is dealt in.
func riggedDeck(dealer int, holes []string, board string) *poker.Deck {
	n := len(holes)
	hands := make([][]poker.Card, n)
	for i, h := range holes {
		hands[i] = poker.MustParseCards(h)
	}

	var order []poker.Card
	for pass := 0; pass < 2; pass++ {
		for k := 1; k <= n; k++ {
			order = append(order, hands[(dealer+k)%n][pass])
		}
	}
	order = append(order, poker.MustParseCards(board)...)

	used := make(map[poker.Card]bool, len(order))
	for _, c := range order {
		used[c] = true
	}
	for _, c := range poker.NewDeck().Cards() {
		if !used[c] {
			order = append(order, c)
		}
	}
	return poker.NewDeckFromCards(order)
}

func chipsOf(s *GameState) []int {
	out := make([]int, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.Chips
	}
	return out
}
