package phh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/poker"
)

// ErrNoHand is returned when a hand event arrives before Start.
var ErrNoHand = errors.New("phh: no hand in progress")

// Builder turns the states a table passes through during one hand into a
// HandHistory. Feed it the state after each transition, in order.
type Builder struct {
	table string

	hand    *HandHistory
	seat    map[string]int // player id to PHH index
	ids     []string       // PHH index to player id
	dealt   int            // board cards already recorded
	lastBet int
}

// NewBuilder returns a builder for hands played at table.
func NewBuilder(table string) *Builder {
	return &Builder{table: table}
}

// Start records the deal. s is the state right after the hand started.
func (b *Builder) Start(s *game.GameState) {
	order := dealtOrder(s)
	n := len(order)
	h := &HandHistory{
		Variant:           Variant,
		Table:             b.table,
		SeatCount:         len(s.Players),
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            s.BigBlind,
		StartingStacks:    make([]int, n),
		Players:           make([]string, n),
		HandID:            s.ID,
		Timestamp:         s.StartedAt,
	}
	if !s.StartedAt.IsZero() {
		h.Time = s.StartedAt.Format("15:04:05")
		h.Day, h.Month, h.Year = s.StartedAt.Day(), int(s.StartedAt.Month()), s.StartedAt.Year()
	}

	b.seat = make(map[string]int, n)
	b.ids = make([]string, n)
	for i, idx := range order {
		p := s.Players[idx]
		b.seat[p.ID] = i
		b.ids[i] = p.ID
		h.Seats[i] = idx + 1
		h.Players[i] = p.Name
		h.StartingStacks[i] = p.Chips + p.TotalBet
		switch idx {
		case s.SmallBlindIndex, s.BigBlindIndex:
			h.BlindsOrStraddles[i] = p.TotalBet
		}
	}
	for i, idx := range order {
		h.Actions = append(h.Actions, fmt.Sprintf("d dh p%d %s", i+1, cards(s.Players[idx].HoleCards)))
	}

	b.hand = h
	b.dealt = 0
	b.lastBet = s.CurrentBet
	b.board(s)
}

// Action records a's move. s is the state after it was applied.
func (b *Builder) Action(s *game.GameState, a game.Action) error {
	if b.hand == nil {
		return ErrNoHand
	}
	i, ok := b.seat[a.PlayerID]
	if !ok {
		return fmt.Errorf("phh: %q was not dealt in", a.PlayerID)
	}

	var move string
	switch {
	case a.Type == game.Fold:
		move = "f"
	case a.Type == game.Check || a.Type == game.Call:
		move = "cc"
	case a.To > b.lastBet:
		move = fmt.Sprintf("cbr %d", a.To)
	default:
		// An all-in for no more than the current bet is a call.
		move = "cc"
	}
	b.hand.Actions = append(b.hand.Actions, fmt.Sprintf("p%d %s", i+1, move))
	b.lastBet = s.CurrentBet
	b.board(s)
	return nil
}

// Street records community cards dealt since the last call.
func (b *Builder) Street(s *game.GameState) error {
	if b.hand == nil {
		return ErrNoHand
	}
	b.board(s)
	return nil
}

// Finish completes the hand from its final state and resets the builder.
func (b *Builder) Finish(s *game.GameState) (*HandHistory, error) {
	if b.hand == nil {
		return nil, ErrNoHand
	}
	if s.Phase != game.PhaseFinished {
		return nil, fmt.Errorf("phh: hand %s is still in play", s.ID)
	}
	b.board(s)

	h := b.hand
	n := len(h.Players)
	h.FinishingStacks = make([]int, n)
	h.Winnings = make([]int, n)
	for i, id := range b.ids {
		p := s.PlayerByID(id)
		h.FinishingStacks[i] = p.Chips
		if s.Round == game.Showdown && p.InHand() {
			h.Actions = append(h.Actions, fmt.Sprintf("p%d sm %s", i+1, cards(p.HoleCards)))
		}
	}
	for _, w := range game.ConsolidateWinners(s.Winners) {
		h.Winnings[b.seat[w.PlayerID]] = w.Amount
	}
	h.Rake = s.Rake

	b.hand, b.seat, b.ids = nil, nil, nil
	return h, nil
}

// board appends a deal for each street that appeared since the last record.
// A hand won without a showdown keeps its undealt board out of the history.
func (b *Builder) board(s *game.GameState) {
	if s.Phase == game.PhaseFinished && s.Round != game.Showdown {
		return
	}
	for _, upto := range []int{3, 4, 5} {
		if b.dealt < upto && len(s.Community) >= upto {
			b.hand.Actions = append(b.hand.Actions, "d db "+cards(s.Community[b.dealt:upto]))
			b.dealt = upto
		}
	}
}

// dealtOrder lists the seats dealt into the hand, starting with the small
// blind, which is PHH's player order.
func dealtOrder(s *game.GameState) []int {
	n := len(s.Players)
	var order []int
	for k := range n {
		idx := (s.SmallBlindIndex + k) % n
		if s.Players[idx].Status != game.StatusSittingOut {
			order = append(order, idx)
		}
	}
	return order
}

func cards(cs []poker.Card) string {
	var sb strings.Builder
	for _, c := range cs {
		sb.WriteString(c.Notation())
	}
	return sb.String()
}
