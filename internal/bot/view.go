package bot

import (
	"fmt"
	"slices"

	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/poker"
)

// Opponent is what everyone at the table can see about another seat.
type Opponent struct {
	ID       string
	Name     string
	Chips    int
	Bet      int
	TotalBet int
	Status   game.Status
	IsDealer bool
	History  []game.Action
}

// View is the information a seat is entitled to: the public table state and
// its own hole cards. It has no field that can hold anyone else's cards or
// the deck, so a decision made from a View cannot depend on them.
type View struct {
	PlayerID   string
	HoleCards  []poker.Card
	Chips      int
	Bet        int
	HasActed   bool
	Community  []poker.Card
	Round      game.Round
	Pot        int
	CurrentBet int
	MinRaise   int
	BigBlind   int
	Opponents  []Opponent
	Legal      []game.ValidAction // empty unless this seat is to act
}

// NewView extracts playerID's view of s.
func NewView(s *game.GameState, playerID string) (View, error) {
	me := s.PlayerByID(playerID)
	if me == nil {
		return View{}, fmt.Errorf("%w: %q", game.ErrUnknownPlayer, playerID)
	}

	v := View{
		PlayerID:   me.ID,
		HoleCards:  slices.Clone(me.HoleCards),
		Chips:      me.Chips,
		Bet:        me.Bet,
		HasActed:   me.HasActed,
		Community:  slices.Clone(s.Community),
		Round:      s.Round,
		Pot:        s.PotTotal(),
		CurrentBet: s.CurrentBet,
		MinRaise:   s.MinRaise,
		BigBlind:   s.BigBlind,
	}
	for _, p := range s.Players {
		if p.ID == me.ID {
			continue
		}
		v.Opponents = append(v.Opponents, Opponent{
			ID:       p.ID,
			Name:     p.Name,
			Chips:    p.Chips,
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
			Status:   p.Status,
			IsDealer: p.IsDealer,
			History:  slices.Clone(p.History),
		})
	}
	if cur := s.Current(); cur != nil && cur.ID == me.ID {
		v.Legal = game.ValidActions(s)
	}
	return v, nil
}

// ToCall is the amount needed to stay in.
func (v View) ToCall() int {
	return max(0, v.CurrentBet-v.Bet)
}

// legal returns the legal entry for typ, if any.
func (v View) legal(typ game.ActionType) (game.ValidAction, bool) {
	for _, va := range v.Legal {
		if va.Type == typ {
			return va, true
		}
	}
	return game.ValidAction{}, false
}

// Aggressors counts opponents who bet or raised this round.
func (v View) Aggressors() int {
	n := 0
	for _, o := range v.Opponents {
		for _, a := range o.History {
			if a.Round == v.Round && (a.Type == game.Bet || a.Type == game.Raise || a.Type == game.AllIn) {
				n++
				break
			}
		}
	}
	return n
}
