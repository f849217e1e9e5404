package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/coder/quartz"

	"github.com/djacobfi/8bit-poker/internal/handid"
	"github.com/djacobfi/8bit-poker/poker"
)

// Phase is the hand-level lifecycle.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	return [...]string{"waiting", "playing", "finished"}[p]
}

// Refund is the part of a bet nobody matched, returned to its owner when the
// hand is settled.
type Refund struct {
	PlayerID string
	Amount   int
}

// GameState is the authoritative state of one table. Every transition
// returns a new GameState; the receiver of a transition is never modified.
type GameState struct {
	ID              string // current hand id
	HandNumber      int
	Round           Round
	Phase           Phase
	Community       []poker.Card
	Pots            []Pot // as of the last completed round
	Players         []*Player
	CurrentPlayer   int // -1 when nobody is to act
	DealerIndex     int
	SmallBlindIndex int
	BigBlindIndex   int
	SmallBlind      int
	BigBlind        int
	CurrentBet      int
	MinRaise        int
	Winners         []WinnerInfo
	Refund          Refund
	Rake            int
	StartedAt       time.Time
	LastActionAt    time.Time

	deck      *poker.Deck
	handChips int // chips on the table when the hand started
	env       *environment
}

// environment holds the collaborators shared by every state of a game.
type environment struct {
	clock quartz.Clock
	rng   *rand.Rand
	rake  RakeFunc
	ids   *handid.Generator
	deck  *poker.Deck // fixed deck for every hand, tests only
}

// Clone returns a deep copy. Collaborators (clock, random source, rake) are
// shared.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Community = slices.Clone(s.Community)
	c.Pots = clonePots(s.Pots)
	c.Winners = slices.Clone(s.Winners)
	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.Clone()
	}
	if s.deck != nil {
		c.deck = s.deck.Clone()
	}
	return &c
}

// Current returns the player to act, or nil.
func (s *GameState) Current() *Player {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayer]
}

// PlayerByID returns the seated player with the given id, or nil.
func (s *GameState) PlayerByID(id string) *Player {
	if i := s.indexOf(id); i >= 0 {
		return s.Players[i]
	}
	return nil
}

func (s *GameState) indexOf(id string) int {
	return slices.IndexFunc(s.Players, func(p *Player) bool { return p.ID == id })
}

// ToCall returns how much the player must add to stay in.
func (s *GameState) ToCall(p *Player) int {
	return max(0, s.CurrentBet-p.Bet)
}

// PotTotal is every chip committed this hand, including bets in the current
// round that are not yet in Pots.
func (s *GameState) PotTotal() int {
	total := 0
	for _, p := range s.Players {
		total += p.TotalBet
	}
	return total
}

// nextSeated returns the first seat after from whose player is dealt in.
func (s *GameState) nextSeated(from int) int {
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		seat := ((from+i)%n + n) % n
		if s.Players[seat].Status != StatusSittingOut {
			return seat
		}
	}
	return -1
}

func (s *GameState) seatedCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Status != StatusSittingOut {
			n++
		}
	}
	return n
}

func (s *GameState) inHandCount() int {
	n := 0
	for _, p := range s.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// ChipTotal counts every chip the players own or have committed this hand.
func ChipTotal(players []*Player) int {
	total := 0
	for _, p := range players {
		total += p.Chips + p.TotalBet
	}
	return total
}

// CheckConservation verifies that stacks, committed bets and rake add up to
// expected.
func (s *GameState) CheckConservation(expected int) error {
	if got := ChipTotal(s.Players) + s.Rake; got != expected {
		return invariant("chip total %d (rake %d), expected %d", got, s.Rake, expected)
	}
	return nil
}

// String is a one-line summary for logs.
func (s *GameState) String() string {
	return fmt.Sprintf("hand %d %s %s board=[%s] pot=%d bet=%d toAct=%d",
		s.HandNumber, s.Phase, s.Round, poker.FormatCards(s.Community), s.PotTotal(), s.CurrentBet, s.CurrentPlayer)
}
