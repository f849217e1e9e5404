package game

import (
	"fmt"
	"strings"
	"time"
)

// Round represents the betting round
type Round int

const (
	PreFlop Round = iota
	Flop
	Turn
	River
	Showdown
)

func (r Round) String() string {
	return [...]string{"preFlop", "flop", "turn", "river", "showdown"}[r]
}

// communityCards is the board size once the round has been dealt.
func (r Round) communityCards() int {
	return [...]int{0, 3, 4, 5, 5}[r]
}

// ActionType is what a player chose to do.
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "allIn"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseActionType accepts the names produced by String, case-insensitively,
// plus "allin" and "all-in".
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	case "allin", "all-in":
		return AllIn, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is one applied decision. Amount is the chips this action moved from
// the player's stack; To is the player's round bet afterwards.
type Action struct {
	PlayerID  string
	Type      ActionType
	Amount    int
	To        int
	Timestamp time.Time
	Round     Round
}

func (a Action) String() string {
	switch a.Type {
	case Fold, Check:
		return a.Type.String()
	case Call:
		return fmt.Sprintf("call %d", a.Amount)
	default:
		return fmt.Sprintf("%s to %d", a.Type, a.To)
	}
}

// ValidAction is a legal action for the player to act, with the amount range
// SubmitAction accepts for it. For bet and raise the amounts are round totals.
type ValidAction struct {
	Type ActionType
	Min  int
	Max  int
}

// ValidActions returns the legal actions for the current player, or nil when
// nobody is to act.
func ValidActions(s *GameState) []ValidAction {
	p := s.Current()
	if p == nil || s.Phase != PhasePlaying || !p.CanAct() {
		return nil
	}

	actions := []ValidAction{{Type: Fold}}
	toCall := s.CurrentBet - p.Bet

	if toCall <= 0 {
		actions = append(actions, ValidAction{Type: Check})
	} else {
		amount := min(toCall, p.Chips)
		actions = append(actions, ValidAction{Type: Call, Min: amount, Max: amount})
	}

	switch {
	case s.CurrentBet == 0:
		if p.Chips >= s.BigBlind {
			actions = append(actions, ValidAction{Type: Bet, Min: s.BigBlind, Max: p.Chips})
		}
	case !p.HasActed:
		minTo := s.CurrentBet + s.MinRaise
		if p.Bet+p.Chips >= minTo {
			actions = append(actions, ValidAction{Type: Raise, Min: minTo, Max: p.Bet + p.Chips})
		}
	}

	// Once the round is closed to raising, all-in is only offered as a call.
	if !p.HasActed || p.Bet+p.Chips <= s.CurrentBet {
		actions = append(actions, ValidAction{Type: AllIn, Min: p.Chips, Max: p.Chips})
	}
	return actions
}

// roundComplete reports whether no further betting is possible or needed in
// the current round.
func (s *GameState) roundComplete() bool {
	var active []*Player
	for _, p := range s.Players {
		if p.CanAct() {
			active = append(active, p)
		}
	}

	switch len(active) {
	case 0:
		return true
	case 1:
		// Nobody left to bet against; only a shortfall needs acting on.
		return active[0].Bet >= s.CurrentBet
	}

	for _, p := range active {
		if p.Bet != s.CurrentBet || !p.HasActed {
			return false
		}
	}
	return true
}

// needsToAct reports whether p still owes an action this round.
func (s *GameState) needsToAct(p *Player) bool {
	return p.CanAct() && (p.Bet < s.CurrentBet || !p.HasActed)
}

// nextToAct returns the first seat at or after from that owes an action, or -1.
func (s *GameState) nextToAct(from int) int {
	n := len(s.Players)
	for i := 0; i < n; i++ {
		seat := ((from+i)%n + n) % n
		if s.needsToAct(s.Players[seat]) {
			return seat
		}
	}
	return -1
}

// resetRound clears round bets once betting is over.
func (s *GameState) resetRound() {
	for _, p := range s.Players {
		p.Bet = 0
		p.HasActed = false
	}
	s.CurrentBet = 0
	s.MinRaise = s.BigBlind
}
