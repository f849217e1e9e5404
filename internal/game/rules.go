package game

import "fmt"

// move is a validated action, ready to apply.
type move struct {
	typ    ActionType
	chips  int  // taken from the stack
	to     int  // round bet afterwards
	reopen bool // a full bet or raise; everyone else must act again
}

// validate checks an action by the player at seat against s without
// modifying anything. Check order: the hand, the player, the turn, then the
// action itself.
func validate(s *GameState, seat int, typ ActionType, amount int) (move, error) {
	p := s.Players[seat]

	if s.Phase != PhasePlaying {
		return move{}, invalid(RuleHandNotInProgress, "hand is %s", s.Phase)
	}
	switch p.Status {
	case StatusFolded:
		return move{}, invalid(RulePlayerFolded, "%s has folded", p.Name)
	case StatusAllIn:
		return move{}, invalid(RulePlayerAllIn, "%s is all-in", p.Name)
	case StatusSittingOut:
		return move{}, invalid(RulePlayerSittingOut, "%s is sitting out", p.Name)
	}
	if seat != s.CurrentPlayer {
		return move{}, fmt.Errorf("%w: %s", ErrNotYourTurn, p.Name)
	}

	toCall := s.ToCall(p)

	switch typ {
	case Fold:
		return move{typ: Fold, to: p.Bet}, nil

	case Check:
		if toCall > 0 {
			return move{}, invalid(RuleCannotCheck, "must call %d", toCall)
		}
		return move{typ: Check, to: p.Bet}, nil

	case Call:
		if toCall == 0 {
			return move{}, invalid(RuleNothingToCall, "nothing to call")
		}
		// A short stack calls for everything it has.
		chips := min(toCall, p.Chips)
		return move{typ: Call, chips: chips, to: p.Bet + chips}, nil

	case Bet:
		if s.CurrentBet > 0 {
			return move{}, invalid(RuleBetOutstanding, "there is already a bet of %d", s.CurrentBet)
		}
		if amount < s.BigBlind {
			return move{}, invalid(RuleBetTooSmall, "minimum bet is %d", s.BigBlind)
		}
		if amount > p.Chips {
			return move{}, invalid(RuleInsufficientChips, "bet %d with %d chips", amount, p.Chips)
		}
		return move{typ: Bet, chips: amount, to: p.Bet + amount, reopen: true}, nil

	case Raise:
		if s.CurrentBet == 0 {
			return move{}, invalid(RuleNoBetToRaise, "nothing to raise, bet instead")
		}
		if p.HasActed {
			return move{}, invalid(RuleNotReopened, "betting was not reopened, call or fold")
		}
		if minTo := s.CurrentBet + s.MinRaise; amount < minTo {
			return move{}, invalid(RuleRaiseTooSmall, "minimum raise is to %d", minTo)
		}
		if amount-p.Bet > p.Chips {
			return move{}, invalid(RuleInsufficientChips, "raise to %d with %d chips behind %d", amount, p.Chips, p.Bet)
		}
		return move{typ: Raise, chips: amount - p.Bet, to: amount, reopen: true}, nil

	case AllIn:
		if p.Chips == 0 {
			return move{}, invalid(RuleNoChips, "no chips left")
		}
		to := p.Bet + p.Chips
		if p.HasActed && to > s.CurrentBet {
			return move{}, invalid(RuleNotReopened, "betting was not reopened, call or fold")
		}
		m := move{typ: AllIn, chips: p.Chips, to: to}
		// An opening all-in, or one that raises by at least the minimum, is
		// a full bet. Anything less only raises the amount to call.
		if to > s.CurrentBet && (s.CurrentBet == 0 || to-s.CurrentBet >= s.MinRaise) {
			m.reopen = true
		}
		return m, nil
	}

	return move{}, invalid(RuleUnknownAction, "unknown action %v", typ)
}

// apply performs a validated move on s, which must be a private copy.
func (s *GameState) apply(seat int, m move) Action {
	p := s.Players[seat]

	p.Chips -= m.chips
	p.Bet += m.chips
	p.TotalBet += m.chips
	p.HasActed = true

	if m.typ == Fold {
		p.Status = StatusFolded
	} else if p.Chips == 0 {
		p.Status = StatusAllIn
	}

	if p.Bet > s.CurrentBet {
		if m.reopen {
			s.MinRaise = max(s.MinRaise, p.Bet-s.CurrentBet)
			if m.typ == Bet {
				s.MinRaise = p.Bet
			}
			for i, other := range s.Players {
				if i != seat {
					other.HasActed = false
				}
			}
		}
		s.CurrentBet = p.Bet
	}

	now := s.env.clock.Now()
	action := Action{
		PlayerID:  p.ID,
		Type:      m.typ,
		Amount:    m.chips,
		To:        p.Bet,
		Timestamp: now,
		Round:     s.Round,
	}
	p.History = append(p.History, action)
	s.LastActionAt = now
	return action
}
