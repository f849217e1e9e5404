package game

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPlayer means the caller referenced a player not seated in
	// the game.
	ErrUnknownPlayer = errors.New("game: unknown player")
	// ErrNotYourTurn means an action arrived for a seat that is not to act.
	ErrNotYourTurn = errors.New("game: not your turn")
	// ErrInvariant wraps accounting failures such as deck exhaustion or
	// chips appearing or vanishing. A session that sees it must stop.
	ErrInvariant = errors.New("game: invariant violated")

	ErrInvalidGame      = errors.New("game: invalid game")
	ErrHandInProgress   = errors.New("game: hand already in progress")
	ErrNotEnoughPlayers = errors.New("game: fewer than two players with chips")
)

// Rule names the legality rule an action broke.
type Rule string

const (
	RuleHandNotInProgress Rule = "hand_not_in_progress"
	RulePlayerFolded      Rule = "player_folded"
	RulePlayerAllIn       Rule = "player_all_in"
	RulePlayerSittingOut  Rule = "player_sitting_out"
	RuleCannotCheck       Rule = "cannot_check"
	RuleNothingToCall     Rule = "nothing_to_call"
	RuleBetOutstanding    Rule = "bet_outstanding"
	RuleBetTooSmall       Rule = "bet_too_small"
	RuleNoBetToRaise      Rule = "no_bet_to_raise"
	RuleRaiseTooSmall     Rule = "raise_too_small"
	RuleNotReopened       Rule = "action_not_reopened"
	RuleInsufficientChips Rule = "insufficient_chips"
	RuleNoChips           Rule = "no_chips"
	RuleUnknownAction     Rule = "unknown_action"
)

// ValidationError is returned for an illegal action. The state it was
// validated against is unchanged, so the caller can re-prompt.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action (%s): %s", e.Rule, e.Message)
}

func invalid(rule Rule, format string, args ...any) error {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
