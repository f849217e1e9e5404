// Package bot implements the heuristic AI opponent.
//
// A bot decides from a View: its own hole cards and what the rest of the table
// can see. The recommendation from hand strength and pot odds is bent by the
// bot's personality, then mapped onto an action the engine will accept.
package bot

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/djacobfi/8bit-poker/internal/game"
)

// Decision is a bot's chosen action. Amount is in the units SubmitAction
// expects: the chips to call or bet, or the total to raise to.
type Decision struct {
	Action     game.ActionType
	Amount     int
	Confidence float64
	Reasoning  string
}

func (d Decision) String() string {
	return fmt.Sprintf("%s %d (%.0f%%): %s", d.Action, d.Amount, d.Confidence*100, d.Reasoning)
}

// ErrNotToAct is returned when asked to decide for a seat that is not the
// one to act.
var ErrNotToAct = fmt.Errorf("bot: %w", game.ErrNotYourTurn)

// Decide picks an action for bot seat p in state. Only p's hole cards and
// public information are consulted.
func Decide(p *game.Player, state *game.GameState, rng *rand.Rand) (Decision, error) {
	if !p.IsBot() {
		return Decision{}, fmt.Errorf("bot: %s is not a bot seat", p.ID)
	}
	view, err := NewView(state, p.ID)
	if err != nil {
		return Decision{}, err
	}
	if len(view.Legal) == 0 {
		return Decision{}, fmt.Errorf("%w: %s", ErrNotToAct, p.ID)
	}
	return DecideView(view, p.Bot.Personality, rng), nil
}

// ThinkingContext accumulates the reasons behind a decision.
type ThinkingContext struct {
	thoughts []string
}

// AddThought records one step of reasoning.
func (tc *ThinkingContext) AddThought(format string, args ...any) {
	tc.thoughts = append(tc.thoughts, fmt.Sprintf(format, args...))
}

// GetThoughts joins the recorded reasoning.
func (tc *ThinkingContext) GetThoughts() string {
	if len(tc.thoughts) == 0 {
		return "No clear reasoning available"
	}
	return strings.Join(tc.thoughts, ". ")
}

// recommendation is the raw tendency before it is made legal.
type recommendation int

const (
	recFold recommendation = iota
	recCall
	recRaise
	recAllIn
)

func (r recommendation) String() string {
	return [...]string{"fold", "call", "raise", "all-in"}[r]
}

// recommend combines strength and pot odds into a raw tendency.
func recommend(s Strength, potOdds float64) recommendation {
	switch {
	case s < 0.2 && potOdds < 0.1:
		return recFold
	case s > 0.8:
		return recRaise
	case s > 0.95 || (potOdds > 5 && s > 0.5):
		return recAllIn
	case potOdds > 3 && s > 0.4:
		return recCall
	case potOdds < 2 && s < 0.6:
		return recFold
	case s > 0.6 && potOdds > 1.5:
		return recRaise
	default:
		return recCall
	}
}

// applyPersonality lets the personality overrule the table.
func applyPersonality(r recommendation, s Strength, p game.Personality, tc *ThinkingContext) recommendation {
	switch {
	case r == recCall && float64(s) < p.FoldTightness:
		tc.AddThought("Too tight to call with %s", s)
		return recFold
	case r == recCall && s > 0.6 && p.Aggression > 0.6:
		tc.AddThought("Aggressive, turning a call into a raise")
		return recRaise
	case r == recRaise && p.Aggression < 0.4:
		tc.AddThought("Passive, calling instead of raising")
		return recCall
	}
	return r
}

// DecideView is the decision function proper. v must have Legal set.
func DecideView(v View, p game.Personality, rng *rand.Rand) Decision {
	tc := &ThinkingContext{}

	strength, made := HandStrength(v.HoleCards, v.Community)
	if made != nil {
		tc.AddThought("Holding %s, %s (%s)", made.Name(), strength.Label(), strength)
	} else {
		tc.AddThought("Starting hand is %s (%s)", strength.Label(), strength)
	}

	toCall := v.ToCall()
	odds := PotOdds(v.Pot, toCall)
	if toCall > 0 {
		tc.AddThought("Pot odds %.2f on %d to call", odds, toCall)
	}
	if n := v.Aggressors(); n > 0 {
		tc.AddThought("%d opponents have shown aggression", n)
	}

	rec := applyPersonality(recommend(strength, odds), strength, p, tc)

	var d Decision
	switch rec {
	case recFold:
		d = Decision{Action: game.Fold, Confidence: 0.7}
		tc.AddThought("Weak hand and poor odds, folding")
		if rng.Float64() < p.BluffFrequency {
			d = Decision{Action: game.Call, Amount: toCall, Confidence: 0.3}
			tc.AddThought("Bluffing instead")
		}
	case recCall:
		d = Decision{Action: game.Call, Amount: toCall, Confidence: 0.6}
		tc.AddThought("Good enough to continue")
	case recRaise:
		d = Decision{Action: game.Raise, Amount: raiseTo(v, strength, p), Confidence: 0.8}
		tc.AddThought("Applying pressure")
	case recAllIn:
		d = Decision{Action: game.AllIn, Amount: v.Chips, Confidence: 0.9}
		tc.AddThought("Maximizing value")
	}

	d = legalize(v, d, tc)
	d.Reasoning = tc.GetThoughts()
	return d
}

// raiseTo sizes a raise as the minimum raise target scaled by aggression and
// strength. The result is a round total, capped at everything the bot has.
func raiseTo(v View, s Strength, p game.Personality) int {
	base := v.CurrentBet + v.MinRaise
	factor := 1 + 2*p.Aggression + 2*float64(s)
	return min(int(math.Floor(float64(base)*factor)), v.Bet+v.Chips)
}

// legalize maps d onto the legal actions in v.
func legalize(v View, d Decision, tc *ThinkingContext) Decision {
	toCall := v.ToCall()

	switch d.Action {
	case game.Fold:
		if toCall == 0 {
			d = Decision{Action: game.Check, Confidence: d.Confidence}
		}
	case game.Call:
		if toCall == 0 {
			d = Decision{Action: game.Check, Confidence: d.Confidence}
		} else if toCall >= v.Chips {
			d = Decision{Action: game.AllIn, Amount: v.Chips, Confidence: d.Confidence}
		}
	case game.Raise:
		switch {
		case d.Amount >= v.Bet+v.Chips:
			d = Decision{Action: game.AllIn, Amount: v.Chips, Confidence: d.Confidence}
		case v.CurrentBet == 0:
			d.Action = game.Bet
			d.Amount -= v.Bet
		default:
			if _, ok := v.legal(game.Raise); !ok {
				tc.AddThought("Raising is closed, calling")
				d = Decision{Action: game.Call, Amount: toCall, Confidence: d.Confidence}
				if toCall >= v.Chips {
					d = Decision{Action: game.AllIn, Amount: v.Chips, Confidence: d.Confidence}
				}
			}
		}
	}

	if va, ok := v.legal(d.Action); ok {
		if va.Max > 0 {
			d.Amount = max(va.Min, min(d.Amount, va.Max))
		} else {
			d.Amount = 0
		}
		return d
	}

	// Whatever is left is a bet the stack cannot cover; fall back to the
	// cheapest legal continuation.
	for _, typ := range []game.ActionType{game.Check, game.Call, game.Fold} {
		if va, ok := v.legal(typ); ok {
			return Decision{Action: typ, Amount: va.Min, Confidence: d.Confidence}
		}
	}
	return d
}

// ReactionTime draws a thinking delay from the profile's range.
func ReactionTime(profile game.BotProfile, rng *rand.Rand) time.Duration {
	lo, hi := profile.ReactionMin, profile.ReactionMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int64N(int64(hi-lo)+1))
}
