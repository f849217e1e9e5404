// Package game implements the Texas Hold'em rules engine.
//
// The main type is GameState, the authoritative state of one table. Every
// transition is a function from one state to the next; the input state is
// never modified, so a caller can keep, compare or discard old states freely.
//
// # Basic Usage
//
// Create a game and play a hand:
//
//	g, err := game.CreateGame(players, 10)
//	s, err := game.StartHand(g)
//	s, action, err := game.SubmitAction(s, s.Current().ID, game.Call, 0)
//	if s.Phase == game.PhaseFinished {
//	    winners := game.ConsolidateWinners(s.Winners)
//	}
//
// Illegal actions return a *ValidationError naming the rule that was broken
// and leave state untouched. ErrNotYourTurn and ErrUnknownPlayer indicate a
// caller bug. ErrInvariant means the accounting is broken and the session
// must stop.
//
// # Deterministic Testing
//
// Shuffling draws from an injected *rand.Rand and timestamps from an injected
// quartz.Clock:
//
//	g, err := game.CreateGame(players, 10,
//	    game.WithRNG(randutil.New(42)),
//	    game.WithClock(quartz.NewMock(t)))
//
// WithDeck deals every hand from a fixed deck.
package game
