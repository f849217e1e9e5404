package bot

import (
	"time"

	"github.com/djacobfi/8bit-poker/internal/game"
)

// DefaultProfiles are the stock personalities for each difficulty.
var DefaultProfiles = map[game.Difficulty]game.BotProfile{
	game.Beginner: {
		Difficulty:  game.Beginner,
		Personality: game.Personality{Aggression: 0.3, BluffFrequency: 0.05, FoldTightness: 0.6},
		ReactionMin: 2 * time.Second,
		ReactionMax: 5 * time.Second,
	},
	game.Intermediate: {
		Difficulty:  game.Intermediate,
		Personality: game.Personality{Aggression: 0.5, BluffFrequency: 0.15, FoldTightness: 0.4},
		ReactionMin: 1500 * time.Millisecond,
		ReactionMax: 4 * time.Second,
	},
	game.Advanced: {
		Difficulty:  game.Advanced,
		Personality: game.Personality{Aggression: 0.7, BluffFrequency: 0.25, FoldTightness: 0.3},
		ReactionMin: time.Second,
		ReactionMax: 3 * time.Second,
	},
}

// Profile returns the stock profile for d, falling back to intermediate.
func Profile(d game.Difficulty) game.BotProfile {
	if p, ok := DefaultProfiles[d]; ok {
		return p
	}
	return DefaultProfiles[game.Intermediate]
}
