package game

import (
	"math/rand/v2"

	"github.com/coder/quartz"

	"github.com/djacobfi/8bit-poker/internal/handid"
	"github.com/djacobfi/8bit-poker/poker"
)

// GameOption configures a game during creation.
type GameOption func(*gameConfig)

type gameConfig struct {
	smallBlind int
	dealer     int
	env        environment
}

// WithSmallBlind overrides the default small blind of half the big blind.
func WithSmallBlind(amount int) GameOption {
	return func(c *gameConfig) {
		c.smallBlind = amount
	}
}

// WithClock sets the clock used for action timestamps and hand ids.
func WithClock(clock quartz.Clock) GameOption {
	return func(c *gameConfig) {
		c.env.clock = clock
	}
}

// WithRNG sets the random source used for shuffling.
func WithRNG(rng *rand.Rand) GameOption {
	return func(c *gameConfig) {
		c.env.rng = rng
	}
}

// WithDealer makes seat the dealer of the first hand.
func WithDealer(seat int) GameOption {
	return func(c *gameConfig) {
		c.dealer = seat
	}
}

// WithDeck deals every hand from a copy of deck instead of a shuffled one.
// Cards are dealt from the front, hole cards first.
func WithDeck(deck *poker.Deck) GameOption {
	return func(c *gameConfig) {
		c.env.deck = deck
	}
}

// WithRake sets the rake taken from each pot at settlement.
func WithRake(rake RakeFunc) GameOption {
	return func(c *gameConfig) {
		c.env.rake = rake
	}
}

// WithHandIDs sets the generator for hand ids.
func WithHandIDs(ids *handid.Generator) GameOption {
	return func(c *gameConfig) {
		c.env.ids = ids
	}
}
