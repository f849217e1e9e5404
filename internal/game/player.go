package game

import (
	"slices"
	"time"

	"github.com/djacobfi/8bit-poker/poker"
)

// Status is a player's standing in the current hand.
type Status int

const (
	StatusActive Status = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
)

func (s Status) String() string {
	return [...]string{"active", "folded", "allIn", "sittingOut"}[s]
}

// Kind distinguishes human seats from bots.
type Kind int

const (
	Human Kind = iota
	Bot
)

func (k Kind) String() string {
	return [...]string{"human", "bot"}[k]
}

// Difficulty is a bot's skill tier.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Personality holds the scalars that bend a bot's raw recommendation. All
// values are in [0, 1].
type Personality struct {
	Aggression     float64
	BluffFrequency float64
	FoldTightness  float64
}

// BotProfile is the bot-only part of a Player.
type BotProfile struct {
	Difficulty  Difficulty
	Personality Personality
	ReactionMin time.Duration
	ReactionMax time.Duration
}

// Player is a seat at the table. Kind selects the variant; Bot is non-nil
// exactly when Kind is Bot.
type Player struct {
	ID        string
	Name      string
	Kind      Kind
	Bot       *BotProfile
	Chips     int
	Bet       int // Current bet in this round
	TotalBet  int // Total bet in the hand
	HoleCards []poker.Card
	Status    Status
	IsDealer  bool
	HasActed  bool     // acted since the last full bet or raise
	History   []Action // this hand's actions, oldest first
}

// NewHuman creates a human seat.
func NewHuman(id, name string, chips int) *Player {
	return &Player{ID: id, Name: name, Kind: Human, Chips: chips}
}

// NewBot creates a bot seat with the given profile.
func NewBot(id, name string, chips int, profile BotProfile) *Player {
	return &Player{ID: id, Name: name, Kind: Bot, Bot: &profile, Chips: chips}
}

// IsBot reports whether the seat is driven by the AI.
func (p *Player) IsBot() bool {
	return p.Kind == Bot && p.Bot != nil
}

// CanAct returns true if the player can still put chips in.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive && p.Chips > 0
}

// InHand returns true if the player still has a claim on the pot.
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	c := *p
	if p.Bot != nil {
		bot := *p.Bot
		c.Bot = &bot
	}
	c.HoleCards = slices.Clone(p.HoleCards)
	c.History = slices.Clone(p.History)
	return &c
}
