package table

import (
	"time"

	"github.com/djacobfi/8bit-poker/internal/bot"
	"github.com/djacobfi/8bit-poker/internal/game"
)

// EventType names a table event.
type EventType string

const (
	EventHandStart    EventType = "hand_start"
	EventPlayerAction EventType = "player_action"
	EventStreetChange EventType = "street_change"
	EventHandEnd      EventType = "hand_end"
	EventTurnTimeout  EventType = "turn_timeout"
	EventHalted       EventType = "halted"
)

// Event is delivered to subscribers after each transition. State is a
// private snapshot taken right after the transition.
type Event struct {
	Type     EventType
	TableID  string
	HandID   string
	Time     time.Time
	State    *game.GameState
	Action   *game.Action  // player_action
	Decision *bot.Decision // player_action by a bot
	PlayerID string        // turn_timeout
	Err      error         // halted
}

// Subscriber receives events in the order the transitions happened. It is
// called without the table lock held, so it may call back into the table.
type Subscriber func(Event)
