// Package phh records hands in the Poker Hand History format
// (https://phh.readthedocs.io), a TOML dialect that hand replayers and
// solvers read.
package phh

import "time"

// Variant is the PHH code for no-limit Texas hold'em.
const Variant = "NT"

// HandHistory is one hand. Every per-player slice is indexed the same way as
// Players, starting with the small blind.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	Table             string   `toml:"table,omitempty"`
	SeatCount         int      `toml:"seat_count,omitzero"`
	Seats             []int    `toml:"seats,omitempty"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Winnings          []int    `toml:"winnings,omitempty"`
	Rake              int      `toml:"rake,omitzero"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time,omitempty"`
	Day               int      `toml:"day,omitzero"`
	Month             int      `toml:"month,omitzero"`
	Year              int      `toml:"year,omitzero"`

	Timestamp time.Time `toml:"-"`
}
