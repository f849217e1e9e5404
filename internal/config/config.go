// Package config loads table, matchmaking, rake and bot settings from HCL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/djacobfi/8bit-poker/internal/bot"
	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/internal/matchmaking"
	"github.com/djacobfi/8bit-poker/internal/table"
)

// Config represents the complete configuration file.
type Config struct {
	LogLevel     string             `hcl:"log_level,optional"`
	Table        *TableConfig       `hcl:"table,block"`
	Matchmaking  *MatchmakingConfig `hcl:"matchmaking,block"`
	Rake         *RakeConfig        `hcl:"rake,block"`
	Difficulties []DifficultyConfig `hcl:"difficulty,block"`
}

// TableConfig holds per-table game settings.
type TableConfig struct {
	MaxPlayers    int    `hcl:"max_players,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	TurnDuration  string `hcl:"turn_duration,optional"`
	HandDelay     string `hcl:"hand_delay,optional"`
}

// MatchmakingConfig holds the seat-fill rules.
type MatchmakingConfig struct {
	Timeout    string `hcl:"timeout,optional"`
	MinPlayers int    `hcl:"min_players,optional"`
	StartDelay string `hcl:"start_delay,optional"`
}

// RakeConfig is the house cut taken from each pot. Max 0 means no cap.
type RakeConfig struct {
	Percent int `hcl:"percent,optional"`
	Min     int `hcl:"min,optional"`
	Max     int `hcl:"max,optional"`
}

// DifficultyConfig overrides one bot difficulty's personality.
type DifficultyConfig struct {
	Name           string   `hcl:"name,label"`
	Aggression     *float64 `hcl:"aggression,optional"`
	BluffFrequency *float64 `hcl:"bluff_frequency,optional"`
	FoldTightness  *float64 `hcl:"fold_tightness,optional"`
	ReactionMin    string   `hcl:"reaction_min,optional"`
	ReactionMax    string   `hcl:"reaction_max,optional"`
}

// Default returns the stock configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Table == nil {
		c.Table = &TableConfig{}
	}
	t := c.Table
	if t.MaxPlayers == 0 {
		t.MaxPlayers = 4
	}
	if t.BigBlind == 0 {
		t.BigBlind = 10
	}
	if t.SmallBlind == 0 {
		t.SmallBlind = t.BigBlind / 2
	}
	if t.StartingChips == 0 {
		t.StartingChips = 1000
	}
	if t.TurnDuration == "" {
		t.TurnDuration = "20s"
	}
	if t.HandDelay == "" {
		t.HandDelay = "10s"
	}

	if c.Matchmaking == nil {
		c.Matchmaking = &MatchmakingConfig{}
	}
	m := c.Matchmaking
	if m.Timeout == "" {
		m.Timeout = "12s"
	}
	if m.MinPlayers == 0 {
		m.MinPlayers = 1
	}
	if m.StartDelay == "" {
		m.StartDelay = "1s"
	}

	if c.Rake == nil {
		c.Rake = &RakeConfig{}
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	t := c.Table
	if t.SmallBlind <= 0 {
		return fmt.Errorf("table: small blind must be positive")
	}
	if t.BigBlind < t.SmallBlind {
		return fmt.Errorf("table: big blind must be at least the small blind")
	}
	if t.MaxPlayers < 2 || t.MaxPlayers > game.MaxPlayers {
		return fmt.Errorf("table: max players must be between 2 and %d", game.MaxPlayers)
	}
	if t.StartingChips < t.BigBlind {
		return fmt.Errorf("table: starting chips must cover the big blind")
	}
	for name, s := range map[string]string{"turn_duration": t.TurnDuration, "hand_delay": t.HandDelay} {
		if _, err := parseDuration(s); err != nil {
			return fmt.Errorf("table: %s: %w", name, err)
		}
	}

	m := c.Matchmaking
	if m.MinPlayers < 1 || m.MinPlayers > t.MaxPlayers {
		return fmt.Errorf("matchmaking: min players must be between 1 and %d", t.MaxPlayers)
	}
	for name, s := range map[string]string{"timeout": m.Timeout, "start_delay": m.StartDelay} {
		if _, err := parseDuration(s); err != nil {
			return fmt.Errorf("matchmaking: %s: %w", name, err)
		}
	}

	r := c.Rake
	if r.Percent < 0 || r.Percent > 100 {
		return fmt.Errorf("rake: percent must be between 0 and 100")
	}
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("rake: min and max must not be negative")
	}
	if r.Max > 0 && r.Min > r.Max {
		return fmt.Errorf("rake: min must not exceed max")
	}

	if _, err := c.Profiles(); err != nil {
		return err
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// mustDuration parses a duration already accepted by Validate.
func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}

// TurnDuration is how long a human has to act.
func (c *Config) TurnDuration() time.Duration { return mustDuration(c.Table.TurnDuration) }

// HandDelay is the pause between hands.
func (c *Config) HandDelay() time.Duration { return mustDuration(c.Table.HandDelay) }

// RakeFunc builds the per-pot rake.
func (c *Config) RakeFunc() game.RakeFunc {
	if c.Rake.Percent == 0 {
		return game.NoRake
	}
	return game.PercentRake(c.Rake.Percent, c.Rake.Min, c.Rake.Max)
}

// Profiles returns the bot profiles with any difficulty blocks applied on
// top of the stock ones.
func (c *Config) Profiles() (map[game.Difficulty]game.BotProfile, error) {
	profiles := make(map[game.Difficulty]game.BotProfile, len(bot.DefaultProfiles))
	for d, p := range bot.DefaultProfiles {
		profiles[d] = p
	}

	for _, dc := range c.Difficulties {
		d := game.Difficulty(dc.Name)
		p, ok := profiles[d]
		if !ok {
			return nil, fmt.Errorf("difficulty %q: unknown, expected one of %v", dc.Name, game.Difficulties)
		}
		for _, f := range []struct {
			name  string
			value *float64
			dst   *float64
		}{
			{"aggression", dc.Aggression, &p.Personality.Aggression},
			{"bluff_frequency", dc.BluffFrequency, &p.Personality.BluffFrequency},
			{"fold_tightness", dc.FoldTightness, &p.Personality.FoldTightness},
		} {
			if f.value == nil {
				continue
			}
			if *f.value < 0 || *f.value > 1 {
				return nil, fmt.Errorf("difficulty %q: %s must be between 0 and 1", dc.Name, f.name)
			}
			*f.dst = *f.value
		}
		if dc.ReactionMin != "" {
			dur, err := parseDuration(dc.ReactionMin)
			if err != nil {
				return nil, fmt.Errorf("difficulty %q: reaction_min: %w", dc.Name, err)
			}
			p.ReactionMin = dur
		}
		if dc.ReactionMax != "" {
			dur, err := parseDuration(dc.ReactionMax)
			if err != nil {
				return nil, fmt.Errorf("difficulty %q: reaction_max: %w", dc.Name, err)
			}
			p.ReactionMax = dur
		}
		if p.ReactionMax < p.ReactionMin {
			return nil, fmt.Errorf("difficulty %q: reaction_max is below reaction_min", dc.Name)
		}
		profiles[d] = p
	}
	return profiles, nil
}

// MatchmakerConfig converts the settings for the matchmaker.
func (c *Config) MatchmakerConfig() (matchmaking.Config, error) {
	profiles, err := c.Profiles()
	if err != nil {
		return matchmaking.Config{}, err
	}
	return matchmaking.Config{
		MaxPlayers:    c.Table.MaxPlayers,
		MinPlayers:    c.Matchmaking.MinPlayers,
		Timeout:       mustDuration(c.Matchmaking.Timeout),
		StartDelay:    mustDuration(c.Matchmaking.StartDelay),
		StartingChips: c.Table.StartingChips,
		Profiles:      profiles,
		Names:         matchmaking.DefaultNames,
	}, nil
}

// SessionConfig converts the table timing settings.
func (c *Config) SessionConfig() table.Config {
	return table.Config{
		TurnDuration: c.TurnDuration(),
		HandDelay:    c.HandDelay(),
		AutoNextHand: true,
	}
}
