// Package matchmaking decides when a table can start and fills empty seats
// with bots once players have waited long enough.
package matchmaking

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/djacobfi/8bit-poker/internal/bot"
	"github.com/djacobfi/8bit-poker/internal/game"
)

// DefaultNames is the pool bot names are drawn from.
var DefaultNames = []string{
	"Ace High",
	"Bluff King",
	"Card Shark",
	"Dealer Dan",
	"Flush Frank",
	"Pocket Pair",
	"River Rat",
	"Showdown Steve",
}

// Config holds the seat-fill rules.
type Config struct {
	MaxPlayers    int           // seats per table
	MinPlayers    int           // queued players needed before bots are added
	Timeout       time.Duration // wait before filling with bots
	StartDelay    time.Duration // pause before a bot-filled table starts
	StartingChips int
	Profiles      map[game.Difficulty]game.BotProfile
	Names         []string
}

// DefaultConfig returns the stock matchmaking rules.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:    4,
		MinPlayers:    1,
		Timeout:       12 * time.Second,
		StartDelay:    time.Second,
		StartingChips: 1000,
		Profiles:      bot.DefaultProfiles,
		Names:         DefaultNames,
	}
}

// Result is the outcome of one matching attempt. When Matched is false
// Players is the queue unchanged and Progress says how close it is.
type Result struct {
	Matched    bool
	Players    []*game.Player
	BotsAdded  int
	StartDelay time.Duration
	Progress   float64
}

// Matchmaker applies a Config. It holds no queue of its own; callers pass
// the current queue on every call.
type Matchmaker struct {
	cfg    Config
	rng    *rand.Rand
	ids    io.Reader
	logger *log.Logger
}

// Option configures a Matchmaker.
type Option func(*Matchmaker)

// WithIDSource draws bot UUIDs from r instead of crypto/rand.
func WithIDSource(r io.Reader) Option {
	return func(m *Matchmaker) {
		m.ids = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Matchmaker) {
		m.logger = logger
	}
}

// New creates a Matchmaker. Zero fields in cfg take their defaults.
func New(cfg Config, rng *rand.Rand, opts ...Option) *Matchmaker {
	def := DefaultConfig()
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = def.MinPlayers
	}
	if cfg.StartingChips <= 0 {
		cfg.StartingChips = def.StartingChips
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = def.Profiles
	}
	if len(cfg.Names) == 0 {
		cfg.Names = def.Names
	}

	m := &Matchmaker{
		cfg:    cfg,
		rng:    rng,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// elapsed is the wait so far in whole seconds.
func elapsed(waitStart, now time.Time) time.Duration {
	return max(0, now.Sub(waitStart).Truncate(time.Second))
}

// TimedOut reports whether the wait has reached the timeout.
func (m *Matchmaker) TimedOut(waitStart, now time.Time) bool {
	return elapsed(waitStart, now) >= m.cfg.Timeout
}

// Match tries to form a table from queue. A full queue starts at once; a
// queue with at least MinPlayers that has waited out the timeout is topped
// up with bots. Otherwise nothing happens.
func (m *Matchmaker) Match(queue []*game.Player, waitStart, now time.Time) (Result, error) {
	if len(queue) >= m.cfg.MaxPlayers {
		return Result{Matched: true, Players: queue[:m.cfg.MaxPlayers:m.cfg.MaxPlayers], Progress: 1}, nil
	}
	if !m.TimedOut(waitStart, now) || len(queue) < m.cfg.MinPlayers {
		return Result{Players: queue, Progress: m.Progress(queue, waitStart, now)}, nil
	}

	need := m.cfg.MaxPlayers - len(queue)
	bots, err := m.newBots(need, queue)
	if err != nil {
		return Result{}, err
	}
	m.logger.Debug("filling table with bots", "queued", len(queue), "bots", need)

	players := make([]*game.Player, 0, m.cfg.MaxPlayers)
	players = append(players, queue...)
	players = append(players, bots...)
	return Result{
		Matched:    true,
		Players:    players,
		BotsAdded:  need,
		StartDelay: m.cfg.StartDelay,
		Progress:   1,
	}, nil
}

// newBots creates n bots whose names differ from each other and from
// everyone in queue.
func (m *Matchmaker) newBots(n int, queue []*game.Player) ([]*game.Player, error) {
	taken := make(map[string]bool, len(queue)+n)
	for _, p := range queue {
		taken[p.Name] = true
	}

	names := slices.Clone(m.cfg.Names)
	m.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	difficulties := make([]game.Difficulty, 0, len(m.cfg.Profiles))
	for _, d := range game.Difficulties {
		if _, ok := m.cfg.Profiles[d]; ok {
			difficulties = append(difficulties, d)
		}
	}
	if len(difficulties) == 0 {
		return nil, fmt.Errorf("matchmaking: no bot profiles configured")
	}

	bots := make([]*game.Player, 0, n)
	for i := 0; i < n; i++ {
		name := m.uniqueName(names, taken)
		taken[name] = true

		id, err := m.newID()
		if err != nil {
			return nil, fmt.Errorf("matchmaking: bot id: %w", err)
		}
		d := difficulties[m.rng.IntN(len(difficulties))]
		bots = append(bots, game.NewBot(id, name, m.cfg.StartingChips, m.cfg.Profiles[d]))
	}
	return bots, nil
}

// uniqueName takes the first free name from the shuffled pool, then numbers
// names once the pool runs dry.
func (m *Matchmaker) uniqueName(pool []string, taken map[string]bool) string {
	for _, name := range pool {
		if !taken[name] {
			return name
		}
	}
	for n := 2; ; n++ {
		for _, name := range pool {
			if candidate := fmt.Sprintf("%s %d", name, n); !taken[candidate] {
				return candidate
			}
		}
	}
}

func (m *Matchmaker) newID() (string, error) {
	if m.ids == nil {
		return uuid.NewString(), nil
	}
	id, err := uuid.NewRandomFromReader(m.ids)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Progress is how close the queue is to starting, in [0, 1]: the larger of
// the time waited against the timeout and the seats filled.
func (m *Matchmaker) Progress(queue []*game.Player, waitStart, now time.Time) float64 {
	timeProgress := 1.0
	if m.cfg.Timeout > 0 {
		timeProgress = min(1, float64(elapsed(waitStart, now))/float64(m.cfg.Timeout))
	}
	seatProgress := min(1, float64(len(queue))/float64(m.cfg.MaxPlayers))
	return max(timeProgress, seatProgress)
}

// Remaining is the wait left before bots are added, in whole seconds.
func (m *Matchmaker) Remaining(waitStart, now time.Time) time.Duration {
	return max(0, m.cfg.Timeout-elapsed(waitStart, now))
}
