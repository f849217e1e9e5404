// Package simulator plays bot-only tables to completion, in parallel, and
// reports how one tracked seat fared.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/djacobfi/8bit-poker/internal/config"
	"github.com/djacobfi/8bit-poker/internal/fileutil"
	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/internal/matchmaking"
	"github.com/djacobfi/8bit-poker/internal/phh"
	"github.com/djacobfi/8bit-poker/internal/randutil"
	"github.com/djacobfi/8bit-poker/internal/statistics"
	"github.com/djacobfi/8bit-poker/internal/table"
)

// HeroID is the tracked seat's player id.
const HeroID = "hero"

// Config holds configuration for running simulations.
type Config struct {
	Tables   int
	Hands    int // per table
	Seed     int64
	Timeout  time.Duration // per table
	Hero     game.Difficulty
	Game     *config.Config
	Logger   *log.Logger
	Parallel int // tables run at once, 0 for no limit

	// HistoryDir, when set, receives one .phhs hand history file per table.
	HistoryDir string
}

// Seat is one player's standing at the end of a table.
type Seat struct {
	ID         string
	Name       string
	Difficulty game.Difficulty
	Chips      int
}

// TableResult is the outcome of one table.
type TableResult struct {
	ID    string
	Hands int
	Rake  int
	Seats []Seat
	Hero  *statistics.Statistics

	History []*phh.HandHistory
	// HistoryFile is where History was written, if anywhere.
	HistoryFile string
}

// Result aggregates every table.
type Result struct {
	Tables []TableResult
	Hero   *statistics.Statistics
	Hands  int
	Rake   int
}

// Simulator runs poker table simulations.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration.
func New(cfg Config) *Simulator {
	if cfg.Game == nil {
		cfg.Game = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Hero == "" {
		cfg.Hero = game.Intermediate
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	return &Simulator{config: cfg}
}

// Run plays every table. Tables share nothing but the logger; each one gets
// its own random source derived from the seed, so results do not depend on
// scheduling.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Tables <= 0 || s.config.Hands <= 0 {
		return nil, fmt.Errorf("simulator: need at least one table and one hand")
	}
	if err := s.config.Game.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}

	root := randutil.New(s.config.Seed)
	rngs := make([]*rand.Rand, s.config.Tables)
	for i := range rngs {
		rngs[i] = randutil.Derive(root)
	}

	results := make([]TableResult, s.config.Tables)
	g, ctx := errgroup.WithContext(ctx)
	if s.config.Parallel > 0 {
		g.SetLimit(s.config.Parallel)
	}
	for i := range results {
		g.Go(func() error {
			res, err := s.runTable(ctx, fmt.Sprintf("table-%d", i+1), rngs[i])
			if err != nil {
				return fmt.Errorf("table %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Tables: results, Hero: &statistics.Statistics{}}
	for _, r := range results {
		out.Hero.Merge(r.Hero)
		out.Hands += r.Hands
		out.Rake += r.Rake
	}
	if err := out.Hero.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return out, nil
}

// seatTable fills a table around the hero through matchmaking, with bots
// that act without a thinking delay.
func (s *Simulator) seatTable(rng *rand.Rand) ([]*game.Player, error) {
	mmCfg, err := s.config.Game.MatchmakerConfig()
	if err != nil {
		return nil, err
	}
	mmCfg.MinPlayers = 1

	profile, ok := mmCfg.Profiles[s.config.Hero]
	if !ok {
		return nil, fmt.Errorf("unknown hero difficulty %q", s.config.Hero)
	}
	hero := game.NewBot(HeroID, "Hero", mmCfg.StartingChips, profile)
	mm := matchmaking.New(mmCfg, randutil.Derive(rng),
		matchmaking.WithIDSource(randutil.Reader(randutil.Derive(rng))),
		matchmaking.WithLogger(s.config.Logger))

	// The seed is the only clock that matters here: any wait past the
	// timeout fills the table.
	var epoch time.Time
	res, err := mm.Match([]*game.Player{hero}, epoch, epoch.Add(mmCfg.Timeout))
	if err != nil {
		return nil, err
	}
	if !res.Matched {
		return nil, errors.New("matchmaking did not fill the table")
	}
	for _, p := range res.Players {
		p.Bot.ReactionMin, p.Bot.ReactionMax = 0, 0
	}
	return res.Players, nil
}

func (s *Simulator) runTable(ctx context.Context, id string, rng *rand.Rand) (TableResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	players, err := s.seatTable(rng)
	if err != nil {
		return TableResult{}, err
	}

	gc := s.config.Game
	clock := quartz.NewReal()
	g, err := game.CreateGame(players, gc.Table.BigBlind,
		game.WithSmallBlind(gc.Table.SmallBlind),
		game.WithClock(clock),
		game.WithRNG(randutil.Derive(rng)),
		game.WithRake(gc.RakeFunc()),
	)
	if err != nil {
		return TableResult{}, err
	}

	rec := newRecorder(id, s.config.Hands, gc.Table.BigBlind)
	tbl, err := table.New(id, g, table.Config{AutoNextHand: true},
		table.WithClock(clock),
		table.WithRNG(randutil.Derive(rng)),
		table.WithLogger(s.config.Logger),
		table.WithSubscriber(rec.observe),
	)
	if err != nil {
		return TableResult{}, err
	}
	defer tbl.Close()

	if err := tbl.StartHand(); err != nil {
		return TableResult{}, err
	}

	select {
	case <-rec.done:
	case <-ctx.Done():
		return TableResult{}, fmt.Errorf("simulation stopped after %d hands: %w", rec.hands(), ctx.Err())
	}
	tbl.Close()
	if err := rec.failure(); err != nil {
		return TableResult{}, err
	}

	final := rec.final()
	result := TableResult{ID: id, Hands: rec.hands(), Rake: rec.rake(), Hero: rec.stats(), History: rec.history()}
	for _, p := range final.Players {
		seat := Seat{ID: p.ID, Name: p.Name, Chips: p.Chips}
		if p.Bot != nil {
			seat.Difficulty = p.Bot.Difficulty
		}
		result.Seats = append(result.Seats, seat)
	}
	if s.config.HistoryDir != "" {
		data, err := phh.Marshal(result.History)
		if err != nil {
			return TableResult{}, err
		}
		result.HistoryFile = filepath.Join(s.config.HistoryDir, id+".phhs")
		if err := fileutil.WriteFileAtomic(result.HistoryFile, data, 0o644); err != nil {
			return TableResult{}, fmt.Errorf("writing hand history: %w", err)
		}
	}
	s.config.Logger.Info("table finished", "table", id, "hands", result.Hands, "rake", result.Rake, "hero_bb", rec.stats().SumBB)
	return result, nil
}

// recorder follows table events until the hand limit is reached or the table
// can no longer continue.
type recorder struct {
	builder  *phh.Builder
	limit    int
	bigBlind int
	done     chan struct{}

	mu        sync.Mutex
	finished  bool
	count     int
	raked     int
	heroStart int
	last      *game.GameState
	err       error
	hero      statistics.Statistics
	played    []*phh.HandHistory
}

func newRecorder(table string, limit, bigBlind int) *recorder {
	return &recorder{
		builder:  phh.NewBuilder(table),
		limit:    limit,
		bigBlind: bigBlind,
		done:     make(chan struct{}),
	}
}

func (r *recorder) observe(e table.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}

	var err error
	switch e.Type {
	case table.EventHandStart:
		if hero := e.State.PlayerByID(HeroID); hero != nil {
			r.heroStart = hero.Chips + hero.TotalBet
		}
		r.builder.Start(e.State)

	case table.EventPlayerAction:
		err = r.builder.Action(e.State, *e.Action)

	case table.EventStreetChange:
		err = r.builder.Street(e.State)

	case table.EventHandEnd:
		var hand *phh.HandHistory
		if hand, err = r.builder.Finish(e.State); err != nil {
			break
		}
		r.played = append(r.played, hand)
		r.count++
		r.raked += e.State.Rake
		r.last = e.State
		r.recordHero(e.State)

		hero := e.State.PlayerByID(HeroID)
		if r.count >= r.limit || table.Funded(e.State) < 2 || hero == nil || hero.Chips == 0 {
			r.finish()
		}

	case table.EventHalted:
		err = e.Err
	}

	if err != nil {
		r.err = err
		r.finish()
	}
}

func (r *recorder) recordHero(s *game.GameState) {
	seat := -1
	for i, p := range s.Players {
		if p.ID == HeroID {
			seat = i
		}
	}
	if seat < 0 || s.Players[seat].Status == game.StatusSittingOut {
		return
	}
	n := len(s.Players)
	r.hero.Add(statistics.HandResult{
		NetBB:    float64(s.Players[seat].Chips-r.heroStart) / float64(r.bigBlind),
		Position: (seat - s.DealerIndex + n) % n,
		Showdown: s.Round == game.Showdown,
		Pot:      game.TotalPot(s.Pots) - s.Rake,
		Reached:  s.Round,
	})
}

func (r *recorder) finish() {
	r.finished = true
	close(r.done)
}

func (r *recorder) hands() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *recorder) rake() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raked
}

func (r *recorder) final() *game.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *recorder) failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *recorder) history() []*phh.HandHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.played
}

func (r *recorder) stats() *statistics.Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.hero
	return &s
}
