package matchmaking

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djacobfi/8bit-poker/internal/bot"
	"github.com/djacobfi/8bit-poker/internal/game"
	"github.com/djacobfi/8bit-poker/internal/randutil"
)

var start = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func queue(n int) []*game.Player {
	players := make([]*game.Player, n)
	for i := range players {
		players[i] = game.NewHuman(fmt.Sprintf("h%d", i), fmt.Sprintf("Human %d", i), 1000)
	}
	return players
}

func newMatchmaker(cfg Config) *Matchmaker {
	return New(cfg, randutil.New(1), WithIDSource(randutil.Reader(randutil.New(2))))
}

func TestMatchFullTableStartsImmediately(t *testing.T) {
	t.Parallel()

	m := newMatchmaker(DefaultConfig())
	q := queue(6)

	res, err := m.Match(q, start, start)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Len(t, res.Players, 4)
	assert.Equal(t, q[:4], res.Players)
	assert.Zero(t, res.BotsAdded)
	assert.Zero(t, res.StartDelay)
	assert.InDelta(t, 1.0, res.Progress, 1e-9)
}

func TestMatchWaitsBeforeTimeout(t *testing.T) {
	t.Parallel()

	m := newMatchmaker(DefaultConfig())
	q := queue(2)

	// 11.9s floors to 11s, under the 12s timeout.
	res, err := m.Match(q, start, start.Add(11900*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, q, res.Players)
	assert.Zero(t, res.BotsAdded)
	assert.Len(t, q, 2, "queue untouched")
	assert.InDelta(t, 11.0/12.0, res.Progress, 1e-9)
	assert.InDelta(t, m.Progress(q, start, start.Add(11900*time.Millisecond)), res.Progress, 1e-9)
}

func TestMatchFillsWithBots(t *testing.T) {
	t.Parallel()

	m := newMatchmaker(DefaultConfig())
	q := queue(1)

	res, err := m.Match(q, start, start.Add(12*time.Second))
	require.NoError(t, err)
	require.True(t, res.Matched)
	require.Len(t, res.Players, 4)
	assert.Equal(t, 3, res.BotsAdded)
	assert.Equal(t, time.Second, res.StartDelay)
	assert.Same(t, q[0], res.Players[0])
	assert.InDelta(t, 1.0, res.Progress, 1e-9)

	names := map[string]bool{}
	for _, p := range res.Players[1:] {
		require.True(t, p.IsBot())
		assert.Equal(t, 1000, p.Chips)
		assert.Contains(t, DefaultNames, p.Name)
		assert.False(t, names[p.Name], "duplicate name %s", p.Name)
		names[p.Name] = true

		_, err := uuid.Parse(p.ID)
		assert.NoError(t, err)

		assert.Equal(t, bot.DefaultProfiles[p.Bot.Difficulty], *p.Bot, "personality matches difficulty")
	}

	// The game engine accepts the table as is.
	_, err = game.CreateGame(res.Players, 10)
	require.NoError(t, err)
}

func TestMatchNeedsMinimumPlayers(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MinPlayers = 2
	m := newMatchmaker(cfg)

	res, err := m.Match(queue(1), start, start.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Matched)

	res, err = m.Match(queue(2), start, start.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 2, res.BotsAdded)
}

func TestBotNamesStayUnique(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxPlayers = 10
	cfg.Names = []string{"Ace High", "River Rat"}
	m := newMatchmaker(cfg)

	// A human already uses one of the pool names.
	q := queue(1)
	q[0].Name = "River Rat"

	res, err := m.Match(q, start, start.Add(cfg.Timeout))
	require.NoError(t, err)
	require.Len(t, res.Players, 10)

	seen := map[string]bool{}
	ids := map[string]bool{}
	for _, p := range res.Players {
		assert.False(t, seen[p.Name], "duplicate name %s", p.Name)
		seen[p.Name] = true
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
	}
	assert.True(t, seen["Ace High"])
	assert.True(t, seen["River Rat 2"])
	assert.True(t, seen["Ace High 2"])
}

func TestMatchIsReproducible(t *testing.T) {
	t.Parallel()

	a, err := newMatchmaker(DefaultConfig()).Match(queue(1), start, start.Add(time.Hour))
	require.NoError(t, err)
	b, err := newMatchmaker(DefaultConfig()).Match(queue(1), start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProgress(t *testing.T) {
	t.Parallel()

	m := newMatchmaker(DefaultConfig())

	tests := []struct {
		name   string
		queued int
		wait   time.Duration
		want   float64
	}{
		{"nothing yet", 0, 0, 0},
		{"seats dominate", 2, 3 * time.Second, 0.5},
		{"time dominates", 1, 6 * time.Second, 0.5},
		{"partial seconds floor", 0, 3999 * time.Millisecond, 0.25},
		{"capped", 0, time.Minute, 1},
		{"overfull queue", 9, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Progress(queue(tt.queued), start, start.Add(tt.wait))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	m := newMatchmaker(DefaultConfig())
	assert.Equal(t, 12*time.Second, m.Remaining(start, start))
	assert.Equal(t, 8*time.Second, m.Remaining(start, start.Add(4500*time.Millisecond)))
	assert.Zero(t, m.Remaining(start, start.Add(time.Minute)))
	assert.Equal(t, 12*time.Second, m.Remaining(start, start.Add(-time.Second)), "clock skew")
	assert.False(t, m.TimedOut(start, start.Add(11*time.Second)))
	assert.True(t, m.TimedOut(start, start.Add(12*time.Second)))
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	m := New(Config{Timeout: time.Second}, randutil.New(1))
	res, err := m.Match(queue(1), start, start.Add(time.Second))
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Len(t, res.Players, 4)
	assert.Zero(t, res.StartDelay)
}
