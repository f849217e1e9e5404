// Package statistics accumulates per-hand results for one seat across a
// simulation and summarizes them in big blinds per hand.
package statistics

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/djacobfi/8bit-poker/internal/game"
)

// HandResult is one hand from the tracked seat's point of view.
type HandResult struct {
	NetBB    float64    // chips won or lost, in big blinds
	Position int        // seats after the button, 0 is the button
	Showdown bool       // the hand was decided by the evaluator
	Pot      int        // chips paid out, rake excluded
	Reached  game.Round // last betting round played
}

// PositionStats accumulates results for one position.
type PositionStats struct {
	Hands int
	SumBB float64
}

// Statistics accumulates hand results.
type Statistics struct {
	Hands  int
	SumBB  float64
	Values []float64

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64

	Positions [game.MaxPlayers]PositionStats
	Reached   map[game.Round]int

	MaxPot int
}

// Add records one hand.
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.Values = append(s.Values, r.NetBB)

	if r.Showdown {
		s.ShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.NonShowdownWins++
		}
	}

	if r.Position >= 0 && r.Position < len(s.Positions) {
		s.Positions[r.Position].Hands++
		s.Positions[r.Position].SumBB += r.NetBB
	}

	if s.Reached == nil {
		s.Reached = make(map[game.Round]int)
	}
	s.Reached[r.Reached]++
	s.MaxPot = max(s.MaxPot, r.Pot)
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	for i := range s.Positions {
		s.Positions[i].Hands += other.Positions[i].Hands
		s.Positions[i].SumBB += other.Positions[i].SumBB
	}
	for r, n := range other.Reached {
		if s.Reached == nil {
			s.Reached = make(map[game.Round]int)
		}
		s.Reached[r] += n
	}
	s.MaxPot = max(s.MaxPot, other.MaxPot)
}

// Mean returns big blinds won per hand.
func (s *Statistics) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the sample variance.
func (s *Statistics) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(len(s.Values)))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean,
// using Student's t so small samples get a wider interval.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	if len(s.Values) < 2 {
		return mean, mean
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(s.Values) - 1)}
	margin := t.Quantile(0.975) * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median result.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at p in [0, 1], interpolating between
// neighbours.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// PositionMean returns the mean for a position, 0 being the button.
func (s *Statistics) PositionMean(position int) float64 {
	if position < 0 || position >= len(s.Positions) {
		return 0
	}
	ps := s.Positions[position]
	if ps.Hands == 0 {
		return 0
	}
	return ps.SumBB / float64(ps.Hands)
}

// Validate checks that the running totals agree with each other.
func (s *Statistics) Validate() error {
	if math.Abs(s.SumBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("ledger mismatch: total=%.6f, showdown=%.6f, non-showdown=%.6f",
			s.SumBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	total := 0
	for _, ps := range s.Positions {
		total += ps.Hands
	}
	if total != s.Hands {
		return fmt.Errorf("position hands total (%d) does not match total hands (%d)", total, s.Hands)
	}
	return nil
}
