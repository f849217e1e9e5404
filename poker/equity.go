package poker

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// equityWorkers is fixed so a seeded run gives the same numbers on any machine.
const equityWorkers = 8

// EquityResult is one hand's share of a Monte Carlo run.
type EquityResult struct {
	Hand  []Card
	Wins  int // outright
	Ties  int
	Share float64 // wins plus split fractions, in [0, Total]
	Total int
	Types map[HandType]int // made hand by the river
}

// Win returns the outright win rate.
func (r EquityResult) Win() float64 { return frac(r.Wins, r.Total) }

// Tie returns the split rate.
func (r EquityResult) Tie() float64 { return frac(r.Ties, r.Total) }

// Equity returns the expected share of the pot.
func (r EquityResult) Equity() float64 {
	if r.Total == 0 {
		return 0
	}
	return r.Share / float64(r.Total)
}

func frac(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// CheckDistinct returns an error naming the first card that appears twice
// across the given sets, or that is not a real card.
func CheckDistinct(sets ...[]Card) error {
	var seen [DeckSize]bool
	for _, set := range sets {
		for _, c := range set {
			if !c.Valid() {
				return fmt.Errorf("%w: invalid card %v", ErrInvalidHand, c)
			}
			if seen[c.index()] {
				return fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c.Notation())
			}
			seen[c.index()] = true
		}
	}
	return nil
}

// Equity deals out the rest of the board iterations times and counts how
// often each two-card hand wins. With a complete board there is nothing to
// sample and one evaluation is enough.
func Equity(ctx context.Context, hands [][]Card, board []Card, iterations int, rng *rand.Rand) ([]EquityResult, error) {
	if len(hands) < 2 {
		return nil, errors.New("poker: equity needs at least two hands")
	}
	if len(board) > 5 {
		return nil, fmt.Errorf("poker: board has %d cards", len(board))
	}
	for i, h := range hands {
		if len(h) != 2 {
			return nil, fmt.Errorf("poker: hand %d has %d cards", i+1, len(h))
		}
	}
	if err := CheckDistinct(append(hands[:len(hands):len(hands)], board)...); err != nil {
		return nil, err
	}
	if len(board) == 5 {
		iterations = 1
	}
	if iterations <= 0 {
		return nil, errors.New("poker: iterations must be positive")
	}

	var used [DeckSize]bool
	for _, c := range board {
		used[c.index()] = true
	}
	for _, h := range hands {
		for _, c := range h {
			used[c.index()] = true
		}
	}
	var stub []Card
	for _, c := range NewDeck().Cards() {
		if !used[c.index()] {
			stub = append(stub, c)
		}
	}

	workers := min(equityWorkers, iterations)
	partial := make([][]EquityResult, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := iterations / workers
		if w < iterations%workers {
			n++
		}
		wrng := rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
		g.Go(func() error {
			res, err := sampleEquity(ctx, hands, board, stub, n, wrng)
			partial[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := newEquityResults(hands)
	for _, part := range partial {
		for i := range results {
			results[i].Wins += part[i].Wins
			results[i].Ties += part[i].Ties
			results[i].Share += part[i].Share
			results[i].Total += part[i].Total
			for t, n := range part[i].Types {
				results[i].Types[t] += n
			}
		}
	}
	return results, nil
}

func newEquityResults(hands [][]Card) []EquityResult {
	results := make([]EquityResult, len(hands))
	for i, h := range hands {
		results[i] = EquityResult{Hand: h, Types: make(map[HandType]int)}
	}
	return results
}

func sampleEquity(ctx context.Context, hands [][]Card, board, stub []Card, n int, rng *rand.Rand) ([]EquityResult, error) {
	results := newEquityResults(hands)
	stub = append([]Card(nil), stub...)
	need := 5 - len(board)
	full := make([]Card, 5)
	copy(full, board)
	seven := make([]Card, 7)
	evals := make([]HandResult, len(hands))

	for iter := range n {
		if iter%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		// Partial Fisher-Yates: the first need cards of stub become the runout.
		for i := range need {
			j := i + rng.IntN(len(stub)-i)
			stub[i], stub[j] = stub[j], stub[i]
		}
		copy(full[len(board):], stub[:need])

		best := 0
		for i, h := range hands {
			copy(seven, h)
			copy(seven[2:], full)
			evals[i] = MustEvaluate(seven)
			results[i].Types[evals[i].Type]++
			if i > 0 && Compare(evals[i], evals[best]) > 0 {
				best = i
			}
		}

		winners := 0
		for i := range hands {
			if Compare(evals[i], evals[best]) == 0 {
				winners++
			}
		}
		for i := range hands {
			results[i].Total++
			if Compare(evals[i], evals[best]) != 0 {
				continue
			}
			results[i].Share += 1 / float64(winners)
			if winners == 1 {
				results[i].Wins++
			} else {
				results[i].Ties++
			}
		}
	}
	return results, nil
}
