package game

import (
	"slices"

	"github.com/djacobfi/8bit-poker/poker"
)

// PotKind distinguishes the main pot from side pots.
type PotKind int

const (
	PotMain PotKind = iota
	PotSide
)

func (k PotKind) String() string {
	return [...]string{"main", "side"}[k]
}

// Pot represents a pot (main or side)
type Pot struct {
	Kind     PotKind
	Amount   int
	Eligible []string // ids of players who can win it, in seat order
}

func clonePots(pots []Pot) []Pot {
	if pots == nil {
		return nil
	}
	out := make([]Pot, len(pots))
	for i, pot := range pots {
		out[i] = pot
		out[i].Eligible = slices.Clone(pot.Eligible)
	}
	return out
}

// TotalPot returns the total amount in all pots
func TotalPot(pots []Pot) int {
	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	return total
}

// PotBreakdown splits a pot list into main and side totals.
func PotBreakdown(pots []Pot) (main, side int) {
	for _, pot := range pots {
		if pot.Kind == PotMain {
			main += pot.Amount
		} else {
			side += pot.Amount
		}
	}
	return main, side
}

// UncalledBet finds the part of the largest contribution that nobody else
// matched. It returns the seat that made it and the excess, or -1 and 0.
func UncalledBet(players []*Player) (seat, amount int) {
	seat = -1
	top, second := 0, 0
	for i, p := range players {
		switch {
		case p.TotalBet > top:
			second, top, seat = top, p.TotalBet, i
		case p.TotalBet == top:
			seat = -1
			second = top
		case p.TotalBet > second:
			second = p.TotalBet
		}
	}
	if seat < 0 || top == second {
		return -1, 0
	}
	return seat, top - second
}

// ComputePots derives the main pot and side pots from each player's total
// contribution this hand. Each distinct contribution level among players
// still in the hand closes a pot; folded players' chips count toward the
// amounts but never toward eligibility. An uncalled excess is left out (see
// UncalledBet).
func ComputePots(players []*Player) []Pot {
	contrib := make([]int, len(players))
	for i, p := range players {
		contrib[i] = p.TotalBet
	}
	if seat, amount := UncalledBet(players); amount > 0 {
		contrib[seat] -= amount
	}

	var levels []int
	for i, p := range players {
		if p.InHand() && contrib[i] > 0 {
			levels = append(levels, contrib[i])
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var pots []Pot
	prev, collected := 0, 0
	for _, level := range levels {
		pot := Pot{Kind: PotSide}
		if len(pots) == 0 {
			pot.Kind = PotMain
		}
		for i, p := range players {
			pot.Amount += min(contrib[i], level) - min(contrib[i], prev)
			if p.InHand() && contrib[i] >= level {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		pots = append(pots, pot)
		collected += pot.Amount
		prev = level
	}

	// Folded chips above the last live level go to the last pot.
	total := 0
	for _, c := range contrib {
		total += c
	}
	if rest := total - collected; rest > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += rest
	}
	return pots
}

// WinnerInfo is one player's share of one pot.
type WinnerInfo struct {
	PlayerID string
	PotIndex int
	Amount   int
	Hand     *poker.HandResult // nil when the pot was not contested
}

// RakeFunc returns the house cut for a pot of the given size. Results are
// clamped to [0, pot].
type RakeFunc func(pot int) int

// NoRake takes nothing.
func NoRake(int) int { return 0 }

// PercentRake takes percent of each pot, at least minimum and, when maximum
// is positive, at most maximum.
func PercentRake(percent, minimum, maximum int) RakeFunc {
	return func(pot int) int {
		rake := pot * percent / 100
		rake = max(rake, minimum)
		if maximum > 0 {
			rake = min(rake, maximum)
		}
		return rake
	}
}

// SettleOption configures DetermineWinners.
type SettleOption func(*settleConfig)

type settleConfig struct {
	button int
	rake   RakeFunc
}

// WithButton sets the dealer seat. Odd chips from a split pot go one at a
// time to the tied winners in seat order starting left of the button.
func WithButton(seat int) SettleOption {
	return func(c *settleConfig) {
		c.button = seat
	}
}

// WithPotRake deducts rake from each pot before it is paid out.
func WithPotRake(rake RakeFunc) SettleOption {
	return func(c *settleConfig) {
		if rake != nil {
			c.rake = rake
		}
	}
}

// DetermineWinners pays out each pot to the best hand(s) among its eligible
// players. A pot with a single eligible player is awarded without looking at
// cards. Ties split evenly with odd chips handed out in seat order.
func DetermineWinners(pots []Pot, players []*Player, community []poker.Card, opts ...SettleOption) []WinnerInfo {
	cfg := settleConfig{button: -1, rake: NoRake}
	for _, opt := range opts {
		opt(&cfg)
	}

	seatOf := make(map[string]int, len(players))
	for i, p := range players {
		seatOf[p.ID] = i
	}
	// Seat distance from the first seat left of the button.
	order := func(id string) int {
		n := len(players)
		return ((seatOf[id]-cfg.button-1)%n + n) % n
	}

	var winners []WinnerInfo
	for potIdx, pot := range pots {
		var contenders []string
		for _, id := range pot.Eligible {
			if seat, ok := seatOf[id]; ok && players[seat].InHand() {
				contenders = append(contenders, id)
			}
		}
		if len(contenders) == 0 {
			continue
		}

		rake := min(max(cfg.rake(pot.Amount), 0), pot.Amount)
		net := pot.Amount - rake

		if len(contenders) == 1 {
			winners = append(winners, WinnerInfo{PlayerID: contenders[0], PotIndex: potIdx, Amount: net})
			continue
		}

		best, hands := bestHands(contenders, players, seatOf, community)
		slices.SortFunc(best, func(a, b string) int { return order(a) - order(b) })

		share, odd := net/len(best), net%len(best)
		for i, id := range best {
			amount := share
			if i < odd {
				amount++
			}
			winners = append(winners, WinnerInfo{PlayerID: id, PotIndex: potIdx, Amount: amount, Hand: hands[id]})
		}
	}
	return winners
}

// bestHands evaluates each contender and returns the ids holding the best
// hand. If no hand can be evaluated every contender ties.
func bestHands(contenders []string, players []*Player, seatOf map[string]int, community []poker.Card) ([]string, map[string]*poker.HandResult) {
	hands := make(map[string]*poker.HandResult, len(contenders))
	var best []string
	var top poker.HandResult

	for _, id := range contenders {
		p := players[seatOf[id]]
		cards := append(slices.Clone(p.HoleCards), community...)
		result, err := poker.Evaluate(cards)
		if err != nil {
			continue
		}
		hands[id] = &result

		switch cmp := poker.Compare(result, top); {
		case len(best) == 0 || cmp > 0:
			top = result
			best = []string{id}
		case cmp == 0:
			best = append(best, id)
		}
	}

	if len(best) == 0 {
		return slices.Clone(contenders), hands
	}
	return best, hands
}

// ConsolidateWinners merges per-pot awards into one entry per player, in the
// order players first appear. The best hand seen for a player is kept.
func ConsolidateWinners(winners []WinnerInfo) []WinnerInfo {
	var out []WinnerInfo
	index := make(map[string]int)
	for _, w := range winners {
		i, ok := index[w.PlayerID]
		if !ok {
			index[w.PlayerID] = len(out)
			out = append(out, w)
			continue
		}
		out[i].Amount += w.Amount
		if out[i].Hand == nil {
			out[i].Hand = w.Hand
		}
	}
	return out
}
