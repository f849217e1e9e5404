package poker

import (
	"errors"
	"fmt"
	"slices"
)

// HandType enumerates the hand categories. The numeric value is the hand's
// rank, 1 (high card) through 10 (royal flush).
type HandType uint8

const (
	HighCard HandType = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable hand description.
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Rank returns the 1-10 rank of the hand type.
func (t HandType) Rank() int {
	return int(t)
}

// ErrInvalidHand is returned by Evaluate for card sets it cannot rank.
var ErrInvalidHand = errors.New("poker: invalid hand")

// HandResult is the best five-card hand found in a set of cards.
type HandResult struct {
	Type    HandType
	Cards   []Card // best five, most significant first
	Kickers []int  // tie-break values, compared lexicographically
	Score   int64  // single comparable number, agrees with Compare
}

// Name returns the display name of the hand type.
func (h HandResult) Name() string {
	return h.Type.String()
}

// String returns e.g. "Full House [K♠ K♥ K♦ 9♣ 9♠]"
func (h HandResult) String() string {
	return fmt.Sprintf("%s [%s]", h.Type, FormatCards(h.Cards))
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie. Hands
// are ordered by type and then by kicker sequence.
func Compare(a, b HandResult) int {
	switch {
	case a.Type > b.Type:
		return 1
	case a.Type < b.Type:
		return -1
	}
	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		switch {
		case a.Kickers[i] > b.Kickers[i]:
			return 1
		case a.Kickers[i] < b.Kickers[i]:
			return -1
		}
	}
	return 0
}

// Evaluate returns the best five-card hand that can be made from 5 to 7
// cards. Every five-card subset is examined, so the result does not depend
// on input order.
func Evaluate(cards []Card) (HandResult, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandResult{}, fmt.Errorf("%w: need 5-7 cards, got %d", ErrInvalidHand, len(cards))
	}
	var seen [DeckSize]bool
	for _, c := range cards {
		if !c.Valid() {
			return HandResult{}, fmt.Errorf("%w: invalid card %v", ErrInvalidHand, c)
		}
		if seen[c.index()] {
			return HandResult{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		seen[c.index()] = true
	}

	var (
		best  HandResult
		found bool
		combo [5]Card
	)
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						combo = [5]Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						result := evaluateFive(combo)
						if !found || Compare(result, best) > 0 {
							best, found = result, true
						}
					}
				}
			}
		}
	}
	return best, nil
}

// MustEvaluate is Evaluate for callers that have already validated their
// cards. It panics on error.
func MustEvaluate(cards []Card) HandResult {
	result, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return result
}

// evaluateFive classifies exactly five distinct cards.
func evaluateFive(five [5]Card) HandResult {
	sorted := five[:]
	slices.SortFunc(sorted, func(a, b Card) int {
		if a.Rank != b.Rank {
			return int(b.Rank) - int(a.Rank)
		}
		return int(b.Suit) - int(a.Suit)
	})

	flush := true
	for _, c := range sorted[1:] {
		if c.Suit != sorted[0].Suit {
			flush = false
			break
		}
	}
	straightHigh, wheel := straightHighCard(sorted)

	if straightHigh > 0 {
		cards := sorted
		if wheel {
			// Ace plays low: 5 4 3 2 A
			cards = append(slices.Clone(sorted[1:]), sorted[0])
		}
		// Five distinct ranks rule out pairs, so a straight is final here.
		switch {
		case flush && straightHigh == int(Ace):
			return newResult(RoyalFlush, cards, straightHigh)
		case flush:
			return newResult(StraightFlush, cards, straightHigh)
		default:
			return newResult(Straight, cards, straightHigh)
		}
	}

	groups := groupByRank(sorted)
	switch {
	case groups[0].count == 4:
		return newResult(FourOfAKind, groupedCards(groups), groups[0].value, groups[1].value)
	case groups[0].count == 3 && groups[1].count == 2:
		return newResult(FullHouse, groupedCards(groups), groups[0].value, groups[1].value)
	case flush:
		return newResult(Flush, sorted, values(sorted)...)
	case groups[0].count == 3:
		return newResult(ThreeOfAKind, groupedCards(groups), groups[0].value, groups[1].value, groups[2].value)
	case groups[0].count == 2 && groups[1].count == 2:
		return newResult(TwoPair, groupedCards(groups), groups[0].value, groups[1].value, groups[2].value)
	case groups[0].count == 2:
		return newResult(OnePair, groupedCards(groups), groups[0].value, groups[1].value, groups[2].value, groups[3].value)
	default:
		return newResult(HighCard, sorted, values(sorted)...)
	}
}

// straightHighCard returns the high card value of a straight in cards sorted
// by descending rank, or 0. wheel is true for A-2-3-4-5.
func straightHighCard(sorted []Card) (high int, wheel bool) {
	consecutive := true
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Rank != sorted[i-1].Rank-1 {
			consecutive = false
			break
		}
	}
	if consecutive {
		return sorted[0].Value(), false
	}
	if sorted[0].Rank == Ace && sorted[1].Rank == Five && sorted[2].Rank == Four &&
		sorted[3].Rank == Three && sorted[4].Rank == Two {
		return int(Five), true
	}
	return 0, false
}

type rankGroup struct {
	value int
	count int
	cards []Card
}

// groupByRank groups cards by rank, largest group first and higher rank
// first within equal sizes.
func groupByRank(sorted []Card) []rankGroup {
	var groups []rankGroup
	for _, c := range sorted {
		if n := len(groups); n > 0 && groups[n-1].value == c.Value() {
			groups[n-1].count++
			groups[n-1].cards = append(groups[n-1].cards, c)
			continue
		}
		groups = append(groups, rankGroup{value: c.Value(), count: 1, cards: []Card{c}})
	}
	slices.SortStableFunc(groups, func(a, b rankGroup) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return b.value - a.value
	})
	return groups
}

func groupedCards(groups []rankGroup) []Card {
	cards := make([]Card, 0, 5)
	for _, g := range groups {
		cards = append(cards, g.cards...)
	}
	return cards
}

func values(cards []Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Value()
	}
	return out
}

// scoreBase is one more than the largest kicker value.
const scoreBase = 15

func newResult(t HandType, cards []Card, kickers ...int) HandResult {
	score := int64(t)
	for i := 0; i < 5; i++ {
		score *= scoreBase
		if i < len(kickers) {
			score += int64(kickers[i])
		}
	}
	return HandResult{
		Type:    t,
		Cards:   slices.Clone(cards),
		Kickers: kickers,
		Score:   score,
	}
}
