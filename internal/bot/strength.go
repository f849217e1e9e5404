package bot

import (
	"fmt"

	"github.com/djacobfi/8bit-poker/poker"
)

// Strength is a rough 0-1 estimate of how likely a holding is to win.
type Strength float64

// Label buckets the estimate for reasoning strings.
func (s Strength) Label() string {
	switch {
	case s >= 0.85:
		return "very strong"
	case s >= 0.65:
		return "strong"
	case s >= 0.5:
		return "medium"
	case s >= 0.3:
		return "weak"
	default:
		return "very weak"
	}
}

func (s Strength) String() string {
	return fmt.Sprintf("%.0f%%", float64(s)*100)
}

// neutral is used when there is nothing to evaluate.
const neutral Strength = 0.5

// madeHand maps a made hand to its strength once the flop is out.
var madeHand = map[poker.HandType]Strength{
	poker.RoyalFlush:    0.99,
	poker.StraightFlush: 0.95,
	poker.FourOfAKind:   0.90,
	poker.FullHouse:     0.85,
	poker.Flush:         0.75,
	poker.Straight:      0.70,
	poker.ThreeOfAKind:  0.65,
	poker.TwoPair:       0.55,
	poker.OnePair:       0.40,
	poker.HighCard:      0.20,
}

// PreflopStrength rates two hole cards from their pair, suit, gap and high
// card features alone.
func PreflopStrength(hole []poker.Card) Strength {
	if len(hole) != 2 {
		return neutral
	}
	f := poker.DescribeHoleCards(hole[0], hole[1])
	ace, king, ten := int(poker.Ace), int(poker.King), int(poker.Ten)

	switch {
	case f.Pair && f.High >= int(poker.Jack):
		return 0.85
	case f.Pair && f.High >= int(poker.Seven):
		return 0.70
	case f.Pair:
		return 0.55
	case f.High == ace && f.Low >= ten:
		return 0.80
	case f.High == king && f.Low >= ten:
		return 0.75
	case f.High == ace && f.Suited:
		return 0.70
	case f.Suited && f.Connected && f.High >= ten:
		return 0.65
	default:
		return 0.45
	}
}

// HandStrength rates hole cards against the board. Before the flop it uses
// PreflopStrength; after, the category of the best made hand.
func HandStrength(hole, community []poker.Card) (Strength, *poker.HandResult) {
	if len(community) < 3 {
		return PreflopStrength(hole), nil
	}
	cards := make([]poker.Card, 0, len(hole)+len(community))
	cards = append(cards, hole...)
	cards = append(cards, community...)
	result, err := poker.Evaluate(cards)
	if err != nil {
		return neutral, nil
	}
	return madeHand[result.Type], &result
}

// PotOdds is the pot divided by the amount to call, or zero when there is
// nothing to call.
func PotOdds(pot, toCall int) float64 {
	if toCall <= 0 {
		return 0
	}
	return float64(pot) / float64(toCall)
}
