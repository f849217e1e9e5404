package poker

// HoleCardCategory represents the strength category of hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// HoleCardFeatures are the pre-flop features a starting hand is judged by.
type HoleCardFeatures struct {
	High      int
	Low       int
	Pair      bool
	Suited    bool
	Gap       int  // High - Low
	Connected bool // within four ranks, so both can make one straight
}

// DescribeHoleCards extracts the pre-flop features of two hole cards.
func DescribeHoleCards(card1, card2 Card) HoleCardFeatures {
	high, low := card1.Value(), card2.Value()
	if low > high {
		high, low = low, high
	}
	return HoleCardFeatures{
		High:      high,
		Low:       low,
		Pair:      high == low,
		Suited:    card1.Suit == card2.Suit,
		Gap:       high - low,
		Connected: high != low && high-low <= 4,
	}
}

// CategorizeHoleCards provides a simple preflop hand categorization.
// Categories: Premium (JJ+, AK), Strong (TT, AQ/AJ), Medium (77+, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if !card1.Valid() || !card2.Valid() {
		return CategoryUnknown
	}
	f := DescribeHoleCards(card1, card2)

	switch {
	case f.Pair && f.Low >= int(Jack), f.High == int(Ace) && f.Low == int(King):
		return CategoryPremium
	case f.Pair && f.Low == int(Ten), f.High == int(Ace) && f.Low >= int(Jack):
		return CategoryStrong
	case f.Pair && f.Low >= int(Seven), f.Suited && f.Low >= int(Ten):
		return CategoryMedium
	case f.Pair, f.Suited && f.Gap <= 2:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}
