package poker

import (
	"errors"
	"math/rand/v2"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// ErrDeckExhausted is returned when dealing from an empty deck. Callers that
// only deal what the player count allows never see it, so it signals broken
// card accounting rather than a user error.
var ErrDeckExhausted = errors.New("poker: deck exhausted")

// Deck is an ordered sequence of cards. Dealing takes from the front.
type Deck struct {
	cards []Card
}

// NewDeck returns all 52 cards in canonical order (clubs, diamonds, hearts,
// spades; two through ace within each suit).
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return &Deck{cards: cards}
}

// NewDeckFromCards builds a deck with a fixed order, used to stack decks in
// tests and replays. The slice is copied.
func NewDeckFromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Shuffle returns a new deck holding a uniformly random permutation of d's
// cards (Fisher-Yates). d is left untouched.
func (d *Deck) Shuffle(rng *rand.Rand) *Deck {
	shuffled := append([]Card(nil), d.cards...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return &Deck{cards: shuffled}
}

// Deal removes and returns the front card.
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// DealN deals n cards, failing without consuming anything if fewer remain.
func (d *Deck) DealN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	cards := append([]Card(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return cards, nil
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the undealt cards in order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Clone returns an independent copy of the deck.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	return NewDeckFromCards(d.cards)
}
