package game

import (
	"fmt"

	"github.com/coder/quartz"

	"github.com/djacobfi/8bit-poker/internal/handid"
	"github.com/djacobfi/8bit-poker/internal/randutil"
	"github.com/djacobfi/8bit-poker/poker"
)

// MaxPlayers is the largest table the engine deals to.
const MaxPlayers = 10

// CreateGame seats players and returns a game waiting for its first hand.
// The players are copied; the caller's values are never touched.
//
// Example usage:
//
//	g, err := game.CreateGame(players, 10,
//	    game.WithRNG(randutil.New(42)),
//	    game.WithClock(clock))
//	g, err = game.StartHand(g)
func CreateGame(players []*Player, bigBlind int, opts ...GameOption) (*GameState, error) {
	cfg := &gameConfig{
		smallBlind: bigBlind / 2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch {
	case len(players) < 2 || len(players) > MaxPlayers:
		return nil, fmt.Errorf("%w: need 2-%d players, got %d", ErrInvalidGame, MaxPlayers, len(players))
	case bigBlind <= 0:
		return nil, fmt.Errorf("%w: big blind must be positive", ErrInvalidGame)
	case cfg.smallBlind <= 0 || cfg.smallBlind > bigBlind:
		return nil, fmt.Errorf("%w: small blind %d must be between 1 and the big blind", ErrInvalidGame, cfg.smallBlind)
	case cfg.dealer < 0 || cfg.dealer >= len(players):
		return nil, fmt.Errorf("%w: dealer seat %d out of range", ErrInvalidGame, cfg.dealer)
	}

	seen := make(map[string]bool, len(players))
	seated := make([]*Player, len(players))
	for i, p := range players {
		switch {
		case p == nil || p.ID == "":
			return nil, fmt.Errorf("%w: seat %d has no player id", ErrInvalidGame, i)
		case seen[p.ID]:
			return nil, fmt.Errorf("%w: duplicate player id %q", ErrInvalidGame, p.ID)
		case p.Chips < 0:
			return nil, fmt.Errorf("%w: player %q has negative chips", ErrInvalidGame, p.ID)
		case p.Kind == Bot && p.Bot == nil:
			return nil, fmt.Errorf("%w: bot %q has no profile", ErrInvalidGame, p.ID)
		}
		seen[p.ID] = true

		c := p.Clone()
		c.Bet, c.TotalBet, c.HasActed, c.IsDealer = 0, 0, false, false
		c.HoleCards, c.History = nil, nil
		c.Status = StatusActive
		if c.Chips == 0 {
			c.Status = StatusSittingOut
		}
		seated[i] = c
	}

	env := cfg.env
	if env.clock == nil {
		env.clock = quartz.NewReal()
	}
	if env.rng == nil {
		env.rng, _ = randutil.NewFromTime()
	}
	if env.rake == nil {
		env.rake = NoRake
	}
	if env.ids == nil {
		env.ids = handid.NewGenerator(env.clock, nil)
	}

	return &GameState{
		Players:         seated,
		Phase:           PhaseWaiting,
		Round:           PreFlop,
		CurrentPlayer:   -1,
		DealerIndex:     cfg.dealer - 1, // StartHand moves the button on
		SmallBlindIndex: -1,
		BigBlindIndex:   -1,
		SmallBlind:      cfg.smallBlind,
		BigBlind:        bigBlind,
		MinRaise:        bigBlind,
		env:             &env,
	}, nil
}

// StartHand moves the button, shuffles, posts blinds, deals hole cards and
// sets the first player to act. Players without chips sit the hand out.
func StartHand(state *GameState) (*GameState, error) {
	if state.Phase == PhasePlaying {
		return nil, ErrHandInProgress
	}

	s := state.Clone()
	for _, p := range s.Players {
		p.Bet, p.TotalBet, p.HasActed, p.IsDealer = 0, 0, false, false
		p.HoleCards, p.History = nil, nil
		p.Status = StatusActive
		if p.Chips == 0 {
			p.Status = StatusSittingOut
		}
	}
	if s.seatedCount() < 2 {
		return nil, ErrNotEnoughPlayers
	}

	s.HandNumber++
	s.ID = s.env.ids.Next()
	s.Round = PreFlop
	s.Phase = PhasePlaying
	s.Community = nil
	s.Pots = nil
	s.Winners = nil
	s.Refund = Refund{}
	s.Rake = 0
	s.CurrentBet = 0
	s.MinRaise = s.BigBlind
	s.StartedAt = s.env.clock.Now()
	s.LastActionAt = s.StartedAt
	s.handChips = ChipTotal(s.Players)

	if s.env.deck != nil {
		s.deck = s.env.deck.Clone()
	} else {
		s.deck = poker.NewDeck().Shuffle(s.env.rng)
	}

	s.DealerIndex = s.nextSeated(s.DealerIndex)
	s.Players[s.DealerIndex].IsDealer = true
	if s.seatedCount() == 2 {
		// Heads-up: the button posts the small blind.
		s.SmallBlindIndex = s.DealerIndex
	} else {
		s.SmallBlindIndex = s.nextSeated(s.DealerIndex)
	}
	s.BigBlindIndex = s.nextSeated(s.SmallBlindIndex)

	s.postBlind(s.SmallBlindIndex, s.SmallBlind)
	s.postBlind(s.BigBlindIndex, s.BigBlind)
	s.CurrentBet = s.BigBlind
	if s.canActCount() <= 1 {
		// Nobody is left to match a full blind, so only the live bets count.
		s.CurrentBet = 0
		for _, p := range s.Players {
			s.CurrentBet = max(s.CurrentBet, p.Bet)
		}
	}

	if err := s.dealHoleCards(); err != nil {
		return nil, err
	}

	s.CurrentPlayer = s.nextToAct(s.BigBlindIndex + 1)
	if s.seatedCount() == 2 {
		s.CurrentPlayer = s.nextToAct(s.SmallBlindIndex)
	}
	if err := s.advance(); err != nil {
		return nil, err
	}
	return s, nil
}

// canActCount is the number of players who can still put chips in.
func (s *GameState) canActCount() int {
	n := 0
	for _, p := range s.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// postBlind deducts a blind; a short stack posts what it has and is all-in.
func (s *GameState) postBlind(seat, amount int) {
	p := s.Players[seat]
	posted := min(amount, p.Chips)
	p.Chips -= posted
	p.Bet += posted
	p.TotalBet += posted
	if p.Chips == 0 {
		p.Status = StatusAllIn
	}
}

// dealHoleCards deals one card at a time, twice around, starting left of the
// button.
func (s *GameState) dealHoleCards() error {
	for range 2 {
		seat := s.DealerIndex
		for range s.seatedCount() {
			seat = s.nextSeated(seat)
			card, err := s.deck.Deal()
			if err != nil {
				return fmt.Errorf("%w: dealing hole cards: %w", ErrInvariant, err)
			}
			s.Players[seat].HoleCards = append(s.Players[seat].HoleCards, card)
		}
	}
	return nil
}

// SubmitAction validates an action by playerID and, if it is legal, returns
// the resulting state and the recorded action. The input state is never
// modified. Illegal actions return a *ValidationError; ErrUnknownPlayer and
// ErrNotYourTurn indicate caller bugs.
func SubmitAction(state *GameState, playerID string, typ ActionType, amount int) (*GameState, Action, error) {
	seat := state.indexOf(playerID)
	if seat < 0 {
		return nil, Action{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}

	m, err := validate(state, seat, typ, amount)
	if err != nil {
		return nil, Action{}, err
	}

	s := state.Clone()
	action := s.apply(seat, m)
	s.CurrentPlayer = s.nextToAct(seat + 1)
	if err := s.advance(); err != nil {
		return nil, Action{}, err
	}
	return s, action, nil
}

// advance moves the hand forward until someone must act or the hand is over.
func (s *GameState) advance() error {
	for {
		if s.inHandCount() <= 1 {
			return s.finishUncontested()
		}
		if !s.roundComplete() {
			if s.CurrentPlayer < 0 || !s.needsToAct(s.Players[s.CurrentPlayer]) {
				s.CurrentPlayer = s.nextToAct(s.CurrentPlayer + 1)
			}
			return nil
		}

		s.resetRound()
		s.Pots = ComputePots(s.Players)

		if s.Round == River {
			s.Round = Showdown
			s.CurrentPlayer = -1
			return s.settle()
		}

		s.Round++
		if err := s.dealBoard(s.Round.communityCards()); err != nil {
			return err
		}
		// Post-flop action starts left of the button.
		s.CurrentPlayer = s.nextToAct(s.DealerIndex + 1)
	}
}

// dealBoard deals community cards until the board has n cards.
func (s *GameState) dealBoard(n int) error {
	for len(s.Community) < n {
		card, err := s.deck.Deal()
		if err != nil {
			return fmt.Errorf("%w: dealing %s: %w", ErrInvariant, s.Round, err)
		}
		s.Community = append(s.Community, card)
	}
	return nil
}

// finishUncontested ends a hand everyone else folded. The rest of the board
// is still dealt for the record.
func (s *GameState) finishUncontested() error {
	if err := s.dealBoard(5); err != nil {
		return err
	}
	for _, p := range s.Players {
		p.Bet = 0
	}
	s.CurrentBet = 0
	s.CurrentPlayer = -1
	s.Pots = ComputePots(s.Players)
	return s.settle()
}

// settle returns any uncalled bet, pays out every pot and finishes the hand.
func (s *GameState) settle() error {
	if seat, amount := UncalledBet(s.Players); amount > 0 {
		s.Players[seat].Chips += amount
		s.Refund = Refund{PlayerID: s.Players[seat].ID, Amount: amount}
	}

	s.Pots = ComputePots(s.Players)
	s.Winners = DetermineWinners(s.Pots, s.Players, s.Community,
		WithButton(s.DealerIndex), WithPotRake(s.env.rake))

	paid := 0
	for _, w := range s.Winners {
		s.PlayerByID(w.PlayerID).Chips += w.Amount
		paid += w.Amount
	}
	s.Rake = TotalPot(s.Pots) - paid

	for _, p := range s.Players {
		p.Bet, p.TotalBet = 0, 0
	}
	s.CurrentBet = 0
	s.CurrentPlayer = -1
	s.Phase = PhaseFinished

	return s.CheckConservation(s.handChips)
}
