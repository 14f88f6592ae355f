package domain

import "errors"

// DealerID is the turn-order slot occupied by the automated dealer.
const DealerID = "dealer"

// ErrDeckExhausted is returned when a deal is requested from an empty deck.
// A single 52-card deck cannot legally run out with two players and a
// dealer, so hitting this means the session state is corrupt.
var ErrDeckExhausted = errors.New("deck exhausted")

// PlayerState tracks one seated player for the current round.
// Standing and Busted are each set at most once and are permanent for the
// round. Total is always recomputed from Hand, never set independently.
type PlayerState struct {
	UserID   string
	Hand     []Card
	Total    int
	Standing bool
	Busted   bool
	Chips    int64
}

// DealerState tracks the dealer's hand. The dealer has no standing flag;
// its stop condition is a fixed total threshold.
type DealerState struct {
	Hand   []Card
	Total  int
	Busted bool
}

// Session is the authoritative state of one two-player round. Exactly one
// session exists per table at a time and it lasts a single round.
type Session struct {
	ID          string
	Deck        []Card
	PlayerOrder [2]string
	Players     map[string]*PlayerState
	Dealer      DealerState

	TurnOrder   [3]string // both players then the dealer slot
	TurnIndex   int
	CurrentTurn string

	Over        bool
	Message     string
	Results     map[string]Outcome
	DealerDrawn []Card // cards drawn during dealer play, in draw order
}

// Deal pops the next card off the end of the deck.
func (s *Session) Deal() (Card, error) {
	if len(s.Deck) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	return c, nil
}

// Player returns the seated player with the given user id.
func (s *Session) Player(userID string) (*PlayerState, bool) {
	p, ok := s.Players[userID]
	return p, ok
}

// OpponentID returns the other seated player's user id, or "" when the
// given id is not seated.
func (s *Session) OpponentID(userID string) string {
	switch userID {
	case s.PlayerOrder[0]:
		return s.PlayerOrder[1]
	case s.PlayerOrder[1]:
		return s.PlayerOrder[0]
	default:
		return ""
	}
}

// AdvanceTurn moves the turn index forward circularly, skipping players
// that are standing or busted, until it lands on an eligible player or the
// dealer slot. It returns the actor that now holds the turn. The dealer
// slot always terminates the walk.
func (s *Session) AdvanceTurn() string {
	for {
		s.TurnIndex = (s.TurnIndex + 1) % len(s.TurnOrder)
		actor := s.TurnOrder[s.TurnIndex]
		if actor == DealerID {
			s.CurrentTurn = DealerID
			return DealerID
		}
		p := s.Players[actor]
		if !p.Standing && !p.Busted {
			s.CurrentTurn = actor
			return actor
		}
	}
}

// DealerPlay runs the dealer's automated turn: draw while the total is
// below the stand threshold, then mark a bust when the final total exceeds
// the limit. Drawn cards are recorded in DealerDrawn. The loop is
// unconditional; it runs even when both players have already busted.
func (s *Session) DealerPlay() error {
	for HandTotal(s.Dealer.Hand) < DealerStandTotal {
		c, err := s.Deal()
		if err != nil {
			return err
		}
		s.Dealer.Hand = append(s.Dealer.Hand, c)
		s.DealerDrawn = append(s.DealerDrawn, c)
	}

	s.Dealer.Total = HandTotal(s.Dealer.Hand)
	if s.Dealer.Total > BustLimit {
		s.Dealer.Busted = true
	}
	return nil
}
