package app

import (
	"errors"
	"math/rand"
	"time"

	"twentyone/internal/domain"
)

// TableSeats is the number of players at a table. The turn order is both
// seats followed by the dealer slot.
const TableSeats = 2

const openingHandSize = 2

var (
	ErrRoundOver     = errors.New("round already resolved")
	ErrNotYourTurn   = errors.New("actor does not hold the turn")
	ErrHandResolved  = errors.New("hand already standing or busted")
	ErrUnknownPlayer = errors.New("actor is not seated at this table")
)

// Service contains the table use-cases operating on domain session state.
// It performs no locking: the transport layer delivers one message at a
// time per session, so no two actions on the same session interleave.
type Service struct {
	rng *rand.Rand
	bet int64
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. bet is the flat per-round stake settled at resolution.
func NewService(rng *rand.Rand, bet int64) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, bet: bet}
}

// StartRound builds a fresh session for the two seated players, shuffles a
// new deck, deals the opening hands, and emits each player's initial
// projected view.
func (s *Service) StartRound(tableID string, seats [2]string, chips map[string]int64) (*domain.Session, []Event, error) {
	deck := domain.NewDeck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	sess := &domain.Session{
		ID:          tableID,
		Deck:        deck,
		PlayerOrder: seats,
		Players:     make(map[string]*domain.PlayerState, TableSeats),
		TurnOrder:   [3]string{seats[0], seats[1], domain.DealerID},
		CurrentTurn: seats[0],
	}

	for _, uid := range seats {
		p := &domain.PlayerState{UserID: uid, Chips: chips[uid]}
		for i := 0; i < openingHandSize; i++ {
			c, err := sess.Deal()
			if err != nil {
				return nil, nil, err
			}
			p.Hand = append(p.Hand, c)
		}
		p.Total = domain.HandTotal(p.Hand)
		sess.Players[uid] = p
	}

	for i := 0; i < openingHandSize; i++ {
		c, err := sess.Deal()
		if err != nil {
			return nil, nil, err
		}
		sess.Dealer.Hand = append(sess.Dealer.Hand, c)
	}
	sess.Dealer.Total = domain.HandTotal(sess.Dealer.Hand)

	return sess, s.updateEvents(sess), nil
}

// Hit deals one card to the acting player. A total over the bust limit
// busts the hand permanently and advances the turn immediately; otherwise
// the actor keeps the turn.
func (s *Service) Hit(sess *domain.Session, actorID string) ([]Event, error) {
	p, err := s.eligibleActor(sess, actorID)
	if err != nil {
		return nil, err
	}

	c, err := sess.Deal()
	if err != nil {
		return nil, err
	}
	p.Hand = append(p.Hand, c)
	p.Total = domain.HandTotal(p.Hand)

	if p.Total > domain.BustLimit {
		p.Busted = true
		return s.advance(sess)
	}
	return s.updateEvents(sess), nil
}

// Stand marks the acting player as standing for the rest of the round and
// advances the turn.
func (s *Service) Stand(sess *domain.Session, actorID string) ([]Event, error) {
	p, err := s.eligibleActor(sess, actorID)
	if err != nil {
		return nil, err
	}

	p.Standing = true
	return s.advance(sess)
}

// Forfeit resolves the round after a mid-round leave. It emits exactly one
// game-over event, addressed to the remaining player. A round that is
// already over needs no delivery.
func (s *Service) Forfeit(sess *domain.Session, leaverID string) ([]Event, error) {
	if sess.Over {
		return nil, nil
	}
	if _, ok := sess.Player(leaverID); !ok {
		return nil, ErrUnknownPlayer
	}

	sess.Forfeit(leaverID)
	remaining := sess.OpponentID(leaverID)
	return []Event{s.gameOverEvent(sess, remaining)}, nil
}

func (s *Service) eligibleActor(sess *domain.Session, actorID string) (*domain.PlayerState, error) {
	if sess.Over {
		return nil, ErrRoundOver
	}
	p, ok := sess.Player(actorID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if sess.CurrentTurn != actorID {
		return nil, ErrNotYourTurn
	}
	if p.Standing || p.Busted {
		return nil, ErrHandResolved
	}
	return p, nil
}

// advance moves the turn forward; landing on the dealer slot runs the
// dealer's automated play and resolves the round synchronously.
func (s *Service) advance(sess *domain.Session) ([]Event, error) {
	if sess.AdvanceTurn() != domain.DealerID {
		return s.updateEvents(sess), nil
	}

	if err := sess.DealerPlay(); err != nil {
		return nil, err
	}
	sess.ResolveOutcomes()

	events := make([]Event, 0, TableSeats)
	for _, uid := range sess.PlayerOrder {
		events = append(events, s.gameOverEvent(sess, uid))
	}
	return events, nil
}

// updateEvents emits one targeted game-update per seat so each recipient
// gets its own masked view.
func (s *Service) updateEvents(sess *domain.Session) []Event {
	events := make([]Event, 0, TableSeats)
	for _, uid := range sess.PlayerOrder {
		events = append(events, Event{
			Kind:       EventGameUpdate,
			Payload:    GameUpdatePayload{View: Project(sess, uid)},
			Recipients: []string{uid},
		})
	}
	return events
}

func (s *Service) gameOverEvent(sess *domain.Session, recipientID string) Event {
	return Event{
		Kind: EventGameOver,
		Payload: GameOverPayload{
			Message:        sess.Message,
			Results:        sess.Results,
			FinalGame:      Project(sess, recipientID),
			BalanceChanges: s.balanceChanges(sess),
		},
		Recipients: []string{recipientID},
	}
}

// balanceChanges settles the flat stake from the per-player outcomes.
// Pushes settle nothing.
func (s *Service) balanceChanges(sess *domain.Session) map[string]int64 {
	changes := make(map[string]int64, len(sess.Results))
	for uid, out := range sess.Results {
		switch out {
		case domain.OutcomeWin:
			changes[uid] = s.bet
		case domain.OutcomeLose, domain.OutcomeBust, domain.OutcomeForfeit:
			changes[uid] = -s.bet
		}
	}
	return changes
}
