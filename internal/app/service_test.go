package app

import (
	"errors"
	"math/rand"
	"testing"

	"twentyone/internal/domain"
)

func card(r domain.Rank) domain.Card {
	return domain.Card{Rank: r, Suit: domain.SuitSpades}
}

// stackedSession builds a live session with chosen hands and a chosen deck.
// Deals pop from the end of the deck slice.
func stackedSession(p1Hand, p2Hand, dealerHand, deck []domain.Card) *domain.Session {
	sess := &domain.Session{
		ID:          "table-test",
		Deck:        deck,
		PlayerOrder: [2]string{"p1", "p2"},
		Players: map[string]*domain.PlayerState{
			"p1": {UserID: "p1", Hand: p1Hand, Total: domain.HandTotal(p1Hand)},
			"p2": {UserID: "p2", Hand: p2Hand, Total: domain.HandTotal(p2Hand)},
		},
		TurnOrder:   [3]string{"p1", "p2", domain.DealerID},
		CurrentTurn: "p1",
	}
	sess.Dealer.Hand = dealerHand
	sess.Dealer.Total = domain.HandTotal(dealerHand)
	return sess
}

func TestStartRoundDealsOpeningHands(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)), 100)

	sess, events, err := svc.StartRound("table-1", [2]string{"p1", "p2"}, map[string]int64{"p1": 500, "p2": 700})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}

	if sess.CurrentTurn != "p1" {
		t.Fatalf("initial turn = %s, want p1", sess.CurrentTurn)
	}
	for _, uid := range []string{"p1", "p2"} {
		if got := len(sess.Players[uid].Hand); got != 2 {
			t.Fatalf("%s hand size = %d, want 2", uid, got)
		}
	}
	if got := len(sess.Dealer.Hand); got != 2 {
		t.Fatalf("dealer hand size = %d, want 2", got)
	}
	if sess.Players["p1"].Chips != 500 || sess.Players["p2"].Chips != 700 {
		t.Fatal("chip balances should carry into the session")
	}

	// Deck integrity: hands plus remainder form exactly one 52-card deck.
	seen := make(map[domain.Card]bool, domain.DeckSize)
	count := 0
	for _, c := range append(append(append(append([]domain.Card(nil),
		sess.Players["p1"].Hand...), sess.Players["p2"].Hand...), sess.Dealer.Hand...), sess.Deck...) {
		if seen[c] {
			t.Fatalf("card dealt twice: %v", c)
		}
		seen[c] = true
		count++
	}
	if count != domain.DeckSize {
		t.Fatalf("cards in play = %d, want %d", count, domain.DeckSize)
	}

	if len(events) != 2 {
		t.Fatalf("initial events = %d, want one per seat", len(events))
	}
	for _, ev := range events {
		if ev.Kind != EventGameUpdate {
			t.Fatalf("event kind = %s, want game_update", ev.Kind)
		}
		if len(ev.Recipients) != 1 {
			t.Fatalf("initial views must be targeted, got recipients %v", ev.Recipients)
		}
	}
}

func TestHitKeepsTurnWhenNotBusted(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), 100)
	sess := stackedSession(
		[]domain.Card{card(domain.RankFive), card(domain.RankSix)},
		[]domain.Card{card(domain.RankTen), card(domain.RankNine)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSeven)},
		[]domain.Card{card(domain.RankTwo)},
	)

	events, err := svc.Hit(sess, "p1")
	if err != nil {
		t.Fatalf("hit error: %v", err)
	}
	if sess.CurrentTurn != "p1" {
		t.Fatalf("turn = %s after non-busting hit, want p1", sess.CurrentTurn)
	}
	if sess.Players["p1"].Total != 13 {
		t.Fatalf("total = %d, want 13", sess.Players["p1"].Total)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want one view per seat", len(events))
	}
}

func TestBustingHitAdvancesTurn(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), 100)
	sess := stackedSession(
		[]domain.Card{card(domain.RankTen), card(domain.RankNine)},
		[]domain.Card{card(domain.RankTen), card(domain.RankNine)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSeven)},
		[]domain.Card{card(domain.RankKing)},
	)

	if _, err := svc.Hit(sess, "p1"); err != nil {
		t.Fatalf("hit error: %v", err)
	}
	if !sess.Players["p1"].Busted {
		t.Fatal("p1 should be busted")
	}
	if sess.CurrentTurn != "p2" {
		t.Fatalf("turn = %s after busting hit, want p2", sess.CurrentTurn)
	}

	// A busted player's later actions are rejected for the round.
	sess.CurrentTurn = "p1"
	if _, err := svc.Hit(sess, "p1"); !errors.Is(err, ErrHandResolved) {
		t.Fatalf("busted hit error = %v, want ErrHandResolved", err)
	}
}

func TestStandAdvancesAndDealerResolves(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), 100)
	// Dealer holds 16 and draws a two: stands at 18. p1 has 20, p2 19.
	sess := stackedSession(
		[]domain.Card{card(domain.RankTen), card(domain.RankTen)},
		[]domain.Card{card(domain.RankTen), card(domain.RankNine)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
		[]domain.Card{card(domain.RankTwo)},
	)

	events, err := svc.Stand(sess, "p1")
	if err != nil {
		t.Fatalf("stand error: %v", err)
	}
	if sess.CurrentTurn != "p2" {
		t.Fatalf("turn = %s after stand, want p2", sess.CurrentTurn)
	}
	if sess.Over {
		t.Fatal("round should continue while p2 is live")
	}

	events, err = svc.Stand(sess, "p2")
	if err != nil {
		t.Fatalf("stand error: %v", err)
	}
	if !sess.Over {
		t.Fatal("round should resolve once both players stand")
	}
	if sess.Dealer.Total != 18 {
		t.Fatalf("dealer total = %d, want 18", sess.Dealer.Total)
	}
	if sess.Results["p1"] != domain.OutcomeWin || sess.Results["p2"] != domain.OutcomeWin {
		t.Fatalf("results = %v, want both wins over 18", sess.Results)
	}

	if len(events) != 2 {
		t.Fatalf("game over events = %d, want one per seat", len(events))
	}
	for _, ev := range events {
		if ev.Kind != EventGameOver {
			t.Fatalf("event kind = %s, want game_over", ev.Kind)
		}
		payload := ev.Payload.(GameOverPayload)
		if payload.BalanceChanges["p1"] != 100 || payload.BalanceChanges["p2"] != 100 {
			t.Fatalf("balance changes = %v, want +100 each", payload.BalanceChanges)
		}
		if !payload.FinalGame.Over {
			t.Fatal("final view should be marked over")
		}
	}
}

func TestOutcomeMatrixWinnerAndBustedPlayer(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), 100)
	// p1 stands on 20, p2 busts, dealer draws to 18:
	// deck end holds p2's busting card, then the dealer's draw.
	sess := stackedSession(
		[]domain.Card{card(domain.RankTen), card(domain.RankTen)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
		[]domain.Card{card(domain.RankTwo), card(domain.RankKing)},
	)

	if _, err := svc.Stand(sess, "p1"); err != nil {
		t.Fatalf("stand error: %v", err)
	}
	if _, err := svc.Hit(sess, "p2"); err != nil {
		t.Fatalf("hit error: %v", err)
	}

	if !sess.Over {
		t.Fatal("round should resolve after p2 busts with p1 standing")
	}
	if sess.Results["p1"] != domain.OutcomeWin {
		t.Fatalf("p1 outcome = %s, want win", sess.Results["p1"])
	}
	if sess.Results["p2"] != domain.OutcomeBust {
		t.Fatalf("p2 outcome = %s, want bust", sess.Results["p2"])
	}
	if sess.Dealer.Total != 18 {
		t.Fatalf("dealer total = %d, want 18", sess.Dealer.Total)
	}
}

func TestInvalidActions(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), 100)

	tests := []struct {
		name  string
		setup func(*domain.Session)
		actor string
		want  error
	}{
		{name: "out of turn", setup: func(s *domain.Session) {}, actor: "p2", want: ErrNotYourTurn},
		{name: "unknown actor", setup: func(s *domain.Session) {}, actor: "intruder", want: ErrUnknownPlayer},
		{
			name:  "round over",
			setup: func(s *domain.Session) { s.Over = true },
			actor: "p1",
			want:  ErrRoundOver,
		},
		{
			name: "standing hand",
			setup: func(s *domain.Session) {
				s.Players["p1"].Standing = true
			},
			actor: "p1",
			want:  ErrHandResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := stackedSession(
				[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
				[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
				[]domain.Card{card(domain.RankTen), card(domain.RankSeven)},
				[]domain.Card{card(domain.RankTwo)},
			)
			tt.setup(sess)

			if _, err := svc.Hit(sess, tt.actor); !errors.Is(err, tt.want) {
				t.Fatalf("hit error = %v, want %v", err, tt.want)
			}
			if _, err := svc.Stand(sess, tt.actor); !errors.Is(err, tt.want) {
				t.Fatalf("stand error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestForfeitDeliversOnceToRemainingPlayer(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), 100)
	sess := stackedSession(
		[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSix)},
		[]domain.Card{card(domain.RankTen), card(domain.RankSeven)},
		nil,
	)

	events, err := svc.Forfeit(sess, "p1")
	if err != nil {
		t.Fatalf("forfeit error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("forfeit events = %d, want exactly one", len(events))
	}

	ev := events[0]
	if ev.Kind != EventGameOver {
		t.Fatalf("event kind = %s, want game_over", ev.Kind)
	}
	if len(ev.Recipients) != 1 || ev.Recipients[0] != "p2" {
		t.Fatalf("recipients = %v, want only p2", ev.Recipients)
	}

	payload := ev.Payload.(GameOverPayload)
	if payload.Results["p2"] != domain.OutcomeWin {
		t.Fatalf("remaining outcome = %s, want win", payload.Results["p2"])
	}
	if payload.BalanceChanges["p2"] != 100 || payload.BalanceChanges["p1"] != -100 {
		t.Fatalf("balance changes = %v", payload.BalanceChanges)
	}

	// A second leave on a resolved round delivers nothing.
	events, err = svc.Forfeit(sess, "p2")
	if err != nil {
		t.Fatalf("forfeit error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("post-resolution forfeit events = %d, want 0", len(events))
	}
}
