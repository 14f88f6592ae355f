package domain

import (
	"math/rand"
	"testing"
)

func TestCardValue(t *testing.T) {
	tests := []struct {
		name         string
		card         Card
		runningTotal int
		want         int
	}{
		{name: "numeral", card: Card{Rank: RankSeven, Suit: SuitSpades}, runningTotal: 0, want: 7},
		{name: "ten", card: Card{Rank: RankTen, Suit: SuitHearts}, runningTotal: 5, want: 10},
		{name: "jack is ten", card: Card{Rank: RankJack, Suit: SuitClubs}, runningTotal: 0, want: 10},
		{name: "queen is ten", card: Card{Rank: RankQueen, Suit: SuitClubs}, runningTotal: 18, want: 10},
		{name: "king is ten", card: Card{Rank: RankKing, Suit: SuitDiamonds}, runningTotal: 2, want: 10},
		{name: "soft ace", card: Card{Rank: RankAce, Suit: SuitSpades}, runningTotal: 10, want: 11},
		{name: "ace at the soft boundary", card: Card{Rank: RankAce, Suit: SuitSpades}, runningTotal: 11, want: 1},
		{name: "hard ace", card: Card{Rank: RankAce, Suit: SuitHearts}, runningTotal: 15, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CardValue(tt.card, tt.runningTotal); got != tt.want {
				t.Fatalf("CardValue(%v, %d) = %d, want %d", tt.card, tt.runningTotal, got, tt.want)
			}
		})
	}
}

func hand(ranks ...Rank) []Card {
	cards := make([]Card, len(ranks))
	for i, r := range ranks {
		cards[i] = Card{Rank: r, Suit: Suits[i%len(Suits)]}
	}
	return cards
}

func TestHandTotal(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  int
	}{
		{name: "empty hand", cards: nil, want: 0},
		{name: "blackjack", cards: hand(RankAce, RankKing), want: 21},
		{name: "two aces and nine", cards: hand(RankAce, RankAce, RankNine), want: 21},
		{name: "three aces and eight", cards: hand(RankAce, RankAce, RankAce, RankEight), want: 21},
		{name: "face then ace demotes", cards: hand(RankKing, RankAce, RankAce), want: 12},
		{name: "numeral hand", cards: hand(RankTen, RankNine, RankThree), want: 22},
		{name: "all four aces", cards: hand(RankAce, RankAce, RankAce, RankAce), want: 14},
		{name: "soft seventeen", cards: hand(RankAce, RankSix), want: 17},
		{name: "hard ace keeps hand alive", cards: hand(RankNine, RankNine, RankAce), want: 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandTotal(tt.cards); got != tt.want {
				t.Fatalf("HandTotal(%v) = %d, want %d", tt.cards, got, tt.want)
			}
		})
	}
}

// bestTotal computes the optimal ace assignment by brute force: the largest
// total at or under the bust limit when one exists, otherwise the minimum.
func bestTotal(cards []Card) int {
	base := 0
	aces := 0
	for _, c := range cards {
		switch c.Rank {
		case RankAce:
			aces++
			base += hardAceValue
		case RankJack, RankQueen, RankKing:
			base += faceValue
		default:
			base += CardValue(c, 0)
		}
	}

	best := base
	for k := 1; k <= aces; k++ {
		if total := base + k*(softAceValue-hardAceValue); total <= BustLimit {
			best = total
		}
	}
	return best
}

func TestHandTotalMatchesBestAceAssignment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		n := rng.Intn(8) + 1
		cards := make([]Card, n)
		for j := range cards {
			cards[j] = Card{
				Rank: Ranks[rng.Intn(len(Ranks))],
				Suit: Suits[rng.Intn(len(Suits))],
			}
		}

		got := HandTotal(cards)
		want := bestTotal(cards)
		if got != want {
			t.Fatalf("HandTotal(%v) = %d, want %d", cards, got, want)
		}
	}
}
