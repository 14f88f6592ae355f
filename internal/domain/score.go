package domain

import "strconv"

const (
	// BustLimit is the highest total a hand may reach without busting.
	BustLimit = 21
	// DealerStandTotal is the total at which the dealer stops drawing.
	DealerStandTotal = 17

	softAceValue = 11
	hardAceValue = 1
	faceValue    = 10
)

// CardValue returns the numeric value of a single card given the running
// total accumulated so far. An Ace counts 11 unless that would bust the
// running total. The rule is order-dependent: totals are built by folding
// left to right over the hand.
func CardValue(c Card, runningTotal int) int {
	switch c.Rank {
	case RankJack, RankQueen, RankKing:
		return faceValue
	case RankAce:
		if runningTotal+softAceValue > BustLimit {
			return hardAceValue
		}
		return softAceValue
	default:
		n, _ := strconv.Atoi(string(c.Rank))
		return n
	}
}

// HandTotal computes the blackjack total of a hand. Aces counted as 11
// during the fold are demoted to 1 one at a time while the total exceeds
// the bust limit, so a hand is never reported busted when some Ace
// assignment keeps it at or under 21.
func HandTotal(cards []Card) int {
	total := 0
	softAces := 0

	for _, c := range cards {
		v := CardValue(c, total)
		if c.Rank == RankAce && v == softAceValue {
			softAces++
		}
		total += v
	}

	for total > BustLimit && softAces > 0 {
		total -= softAceValue - hardAceValue
		softAces--
	}

	return total
}
