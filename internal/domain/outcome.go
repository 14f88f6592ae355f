package domain

import (
	"fmt"
	"strings"
)

// Outcome is a player's individual result for the round. Each player gets
// its own outcome; there is no shared round-level flag.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLose    Outcome = "lose"
	OutcomeBust    Outcome = "bust"
	OutcomePush    Outcome = "push"
	OutcomeForfeit Outcome = "forfeit"
)

// ResolveOutcomes compares each player against the dealer independently and
// finalizes the session. Precedence per player: busted loses outright;
// a busted dealer or a higher total wins; a lower total loses; equal totals
// push.
func (s *Session) ResolveOutcomes() {
	results := make(map[string]Outcome, len(s.PlayerOrder))
	clauses := make([]string, 0, len(s.PlayerOrder)+1)

	if s.Dealer.Busted {
		clauses = append(clauses, fmt.Sprintf("dealer busts with %d", s.Dealer.Total))
	} else {
		clauses = append(clauses, fmt.Sprintf("dealer stands at %d", s.Dealer.Total))
	}

	for _, uid := range s.PlayerOrder {
		p := s.Players[uid]
		var out Outcome
		switch {
		case p.Busted:
			out = OutcomeBust
		case s.Dealer.Busted || p.Total > s.Dealer.Total:
			out = OutcomeWin
		case p.Total < s.Dealer.Total:
			out = OutcomeLose
		default:
			out = OutcomePush
		}
		results[uid] = out
		clauses = append(clauses, outcomeClause(uid, out, p.Total))
	}

	s.Results = results
	s.Message = strings.Join(clauses, "; ")
	s.Over = true
	s.CurrentTurn = ""
}

// Forfeit resolves the round immediately after a mid-round leave. The
// remaining player wins regardless of hand state.
func (s *Session) Forfeit(leaverID string) {
	remaining := s.OpponentID(leaverID)
	s.Results = map[string]Outcome{
		leaverID:  OutcomeForfeit,
		remaining: OutcomeWin,
	}
	s.Message = fmt.Sprintf("%s left the table; %s wins by forfeit", leaverID, remaining)
	s.Over = true
	s.CurrentTurn = ""
}

func outcomeClause(uid string, out Outcome, total int) string {
	switch out {
	case OutcomeWin:
		return fmt.Sprintf("%s wins with %d", uid, total)
	case OutcomeLose:
		return fmt.Sprintf("%s loses with %d", uid, total)
	case OutcomeBust:
		return fmt.Sprintf("%s busts with %d", uid, total)
	case OutcomePush:
		return fmt.Sprintf("%s pushes at %d", uid, total)
	default:
		return fmt.Sprintf("%s forfeits", uid)
	}
}
