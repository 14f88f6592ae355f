package app

import "twentyone/internal/domain"

// PlayerView is one seated player's hand as shown to a recipient. Opponent
// hands are visible by design; only the dealer hides state. Chips are set
// on the recipient's own view only.
type PlayerView struct {
	UserID   string        `json:"user_id"`
	Cards    []domain.Card `json:"cards"`
	Total    int           `json:"total"`
	Standing bool          `json:"standing"`
	Busted   bool          `json:"busted"`
	Chips    int64         `json:"chips,omitempty"`
}

// DealerView is the dealer's hand as shown to a recipient. While the round
// is live it exposes only the up card and the up card's value; the hole
// card and the true total appear once the round is over.
type DealerView struct {
	Cards      []domain.Card `json:"cards"`
	HoleHidden bool          `json:"hole_hidden"`
	Total      int           `json:"total"`
	Busted     bool          `json:"busted"`
}

// ProjectedView is the per-recipient snapshot of a session.
type ProjectedView struct {
	TableID     string                    `json:"table_id"`
	Own         PlayerView                `json:"own"`
	Opponent    PlayerView                `json:"opponent"`
	Dealer      DealerView                `json:"dealer"`
	CurrentTurn string                    `json:"current_turn"`
	Over        bool                      `json:"over"`
	Message     string                    `json:"message,omitempty"`
	Results     map[string]domain.Outcome `json:"results,omitempty"`
}

// Project derives the information-hiding snapshot of a session for one
// recipient. The dealer's hole card and true total are never included while
// the round is live; a finished round projects the full state.
func Project(sess *domain.Session, recipientID string) ProjectedView {
	own := sess.Players[recipientID]
	opp := sess.Players[sess.OpponentID(recipientID)]

	view := ProjectedView{
		TableID:     sess.ID,
		Own:         playerView(own, true),
		Opponent:    playerView(opp, false),
		Dealer:      dealerView(sess),
		CurrentTurn: sess.CurrentTurn,
		Over:        sess.Over,
		Message:     sess.Message,
		Results:     sess.Results,
	}
	return view
}

func playerView(p *domain.PlayerState, own bool) PlayerView {
	v := PlayerView{
		UserID:   p.UserID,
		Cards:    append([]domain.Card(nil), p.Hand...),
		Total:    p.Total,
		Standing: p.Standing,
		Busted:   p.Busted,
	}
	if own {
		v.Chips = p.Chips
	}
	return v
}

func dealerView(sess *domain.Session) DealerView {
	if sess.Over {
		return DealerView{
			Cards:  append([]domain.Card(nil), sess.Dealer.Hand...),
			Total:  sess.Dealer.Total,
			Busted: sess.Dealer.Busted,
		}
	}

	up := sess.Dealer.Hand[0]
	return DealerView{
		Cards:      []domain.Card{up},
		HoleHidden: true,
		Total:      domain.CardValue(up, 0),
	}
}
