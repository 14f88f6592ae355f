package app

import "twentyone/internal/domain"

// EventKind identifies emitted app events for transport dispatch.
type EventKind string

const (
	EventGameUpdate EventKind = "game_update"
	EventGameOver   EventKind = "game_over"
)

// Event is an app event with optional targeted recipients.
// Empty Recipients means broadcast; projected views are always targeted so
// each player receives only its own masking of the table.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs
}

// GameUpdatePayload carries one recipient's projected view of the table.
type GameUpdatePayload struct {
	View ProjectedView `json:"view"`
}

// GameOverPayload carries the final, unmasked state of a finished round.
type GameOverPayload struct {
	Message        string                    `json:"message"`
	Results        map[string]domain.Outcome `json:"results"`
	FinalGame      ProjectedView             `json:"final_game"`
	BalanceChanges map[string]int64          `json:"balance_changes"`
}
