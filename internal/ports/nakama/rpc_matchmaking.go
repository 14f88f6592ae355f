package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"twentyone/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RequestMatchResponse is the payload returned to clients entering the queue.
// MatchID and TableID are set only when the caller was paired immediately or
// is already seated.
type RequestMatchResponse struct {
	Status     string `json:"status"` // "queued", "matched", or "seated"
	MatchID    string `json:"match_id,omitempty"`
	TableID    string `json:"table_id,omitempty"`
	OpponentID string `json:"opponent_id,omitempty"`
}

type matchmakingRPCs struct {
	matchmaker *app.Matchmaker
	tables     *app.TableRegistry
}

// requestMatch enqueues the caller. When a second player is already waiting
// the two are paired: a match is created, both are notified, and the caller
// gets the match id back directly.
func (r *matchmakingRPCs) requestMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	// A user already seated at a table is pointed back at it rather than
	// queued a second time.
	if table, ok := r.tables.LookupUser(userID); ok {
		return marshalResponse(logger, RequestMatchResponse{
			Status:  "seated",
			MatchID: table.MatchID,
			TableID: table.TableID,
		})
	}

	pair, paired := r.matchmaker.Enqueue(userID)
	if !paired {
		logger.Debug("requestMatch: %s queued (%d waiting)", userID, r.matchmaker.Waiting())
		return marshalResponse(logger, RequestMatchResponse{Status: "queued"})
	}

	tableID := app.TableID(pair[0], pair[1])
	matchID, err := nk.MatchCreate(ctx, MatchNameTwentyOne, map[string]interface{}{
		"table_id": tableID,
		"player1":  pair[0],
		"player2":  pair[1],
	})
	if err != nil {
		logger.Error("requestMatch: Failed to create match for table %s: %v", tableID, err)
		return "", runtime.NewError("Failed to create match", 13) // INTERNAL
	}

	r.tables.Register(app.Table{MatchID: matchID, TableID: tableID, Seats: pair})
	logger.Info("requestMatch: Paired %s and %s at table %s (match %s)", pair[0], pair[1], tableID, matchID)

	for i, uid := range pair {
		content := map[string]interface{}{
			"match_id":    matchID,
			"table_id":    tableID,
			"opponent_id": pair[1-i],
		}
		if err := nk.NotificationSend(ctx, uid, "match_found", content, NotificationCodeMatchFound, "", false); err != nil {
			logger.Warn("requestMatch: Failed to notify %s: %v", uid, err)
		}
	}

	opponent := pair[0]
	if opponent == userID {
		opponent = pair[1]
	}
	return marshalResponse(logger, RequestMatchResponse{
		Status:     "matched",
		MatchID:    matchID,
		TableID:    tableID,
		OpponentID: opponent,
	})
}

// cancelMatchmaking removes the caller from the waiting queue.
func (r *matchmakingRPCs) cancelMatchmaking(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	cancelled := r.matchmaker.Cancel(userID)
	if cancelled {
		logger.Debug("cancelMatchmaking: %s left the waiting queue", userID)
	}

	b, _ := json.Marshal(map[string]bool{"cancelled": cancelled})
	return string(b), nil
}

func marshalResponse(logger runtime.Logger, resp RequestMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Error("Failed to marshal matchmaking response: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}
	return string(b), nil
}
