package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"twentyone/internal/app"
	"twentyone/internal/config"
	"twentyone/internal/domain"
	"twentyone/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	matchLabelGame = "twentyone"

	phaseWaiting  = "waiting"
	phasePlaying  = "playing"
	phaseResolved = "resolved"
)

// matchLabel is the JSON label attached to the match for listing queries.
// Tables are created with both seats pre-assigned, so they never advertise
// open seats.
type matchLabel struct {
	Game  string `json:"game"`
	Phase string `json:"phase"`
	Open  bool   `json:"open"`
}

// TableState holds the authoritative runtime state for one table's match.
type TableState struct {
	TableID   string                      `json:"table_id"`
	Seats     [2]string                   `json:"seats"`
	Bet       int64                       `json:"bet"`
	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`
	Session   *domain.Session             `json:"-"` // Current round state (nil until both players join)
	Economy   ports.EconomyPort           `json:"-"` // Interface to Nakama wallet
	Settled   bool                        `json:"settled"`
}

func (ts *TableState) seated(userID string) bool {
	return ts.Seats[0] == userID || ts.Seats[1] == userID
}

// NewMatch builds the factory function registered with Nakama. The registry
// is shared with the matchmaking RPCs so finished tables release their
// users.
func NewMatch(tables *app.TableRegistry) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{tables: tables}, nil
	}
}

type matchHandler struct {
	tables *app.TableRegistry
}

// MatchInit is called when the match is created. params carry the table id
// and both seat assignments from the matchmaking RPC.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &TableState{
		Bet:       config.GetDefaultBet(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil, config.GetDefaultBet()),
		Economy:   NewNakamaEconomyAdapter(nk),
	}

	if v, ok := params["table_id"].(string); ok {
		state.TableID = v
	}
	if v, ok := params["player1"].(string); ok {
		state.Seats[0] = v
	}
	if v, ok := params["player2"].(string); ok {
		state.Seats[1] = v
	}
	if state.TableID == "" || state.Seats[0] == "" || state.Seats[1] == "" {
		logger.Error("MatchInit: Missing table params: %+v", params)
		return nil, 0, ""
	}

	labelBytes, err := json.Marshal(matchLabel{Game: matchLabelGame, Phase: phaseWaiting})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

// MatchJoinAttempt admits only the two paired users. Reconnection into a
// live round is not supported; a round ends by forfeit when a seat drops.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	tableState, ok := state.(*TableState)
	if !ok {
		return state, false, "state not found"
	}

	if !tableState.seated(presence.GetUserId()) {
		return state, false, "not seated at this table"
	}
	if tableState.Session != nil {
		return state, false, "round already started"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	tableState, ok := state.(*TableState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		tableState.Presences[p.GetUserId()] = p
	}

	// The round starts the moment both seats are connected.
	if tableState.Session != nil || len(tableState.Presences) < app.TableSeats {
		return tableState
	}

	chips := make(map[string]int64, app.TableSeats)
	for _, uid := range tableState.Seats {
		balance, err := tableState.Economy.GetBalance(ctx, uid)
		if err != nil {
			logger.Warn("MatchJoin: Could not read balance for %s: %v", uid, err)
		}
		chips[uid] = balance
	}

	sess, events, err := tableState.App.StartRound(tableState.TableID, tableState.Seats, chips)
	if err != nil {
		logger.Error("MatchJoin: Failed to start round: %v", err)
		return tableState
	}
	tableState.Session = sess

	mh.updateLabel(tableState, dispatcher, logger)
	for _, ev := range events {
		mh.dispatchEvent(ctx, tableState, dispatcher, logger, ev)
	}

	logger.Info("MatchJoin: Round started at table %s (%s vs %s)", tableState.TableID, tableState.Seats[0], tableState.Seats[1])
	return tableState
}

// MatchLeave resolves a live round by forfeit when a seated player drops.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	tableState, ok := state.(*TableState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(tableState.Presences, p.GetUserId())

		if tableState.Session == nil || tableState.Session.Over {
			continue
		}

		events, err := tableState.App.Forfeit(tableState.Session, p.GetUserId())
		if err != nil {
			logger.Error("MatchLeave: Forfeit for %s failed: %v", p.GetUserId(), err)
			continue
		}
		logger.Info("MatchLeave: %s left mid-round, forfeiting table %s", p.GetUserId(), tableState.TableID)

		mh.updateLabel(tableState, dispatcher, logger)
		for _, ev := range events {
			mh.dispatchEvent(ctx, tableState, dispatcher, logger, ev)
		}
	}

	if len(tableState.Presences) == 0 {
		mh.releaseTable(ctx, logger)
		return nil
	}

	return tableState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	tableState, ok := state.(*TableState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpHit:
			mh.handleAction(ctx, tableState, dispatcher, logger, msg, tableState.App.Hit)
		case OpStand:
			mh.handleAction(ctx, tableState, dispatcher, logger, msg, tableState.App.Stand)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return tableState
}

type playerAction func(sess *domain.Session, actorID string) ([]app.Event, error)

func (mh *matchHandler) handleAction(ctx context.Context, state *TableState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, action playerAction) {
	senderID := msg.GetUserId()

	if state.Session == nil {
		logger.Warn("handleAction: Round not started.")
		mh.sendError(state, dispatcher, logger, senderID, 400, "round not started")
		return
	}

	events, err := action(state.Session, senderID)
	if err != nil {
		logger.Warn("handleAction: User %s action rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	if state.Session.Over {
		mh.updateLabel(state, dispatcher, logger)
	}
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}
}

// dispatchEvent converts an app event to a wire message and delivers it to
// the event's recipients only.
func (mh *matchHandler) dispatchEvent(ctx context.Context, state *TableState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64

	switch ev.Kind {
	case app.EventGameUpdate:
		opCode = OpGameUpdate
	case app.EventGameOver:
		opCode = OpGameOver
		if p, ok := ev.Payload.(app.GameOverPayload); ok {
			mh.settleOnce(ctx, state, logger, p.BalanceChanges)
		}
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast).
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected, we MUST
		// NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleOnce applies the round's wallet changes exactly once, even though
// each seat receives its own game-over event carrying the same changes.
func (mh *matchHandler) settleOnce(ctx context.Context, state *TableState, logger runtime.Logger, changes map[string]int64) {
	if state.Settled || state.Economy == nil || len(changes) == 0 {
		return
	}
	state.Settled = true

	updates := make([]ports.WalletUpdate, 0, len(changes))
	for userID, amount := range changes {
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "round_settlement",
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to settle balances: %v", err)
	}
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *TableState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *TableState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := phaseWaiting
	if state.Session != nil {
		phase = phasePlaying
		if state.Session.Over {
			phase = phaseResolved
		}
	}

	labelBytes, err := json.Marshal(matchLabel{Game: matchLabelGame, Phase: phase})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) releaseTable(ctx context.Context, logger runtime.Logger) {
	if mh.tables == nil {
		return
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	if matchID == "" {
		return
	}
	mh.tables.Remove(matchID)
	logger.Debug("releaseTable: Table registry entry for match %s removed", matchID)
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	mh.releaseTable(ctx, logger)
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
