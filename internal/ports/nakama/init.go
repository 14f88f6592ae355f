package nakama

import (
	"context"
	"database/sql"

	"twentyone/internal/app"
	"twentyone/internal/config"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks, and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}

	matchmaker := app.NewMatchmaker()
	tables := app.NewTableRegistry()
	rpcs := &matchmakingRPCs{matchmaker: matchmaker, tables: tables}

	if err := initializer.RegisterRpc(RpcRequestMatch, rpcs.requestMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcCancelMatchmaking, rpcs.cancelMatchmaking); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcVoiceToken, rpcVoiceToken(tables)); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameTwentyOne, NewMatch(tables)); err != nil {
		return err
	}

	// A dropped session must not leave a ghost entry in the waiting queue.
	if err := initializer.RegisterEventSessionEnd(func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return
		}
		if matchmaker.Cancel(userID) {
			logger.Debug("SessionEnd: Removed %s from the waiting queue", userID)
		}
	}); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("TwentyOne Go module loaded.")
	return nil
}
