package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"twentyone/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcVoiceToken issues voice channel tokens. Login tokens are available to
// any authenticated user; join tokens only to users seated at a table, and
// only for that table's channel.
func rpcVoiceToken(tables *app.TableRegistry) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
		}

		var req struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}

		env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
		issuer := env["voice_issuer"]
		secret := env["voice_secret"]
		domain := env["voice_domain"]
		if issuer == "" || secret == "" || domain == "" {
			issuer = "test-issuer"
			secret = "test-secret"
			domain = "voice.test"
			logger.Warn("Voice credentials missing from env, using test defaults.")
		}

		tableID := ""
		if req.Action == app.VoiceTokenActionJoin {
			table, ok := tables.LookupUser(userID)
			if !ok {
				return "", runtime.NewError("Not seated at a table", 9) // FAILED_PRECONDITION
			}
			tableID = table.TableID
		}

		service := app.NewVoiceService(secret, issuer, domain)
		token, err := service.GenerateToken(userID, req.Action, tableID)
		if err != nil {
			logger.Warn("rpcVoiceToken: Token generation for %s failed: %v", userID, err)
			return "", runtime.NewError("Invalid voice token request", 3) // INVALID_ARGUMENT
		}

		b, _ := json.Marshal(map[string]string{"token": token})
		return string(b), nil
	}
}
