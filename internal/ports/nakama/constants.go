package nakama

const (
	// RpcRequestMatch is the Nakama RPC id clients call to enter the waiting queue.
	RpcRequestMatch = "request_match"

	// RpcCancelMatchmaking is the Nakama RPC id clients call to leave the waiting queue.
	RpcCancelMatchmaking = "cancel_matchmaking"

	// RpcVoiceToken is the Nakama RPC id clients call to obtain voice channel tokens.
	RpcVoiceToken = "voice_token"

	// MatchNameTwentyOne is the authoritative match handler name registered with Nakama.
	MatchNameTwentyOne = "twentyone_table"

	// NotificationCodeMatchFound is sent to both players when the queue pairs them.
	NotificationCodeMatchFound = 1
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpHit   int64 = 1
	OpStand int64 = 2

	// Server -> Client events
	OpGameUpdate int64 = 101
	OpGameOver   int64 = 102
	OpGameError  int64 = 103
)
