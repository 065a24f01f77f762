package handler

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingUser           = "Missing user identity"
	ErrMsgInvalidKind           = "Unknown production kind '%s'. Valid options: farm, alchemy"
	ErrMsgInvalidCharacterID    = "Character id must be a UUID"
	ErrMsgInvalidLimit          = "limit must be a positive integer"
	ErrMsgHistoryUnavailable    = "Event history is unavailable"
)

// Health messages
const (
	HealthStatusOK          = "ok"
	HealthStatusUnavailable = "unavailable"
	MsgDatabaseUnavailable  = "database connection failed"
	MsgDraining             = "shutting down"
)
