package game

import "time"

// Cache tunables for the user to character lookup
const (
	DefaultCacheSize = 10000
	DefaultCacheTTL  = 30 * time.Minute
)

// Name limits for new characters
const (
	MinNameLength = 2
	MaxNameLength = 24
)

// User-facing messages
const (
	MsgCharacterCreated  = "%s has begun the path of cultivation with a %s root"
	MsgCharacterExists   = "You already have a character"
	MsgCharacterNotFound = "No character found, create one first"
	MsgInvalidName       = "Name must be between %d and %d characters"
	MsgInvalidRoot       = "Unknown spiritual root %q"
	MsgInvalidFocus      = "Unknown cultivation focus %q"
	MsgInvalidKind       = "Unknown production kind %q"
	MsgCharacterMismatch = "That character does not belong to you"
	MsgInvalidInput      = "Invalid request"
	MsgStatus            = "%s, %s"
	MsgTemporarilyDown   = "Temporarily unavailable, please retry"
	MsgInternalError     = "Something went wrong"
)

// Log messages
const (
	LogMsgOperationFailed  = "Operation failed"
	LogMsgInternalFailure  = "Internal failure"
	LogMsgCharacterCreated = "Character created"
)
