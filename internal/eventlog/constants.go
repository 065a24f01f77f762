package eventlog

const (
	LogMsgEventPayloadUndecodable = "Skipping event with undecodable payload"
	LogMsgFailedToLogEvent        = "Failed to persist event"
	LogMsgEventLogged             = "Event persisted"
	LogMsgCleanupFinished         = "Game log cleanup finished"
	LogMsgCleanupFailed           = "Game log cleanup failed"
)

const (
	LogFieldType          = "type"
	LogFieldCharacterID   = "character_id"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retention_days"
	LogFieldDuration      = "duration"
	LogFieldDeleted       = "deleted"
)

const (
	// DefaultRetentionDays applies when the configured retention is not positive
	DefaultRetentionDays = 30

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	CleanupJobName = "eventlog.cleanup"
)
