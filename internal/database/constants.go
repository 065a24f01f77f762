package database

import "time"

// Pool defaults
const (
	DefaultMinConnections = 2
	DefaultMaxConnections = 10
	DefaultPingTimeout    = 5 * time.Second
)

// Postgres runtime parameters set on every connection
const (
	RuntimeParamTimeZone = "timezone"
	RuntimeParamAppName  = "application_name"
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToLoadMigrations  = "failed to load migrations"
	ErrMsgFailedToApplyMigrations = "failed to apply migrations"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Connected to database"
	LogMsgMigrationApplied                = "Migration applied"
)
