package bootstrap

const (
	DirPermission     = 0755
	LogFilePermission = 0666
)

// Log files are named server_<timestamp>.log; the timestamp sorts
// lexically so the oldest files are pruned first.
const (
	LogFileTimestampFormat = "2006-01-02_15-04-05"
	LogFileNamePattern     = "server_%s.log"
	LogFileExtension       = ".log"
	LogFileRetentionCount  = 9
)

const (
	LogMsgLoggingInitialized         = "Logging initialized"
	LogMsgStartingService            = "Starting idle cultivation server"
	LogMsgConfigurationLoaded        = "Configuration loaded"
	LogMsgFailedDeleteOldLog         = "Failed to delete old log file %s: %v\n"
	LogMsgGameConfigLoaded           = "Game configuration loaded"
	LogMsgStorageInitialized         = "Storage initialized"
	LogMsgBackgroundJobsActive       = "Background jobs scheduled"
	LogMsgEventSystemInitialized     = "Event system initialized"
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgEventLoggerInitialized     = "Event logger initialized"
)

// Wrapped into returned errors
const (
	LogMsgFailedCreateLogsDir            = "failed to create logs directory"
	LogMsgFailedOpenLogFile              = "failed to open log file"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
	ErrMsgFailedRegisterMetrics          = "failed to register metrics collector"
	ErrMsgFailedSubscribeEventLogger     = "failed to subscribe event logger"
	ErrMsgFailedConnectDatabase          = "failed to connect to database"
	ErrMsgFailedRunMigrations            = "failed to run migrations"
	ErrMsgFailedLoadGameConfig           = "failed to load game configuration"
	ErrMsgFailedCreateLuck               = "failed to create luck service"
	ErrMsgFailedScheduleJob              = "failed to schedule job"
)

// Shutdown runs in this order: stop accepting requests, log out online
// characters, stop scheduled work, flush pending event retries.
const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgDrainingSessions           = "Draining online sessions..."
	LogMsgStoppingBackgroundJobs     = "Stopping background jobs..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgSessionDrainFailed         = "Session drain failed"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
)
