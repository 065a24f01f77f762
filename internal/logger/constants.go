package logger

const (
	ContextKeyRequestID = "request_id"
)

// Levels accepted by Config.Level, case-insensitive. "warning" is an
// alias for warn.
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

const (
	DefaultServiceName = "idlecultivation"
	DefaultVersion     = "dev"
)

const (
	EnvironmentDev         = "dev"
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTest        = "test"
)

// Attribute keys attached to every record
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
)
