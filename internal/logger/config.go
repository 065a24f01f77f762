package logger

import (
	"log/slog"
	"strings"
)

// Config controls the process-wide slog handler
type Config struct {
	Level       string
	Format      string
	ServiceName string
	Version     string
	Environment string
	AddSource   bool
}

// NewConfig builds a Config, filling blanks with defaults. Source
// locations are only recorded in development environments.
func NewConfig(level, format, serviceName, version, environment string) Config {
	cfg := Config{
		Level:       orDefault(level, LogLevelInfo),
		Format:      orDefault(format, LogFormatText),
		ServiceName: orDefault(serviceName, DefaultServiceName),
		Version:     orDefault(version, DefaultVersion),
		Environment: orDefault(environment, EnvironmentDev),
	}
	cfg.AddSource = cfg.IsDevelopment()
	return cfg
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// IsDevelopment reports whether the environment is a local dev setup
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.Environment) {
	case EnvironmentDev, EnvironmentDevelopment:
		return true
	}
	return false
}

// LogLevel maps Level onto slog, defaulting to info
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn, LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, LogFormatJSON)
}

// BaseAttributes returns the attributes stamped on every record
func (c Config) BaseAttributes() []slog.Attr {
	return []slog.Attr{
		slog.String(AttrKeyService, c.ServiceName),
		slog.String(AttrKeyVersion, c.Version),
		slog.String(AttrKeyEnvironment, c.Environment),
	}
}
