package session

import "time"

// Config holds session and tick scheduling tunables
type Config struct {
	TickIntervalSeconds       int    `json:"tick_interval_seconds" validate:"gt=0"`
	MaxOfflineCycles          int    `json:"max_offline_cycles" validate:"gte=0"`
	OfflineCultivationEnabled bool   `json:"offline_cultivation_enabled"`
	IdleTimeoutMinutes        int    `json:"idle_timeout_minutes" validate:"gte=0"`
	ReapSchedule              string `json:"reap_schedule" validate:"required"`
}

// DefaultConfig returns the shipped session tunables: one tick per minute,
// offline catch-up capped at 24 hours of ticks.
func DefaultConfig() Config {
	return Config{
		TickIntervalSeconds:       60,
		MaxOfflineCycles:          1440,
		OfflineCultivationEnabled: true,
		IdleTimeoutMinutes:        30,
		ReapSchedule:              "@every 1m",
	}
}

// TickInterval returns the tick interval as a duration
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalSeconds) * time.Second
}

// IdleTimeout returns the idle timeout; zero disables reaping
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}
