package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/event"
)

// InitializeEventSystem returns the in-process bus and the publisher game
// services publish through. Publishes that keep failing after
// EVENT_MAX_RETRIES attempts land in the dead-letter file, which the
// devtool dead-letters command summarizes.
func InitializeEventSystem(cfg *config.Config) (event.Bus, *event.ResilientPublisher, error) {
	bus := event.NewMemoryBus()

	publisher, err := event.NewResilientPublisher(bus, cfg.EventMaxRetries, cfg.EventRetryDelay, cfg.EventDeadLetterPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateResilientPublisher, err)
	}

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", cfg.EventMaxRetries,
		"retry_delay", cfg.EventRetryDelay,
		"deadletter_path", cfg.EventDeadLetterPath)
	return bus, publisher, nil
}
