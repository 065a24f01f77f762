package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/eventlog"
	"github.com/osse101/IdleCultivation_Go/internal/metrics"
)

// RegisterEventHandlers subscribes the metrics collector and the game log
// to every gameplay event.
func RegisterEventHandlers(bus event.Bus, eventLogService eventlog.Service) error {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(bus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	if err := eventLogService.Subscribe(bus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSubscribeEventLogger, err)
	}
	slog.Info(LogMsgEventLoggerInitialized)

	return nil
}
