package metrics

import (
	"context"
	"strconv"

	"github.com/osse101/IdleCultivation_Go/internal/event"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all gameplay events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	for _, eventType := range event.AllTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}
	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	if err := record(evt); err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func record(evt event.Event) error {
	switch evt.Type {
	case event.SessionLogin:
		p, err := event.DecodePayload[event.SessionLoginPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		SessionLogins.Inc()
		OfflineTicksCredited.Add(float64(p.TicksCredited))

	case event.SessionLogout:
		p, err := event.DecodePayload[event.SessionLogoutPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		SessionLogouts.WithLabelValues(p.Reason).Inc()

	case event.CultivationTick:
		p, err := event.DecodePayload[event.CultivationTickPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		mode := ModeOnline
		if p.Offline {
			mode = ModeOffline
		}
		CultivationTicks.WithLabelValues(mode).Add(float64(p.Ticks))
		ExperienceGained.Add(float64(p.ExpGained))

	case event.SpecialEvent:
		p, err := event.DecodePayload[event.SpecialEventPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		SpecialEvents.WithLabelValues(p.Name, strconv.FormatBool(p.Positive)).Inc()

	case event.Breakthrough:
		p, err := event.DecodePayload[event.BreakthroughPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		result := ResultFailure
		if p.Success {
			result = ResultSuccess
		}
		Breakthroughs.WithLabelValues(result).Inc()

	case event.SignIn:
		SignIns.Inc()

	case event.LuckPillUsed:
		LuckPillsUsed.Inc()

	case event.ProductionStarted, event.ProductionCollected, event.ProductionSpoiled:
		p, err := event.DecodePayload[event.ProductionPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		ProductionEvents.WithLabelValues(p.Kind, productionAction(evt.Type)).Inc()
	}
	return nil
}

func productionAction(t event.Type) string {
	switch t {
	case event.ProductionStarted:
		return ActionStarted
	case event.ProductionCollected:
		return ActionCollect
	default:
		return ActionSpoiled
	}
}
