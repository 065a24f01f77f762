package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Gameplay Metrics
var (
	CultivationTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCultivationTicks,
			Help: HelpTextCultivationTicks,
		},
		[]string{LabelMode},
	)

	ExperienceGained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameExperienceGained,
			Help: HelpTextExperienceGained,
		},
	)

	SpecialEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSpecialEvents,
			Help: HelpTextSpecialEvents,
		},
		[]string{LabelName, LabelPositive},
	)

	Breakthroughs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBreakthroughs,
			Help: HelpTextBreakthroughs,
		},
		[]string{LabelResult},
	)

	SignIns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSignIns,
			Help: HelpTextSignIns,
		},
	)

	LuckPillsUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLuckPillsUsed,
			Help: HelpTextLuckPillsUsed,
		},
	)

	ProductionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameProductionEvents,
			Help: HelpTextProductionEvents,
		},
		[]string{LabelKind, LabelType},
	)

	SessionLogins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSessionLogins,
			Help: HelpTextSessionLogins,
		},
	)

	SessionLogouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSessionLogouts,
			Help: HelpTextSessionLogouts,
		},
		[]string{LabelReason},
	)

	OfflineTicksCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameOfflineTicksCredited,
			Help: HelpTextOfflineTicksCredited,
		},
	)
)

// RegisterOnlineSessions exposes the live session count as a gauge read at
// scrape time. Registering twice keeps the first collector.
func RegisterOnlineSessions(reg prometheus.Registerer, count func() int) error {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: MetricNameOnlineSessions,
			Help: HelpTextOnlineSessions,
		},
		func() float64 { return float64(count()) },
	)
	if err := reg.Register(gauge); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}
	return nil
}
