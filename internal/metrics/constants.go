package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Gameplay metric names
const (
	MetricNameCultivationTicks     = "cultivation_ticks_total"
	MetricNameExperienceGained     = "cultivation_experience_gained_total"
	MetricNameSpecialEvents        = "cultivation_special_events_total"
	MetricNameBreakthroughs        = "cultivation_breakthroughs_total"
	MetricNameSignIns              = "luck_sign_ins_total"
	MetricNameLuckPillsUsed        = "luck_pills_used_total"
	MetricNameProductionEvents     = "production_events_total"
	MetricNameSessionLogins        = "session_logins_total"
	MetricNameSessionLogouts       = "session_logouts_total"
	MetricNameOfflineTicksCredited = "session_offline_ticks_credited_total"
	MetricNameOnlineSessions       = "sessions_online"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Gameplay metric help text
const (
	HelpTextCultivationTicks     = "Total number of cultivation ticks applied"
	HelpTextExperienceGained     = "Total cultivation experience credited"
	HelpTextSpecialEvents        = "Total number of fired luck events"
	HelpTextBreakthroughs        = "Total number of breakthrough attempts"
	HelpTextSignIns              = "Total number of daily sign-ins"
	HelpTextLuckPillsUsed        = "Total number of luck pills consumed"
	HelpTextProductionEvents     = "Total number of production slot transitions"
	HelpTextSessionLogins        = "Total number of logins"
	HelpTextSessionLogouts       = "Total number of logouts"
	HelpTextOfflineTicksCredited = "Total number of offline ticks credited at login"
	HelpTextOnlineSessions       = "Current number of online sessions"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelMode     = "mode"
	LabelName     = "name"
	LabelPositive = "positive"
	LabelResult   = "result"
	LabelKind     = "kind"
	LabelReason   = "reason"
)

// Label values
const (
	ModeOnline    = "online"
	ModeOffline   = "offline"
	ResultSuccess = "success"
	ResultFailure = "failure"
	ActionStarted = "started"
	ActionCollect = "collected"
	ActionSpoiled = "spoiled"
	UnknownRoute  = "unmatched"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadUndecodable = "Event payload could not be decoded"
	LogMsgMetricsRecorded         = "Metrics recorded for event"
)
