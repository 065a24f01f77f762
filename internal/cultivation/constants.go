package cultivation

// User-facing messages
const (
	MsgTickApplied            = "Cultivated: +%d experience, +%d %s"
	MsgBreakthroughSuccess    = "Breakthrough! Advanced to %s"
	MsgBreakthroughFailed     = "Breakthrough failed, lost %d experience"
	MsgAtMaxRealm             = "Already at the highest realm"
	MsgInsufficientExperience = "Need %d experience to attempt %s, have %d"
	MsgFocusChanged           = "Cultivation focus set to %s"
	MsgFocusUnchanged         = "Cultivation focus is already %s"
)

// Log messages
const (
	LogMsgTicksApplied     = "Cultivation ticks applied"
	LogMsgSpecialEvent     = "Special event fired"
	LogMsgBreakthrough     = "Breakthrough attempted"
	LogMsgFocusChanged     = "Cultivation focus changed"
	LogMsgNegativeExp      = "Experience went negative"
	LogMsgInvalidTickCount = "Invalid tick count"
)
