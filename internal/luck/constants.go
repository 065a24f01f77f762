package luck

// Luck effect labels by multiplier threshold
const (
	EffectExcellent = "excellent"
	EffectGood      = "good"
	EffectAverage   = "average"
	EffectPoor      = "poor"

	EffectExcellentThreshold = 1.5
	EffectGoodThreshold      = 1.2
	EffectAverageThreshold   = 0.8
)

// Default sign-in reset: midnight every day
const DefaultSignInResetSpec = "0 0 * * *"

// User-facing messages
const (
	MsgSignedIn        = "Fortune shifts: luck %d -> %d (%s)"
	MsgAlreadySignedIn = "Already signed in today, luck stays at %d"
	MsgPillUsed        = "Luck rises from %d to %d"
	MsgNoLuckPill      = "No luck pill in inventory"
	MsgLuckAtMax       = "Luck is already at its peak"
)

// Log messages
const (
	LogMsgSignIn       = "Daily sign-in"
	LogMsgSignInRepeat = "Sign-in refused, already signed in"
	LogMsgPillUsed     = "Luck pill used"
)
