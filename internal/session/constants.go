package session

// User-facing messages
const (
	MsgLoggedIn       = "Welcome back. %d cycles of cultivation while away"
	MsgLoggedInFresh  = "Welcome back"
	MsgLoggedOut      = "Logged out after %s"
	MsgNoSession      = "Not logged in"
	MsgNotOnline      = "You are not online"
	MsgCooldown       = "Still gathering qi, %d seconds left"
	MsgTickApplied    = "Cultivated: +%d experience, +%d %s"
	MsgSessionsListed = "%d sessions online"
)

// Logout reasons recorded on session.logout events
const (
	LogoutReasonUser     = "user"
	LogoutReasonReplaced = "replaced"
	LogoutReasonIdle     = "idle"
	LogoutReasonShutdown = "shutdown"
)

// Log messages
const (
	LogMsgLogin            = "User logged in"
	LogMsgLogout           = "User logged out"
	LogMsgForcedLogout     = "Stale session replaced"
	LogMsgTick             = "Online tick applied"
	LogMsgClockSkew        = "Tick requested before last tick, treating as cooldown"
	LogMsgLastActiveFailed = "Failed to stamp last active after tick"
	LogMsgReaped           = "Idle sessions reaped"
	LogMsgReapFailed       = "Failed to reap idle session"
	LogMsgDrained          = "Sessions drained"
)
