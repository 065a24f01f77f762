package domain

// Event type constants used for event bus subscriptions, metrics and the game log.
//
// Event types follow the pattern: <entity>.<action> (e.g., "session.login")
const (
	// EventTypeCharacterCreated is published when a user creates their character
	EventTypeCharacterCreated = "character.created"

	// EventTypeSessionLogin is published after a login, including offline rewards
	EventTypeSessionLogin = "session.login"

	// EventTypeSessionLogout is published when a session ends (explicit, forced or reaped)
	EventTypeSessionLogout = "session.logout"

	// EventTypeCultivationTick is published for every batch of credited ticks
	EventTypeCultivationTick = "cultivation.tick"

	// EventTypeSpecialEvent is published when a tick fires a luck event
	EventTypeSpecialEvent = "cultivation.special_event"

	// EventTypeBreakthrough is published for every breakthrough attempt
	EventTypeBreakthrough = "cultivation.breakthrough"

	// EventTypeSignIn is published when the daily sign-in rolls a new luck score
	EventTypeSignIn = "luck.sign_in"

	// EventTypeLuckPillUsed is published when a luck pill is consumed
	EventTypeLuckPillUsed = "luck.pill_used"

	// EventTypeProductionStarted is published when a slot is planted or a brew starts
	EventTypeProductionStarted = "production.started"

	// EventTypeProductionCollected is published when a slot is collected
	EventTypeProductionCollected = "production.collected"

	// EventTypeProductionSpoiled is published when a spoiled slot is cleared
	EventTypeProductionSpoiled = "production.spoiled"
)
