package domain

import "fmt"

// ReasonCode tags every operation result with a machine-readable cause
type ReasonCode string

const (
	ReasonOK ReasonCode = "OK"

	// Session
	ReasonNotOnline ReasonCode = "NOT_ONLINE"
	ReasonNoSession ReasonCode = "NO_SESSION"
	ReasonCooldown  ReasonCode = "COOLDOWN"

	// Cultivation
	ReasonBreakthroughFailed     ReasonCode = "BREAKTHROUGH_FAILED"
	ReasonInsufficientExperience ReasonCode = "INSUFFICIENT_EXPERIENCE"
	ReasonMaxRealm               ReasonCode = "MAX_REALM"

	// Luck
	ReasonAlreadySignedIn ReasonCode = "ALREADY_SIGNED_IN"

	// Production
	ReasonSlotOccupied          ReasonCode = "SLOT_OCCUPIED"
	ReasonSlotLocked            ReasonCode = "SLOT_LOCKED"
	ReasonSlotEmpty             ReasonCode = "SLOT_EMPTY"
	ReasonSlotAlreadyUnlocked   ReasonCode = "SLOT_ALREADY_UNLOCKED"
	ReasonInvalidSlot           ReasonCode = "INVALID_SLOT"
	ReasonNotReady              ReasonCode = "NOT_READY"
	ReasonSpoiled               ReasonCode = "SPOILED"
	ReasonUnknownRecipe         ReasonCode = "UNKNOWN_RECIPE"
	ReasonRealmTooLow           ReasonCode = "REALM_TOO_LOW"
	ReasonLevelTooLow           ReasonCode = "LEVEL_TOO_LOW"
	ReasonCaveLevelTooLow       ReasonCode = "CAVE_LEVEL_TOO_LOW"
	ReasonAlchemyFailed         ReasonCode = "ALCHEMY_FAILED"
	ReasonInsufficientResources ReasonCode = "INSUFFICIENT_RESOURCES"

	// Character
	ReasonCharacterNotFound ReasonCode = "CHARACTER_NOT_FOUND"
	ReasonCharacterExists   ReasonCode = "CHARACTER_EXISTS"
	ReasonInvalidInput      ReasonCode = "INVALID_INPUT"

	// Faults
	ReasonInfrastructure ReasonCode = "INFRASTRUCTURE"
	ReasonInternal       ReasonCode = "INTERNAL"
)

// Outcome is the tagged success/failure part of every operation result.
// Expected game outcomes are reported here and never as errors.
type Outcome struct {
	Success bool       `json:"success"`
	Reason  ReasonCode `json:"reason"`
	Message string     `json:"message"`
}

// Succeed builds a successful outcome
func Succeed(format string, args ...any) Outcome {
	return Outcome{Success: true, Reason: ReasonOK, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failed outcome with the given reason
func Fail(reason ReasonCode, format string, args ...any) Outcome {
	return Outcome{Success: false, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Failed reports whether the outcome carries the given failure reason
func (o Outcome) Failed(reason ReasonCode) bool {
	return !o.Success && o.Reason == reason
}
