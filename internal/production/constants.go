package production

// User-facing messages
const (
	MsgPlanted          = "Planted %s in plot %d, ready in %s"
	MsgBrewStarted      = "Started %s in cauldron %d, ready in %s (success %.0f%%)"
	MsgHarvested        = "Harvested %d x %s"
	MsgBrewSucceeded    = "Refined %s (%s)"
	MsgBrewFailed       = "The %s brew failed"
	MsgSlotOccupied     = "Slot %d is already in use"
	MsgSlotLocked       = "Slot %d is locked"
	MsgSlotEmpty        = "Slot %d is empty"
	MsgInvalidSlot      = "Slot %d does not exist"
	MsgNotReady         = "Not ready yet, %d seconds remaining"
	MsgSpoiled          = "The crop in plot %d withered and was cleared"
	MsgUnknownRecipe    = "Unknown recipe %q"
	MsgRealmTooLow      = "Requires realm %d"
	MsgLevelTooLow      = "Requires alchemy level %d"
	MsgMissingMaterial  = "Missing %s: need %d, have %d"
	MsgUnlocked         = "Unlocked plot %d"
	MsgAlreadyUnlocked  = "Slot %d is already unlocked"
	MsgNotUnlockable    = "Slot %d cannot be unlocked"
	MsgCaveLevelTooLow  = "Requires cave level %d"
	MsgInsufficientGold = "Requires %d gold, have %d"
	MsgSlotsListed      = "%d slots"
)

// Log messages
const (
	LogMsgProductionStarted   = "Production started"
	LogMsgProductionCollected = "Production collected"
	LogMsgProductionSpoiled   = "Production spoiled"
	LogMsgSlotUnlocked        = "Slot unlocked"
	LogMsgSweepCompleted      = "Production stage sweep completed"
	LogMsgSweepFailed         = "Production stage sweep failed"
)

// SweepPageSize bounds each page of the background stage sweep
const SweepPageSize = 500
