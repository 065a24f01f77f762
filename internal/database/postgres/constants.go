package postgres

// PostgreSQL error codes the repositories translate
const (
	pgCodeUniqueViolation = "23505"
	pgCodeCheckViolation  = "23514"
)

// Operation names used when wrapping storage errors
const (
	opBegin              = "begin transaction"
	opCommit             = "commit"
	opGetCharacter       = "get character"
	opCreateCharacter    = "create character"
	opInsertSlots        = "insert production slots"
	opUpdateCharacter    = "update character"
	opUpdateLastActive   = "update last active"
	opLockCharacter      = "lock character"
	opInventory          = "read inventory"
	opAddItem            = "add item"
	opRemoveItem         = "remove item"
	opListSlots          = "list production slots"
	opUpdateSlot         = "update production slot"
	opUpdateSlotStages   = "update slot stages"
	opLogEvent           = "log game event"
	opGetEvents          = "get game events"
	opCleanupEvents      = "cleanup game events"
	opMarshalEventFields = "marshal game event"
)
