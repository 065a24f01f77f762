package config

const (
	// Configuration file paths
	ConfigPathGame = "configs/game.json"

	DefaultServiceName     = "idlecultivation"
	DefaultSignInResetCron = "0 0 * * *"
	DefaultReapSchedule    = "@every 1m"
	DefaultCleanupCron     = "30 3 * * *"
	DefaultDeadLetterPath  = "logs/deadletter.jsonl"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	EnvironmentProduction = "production"
)
