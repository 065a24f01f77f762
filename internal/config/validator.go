package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpectedEnvSchemaVersion is bumped whenever a required variable is added
// or renamed, so a stale .env fails loudly instead of running on defaults.
const ExpectedEnvSchemaVersion = "1.0"

// RequiredEnvVars must be set for every deployment
var RequiredEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"API_KEY",
}

// PostgresEnvVars are required only with the postgres storage driver
var PostgresEnvVars = []string{
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
	"DB_NAME",
}

// Example values shipped in .env.example
const (
	ExampleAPIKey     = "change_me"
	ExampleDBPassword = "postgres"
)

// ValidateEnv checks the schema version and that every variable the chosen
// storage driver needs is present.
func ValidateEnv() error {
	schemaVersion := os.Getenv("ENV_SCHEMA_VERSION")
	if schemaVersion == "" {
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)", ExpectedEnvSchemaVersion)
	}
	if schemaVersion != ExpectedEnvSchemaVersion {
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, schemaVersion)
	}

	driver := getEnv("STORAGE_DRIVER", StorageDriverPostgres)
	required := RequiredEnvVars
	switch driver {
	case StorageDriverPostgres:
		required = append(append([]string{}, RequiredEnvVars...), PostgresEnvVars...)
	case StorageDriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: expected %s or %s", driver, StorageDriverPostgres, StorageDriverMemory)
	}

	var missing []string
	for _, envVar := range required {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateEnvWithWarnings runs ValidateEnv and then reports settings that
// work but are unsafe outside development.
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string
	if os.Getenv("API_KEY") == ExampleAPIKey {
		warnings = append(warnings, "API_KEY is the example value - generate a secure key with: openssl rand -hex 32")
	}

	driver := getEnv("STORAGE_DRIVER", StorageDriverPostgres)
	production := getEnv("ENVIRONMENT", "dev") == EnvironmentProduction
	if driver == StorageDriverPostgres && production && os.Getenv("DB_PASSWORD") == ExampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD is the example value in production")
	}
	if driver == StorageDriverMemory && production {
		warnings = append(warnings, "STORAGE_DRIVER=memory in production - characters are lost on restart")
	}
	return warnings, nil
}
