package main

import (
	"github.com/osse101/IdleCultivation_Go/internal/config"
)

type CheckEnvCommand struct{}

func (c *CheckEnvCommand) Name() string {
	return "check-env"
}

func (c *CheckEnvCommand) Description() string {
	return "Validate the .env file against the expected schema"
}

func (c *CheckEnvCommand) Run(args []string) error {
	PrintHeader("Checking environment...")

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		PrintWarning("%s", w)
	}

	PrintSuccess("Environment matches schema %s", config.ExpectedEnvSchemaVersion)
	return nil
}
