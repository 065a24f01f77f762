package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/IdleCultivation_Go/internal/cultivation"
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/production"
	"github.com/osse101/IdleCultivation_Go/internal/session"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// GameConfig holds every gameplay tunable
type GameConfig struct {
	Session     session.Config     `json:"session"`
	Luck        luck.Config        `json:"luck"`
	Cultivation cultivation.Config `json:"cultivation"`
	Production  production.Config  `json:"production"`
}

// DefaultGameConfig returns the shipped tunables
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Session:     session.DefaultConfig(),
		Luck:        luck.DefaultConfig(),
		Cultivation: cultivation.DefaultConfig(),
		Production:  production.DefaultConfig(),
	}
}

// LoadGameConfig decodes path over the defaults and validates the result.
// A missing file keeps the defaults; any other failure is a config error.
func LoadGameConfig(path string) (GameConfig, error) {
	cfg := DefaultGameConfig()
	if path != "" {
		if err := utils.LoadJSON(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return GameConfig{}, fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// Validate runs tag validation plus the cross-field table checks
func (g GameConfig) Validate() error {
	if err := validator.New().Struct(g); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
	}
	if err := g.Luck.CheckTiers(); err != nil {
		return err
	}
	if err := g.Cultivation.CheckRealms(); err != nil {
		return err
	}
	return nil
}
