package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

func writeGameConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultGameConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultGameConfig().Validate())
}

func TestLoadGameConfig(t *testing.T) {
	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := LoadGameConfig(filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)
		assert.Equal(t, DefaultGameConfig().Session, cfg.Session)
	})

	t.Run("partial file overrides only its fields", func(t *testing.T) {
		path := writeGameConfig(t, `{"session": {"tick_interval_seconds": 300, "max_offline_cycles": 288}}`)

		cfg, err := LoadGameConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 300, cfg.Session.TickIntervalSeconds)
		assert.Equal(t, 288, cfg.Session.MaxOfflineCycles)
		assert.True(t, cfg.Session.OfflineCultivationEnabled)
		assert.Equal(t, DefaultGameConfig().Cultivation.BaseExpGain, cfg.Cultivation.BaseExpGain)
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"session": `},
		{"unknown field", `{"sesion": {}}`},
		{"zero tick interval", `{"session": {"tick_interval_seconds": 0}}`},
		{"variance out of range", `{"cultivation": {"variance": 1.5}}`},
		{"tier gap", `{"luck": {"tiers": [
			{"tier": "GREAT_MISFORTUNE", "min": 0, "max": 10},
			{"tier": "MISFORTUNE", "min": 12, "max": 25},
			{"tier": "MINOR_MISFORTUNE", "min": 26, "max": 40},
			{"tier": "NEUTRAL", "min": 41, "max": 60},
			{"tier": "MINOR_FORTUNE", "min": 61, "max": 75},
			{"tier": "FORTUNE", "min": 76, "max": 90},
			{"tier": "GREAT_FORTUNE", "min": 91, "max": 100}
		]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGameConfig(writeGameConfig(t, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfigInvalid)
		})
	}
}
