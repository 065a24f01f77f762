package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func TestDecodeStrictJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sample
		wantErr bool
	}{
		{"full", `{"name":"qi","level":3}`, sample{Name: "qi", Level: 3}, false},
		{"partial keeps defaults", `{"level":5}`, sample{Name: "default", Level: 5}, false},
		{"trailing whitespace", "{\"level\":1}\n\n", sample{Name: "default", Level: 1}, false},
		{"unknown field", `{"lvl":1}`, sample{}, true},
		{"trailing value", `{"level":1} {"level":2}`, sample{}, true},
		{"malformed", `{"level":`, sample{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sample{Name: "default"}
			err := DecodeStrictJSON(strings.NewReader(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"farm"}`), 0o600))

	got := sample{Level: 9}
	require.NoError(t, LoadJSON(path, &got))
	assert.Equal(t, sample{Name: "farm", Level: 9}, got)

	err := LoadJSON(filepath.Join(dir, "missing.json"), &got)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
