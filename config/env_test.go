package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		env      map[string]string
		expected string
	}{
		{
			name:     "default used when var unset",
			input:    `nats://${NATS_HOST:-localhost}:4222`,
			expected: `nats://localhost:4222`,
		},
		{
			name:     "env value used when set",
			input:    `nats://${NATS_HOST:-localhost}:4222`,
			env:      map[string]string{"NATS_HOST": "nats.prod"},
			expected: `nats://nats.prod:4222`,
		},
		{
			name:     "multiple vars with defaults",
			input:    `nats://${NATS_HOST:-localhost}:${NATS_PORT:-4222}`,
			expected: `nats://localhost:4222`,
		},
		{
			name:     "empty default",
			input:    `prefix${OPTIONAL:-}suffix`,
			expected: `prefixsuffix`,
		},
		{
			name:     "simple var without default",
			input:    `${ACF_DATA}`,
			env:      map[string]string{"ACF_DATA": "/srv/data"},
			expected: `/srv/data`,
		},
		{
			name:     "simple var unset without default",
			input:    `${ACF_DATA}`,
			expected: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []string{"NATS_HOST", "NATS_PORT", "OPTIONAL", "ACF_DATA"} {
				t.Setenv(v, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.expected, ExpandEnvWithDefaults(tt.input))
		})
	}
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("ACF_NATS", "nats://broker:4222")
	path := filepath.Join(t.TempDir(), "acf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nats:\n  url: ${ACF_NATS}\ndata:\n  dir: ${ACF_DATA_DIR:-records}\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, "records", cfg.Data.Dir)
}
