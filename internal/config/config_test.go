package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "DB_PATH", "LOG_LEVEL", "LOG_HUMAN", "TYPE_SPEED", "CONTACT_DELAY", "CONTACT_RATE", "CONTACT_BURST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "data/portfolio.db", cfg.DBPath)
	assert.True(t, cfg.LogHuman)
	assert.Equal(t, time.Duration(0), cfg.TypeSpeed)
	assert.Equal(t, 800*time.Millisecond, cfg.ContactDelay)
	assert.Equal(t, 3, cfg.ContactBurst)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("LOG_HUMAN", "false")
	t.Setenv("TYPE_SPEED", "30ms")
	t.Setenv("TYPE_PAUSE", "1s")
	t.Setenv("CONTACT_RATE", "1.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.False(t, cfg.LogHuman)
	assert.Equal(t, 30*time.Millisecond, cfg.TypeSpeed)
	assert.Equal(t, time.Second, cfg.TypePause)
	assert.InDelta(t, 1.5, cfg.ContactRate, 1e-9)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"duration": {"TYPE_SPEED", "fast"},
		"bool":     {"LOG_HUMAN", "maybe"},
		"int":      {"CONTACT_BURST", "many"},
		"port":     {"PORT", "http"},
		"mode":     {"GIN_MODE", "prod"},
		"level":    {"LOG_LEVEL", "chatty"},
		"burst":    {"CONTACT_BURST", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
