package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.Watch)
	assert.True(t, cfg.OpenBrowser)
	assert.Equal(t, 100, cfg.MaxPaths)
	assert.Equal(t, 10, cfg.MaxDepth)
	assert.Equal(t, 100, cfg.MaxCycles)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("STING_PORT", "9191")
	t.Setenv("STING_MAX_PATHS", "7")
	t.Setenv("STING_ROOT", "/somewhere")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, 7, cfg.MaxPaths)
	assert.Equal(t, "/somewhere", cfg.Root)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("STING_PORT", "9191")

	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	require.NoError(t, f.Parse([]string{"--port=7777"}))

	cfg, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Port)
}

func TestLoadUnsetFlagKeepsEnvValue(t *testing.T) {
	t.Setenv("STING_PORT", "9191")

	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	require.NoError(t, f.Parse(nil))

	cfg, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Port)
}
