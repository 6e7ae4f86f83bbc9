package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, "en_US", c.Dictionary.DefaultLocale)
	require.Equal(t, 5, c.Dictionary.DefaultFormatVersion)
	require.Equal(t, 2.0, c.GC.NodeBloatThreshold)
	require.Equal(t, 1.5, c.GC.NodeBloatThresholdStrict)
}

func TestInitConfigCreatesFileWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	c, err := InitConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), c)
	require.FileExists(t, path)
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	c := DefaultConfig()
	c.Dictionary.DefaultLocale = "fr_FR"
	c.CLI.DefaultSuggestLimit = 42
	require.NoError(t, SaveConfig(c, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "fr_FR", loaded.Dictionary.DefaultLocale)
	require.Equal(t, 42, loaded.CLI.DefaultSuggestLimit)
}

func TestLoadConfigPartialRecoveryOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	malformed := "[dictionary]\ndefault_locale = \"de_DE\"\nthis is not valid toml +++\n"
	require.NoError(t, os.WriteFile(path, []byte(malformed), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestUpdateSavesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	c := DefaultConfig()
	require.NoError(t, SaveConfig(c, path))

	limit := 99
	require.NoError(t, c.Update(path, &limit, nil, nil))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 99, reloaded.CLI.DefaultSuggestLimit)
}

func TestLoadConfigWithPriorityFallsBackToDefaults(t *testing.T) {
	c, source, err := LoadConfigWithPriority("/nonexistent/path/config.toml")
	require.NoError(t, err)
	require.NotNil(t, c)
	_ = source
}
