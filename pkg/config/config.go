/*
Package config manages TOML configuration for wordict dictionary tooling.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordict/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	Dictionary DictionaryConfig `toml:"dictionary"`
	GC         GCConfig         `toml:"gc"`
	CLI        CLIConfig        `toml:"cli"`
}

// DictionaryConfig holds defaults for new dictionaries (spec.md §3
// lifecycle, §6 format versioning). cmd/wordictctl create reads
// DefaultLocale and DefaultFormatVersion; BufferInitialCapacity and
// MaxWordLength mirror the built-in values (dictionary.New's 4096-byte
// buffer, dictconst.MaxWordLength) and are not read by the dictionary
// code.
type DictionaryConfig struct {
	DefaultLocale         string `toml:"default_locale"`
	DefaultFormatVersion  int    `toml:"default_format_version"`
	BufferInitialCapacity int    `toml:"buffer_initial_capacity"`
	MaxWordLength         int    `toml:"max_word_length"`
}

// GCConfig mirrors the fragmentation thresholds of spec.md §4.5 that
// pkg/dictionary/gc.go hard-codes, as non-strict and strict
// (mindsBlockByGC) Node/Level pairs. NeedsToRunGC reads gc.go's
// constants, not this struct, so changing these values does not change
// when GC is reported as needed.
type GCConfig struct {
	NodeBloatThreshold        float64 `toml:"node_bloat_threshold"`
	NodeBloatThresholdStrict float64 `toml:"node_bloat_threshold_strict"`
	LevelBloatThreshold       float64 `toml:"level_bloat_threshold"`
	LevelBloatThresholdStrict float64 `toml:"level_bloat_threshold_strict"`
}

// CLIConfig holds cmd/wordictctl's default flag values.
type CLIConfig struct {
	DefaultSuggestLimit int  `toml:"default_suggest_limit"`
	DefaultPredictLimit int  `toml:"default_predict_limit"`
	DefaultUpdatable    bool `toml:"default_updatable"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordict
// 2. ~/Library/Application Support/wordict (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordict")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordict")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordict/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values, matching the
// thresholds pkg/dictionary/gc.go and pkg/dictconst hard-code so a
// generated config.toml reflects the binary's actual built-in
// behavior.
func DefaultConfig() *Config {
	return &Config{
		Dictionary: DictionaryConfig{
			DefaultLocale:         "en_US",
			DefaultFormatVersion:  5,
			BufferInitialCapacity: 4096,
			MaxWordLength:         48,
		},
		GC: GCConfig{
			NodeBloatThreshold:        2.0,
			NodeBloatThresholdStrict: 1.5,
			LevelBloatThreshold:       3.0,
			LevelBloatThresholdStrict: 2.0,
		},
		CLI: CLIConfig{
			DefaultSuggestLimit: 10,
			DefaultPredictLimit: 5,
			DefaultUpdatable:    false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if dictSection, ok := utils.ExtractSection(tempConfig, "dictionary"); ok {
		extractDictionaryConfig(dictSection, &config.Dictionary)
	}
	if gcSection, ok := utils.ExtractSection(tempConfig, "gc"); ok {
		extractGCConfig(gcSection, &config.GC)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCLIConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractDictionaryConfig extracts dictionary configuration from a map
func extractDictionaryConfig(data map[string]any, dict *DictionaryConfig) {
	if val, ok := data["default_locale"].(string); ok {
		dict.DefaultLocale = val
	}
	if val, ok := utils.ExtractInt64(data, "default_format_version"); ok {
		dict.DefaultFormatVersion = val
	}
	if val, ok := utils.ExtractInt64(data, "buffer_initial_capacity"); ok {
		dict.BufferInitialCapacity = val
	}
	if val, ok := utils.ExtractInt64(data, "max_word_length"); ok {
		dict.MaxWordLength = val
	}
}

// extractGCConfig extracts GC threshold configuration from a map
func extractGCConfig(data map[string]any, gc *GCConfig) {
	if val, ok := data["node_bloat_threshold"].(float64); ok {
		gc.NodeBloatThreshold = val
	}
	if val, ok := data["node_bloat_threshold_strict"].(float64); ok {
		gc.NodeBloatThresholdStrict = val
	}
	if val, ok := data["level_bloat_threshold"].(float64); ok {
		gc.LevelBloatThreshold = val
	}
	if val, ok := data["level_bloat_threshold_strict"].(float64); ok {
		gc.LevelBloatThresholdStrict = val
	}
}

// extractCLIConfig extracts CLI config from a map
func extractCLIConfig(data map[string]any, cli *CLIConfig) {
	if val, ok := utils.ExtractInt64(data, "default_suggest_limit"); ok {
		cli.DefaultSuggestLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_predict_limit"); ok {
		cli.DefaultPredictLimit = val
	}
	if val, ok := utils.ExtractBool(data, "default_updatable"); ok {
		cli.DefaultUpdatable = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the config values and saves to file
func (c *Config) Update(configPath string, suggestLimit, predictLimit *int, updatable *bool) error {
	cli := &c.CLI
	if suggestLimit != nil {
		cli.DefaultSuggestLimit = *suggestLimit
	}
	if predictLimit != nil {
		cli.DefaultPredictLimit = *predictLimit
	}
	if updatable != nil {
		cli.DefaultUpdatable = *updatable
	}
	return SaveConfig(c, configPath)
}
