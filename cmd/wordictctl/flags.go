package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordict/pkg/config"
)

// defaultFlagSet builds a flag.FlagSet for subcommand name. Debug
// logging is controlled by the WORDICTCTL_DEBUG env var rather than a
// per-subcommand flag, since every subcommand here is a single short
// invocation rather than a long-running process worth tuning per-run.
func defaultFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fs.PrintDefaults()
	}
	return fs
}

// commonConfigFlag registers the -config override every subcommand
// that reads defaults from config.Config accepts.
func commonConfigFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "path to config.toml (default: platform config dir)")
}

// loadConfig resolves configPath via config.LoadConfigWithPriority,
// falling back to config.DefaultConfig on error.
func loadConfig(configPath string) *config.Config {
	c, source, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		log.Warnf("config load error: %v, using defaults", err)
		return config.DefaultConfig()
	}
	if source != "" {
		log.Debugf("loaded config from %s", source)
	}
	return c
}

func requirePath(path string) {
	if path == "" {
		log.Fatal("-path is required")
	}
}

func requireString(value, flagName string) {
	if value == "" {
		log.Fatalf("%s is required", flagName)
	}
}

func init() {
	if os.Getenv("WORDICTCTL_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}
