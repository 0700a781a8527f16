package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"trimveo/internal/config"
	"trimveo/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	debug      *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose, debug *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		debug:      debug,
	}
}

// ensureConfig loads the configuration once. Directories are created by the
// commands that write into them.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// logger builds the command logger. --verbose raises a quieter configured
// level to info so every sealed package is logged; --debug selects debug.
func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	local := *cfg
	switch {
	case c.debug != nil && *c.debug:
		local.Logging.Level = "debug"
	case c.verbose != nil && *c.verbose && local.Logging.Level != "debug":
		local.Logging.Level = "info"
	}
	return logging.NewFromConfig(&local)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
