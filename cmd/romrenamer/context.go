package main

import (
	"log/slog"

	"romrenamer/internal/config"
	"romrenamer/internal/logging"
)

// commandContext lazily loads configuration and the logger so commands that
// never need them (config init, help) do not pay for or fail on them.
type commandContext struct {
	configFlag *string

	cfg        *config.Config
	configPath string
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.configPath = path
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		LogFile: cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}
