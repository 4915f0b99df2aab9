package main

import (
	"os"

	"golang.org/x/term"

	"github.com/flowmeta/flowmeta/internal/api"
	"github.com/flowmeta/flowmeta/internal/config"
	"github.com/flowmeta/flowmeta/internal/engine"
	"github.com/flowmeta/flowmeta/internal/logger"
)

// newRunLogger builds the per-run logger. Human readable output on a
// terminal, JSON when piped.
func newRunLogger(verbose bool) (*logger.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{
		Level:         level,
		HumanReadable: term.IsTerminal(int(os.Stderr.Fd())),
	})
}

// newEngine assembles the transport stack: raw client, retry wrapper,
// engine.
func newEngine(settings *config.Settings, log *logger.Logger) (*engine.Engine, error) {
	client, err := api.New(api.Config{
		BaseURL: settings.APIRoot(),
		Credentials: api.Credentials{
			Token:    settings.Token,
			Username: settings.Username,
			Password: settings.Password,
		},
		Timeout: settings.Timeout,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	doer := api.NewRetrying(client, api.RetryPolicy{
		MaxAttempts: settings.RetryAttempts,
		BaseDelay:   settings.RetryBaseDelay,
		MaxDelay:    settings.RetryMaxDelay,
	}, log)

	return engine.New(doer, log), nil
}
