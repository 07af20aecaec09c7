package main

import (
	"io"
	"strings"

	"github.com/goliatone/go-sitelint/internal/logging/console"
	"github.com/goliatone/go-sitelint/internal/logging/gologger"
	"github.com/goliatone/go-sitelint/internal/runtimeconfig"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

func newLoggerProvider(cfg runtimeconfig.LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), "gologger") {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	level, _ := console.ParseLevel(cfg.Level)
	return console.NewProvider(console.Options{Writer: w, MinLevel: level}), nil
}
