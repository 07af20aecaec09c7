package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const (
	rootModule     = "sitelint"
	lintModule     = "sitelint.lint"
	markdownModule = "sitelint.markdown"
	siteModule     = "sitelint.site"
	baselineModule = "sitelint.baseline"
	watchModule    = "sitelint.watch"
)

const (
	fieldPath = "path"
	fieldRule = "rule"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger so callers never have to guard against missing logging.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// LintLogger is used by the rule engine.
func LintLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, lintModule)
}

// MarkdownLogger is used while loading posts.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// SiteLogger is used while assembling a site snapshot.
func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

// BaselineLogger is used by baseline storage.
func BaselineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, baselineModule)
}

// WatchLogger is used by the filesystem watcher.
func WatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watchModule)
}

// WithFinding attaches the path and rule of a finding. Empty values are skipped.
func WithFinding(logger interfaces.Logger, path, rule string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPath] = trimmed
	}
	if trimmed := strings.TrimSpace(rule); trimmed != "" {
		fields[fieldRule] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
