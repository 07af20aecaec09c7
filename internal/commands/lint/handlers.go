package lintcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sitelint/internal/commands"
	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const (
	lintOperation          = "lint.site"
	saveBaselineOperation  = "baseline.save"
	clearBaselineOperation = "baseline.clear"
	newPostOperation       = "post.new"
)

var (
	_ command.Commander[LintSiteCommand]      = (*LintSiteHandler)(nil)
	_ command.Commander[SaveBaselineCommand]  = (*SaveBaselineHandler)(nil)
	_ command.Commander[ClearBaselineCommand] = (*ClearBaselineHandler)(nil)
	_ command.Commander[NewPostCommand]       = (*NewPostHandler)(nil)
)

// LintSiteHandler runs the linter through the shared command handler.
type LintSiteHandler struct {
	inner *commands.Handler[LintSiteCommand]
}

// NewLintSiteHandler creates a handler bound to service.
func NewLintSiteHandler(service *Service, logger interfaces.Logger, opts ...commands.HandlerOption[LintSiteCommand]) *LintSiteHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg LintSiteCommand) error {
		result, err := service.LintSite(ctx, msg)
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"errors":     result.Summary.Errors,
			"warnings":   result.Summary.Warnings,
			"suppressed": result.Suppressed,
			"exit_code":  result.ExitCode,
		}).Info("lint.command.site.completed")
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintSiteCommand]{
		commands.WithLogger[LintSiteCommand](logger),
		commands.WithOperation[LintSiteCommand](lintOperation),
		commands.WithMessageFields(func(msg LintSiteCommand) map[string]any {
			fields := map[string]any{"root": msg.Root}
			if msg.Format != "" {
				fields["format"] = msg.Format
			}
			if msg.Baseline != "" {
				fields["baseline"] = msg.Baseline
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[LintSiteCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &LintSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[LintSiteCommand].
func (h *LintSiteHandler) Execute(ctx context.Context, msg LintSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveBaselineHandler records current findings as the baseline.
type SaveBaselineHandler struct {
	inner *commands.Handler[SaveBaselineCommand]
}

// NewSaveBaselineHandler creates a handler bound to service.
func NewSaveBaselineHandler(service *Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveBaselineCommand]) *SaveBaselineHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg SaveBaselineCommand) error {
		result, err := service.SaveBaseline(ctx, msg)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveBaselineCommand]{
		commands.WithLogger[SaveBaselineCommand](logger),
		commands.WithOperation[SaveBaselineCommand](saveBaselineOperation),
		commands.WithMessageFields(func(msg SaveBaselineCommand) map[string]any {
			return map[string]any{"root": msg.Root, "baseline": msg.Baseline}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &SaveBaselineHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveBaselineCommand].
func (h *SaveBaselineHandler) Execute(ctx context.Context, msg SaveBaselineCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ClearBaselineHandler empties the baseline.
type ClearBaselineHandler struct {
	inner *commands.Handler[ClearBaselineCommand]
}

// NewClearBaselineHandler creates a handler bound to service.
func NewClearBaselineHandler(service *Service, logger interfaces.Logger, opts ...commands.HandlerOption[ClearBaselineCommand]) *ClearBaselineHandler {
	handlerOpts := []commands.HandlerOption[ClearBaselineCommand]{
		commands.WithLogger[ClearBaselineCommand](logger),
		commands.WithOperation[ClearBaselineCommand](clearBaselineOperation),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ClearBaselineHandler{inner: commands.NewHandler(service.ClearBaseline, handlerOpts...)}
}

// Execute satisfies command.Commander[ClearBaselineCommand].
func (h *ClearBaselineHandler) Execute(ctx context.Context, msg ClearBaselineCommand) error {
	return h.inner.Execute(ctx, msg)
}

// NewPostHandler scaffolds posts.
type NewPostHandler struct {
	inner *commands.Handler[NewPostCommand]
}

// NewNewPostHandler creates a handler bound to service.
func NewNewPostHandler(service *Service, logger interfaces.Logger, opts ...commands.HandlerOption[NewPostCommand]) *NewPostHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg NewPostCommand) error {
		result, err := service.NewPost(ctx, msg)
		if err != nil {
			return err
		}
		logger.Info("lint.command.post.created", "path", result.Path)
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[NewPostCommand]{
		commands.WithLogger[NewPostCommand](logger),
		commands.WithOperation[NewPostCommand](newPostOperation),
		commands.WithMessageFields(func(msg NewPostCommand) map[string]any {
			fields := map[string]any{"title": msg.Title}
			if msg.Draft {
				fields["draft"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &NewPostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[NewPostCommand].
func (h *NewPostHandler) Execute(ctx context.Context, msg NewPostCommand) error {
	return h.inner.Execute(ctx, msg)
}
