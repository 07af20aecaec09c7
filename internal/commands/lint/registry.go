package lintcmd

import (
	"errors"

	"github.com/goliatone/go-sitelint/internal/commands"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers, e.g. a go-command registry.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers built by RegisterLintCommands.
type HandlerSet struct {
	Lint          *LintSiteHandler
	SaveBaseline  *SaveBaselineHandler
	ClearBaseline *ClearBaselineHandler
	NewPost       *NewPostHandler
}

// RegisterLintCommands builds the handlers and registers them with reg when
// it is not nil.
func RegisterLintCommands(reg CommandRegistry, service *Service, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("lint command registration: service is nil")
	}
	logger := commands.CommandLogger(provider, "lint")

	set := &HandlerSet{
		Lint:          NewLintSiteHandler(service, logger),
		SaveBaseline:  NewSaveBaselineHandler(service, logger),
		ClearBaseline: NewClearBaselineHandler(service, logger),
		NewPost:       NewNewPostHandler(service, logger),
	}
	if reg != nil {
		for _, handler := range []any{set.Lint, set.SaveBaseline, set.ClearBaseline, set.NewPost} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
