package commands

import (
	"strings"

	"github.com/goliatone/go-sitelint/internal/logging"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const commandModuleRoot = "sitelint.commands"

// CommandLogger returns a module-scoped logger for command handlers, tagged
// with the component and command module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
