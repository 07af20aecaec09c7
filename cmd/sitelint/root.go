package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitelint"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitError   = 2
)

// exitCodeError ends the process with code without printing anything more.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type globalOptions struct {
	root       string
	configFile string
	logLevel   string
	logFormat  string
	noColor    bool
}

type app struct {
	opts     globalOptions
	stdout   io.Writer
	stderr   io.Writer
	config   sitelint.Config
	provider interfaces.LoggerProvider
	module   *sitelint.Module
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var exit exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(stderr, "sitelint:", err)
	return exitError
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sitelint",
		Short: "Lint a Hugo blog repository",
		Long: `sitelint checks post front matter, fenced code blocks, stylesheet
references in the site configuration and base URL overrides in build scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.root, "root", ".", "site repository root")
	flags.StringVar(&a.opts.configFile, "config", "", "sitelint config file (default is <root>/.sitelint.yaml)")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&a.opts.logFormat, "log-format", "", "log format for the gologger provider: json, console, pretty")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newLintCommand(a),
		newBaselineCommand(a),
		newNewCommand(a),
		newPreviewCommand(a),
		newWatchCommand(a),
		newRulesCommand(a),
		newVersionCommand(a),
	)
	return root
}

func (a *app) initialize() error {
	cfg, _, err := sitelint.LoadConfig(a.opts.root, a.opts.configFile)
	if err != nil {
		return err
	}
	if level := strings.TrimSpace(a.opts.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(a.opts.logFormat); format != "" {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.config = cfg

	provider, err := newLoggerProvider(cfg.Logging, a.stderr)
	if err != nil {
		return err
	}
	a.provider = provider

	logging := cfg.Logging
	module, err := sitelint.New(
		sitelint.WithLoggerProvider(provider),
		sitelint.WithOutput(a.stdout),
		sitelint.WithColor(!a.opts.noColor),
		sitelint.WithConfigFile(a.opts.configFile),
		sitelint.WithConfigOverride(func(c *sitelint.Config) { c.Logging = logging }),
	)
	if err != nil {
		return err
	}
	a.module = module
	return nil
}
