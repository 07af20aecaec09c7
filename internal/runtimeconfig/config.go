package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrContentDirRequired     = errors.New("sitelint config: content directory is required")
	ErrAssetDirsRequired      = errors.New("sitelint config: at least one asset directory is required")
	ErrConfigFilesRequired    = errors.New("sitelint config: at least one site config candidate is required")
	ErrWorkersInvalid         = errors.New("sitelint config: workers must be zero or positive")
	ErrTimeoutInvalid         = errors.New("sitelint config: timeout must be zero or positive")
	ErrRuleSeverityInvalid    = errors.New("sitelint config: rule severity is invalid")
	ErrLoggingProviderUnknown = errors.New("sitelint config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("sitelint config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("sitelint config: logging format is invalid")
)

// Config is the linter configuration. It is normally loaded from
// .sitelint.yaml at the site root, see Load.
type Config struct {
	// Root is the site repository root. Every other path is relative to it.
	Root       string
	ContentDir string
	Pattern    string
	Recursive  bool
	// AssetDirs are searched, in order, when resolving stylesheet references.
	AssetDirs []string
	// StylesheetKeys are dotted site config keys holding custom stylesheets.
	StylesheetKeys []string
	// ConfigFiles lists site config candidates; the first existing one wins.
	ConfigFiles []string
	Deploy      DeployConfig
	Rules       map[string]RuleConfig
	// FrontMatterSchema points to a JSON schema applied to every post's front
	// matter. Empty disables the frontmatter/schema rule.
	FrontMatterSchema string
	// Baseline is the sqlite file holding accepted findings. Empty disables it.
	Baseline string
	Workers  int
	Timeout  time.Duration
	Logging  LoggingConfig
}

// DeployConfig lists the files scanned for build commands.
type DeployConfig struct {
	Workflows string
	Netlify   string
	Scripts   []string
}

// RuleConfig toggles a rule or overrides its severity.
type RuleConfig struct {
	Enabled  *bool
	Severity string
}

// LoggingConfig selects the logging provider.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig matches the layout of a stock Hugo site.
func DefaultConfig() Config {
	return Config{
		Root:           ".",
		ContentDir:     "content/posts",
		Pattern:        "*.md",
		Recursive:      true,
		AssetDirs:      []string{"static", "assets"},
		StylesheetKeys: []string{"params.custom_css", "params.customCSS", "params.css"},
		ConfigFiles: []string{
			"hugo.toml", "hugo.yaml", "hugo.yml", "hugo.json",
			"config.toml", "config.yaml", "config.yml", "config.json",
		},
		Deploy: DeployConfig{
			Workflows: ".github/workflows",
			Netlify:   "netlify.toml",
			Scripts:   []string{"Makefile", "*.sh", "scripts/*.sh"},
		},
		Rules:   map[string]RuleConfig{},
		Workers: 4,
		Timeout: 2 * time.Minute,
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "warn",
		},
	}
}

// Validate reports the first inconsistency found.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if len(nonEmpty(cfg.AssetDirs)) == 0 {
		return ErrAssetDirsRequired
	}
	if len(nonEmpty(cfg.ConfigFiles)) == 0 {
		return ErrConfigFilesRequired
	}
	if cfg.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	for id, rule := range cfg.Rules {
		if sev := strings.TrimSpace(rule.Severity); sev != "" && !isSupportedSeverity(sev) {
			return fmt.Errorf("%w: %s=%s", ErrRuleSeverityInvalid, id, sev)
		}
	}
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)); provider {
	case "", "console":
	case "gologger":
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	return nil
}

// RuleEnabled reports whether id should run, defaulting to true.
func (cfg Config) RuleEnabled(id string) bool {
	rule, ok := cfg.Rules[id]
	if !ok || rule.Enabled == nil {
		return true
	}
	return *rule.Enabled
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func isSupportedSeverity(value string) bool {
	switch strings.ToLower(value) {
	case "error", "warning", "warn", "info":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
