package runtimeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the base name (without extension) of the linter config file.
const FileName = ".sitelint"

// EnvPrefix prefixes environment overrides, e.g. SITELINT_CONTENT_DIR.
const EnvPrefix = "SITELINT"

// Load reads the linter configuration for the site at root. When file is
// empty, root is searched for .sitelint.{yaml,yml,toml,json}; a missing file
// is not an error and yields DefaultConfig with environment overrides. The
// returned path is empty when no file was read.
func Load(root, file string) (Config, string, error) {
	defaults := DefaultConfig()
	if strings.TrimSpace(root) == "" {
		root = defaults.Root
	}

	v := viper.New()
	v.SetDefault("content_dir", defaults.ContentDir)
	v.SetDefault("pattern", defaults.Pattern)
	v.SetDefault("recursive", defaults.Recursive)
	v.SetDefault("asset_dirs", defaults.AssetDirs)
	v.SetDefault("stylesheet_keys", defaults.StylesheetKeys)
	v.SetDefault("config_files", defaults.ConfigFiles)
	v.SetDefault("deploy.workflows", defaults.Deploy.Workflows)
	v.SetDefault("deploy.netlify", defaults.Deploy.Netlify)
	v.SetDefault("deploy.scripts", defaults.Deploy.Scripts)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("logging.provider", defaults.Logging.Provider)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(file) != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(root, file)
		}
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(root)
		v.SetConfigName(FileName)
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return Config{}, "", fmt.Errorf("sitelint config: read: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	cfg := Config{
		Root:              root,
		ContentDir:        v.GetString("content_dir"),
		Pattern:           v.GetString("pattern"),
		Recursive:         v.GetBool("recursive"),
		AssetDirs:         v.GetStringSlice("asset_dirs"),
		StylesheetKeys:    v.GetStringSlice("stylesheet_keys"),
		ConfigFiles:       v.GetStringSlice("config_files"),
		FrontMatterSchema: v.GetString("frontmatter_schema"),
		Baseline:          v.GetString("baseline"),
		Workers:           v.GetInt("workers"),
		Timeout:           v.GetDuration("timeout"),
		Deploy: DeployConfig{
			Workflows: v.GetString("deploy.workflows"),
			Netlify:   v.GetString("deploy.netlify"),
			Scripts:   v.GetStringSlice("deploy.scripts"),
		},
		Rules: decodeRules(v.GetStringMap("rules")),
		Logging: LoggingConfig{
			Provider:  v.GetString("logging.provider"),
			Level:     v.GetString("logging.level"),
			Format:    v.GetString("logging.format"),
			AddSource: v.GetBool("logging.add_source"),
			Focus:     v.GetStringSlice("logging.focus"),
		},
	}
	return cfg, used, nil
}

func decodeRules(raw map[string]any) map[string]RuleConfig {
	rules := make(map[string]RuleConfig, len(raw))
	for id, value := range raw {
		entry, ok := value.(map[string]any)
		if !ok {
			continue
		}
		var rule RuleConfig
		if enabled, ok := entry["enabled"].(bool); ok {
			rule.Enabled = &enabled
		}
		if severity, ok := entry["severity"].(string); ok {
			rule.Severity = strings.TrimSpace(severity)
		}
		rules[id] = rule
	}
	return rules
}
