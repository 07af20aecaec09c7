// Package siteconfig reads the parts of a static site generator configuration
// file that sitelint checks: the base URL, the site parameters and the custom
// stylesheet list.
package siteconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

var (
	// ErrNotFound is returned by Locate when no candidate exists.
	ErrNotFound = errors.New("siteconfig: configuration file not found")
	// ErrUnsupportedFormat is returned for files viper cannot decode.
	ErrUnsupportedFormat = errors.New("siteconfig: unsupported configuration format")
)

// DefaultCandidates are checked by Locate when none are given.
var DefaultCandidates = []string{
	"hugo.toml", "hugo.yaml", "hugo.yml", "hugo.json",
	"config.toml", "config.yaml", "config.yml", "config.json",
	"config/_default/hugo.toml", "config/_default/config.toml",
}

// DefaultStylesheetKeys are the dotted keys themes commonly use for extra CSS.
var DefaultStylesheetKeys = []string{"params.custom_css", "params.customCSS", "params.css"}

// Locate returns the first candidate that exists as a regular file in fsys.
func Locate(fsys fs.FS, candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	for _, candidate := range candidates {
		name := path.Clean(strings.TrimPrefix(strings.TrimSpace(candidate), "./"))
		if name == "" || name == "." {
			continue
		}
		info, err := fs.Stat(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("siteconfig: stat %s: %w", name, err)
		}
		if info.Mode().IsRegular() {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNotFound, strings.Join(candidates, ", "))
}

// Load decodes name from fsys and projects it into a SiteConfig.
func Load(fsys fs.FS, name string, stylesheetKeys []string) (*interfaces.SiteConfig, error) {
	format, err := formatOf(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("siteconfig: read %s: %w", name, err)
	}

	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("siteconfig: decode %s: %w", name, err)
	}

	if len(stylesheetKeys) == 0 {
		stylesheetKeys = DefaultStylesheetKeys
	}

	cfg := &interfaces.SiteConfig{
		Path:        name,
		Format:      format,
		BaseURL:     v.GetString("baseurl"),
		BaseURLSet:  v.IsSet("baseurl"),
		Title:       v.GetString("title"),
		Params:      v.GetStringMap("params"),
		Stylesheets: collectStylesheets(v, stylesheetKeys),
	}
	return cfg, nil
}

// collectStylesheets reads every key in order. Keys are case-insensitive in
// viper, so params.customCSS and params.customcss name the same entry and the
// second lookup is skipped.
func collectStylesheets(v *viper.Viper, keys []string) []interfaces.ConfigEntry {
	var (
		out  []interfaces.ConfigEntry
		seen = map[string]bool{}
	)
	for _, key := range keys {
		key = strings.TrimSpace(key)
		lower := strings.ToLower(key)
		if key == "" || seen[lower] || !v.IsSet(lower) {
			continue
		}
		seen[lower] = true
		for _, value := range stringValues(v.Get(lower)) {
			out = append(out, interfaces.ConfigEntry{Key: key, Value: value})
		}
	}
	return out
}

func stringValues(raw any) []string {
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []string:
		var out []string
		for _, item := range v {
			out = append(out, stringValues(item)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, stringValues(item)...)
		}
		return out
	}
	return nil
}

func formatOf(name string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")); ext {
	case "toml", "json":
		return ext, nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}
