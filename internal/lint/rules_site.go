package lint

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-sitelint/internal/deploy"
	"github.com/goliatone/go-sitelint/internal/siteconfig"
)

const (
	RuleStylesheets = "site/stylesheets"
	RuleBaseURL     = "site/base-url"
	RuleBaseURLFlag = "deploy/base-url-flag"
)

const siteConfigNoFile = "site configuration file not found"

type stylesheetRule struct{ ruleInfo }

func newStylesheetRule() SiteRule {
	return stylesheetRule{ruleInfo{
		id:          RuleStylesheets,
		description: "every configured stylesheet resolves to an asset file",
		severity:    SeverityError,
	}}
}

func (r stylesheetRule) CheckSite(_ context.Context, site *Site) []Finding {
	if site.Config == nil || site.FS == nil {
		return nil
	}
	var out []Finding
	for _, entry := range site.Config.Stylesheets {
		res := siteconfig.ResolveAsset(site.FS, site.AssetDirs, entry.Value)
		if res.Remote || res.Found {
			continue
		}
		msg := fmt.Sprintf("stylesheet %q from %s does not exist", entry.Value, entry.Key)
		if len(res.Tried) > 0 {
			msg += " (looked in " + strings.Join(res.Tried, ", ") + ")"
		}
		out = append(out, r.finding(site.Config.Path, 0, msg))
	}
	return out
}

type baseURLRule struct{ ruleInfo }

func newBaseURLRule() SiteRule {
	return baseURLRule{ruleInfo{
		id:          RuleBaseURL,
		description: "baseURL is set in the site configuration, absolute and ends with a slash",
		severity:    SeverityError,
	}}
}

func (r baseURLRule) CheckSite(_ context.Context, site *Site) []Finding {
	if site.Config == nil {
		msg := siteConfigNoFile
		if site.ConfigErr != nil {
			msg = "site configuration could not be loaded: " + errorText(site.ConfigErr)
		}
		return []Finding{r.finding("", 0, msg)}
	}

	cfg := site.Config
	if !cfg.BaseURLSet || strings.TrimSpace(cfg.BaseURL) == "" {
		return []Finding{r.finding(cfg.Path, 0, "baseURL is not set; set it in the configuration file rather than on the command line")}
	}

	raw := strings.TrimSpace(cfg.BaseURL)
	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return []Finding{r.finding(cfg.Path, 0, fmt.Sprintf("baseURL %q is not a valid URL", raw))}
	case u.Scheme == "" || u.Host == "":
		return []Finding{r.finding(cfg.Path, 0, fmt.Sprintf("baseURL %q must be absolute, including scheme and host", raw))}
	case !strings.HasSuffix(u.Path, "/"):
		return []Finding{r.finding(cfg.Path, 0, fmt.Sprintf("baseURL %q must end with a slash", raw))}
	}
	return nil
}

type baseURLFlagRule struct{ ruleInfo }

func newBaseURLFlagRule() SiteRule {
	return baseURLFlagRule{ruleInfo{
		id:          RuleBaseURLFlag,
		description: "build commands do not override the base URL",
		severity:    SeverityError,
	}}
}

// CheckSite reports flag overrides. A base path configured in the site file
// and repeated by the flag ends up applied twice on path-scoped hosts.
func (r baseURLFlagRule) CheckSite(_ context.Context, site *Site) []Finding {
	var out []Finding
	for _, parseErr := range site.DeployErrors {
		msg := fmt.Sprintf("cannot check build commands, file does not parse: %v", parseErr.Err)
		out = append(out, r.finding(parseErr.Source, parseErr.Line, msg))
	}
	for _, cmd := range site.Commands {
		for _, override := range deploy.FindBaseURLOverrides(cmd) {
			msg := fmt.Sprintf("%s overrides the base URL in %s; keep baseURL in the site configuration", override.Flag, cmd.Origin)
			out = append(out, r.finding(cmd.Source, cmd.Line, msg))
		}
	}
	return out
}
