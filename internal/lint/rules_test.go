package lint

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-sitelint/internal/deploy"
	"github.com/goliatone/go-sitelint/internal/markdown"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

func post(path, src string) *interfaces.Post {
	return markdown.BuildPost(path, []byte(src), time.Time{})
}

func checkPost(t *testing.T, rule PostRule, p *interfaces.Post) []Finding {
	t.Helper()
	return rule.CheckPost(context.Background(), &Site{Now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, p)
}

func TestFrontMatterRules(t *testing.T) {
	cases := []struct {
		name    string
		rule    PostRule
		src     string
		line    int
		message string
	}{
		{name: "missing block", rule: newFrontMatterParseRule(), src: "# hello\n", line: 1, message: "front matter is missing"},
		{name: "unterminated", rule: newFrontMatterParseRule(), src: "---\ntitle: x\n", line: 1, message: "not terminated"},
		{name: "malformed", rule: newFrontMatterParseRule(), src: "---\ntitle: \"x\n---\n", line: 1, message: "malformed"},
		{name: "missing title", rule: newTitleRule(), src: "---\ndate: 2024-01-01\n---\n", line: 1, message: "title is required"},
		{name: "blank title", rule: newTitleRule(), src: "---\ndate: 2024-01-01\ntitle: \"  \"\n---\n", line: 3, message: "title must not be blank"},
		{name: "numeric title", rule: newTitleRule(), src: "---\ntitle: 42\n---\n", line: 2, message: "title must be a string"},
		{name: "missing date", rule: newDateRule(), src: "---\ntitle: x\n---\n", line: 1, message: "date is required"},
		{name: "bad date", rule: newDateRule(), src: "---\ntitle: x\ndate: last tuesday\n---\n", line: 3, message: `date "last tuesday" is not a valid date`},
		{name: "quoted draft", rule: newDraftRule(), src: "---\ntitle: x\ndraft: \"false\"\n---\n", line: 3, message: "draft must be a boolean"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			found := checkPost(t, tc.rule, post("content/posts/a.md", tc.src))
			if len(found) != 1 {
				t.Fatalf("expected one finding, got %+v", found)
			}
			if found[0].Line != tc.line {
				t.Fatalf("expected line %d, got %d", tc.line, found[0].Line)
			}
			if !strings.Contains(found[0].Message, tc.message) {
				t.Fatalf("expected message containing %q, got %q", tc.message, found[0].Message)
			}
			if found[0].Rule != tc.rule.ID() {
				t.Fatalf("expected rule %s, got %s", tc.rule.ID(), found[0].Rule)
			}
		})
	}
}

func TestFrontMatterRulesPassValidPost(t *testing.T) {
	p := post("content/posts/jwt-claims.md", "---\ntitle: JWT claims\ndate: 2024-05-01\ndraft: false\n---\n\n```yaml\na: b\n```\n")
	for _, rule := range Builtin(Options{}) {
		pr, ok := rule.(PostRule)
		if !ok {
			continue
		}
		if found := checkPost(t, pr, p); len(found) != 0 {
			t.Fatalf("%s: expected no findings, got %+v", rule.ID(), found)
		}
	}
}

func TestFieldRulesSkipBrokenFrontMatter(t *testing.T) {
	p := post("a.md", "no front matter\n")
	for _, rule := range []PostRule{newTitleRule(), newDateRule(), newDraftRule()} {
		if found := checkPost(t, rule, p); len(found) != 0 {
			t.Fatalf("%s: expected parse rule to own the problem, got %+v", rule.ID(), found)
		}
	}
}

func TestTOMLDateIsAccepted(t *testing.T) {
	p := post("a.md", "+++\ntitle = 'x'\ndate = 2024-06-02T08:00:00Z\n+++\n")
	if found := checkPost(t, newDateRule(), p); len(found) != 0 {
		t.Fatalf("expected native toml date to pass, got %+v", found)
	}
}

func TestSchemaRule(t *testing.T) {
	schema, err := CompileFrontMatterSchema("", strings.NewReader(`{
		"type": "object",
		"required": ["tags"],
		"properties": {
			"tags": {"type": "array", "items": {"type": "string"}},
			"weight": {"type": "integer"}
		}
	}`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	rule := newSchemaRule(schema)

	ok := post("a.md", "---\ntitle: x\ndate: 2024-01-01\ntags: [a, b]\nweight: 3\n---\n")
	if found := checkPost(t, rule, ok); len(found) != 0 {
		t.Fatalf("expected no findings, got %+v", found)
	}

	bad := post("a.md", "---\ntitle: x\ntags: [1]\n---\n")
	found := checkPost(t, rule, bad)
	if len(found) != 1 {
		t.Fatalf("expected one finding, got %+v", found)
	}
	if !strings.HasPrefix(found[0].Message, "/tags/0") || found[0].Line != 3 {
		t.Fatalf("unexpected finding %+v", found[0])
	}

	missing := post("a.md", "---\ntitle: x\n---\n")
	if found := checkPost(t, rule, missing); len(found) != 1 {
		t.Fatalf("expected missing property finding, got %+v", found)
	}

	if found := checkPost(t, newSchemaRule(nil), bad); len(found) != 0 {
		t.Fatalf("expected rule without schema to be inert, got %+v", found)
	}
}

func TestCompileFrontMatterSchemaInvalid(t *testing.T) {
	if _, err := CompileFrontMatterSchema("bad.json", strings.NewReader(`{"type": 12}`)); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestFenceRules(t *testing.T) {
	p := post("a.md", "---\ntitle: x\ndate: 2024-01-01\n---\n\n```\nplain\n```\n\n```rego\npackage authz\n")

	fences := checkPost(t, newFenceRule(), p)
	if len(fences) != 1 || fences[0].Line != 10 || !strings.HasPrefix(fences[0].Message, "rego code block") {
		t.Fatalf("unexpected fence findings %+v", fences)
	}

	langs := checkPost(t, newFenceLanguageRule(), p)
	if len(langs) != 1 || langs[0].Line != 6 {
		t.Fatalf("unexpected language findings %+v", langs)
	}
}

func TestSlugRule(t *testing.T) {
	rule := newSlugRule()
	cases := []struct {
		path string
		src  string
		want int
	}{
		{path: "content/posts/jwt-claims.md", src: "---\ntitle: x\n---\n", want: 0},
		{path: "content/posts/JWT Claims.md", src: "---\ntitle: x\n---\n", want: 1},
		{path: "content/posts/Bad Bundle/index.md", src: "---\ntitle: x\n---\n", want: 1},
		{path: "content/posts/good-bundle/index.md", src: "---\ntitle: x\n---\n", want: 0},
		{path: "content/posts/JWT Claims.md", src: "---\ntitle: x\nslug: jwt-claims\n---\n", want: 0},
		{path: "content/posts/jwt.md", src: "---\ntitle: x\nslug: Not A Slug\n---\n", want: 1},
	}
	for _, tc := range cases {
		found := checkPost(t, rule, post(tc.path, tc.src))
		if len(found) != tc.want {
			t.Fatalf("%s: expected %d findings, got %+v", tc.path, tc.want, found)
		}
	}
}

func TestFutureDateRule(t *testing.T) {
	rule := newFutureDateRule()
	future := post("a.md", "---\ntitle: x\ndate: 2030-01-01\n---\n")
	if found := checkPost(t, rule, future); len(found) != 1 || found[0].Line != 3 {
		t.Fatalf("expected future date finding, got %+v", found)
	}
	draft := post("a.md", "---\ntitle: x\ndate: 2030-01-01\ndraft: true\n---\n")
	if found := checkPost(t, rule, draft); len(found) != 0 {
		t.Fatalf("expected drafts to be skipped, got %+v", found)
	}
	past := post("a.md", "---\ntitle: x\ndate: 2020-01-01\n---\n")
	if found := checkPost(t, rule, past); len(found) != 0 {
		t.Fatalf("expected past post to pass, got %+v", found)
	}
}

func TestStylesheetRule(t *testing.T) {
	site := &Site{
		FS: fstest.MapFS{"static/css/custom.css": {Data: []byte("body{}")}},
		Config: &interfaces.SiteConfig{
			Path: "hugo.toml",
			Stylesheets: []interfaces.ConfigEntry{
				{Key: "params.custom_css", Value: "css/custom.css"},
				{Key: "params.custom_css", Value: "css/missing.css"},
				{Key: "params.custom_css", Value: "https://cdn.example.com/x.css"},
			},
		},
	}

	found := newStylesheetRule().CheckSite(context.Background(), site)
	if len(found) != 1 {
		t.Fatalf("expected one finding, got %+v", found)
	}
	if found[0].Path != "hugo.toml" || !strings.Contains(found[0].Message, `"css/missing.css"`) {
		t.Fatalf("unexpected finding %+v", found[0])
	}
	if !strings.Contains(found[0].Message, "static/css/missing.css, assets/css/missing.css") {
		t.Fatalf("expected tried paths in message, got %q", found[0].Message)
	}
}

func TestBaseURLRule(t *testing.T) {
	rule := newBaseURLRule()
	cases := []struct {
		name    string
		config  *interfaces.SiteConfig
		message string
	}{
		{name: "no config", message: "not found"},
		{name: "unset", config: &interfaces.SiteConfig{Path: "hugo.toml"}, message: "not set"},
		{name: "relative", config: &interfaces.SiteConfig{Path: "hugo.toml", BaseURL: "/blog/", BaseURLSet: true}, message: "must be absolute"},
		{name: "no slash", config: &interfaces.SiteConfig{Path: "hugo.toml", BaseURL: "https://example.com/blog", BaseURLSet: true}, message: "must end with a slash"},
		{name: "valid", config: &interfaces.SiteConfig{Path: "hugo.toml", BaseURL: "https://example.com/blog/", BaseURLSet: true}},
	}
	for _, tc := range cases {
		found := rule.CheckSite(context.Background(), &Site{Config: tc.config})
		if tc.message == "" {
			if len(found) != 0 {
				t.Fatalf("%s: expected no findings, got %+v", tc.name, found)
			}
			continue
		}
		if len(found) != 1 || !strings.Contains(found[0].Message, tc.message) {
			t.Fatalf("%s: expected %q, got %+v", tc.name, tc.message, found)
		}
	}
}

func TestBaseURLFlagRule(t *testing.T) {
	site := &Site{Commands: []deploy.Command{
		{Source: ".github/workflows/hugo.yml", Line: 22, Origin: "jobs.build.steps[2].run", Text: `hugo --minify --baseURL "${{ steps.pages.outputs.base_url }}/"`},
		{Source: "netlify.toml", Line: 3, Origin: "build.command", Text: "hugo --minify"},
	}}

	found := newBaseURLFlagRule().CheckSite(context.Background(), site)
	if len(found) != 1 {
		t.Fatalf("expected one finding, got %+v", found)
	}
	if found[0].Path != ".github/workflows/hugo.yml" || found[0].Line != 22 || !strings.HasPrefix(found[0].Message, "--baseURL overrides") {
		t.Fatalf("unexpected finding %+v", found[0])
	}
}

func TestBaseURLFlagRuleReportsUnparseableFiles(t *testing.T) {
	site := &Site{DeployErrors: []*deploy.ParseError{
		{Source: ".github/workflows/broken.yml", Line: 4, Err: errors.New("yaml: line 4: did not find expected node content")},
	}}

	found := newBaseURLFlagRule().CheckSite(context.Background(), site)
	if len(found) != 1 {
		t.Fatalf("expected one finding, got %+v", found)
	}
	if found[0].Path != ".github/workflows/broken.yml" || found[0].Line != 4 || !strings.Contains(found[0].Message, "does not parse") {
		t.Fatalf("unexpected finding %+v", found[0])
	}
}
