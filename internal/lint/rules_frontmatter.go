package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-sitelint/internal/markdown"
	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const (
	RuleFrontMatterParse  = "frontmatter/parse"
	RuleFrontMatterTitle  = "frontmatter/title"
	RuleFrontMatterDate   = "frontmatter/date"
	RuleFrontMatterDraft  = "frontmatter/draft"
	RuleFrontMatterSchema = "frontmatter/schema"
)

type frontMatterParseRule struct{ ruleInfo }

func newFrontMatterParseRule() PostRule {
	return frontMatterParseRule{ruleInfo{
		id:          RuleFrontMatterParse,
		description: "front matter is present and well formed",
		severity:    SeverityError,
	}}
}

func (r frontMatterParseRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	switch err := post.FrontMatterErr; {
	case err == nil:
		return nil
	case errors.Is(err, markdown.ErrNoFrontMatter):
		return []Finding{r.finding(post.Path, 1, "front matter is missing")}
	case errors.Is(err, markdown.ErrUnterminatedFrontMatter):
		return []Finding{r.finding(post.Path, 1, "front matter block is not terminated")}
	default:
		return []Finding{r.finding(post.Path, 1, "front matter is malformed: "+errorText(err))}
	}
}

type titleRule struct{ ruleInfo }

func newTitleRule() PostRule {
	return titleRule{ruleInfo{
		id:          RuleFrontMatterTitle,
		description: "title is a non-empty string",
		severity:    SeverityError,
	}}
}

func (r titleRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	if post.FrontMatterErr != nil {
		return nil
	}
	value := markdown.Lookup(post.FrontMatter, "title")
	err := validation.Validate(value,
		validation.Required.Error("title is required"),
		validation.By(nonBlankString("title")),
	)
	if err == nil {
		return nil
	}
	return []Finding{r.finding(post.Path, post.KeyLine("title", 1), err.Error())}
}

type dateRule struct{ ruleInfo }

func newDateRule() PostRule {
	return dateRule{ruleInfo{
		id:          RuleFrontMatterDate,
		description: "date is present and parseable",
		severity:    SeverityError,
	}}
}

func (r dateRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	if post.FrontMatterErr != nil {
		return nil
	}
	err := validation.Validate(post.DateRaw,
		validation.Required.Error("date is required"),
		validation.By(parseableDate),
	)
	if err == nil {
		return nil
	}
	return []Finding{r.finding(post.Path, post.KeyLine("date", 1), err.Error())}
}

type draftRule struct{ ruleInfo }

func newDraftRule() PostRule {
	return draftRule{ruleInfo{
		id:          RuleFrontMatterDraft,
		description: "draft, when present, is a boolean",
		severity:    SeverityError,
	}}
}

func (r draftRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	if post.FrontMatterErr != nil {
		return nil
	}
	value := markdown.Lookup(post.FrontMatter, "draft")
	if value == nil {
		return nil
	}
	if _, ok := value.(bool); ok {
		return nil
	}
	msg := fmt.Sprintf("draft must be a boolean, got %T %s", value, quoteValue(value))
	return []Finding{r.finding(post.Path, post.KeyLine("draft", 1), msg)}
}

type schemaRule struct {
	ruleInfo
	schema *jsonschema.Schema
}

func newSchemaRule(schema *jsonschema.Schema) PostRule {
	return schemaRule{
		ruleInfo: ruleInfo{
			id:          RuleFrontMatterSchema,
			description: "front matter matches the configured JSON schema",
			severity:    SeverityError,
		},
		schema: schema,
	}
}

func (r schemaRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	if r.schema == nil || post.FrontMatterErr != nil {
		return nil
	}
	// TOML dates and YAML integers are not JSON values; a JSON round trip
	// turns them into strings and float64s the validator understands.
	instance, err := jsonValue(post.FrontMatter)
	if err != nil {
		return []Finding{r.finding(post.Path, 1, "front matter cannot be encoded as JSON: "+err.Error())}
	}
	err = r.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Finding{r.finding(post.Path, 1, errorText(err))}
	}
	var out []Finding
	for _, leaf := range schemaLeaves(verr) {
		location := strings.TrimSpace(leaf.InstanceLocation)
		if location == "" {
			location = "/"
		}
		key := strings.SplitN(strings.TrimPrefix(location, "/"), "/", 2)[0]
		out = append(out, r.finding(post.Path, post.KeyLine(key, 1), fmt.Sprintf("%s: %s", location, strings.TrimSpace(leaf.Message))))
	}
	return out
}

// CompileFrontMatterSchema compiles a JSON schema (draft 2020-12 unless the
// document says otherwise) for the frontmatter/schema rule.
func CompileFrontMatterSchema(name string, r io.Reader) (*jsonschema.Schema, error) {
	if strings.TrimSpace(name) == "" {
		name = "frontmatter.schema.json"
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, r); err != nil {
		return nil, fmt.Errorf("lint: load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("lint: compile schema %s: %w", name, err)
	}
	return schema, nil
}

func schemaLeaves(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		out = append(out, schemaLeaves(cause)...)
	}
	return out
}

func jsonValue(value map[string]any) (any, error) {
	if value == nil {
		value = map[string]any{}
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.NewDecoder(bytes.NewReader(encoded)).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func nonBlankString(field string) validation.RuleFunc {
	return func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_"+field+"_type", fmt.Sprintf("%s must be a string, got %T", field, value))
		}
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_"+field+"_blank", field+" must not be blank")
		}
		return nil
	}
}

func parseableDate(value any) error {
	if _, ok := markdown.ParseDate(value); ok {
		return nil
	}
	return validation.NewError("validation_date_format",
		fmt.Sprintf("date %s is not a valid date (use RFC 3339 or YYYY-MM-DD)", quoteValue(value)))
}

func quoteValue(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", value)
}

func errorText(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, "markdown: ")
	return strings.Join(strings.Fields(msg), " ")
}
