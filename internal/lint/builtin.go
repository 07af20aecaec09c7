package lint

import jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

// Options configures the built-in rules.
type Options struct {
	// FrontMatterSchema enables frontmatter/schema when set.
	FrontMatterSchema *jsonschema.Schema
}

// Builtin returns the built-in rules.
func Builtin(opts Options) []Rule {
	return []Rule{
		newFrontMatterParseRule(),
		newTitleRule(),
		newDateRule(),
		newDraftRule(),
		newSchemaRule(opts.FrontMatterSchema),
		newFenceRule(),
		newFenceLanguageRule(),
		newSlugRule(),
		newFutureDateRule(),
		newStylesheetRule(),
		newBaseURLRule(),
		newBaseURLFlagRule(),
	}
}

// DefaultRegistry returns a registry holding the built-in rules.
func DefaultRegistry(opts Options) (*Registry, error) {
	registry := NewRegistry()
	if err := registry.Register(Builtin(opts)...); err != nil {
		return nil, err
	}
	return registry, nil
}
