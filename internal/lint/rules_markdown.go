package lint

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const (
	RuleFence         = "markdown/fence"
	RuleFenceLanguage = "markdown/fence-language"
)

type fenceRule struct{ ruleInfo }

func newFenceRule() PostRule {
	return fenceRule{ruleInfo{
		id:          RuleFence,
		description: "every fenced code block is closed",
		severity:    SeverityError,
	}}
}

func (r fenceRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	var out []Finding
	for _, block := range post.CodeBlocks {
		if block.Closed {
			continue
		}
		msg := fmt.Sprintf("code block opened with %s is never closed", block.Fence)
		if lang := block.Language(); lang != "" {
			msg = fmt.Sprintf("%s code block opened with %s is never closed", lang, block.Fence)
		}
		out = append(out, r.finding(post.Path, block.StartLine, msg))
	}
	return out
}

type fenceLanguageRule struct{ ruleInfo }

func newFenceLanguageRule() PostRule {
	return fenceLanguageRule{ruleInfo{
		id:          RuleFenceLanguage,
		description: "fenced code blocks declare a language",
		severity:    SeverityInfo,
	}}
}

func (r fenceLanguageRule) CheckPost(_ context.Context, _ *Site, post *interfaces.Post) []Finding {
	var out []Finding
	for _, block := range post.CodeBlocks {
		if block.Language() != "" {
			continue
		}
		out = append(out, r.finding(post.Path, block.StartLine, "code block has no language"))
	}
	return out
}
