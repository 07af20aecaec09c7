package deploy

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"mvdan.cc/sh/v3/syntax"
)

// baseURLEnv is read by the generator as an alternative to the flag.
const baseURLEnv = "HUGO_BASEURL"

// generators are the executables whose base URL flags are checked.
var generators = map[string]bool{"hugo": true, "hugo.exe": true}

// serverCommands run a local preview, where overriding the base URL is normal.
var serverCommands = map[string]bool{"server": true, "serve": true}

// workflowExpr matches GitHub Actions expressions, which are substituted
// before the shell sees the script.
var workflowExpr = regexp.MustCompile(`\$\{\{.*?\}\}`)

// Generator flags are declared so combined shorthands (-Db) and flag values
// are split the way the generator splits them. Anything else is skipped.
var (
	generatorBoolFlags = []struct{ name, short string }{
		{"buildDrafts", "D"},
		{"buildExpired", "E"},
		{"buildFuture", "F"},
		{"watch", "w"},
		{"verbose", "v"},
		{"minify", ""},
		{"gc", ""},
		{"cleanDestinationDir", ""},
		{"noTimes", ""},
		{"noChmod", ""},
		{"ignoreCache", ""},
		{"enableGitInfo", ""},
		{"forceSyncStatic", ""},
		{"quiet", ""},
		{"debug", ""},
		{"panicOnWarning", ""},
		{"renderToMemory", ""},
		{"templateMetrics", ""},
		{"templateMetricsHints", ""},
	}
	generatorValueFlags = []struct{ name, short string }{
		{"destination", "d"},
		{"source", "s"},
		{"environment", "e"},
		{"contentDir", "c"},
		{"theme", "t"},
		{"layoutDir", "l"},
		{"config", ""},
		{"configDir", ""},
		{"cacheDir", ""},
		{"themesDir", ""},
		{"logLevel", ""},
	}
)

const baseURLFlag = "baseurl"

// FindBaseURLOverrides reports base URL overrides in every generator
// invocation of cmd.Text, including HUGO_BASEURL assignments and exports.
// Commands that fail to parse as shell are scanned word by word instead.
func FindBaseURLOverrides(cmd Command) []Override {
	text, restore := protectExpressions(cmd.Text)
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(text), "")
	if err != nil {
		return fieldOverrides(cmd, text, restore)
	}

	var out []Override
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CallExpr:
			args := make([]string, len(n.Args))
			for i, word := range n.Args {
				args[i] = restore(wordText(word))
			}
			out = append(out, invocationOverrides(cmd, assignOverrides(cmd, n.Assigns, restore), args)...)
		case *syntax.DeclClause:
			if n.Variant != nil && n.Variant.Value == "export" {
				out = append(out, assignOverrides(cmd, n.Args, restore)...)
			}
		}
		return true
	})
	return out
}

// QuoteShell quotes value for use as a single shell word.
func QuoteShell(value string) string {
	quoted, err := syntax.Quote(value, syntax.LangBash)
	if err != nil {
		return value
	}
	return quoted
}

func assignOverrides(cmd Command, assigns []*syntax.Assign, restore func(string) string) []Override {
	var out []Override
	for _, assign := range assigns {
		if assign == nil || assign.Name == nil || assign.Value == nil {
			continue
		}
		if strings.EqualFold(assign.Name.Value, baseURLEnv) {
			out = append(out, Override{Command: cmd, Flag: assign.Name.Value, Value: restore(wordText(assign.Value))})
		}
	}
	return out
}

// invocationOverrides returns env plus the flag overrides in args when args
// invoke the generator. Server invocations report nothing.
func invocationOverrides(cmd Command, env []Override, args []string) []Override {
	if len(args) == 0 || !generators[strings.ToLower(path.Base(args[0]))] {
		return env
	}
	rest := args[1:]
	if len(rest) > 0 && serverCommands[strings.ToLower(rest[0])] {
		return nil
	}
	return append(env, flagOverrides(cmd, rest)...)
}

func flagOverrides(cmd Command, args []string) []Override {
	flags := newGeneratorFlagSet()

	var values []string
	err := flags.ParseAll(args, func(flag *pflag.Flag, value string) error {
		if flag.Name == baseURLFlag {
			values = append(values, value)
		}
		return flag.Value.Set(value)
	})

	spellings := baseURLSpellings(flags, args)
	out := make([]Override, 0, len(spellings))
	for i, spelling := range spellings {
		value := ""
		if i < len(values) {
			value = values[i]
		} else if err == nil {
			break
		}
		out = append(out, Override{Command: cmd, Flag: spelling, Value: value})
	}
	return out
}

func newGeneratorFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("hugo", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ToLower(name))
	})
	flags.StringP(baseURLFlag, "b", "", "")
	for _, f := range generatorBoolFlags {
		flags.BoolP(f.name, f.short, false, "")
	}
	for _, f := range generatorValueFlags {
		flags.StringP(f.name, f.short, "", "")
	}
	return flags
}

// baseURLSpellings lists how each base URL flag was written, in order.
func baseURLSpellings(flags *pflag.FlagSet, args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch {
		case tok == "--":
			return out
		case strings.HasPrefix(tok, "--"):
			name, _, hasValue := strings.Cut(tok[2:], "=")
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if flag.Name == baseURLFlag {
				out = append(out, "--"+name)
			}
			if !hasValue && flag.Value.Type() != "bool" {
				i++
			}
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			if short, consumesNext := shortSpelling(flags, tok[1:]); short != "" {
				out = append(out, short)
				if consumesNext {
					i++
				}
			} else if consumesNext {
				i++
			}
		}
	}
	return out
}

// shortSpelling walks a shorthand group such as "Db" and reports "-b" when
// the base URL shorthand is reached. consumesNext is true when the last flag
// of the group takes the following argument as its value.
func shortSpelling(flags *pflag.FlagSet, group string) (string, bool) {
	for i := 0; i < len(group); i++ {
		flag := flags.ShorthandLookup(group[i : i+1])
		if flag == nil {
			return "", false
		}
		if flag.Value.Type() == "bool" {
			continue
		}
		consumes := i == len(group)-1
		if flag.Name == baseURLFlag {
			return "-" + flag.Shorthand, consumes
		}
		return "", consumes
	}
	return "", false
}

func wordText(word *syntax.Word) string {
	var b strings.Builder
	for _, part := range word.Parts {
		writeWordPart(&b, part)
	}
	return b.String()
}

// writeWordPart removes quoting but leaves expansions as written, so $VARS
// and $(commands) are reported verbatim.
func writeWordPart(b *strings.Builder, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		b.WriteString(unescape(p.Value))
	case *syntax.SglQuoted:
		b.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			writeWordPart(b, inner)
		}
	default:
		if err := syntax.NewPrinter().Print(b, part); err != nil {
			fmt.Fprint(b, part)
		}
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// protectExpressions swaps workflow expressions for plain words the shell
// parser accepts and returns the function that puts them back.
func protectExpressions(text string) (string, func(string) string) {
	matches := workflowExpr.FindAllString(text, -1)
	if len(matches) == 0 {
		return text, func(s string) string { return s }
	}
	pairs := make([]string, 0, len(matches)*2)
	for i, match := range matches {
		placeholder := fmt.Sprintf("__sitelint_expr_%d__", i)
		text = strings.Replace(text, match, placeholder, 1)
		pairs = append(pairs, placeholder, match)
	}
	return text, strings.NewReplacer(pairs...).Replace
}

// fieldOverrides is the fallback for text the shell parser rejects, such as
// Makefile-only syntax: each line is split on blanks.
func fieldOverrides(cmd Command, text string, restore func(string) string) []Override {
	var out []Override
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		var env []Override
		start := 0
		for start < len(fields) {
			name, value, ok := strings.Cut(fields[start], "=")
			if !ok || !syntax.ValidName(name) {
				break
			}
			if strings.EqualFold(name, baseURLEnv) {
				env = append(env, Override{Command: cmd, Flag: name, Value: restore(value)})
			}
			start++
		}
		args := make([]string, 0, len(fields)-start)
		for _, field := range fields[start:] {
			args = append(args, restore(field))
		}
		out = append(out, invocationOverrides(cmd, env, args)...)
	}
	return out
}
