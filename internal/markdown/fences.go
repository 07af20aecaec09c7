package markdown

import (
	"strings"

	"github.com/goliatone/go-sitelint/pkg/interfaces"
)

const minFenceLength = 3

// ScanFences returns the fenced code blocks of body in document order.
// firstLine is the file line number of the first body line so the reported
// positions point into the original file. A fence left open at the end of the
// body is returned with Closed=false.
//
// The rules follow CommonMark: a fence is a run of at least three backticks or
// tildes indented by no more than three spaces; a backtick fence's info string
// may not contain a backtick; the closing fence repeats the opening character
// at least as many times and carries nothing but whitespace after it.
func ScanFences(body []byte, firstLine int) []interfaces.CodeBlock {
	if firstLine < 1 {
		firstLine = 1
	}

	var (
		blocks []interfaces.CodeBlock
		open   *interfaces.CodeBlock
	)
	for i, line := range splitLines(body) {
		lineNo := firstLine + i
		marker, rest, ok := fenceMarker(line)
		if !ok {
			continue
		}

		if open == nil {
			if marker[0] == '`' && strings.ContainsRune(rest, '`') {
				continue
			}
			open = &interfaces.CodeBlock{
				Fence:     marker,
				Info:      strings.TrimSpace(rest),
				StartLine: lineNo,
			}
			continue
		}

		if marker[0] == open.Fence[0] && len(marker) >= len(open.Fence) && strings.TrimSpace(rest) == "" {
			open.EndLine = lineNo
			open.Closed = true
			blocks = append(blocks, *open)
			open = nil
		}
	}
	if open != nil {
		blocks = append(blocks, *open)
	}
	return blocks
}

// fenceMarker splits line into its fence run and the text after it.
func fenceMarker(line string) (string, string, bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 || indent == len(line) {
		return "", "", false
	}

	ch := line[indent]
	if ch != '`' && ch != '~' {
		return "", "", false
	}
	end := indent
	for end < len(line) && line[end] == ch {
		end++
	}
	if end-indent < minFenceLength {
		return "", "", false
	}
	return line[indent:end], line[end:], true
}

// UnclosedFences returns the blocks that never close.
func UnclosedFences(blocks []interfaces.CodeBlock) []interfaces.CodeBlock {
	var out []interfaces.CodeBlock
	for _, b := range blocks {
		if !b.Closed {
			out = append(out, b)
		}
	}
	return out
}
