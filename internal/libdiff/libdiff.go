// Package libdiff compares two Liberty files after stripping the
// cosmetic differences the converter is allowed to introduce. It is
// used by the round-trip validation harness, not by the converters
// themselves.
package libdiff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// CleanOptions selects the preprocessing passes applied before
// comparison.
type CleanOptions struct {
	RemoveComments     bool
	MoveEntryToNewline bool
	RemoveQuotes       bool
	RemoveWhitespace   bool
	UnifyNumbers       bool
	RemoveLineBreaks   bool
}

// DefaultCleanOptions enables every pass.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		RemoveComments:     true,
		MoveEntryToNewline: true,
		RemoveQuotes:       true,
		RemoveWhitespace:   true,
		UnifyNumbers:       true,
		RemoveLineBreaks:   true,
	}
}

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	hashCommentRe  = regexp.MustCompile(`(?m)#[^\n]*`)
	afterBraceRe   = regexp.MustCompile(`}[ \t]*([^\n])`)
	lineBreakRe    = regexp.MustCompile(`\\\s*\n`)
	floatRe        = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?`)
)

// CleanLines preprocesses Liberty lines so that semantically irrelevant
// characters do not blur a diff: comments, quotes, whitespace, number
// formatting, and backslash line breaks.
func CleanLines(lines []string, opts CleanOptions) []string {
	text := strings.Join(lines, "\n")

	if opts.RemoveComments {
		text = blockCommentRe.ReplaceAllString(text, "")
		text = lineCommentRe.ReplaceAllString(text, "")
		text = hashCommentRe.ReplaceAllString(text, "")
	}

	text = strings.ReplaceAll(text, "\t", " ")

	if opts.RemoveLineBreaks {
		text = lineBreakRe.ReplaceAllString(text, "")
	}
	if opts.MoveEntryToNewline {
		text = afterBraceRe.ReplaceAllString(text, "}\n$1")
	}
	if opts.RemoveQuotes {
		text = strings.ReplaceAll(text, "\"", "")
	}
	if opts.RemoveWhitespace {
		text = strings.ReplaceAll(text, " ", "")
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if opts.RemoveWhitespace && strings.TrimSpace(line) == "" {
			continue
		}
		if opts.UnifyNumbers {
			line = floatRe.ReplaceAllStringFunc(line, func(m string) string {
				f, err := strconv.ParseFloat(m, 64)
				if err != nil {
					return m
				}
				return strconv.FormatFloat(f, 'g', -1, 64)
			})
		}
		out = append(out, line)
	}
	return out
}

// Similarity returns a 0..1 measure of how alike two cleaned files
// are. The methods trade accuracy for speed: normal is edit-distance
// based, quick and real_quick work on character sets.
func Similarity(a, b []string, method string) (float64, error) {
	s1 := strings.Join(a, "\n")
	s2 := strings.Join(b, "\n")
	switch method {
	case "normal":
		return strutil.Similarity(s1, s2, metrics.NewLevenshtein()), nil
	case "quick":
		return strutil.Similarity(s1, s2, metrics.NewSorensenDice()), nil
	case "real_quick":
		return strutil.Similarity(s1, s2, metrics.NewJaccard()), nil
	}
	return 0, fmt.Errorf("unknown similarity method %q", method)
}

// Render produces a line diff of two cleaned files, "-" for lines only
// in the first, "+" for lines only in the second.
func Render(a, b []string) string {
	var sb strings.Builder
	for _, op := range diffOps(a, b) {
		sb.WriteString(op)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// diffOps walks an LCS table to produce ndiff-style ops. Inputs past
// the size cap fall back to a plain remove-all/add-all rendering.
func diffOps(a, b []string) []string {
	const maxLines = 2000
	if len(a) > maxLines || len(b) > maxLines {
		ops := make([]string, 0, len(a)+len(b))
		for _, l := range a {
			ops = append(ops, "- "+l)
		}
		for _, l := range b {
			ops = append(ops, "+ "+l)
		}
		return ops
	}

	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			ops = append(ops, "  "+a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, "- "+a[i])
			i++
		default:
			ops = append(ops, "+ "+b[j])
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, "- "+a[i])
	}
	for ; j < len(b); j++ {
		ops = append(ops, "+ "+b[j])
	}
	return ops
}
