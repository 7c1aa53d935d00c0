package mapper

import (
	"fmt"
	"regexp"
	"strings"
)

// whenClauseRe matches one conjunct of a when condition: a signal
// compared against a single-bit literal, e.g. A == 1'b1.
var whenClauseRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*(?:\[[0-9]+\])?)\s*==\s*1'b([01])$`)

// whenSuffix converts a when clause into the element-name suffix that
// identifies the enabling input pattern: each signal == 1'b<bit>
// conjunct contributes _<signal>_EQ_<bit>. A non-empty clause that
// yields no conjunct at all is a hard error.
func whenSuffix(when string, normalizePorts bool) (string, error) {
	var sb strings.Builder
	matched := 0
	for _, part := range strings.Split(when, "&&") {
		m := whenClauseRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		signal := m[1]
		if normalizePorts {
			signal = indexBracketRe.ReplaceAllString(signal, "")
		}
		sb.WriteString("_")
		sb.WriteString(signal)
		sb.WriteString("_EQ_")
		sb.WriteString(m[2])
		matched++
	}
	if matched == 0 {
		return "", fmt.Errorf("cannot extract any condition from when clause %q", when)
	}
	return sb.String(), nil
}
