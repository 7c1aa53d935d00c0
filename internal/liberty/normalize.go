package liberty

import (
	"regexp"
	"strings"
)

// The normalizer rewrites raw Liberty text into tree-literal (JSON)
// syntax, one rule at a time. Rules run in a fixed order and later
// rules assume the earlier ones already ran: comments and line
// continuations are resolved over the whole text first, everything
// after that is line-local, and the closing-brace cleanup runs over
// the joined result at the end.

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	hashCommentRe  = regexp.MustCompile(`(?m)#[^\n]*`)
	continuationRe = regexp.MustCompile(`\\\s*`)

	// name : value statements missing their terminating separator.
	missingSepRe = regexp.MustCompile(`^(\s*[A-Za-z_][A-Za-z0-9_]*\s*:\s*("[^"()]+"|[^\s"(),]+))\s*$`)

	// group header prefix: type ( param ). The opening brace may follow
	// on the same line, later on it, or on the next line, so only the
	// prefix is rewritten and the rest of the line is kept. Runs after
	// the statement rules so define/array/attribute calls are never
	// mistaken for headers.
	groupHeaderRe = regexp.MustCompile(`^(\s*)([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*"?([^"()]*?)"?\s*\)`)

	// define (attribute, group, type);
	defineRe = regexp.MustCompile(`^(\s*)define\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*,\s*([A-Za-z_][A-Za-z0-9_]*)\s*,\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)\s*,\s*$`)

	// one or more quoted numeric lists inside parentheses.
	arrayStmtRe  = regexp.MustCompile(`^(\s*)([A-Za-z_][A-Za-z0-9_]*)\s*\(((?:\s*"[^"]*"\s*,?)+)\s*\)\s*,?\s*$`)
	quotedListRe = regexp.MustCompile(`"([^"]*)"`)
	numListRe    = regexp.MustCompile(`^\s*-?[0-9]+(\.[0-9]+)?(\s*,\s*-?[0-9]+(\.[0-9]+)?)*\s*,?\s*$`)

	// bare attribute call: name ( value );
	compAttrRe = regexp.MustCompile(`^(\s*)([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*"?([^"()]+?)"?\s*\)\s*,\s*$`)

	// inline array attribute: name : "n1, n2, ...";
	inlineArrayRe = regexp.MustCompile(`^(\s*)"?([A-Za-z_][A-Za-z0-9_]*)"?\s*:\s*"([^"]+)"\s*,?\s*$`)

	trailingCommaRe = regexp.MustCompile(`,(\s*})`)
	finalCommaRe    = regexp.MustCompile(`,\s*$`)
)

// Normalize rewrites raw Liberty input into a single tree-literal text.
// The whole file is wrapped in braces so it parses as one top-level
// object. Normalization itself never fails; text it cannot make sense
// of surfaces as a parse error with line information. Blank lines and
// the line structure of stripped comments are kept so that parse
// errors point at source lines; only joined continuations shift the
// numbering of what follows them.
func Normalize(input string) string {
	text := "{\n" + input + "\n}"

	text = blockCommentRe.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	})
	text = lineCommentRe.ReplaceAllString(text, "")
	text = hashCommentRe.ReplaceAllString(text, "")
	text = continuationRe.ReplaceAllString(text, "")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, rewriteLine(line))
	}

	text = strings.Join(out, "\n")
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = finalCommaRe.ReplaceAllString(text, "")
	return text
}

// rewriteLine applies the line-local rules in order. Each rule either
// rewrites the line or leaves it for the next one; the quoting and
// brace rules always run last.
func rewriteLine(line string) string {
	line = strings.ReplaceAll(line, ";", ",")
	line = missingSepRe.ReplaceAllString(line, "$1,")

	if m := defineRe.FindStringSubmatch(line); m != nil {
		// no separator here: the closing-brace rule below adds it.
		line = m[1] + `"define" : {"attribute_name": "` + m[2] +
			`", "group_name": "` + m[3] +
			`", "attribute_type": "` + m[4] + `"}`
	} else if m, ok := matchArrayStmt(line); ok {
		line = m
	} else if m := compAttrRe.FindStringSubmatch(line); m != nil {
		line = m[1] + `"comp_attribute ` + m[2] + `" : "` + m[3] + `",`
	} else if m := groupHeaderRe.FindStringSubmatch(line); m != nil {
		key := m[2]
		if m[3] != "" {
			key += " " + m[3]
		}
		line = m[1] + `"` + key + `" :` + line[len(m[0]):]
	} else if m := inlineArrayRe.FindStringSubmatch(line); m != nil && numListRe.MatchString(m[3]) {
		line = m[1] + `"` + m[2] + `" : [` + strings.TrimSuffix(strings.TrimSpace(m[3]), ",") + `],`
	}

	line = quoteBareTokens(line)
	line = strings.ReplaceAll(line, "}", "},")
	return line
}

// matchArrayStmt recognizes array statements. A single quoted list
// becomes a flat array, several become an array of arrays. Statements
// whose quoted content is not purely numeric are left alone so the
// bare-attribute rule can claim them.
func matchArrayStmt(line string) (string, bool) {
	m := arrayStmtRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	var lists []string
	for _, sub := range quotedListRe.FindAllStringSubmatch(m[3], -1) {
		if !numListRe.MatchString(sub[1]) {
			return "", false
		}
		lists = append(lists, strings.TrimSuffix(strings.TrimSpace(sub[1]), ","))
	}
	if len(lists) == 0 {
		return "", false
	}
	if len(lists) == 1 {
		return m[1] + m[2] + " : [" + lists[0] + "],", true
	}
	return m[1] + m[2] + " : [[" + strings.Join(lists, "], [") + "]],", true
}

// quoteBareTokens wraps every bare identifier (optionally carrying an
// array index like FBIO[22]) in quotes, leaving quoted regions and
// numeric literals untouched. An identifier only starts after a
// non-token character, so the e in 1e-5 stays part of the number.
func quoteBareTokens(line string) string {
	var b strings.Builder
	b.Grow(len(line) + 16)
	inQuote := false
	var prev byte
	for i := 0; i < len(line); {
		c := line[i]
		if c == '"' {
			inQuote = !inQuote
			b.WriteByte(c)
			prev = c
			i++
			continue
		}
		if !inQuote && isIdentStart(c) && !isTokenTail(prev) {
			j := i + 1
			for j < len(line) && isIdentChar(line[j]) {
				j++
			}
			if j < len(line) && line[j] == '[' {
				k := j + 1
				for k < len(line) && line[k] >= '0' && line[k] <= '9' {
					k++
				}
				if k > j+1 && k < len(line) && line[k] == ']' {
					j = k + 1
				}
			}
			b.WriteByte('"')
			b.WriteString(line[i:j])
			b.WriteByte('"')
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isTokenTail(c byte) bool {
	return isIdentChar(c) || c == '.'
}
