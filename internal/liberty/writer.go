package liberty

import (
	"fmt"
	"regexp"
	"strings"
)

// WriteError is a Document shape the writer does not recognize,
// carrying the offending key/value pair for diagnosis.
type WriteError struct {
	Key    string
	Value  Value
	Reason string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s (key %q, value %T)", e.Reason, e.Key, e.Value)
}

const indentUnit = "  "

const compAttrPrefix = "comp_attribute "

// bareNumberRe is the exact boundary for re-emitting a string scalar
// without quotes: a plain digits.digits literal. Exponent forms stay
// quoted; downstream consumers depend on this.
var bareNumberRe = regexp.MustCompile(`^\d+\.\d+$`)

// Write serializes a Document back into Liberty source lines. Syntax
// is re-derived purely from tree shape; nothing is remembered from the
// original text. The root must hold exactly one key.
func Write(root *Group) ([]string, error) {
	if root.Len() != 1 {
		return nil, &WriteError{Reason: fmt.Sprintf("document has %d root objects, want 1", root.Len())}
	}
	key := root.Keys()[0]
	v, _ := root.Get(key)
	return writeEntry(key, v, 0)
}

// writeEntry renders one key/value pair at the given nesting depth.
func writeEntry(key string, v Value, depth int) ([]string, error) {
	ind := strings.Repeat(indentUnit, depth)

	switch val := v.(type) {
	case List:
		return writeList(key, val, depth)

	case Array:
		vals := make([]string, len(val))
		for i, n := range val {
			vals[i] = string(n)
		}
		return []string{fmt.Sprintf("%s%s (\"%s\");", ind, key, strings.Join(vals, ", "))}, nil

	case Matrix:
		return writeMatrix(key, val, ind), nil

	case *Group:
		if key == "define" {
			return writeDefine(val, ind)
		}
		if strings.HasPrefix(key, compAttrPrefix) {
			return nil, &WriteError{Key: key, Value: v, Reason: "group under complex attribute key"}
		}
		return writeGroup(key, val, depth)

	case String:
		if strings.HasPrefix(key, compAttrPrefix) {
			name := strings.TrimPrefix(key, compAttrPrefix)
			return []string{fmt.Sprintf("%s%s (%s);", ind, name, string(val))}, nil
		}
		if strings.Contains(key, " ") {
			return nil, &WriteError{Key: key, Value: v, Reason: "scalar under unrecognized spaced key"}
		}
		if bareNumberRe.MatchString(string(val)) {
			return []string{fmt.Sprintf("%s%s : %s;", ind, key, string(val))}, nil
		}
		return []string{fmt.Sprintf("%s%s : \"%s\";", ind, key, string(val))}, nil

	case Number:
		if strings.HasPrefix(key, compAttrPrefix) {
			name := strings.TrimPrefix(key, compAttrPrefix)
			return []string{fmt.Sprintf("%s%s (%s);", ind, name, string(val))}, nil
		}
		if strings.Contains(key, " ") {
			return nil, &WriteError{Key: key, Value: v, Reason: "scalar under unrecognized spaced key"}
		}
		return []string{fmt.Sprintf("%s%s : %s;", ind, key, string(val))}, nil
	}

	return nil, &WriteError{Key: key, Value: v, Reason: "unrecognized document shape"}
}

// writeList expands an AttributeList. Repeated complex attributes and
// repeated groups emit one statement or block per element; a list of
// plain scalars falls back to one attribute call per element.
func writeList(key string, list List, depth int) ([]string, error) {
	ind := strings.Repeat(indentUnit, depth)

	if strings.HasPrefix(key, compAttrPrefix) {
		var lines []string
		for _, elem := range list {
			entry, err := writeEntry(key, elem, depth)
			if err != nil {
				return nil, err
			}
			lines = append(lines, entry...)
		}
		return lines, nil
	}

	allGroups := len(list) > 0
	for _, elem := range list {
		if _, ok := elem.(*Group); !ok {
			allGroups = false
			break
		}
	}
	if allGroups {
		var lines []string
		for _, elem := range list {
			entry, err := writeEntry(key, elem, depth)
			if err != nil {
				return nil, err
			}
			lines = append(lines, entry...)
		}
		return lines, nil
	}

	var lines []string
	for _, elem := range list {
		switch sv := elem.(type) {
		case String:
			lines = append(lines, fmt.Sprintf("%s%s (%s);", ind, key, string(sv)))
		case Number:
			lines = append(lines, fmt.Sprintf("%s%s (%s);", ind, key, string(sv)))
		default:
			return nil, &WriteError{Key: key, Value: elem, Reason: "mixed attribute list element"}
		}
	}
	return lines, nil
}

// writeMatrix emits a 2-D array as a continued multi-line literal,
// sub-arrays aligned to the column of the opening parenthesis.
func writeMatrix(key string, mat Matrix, ind string) []string {
	head := fmt.Sprintf("%s%s ( \\", ind, key)
	lines := []string{head}
	rowInd := strings.Repeat(" ", len(head)-2)
	for _, row := range mat {
		vals := make([]string, len(row))
		for i, n := range row {
			vals[i] = string(n)
		}
		lines = append(lines, fmt.Sprintf("%s\"%s\", \\", rowInd, strings.Join(vals, ", ")))
	}
	lines = append(lines, ind+");")
	return lines
}

// writeGroup emits a group header, its children one level deeper, and
// the closing brace. A key without the embedded type/name space is a
// group with an empty parameter, e.g. timing () { ... }.
func writeGroup(key string, g *Group, depth int) ([]string, error) {
	ind := strings.Repeat(indentUnit, depth)
	param := ""
	if parts := strings.SplitN(key, " ", 2); len(parts) == 2 {
		key, param = parts[0], parts[1]
	}
	lines := []string{fmt.Sprintf("%s%s (%s) {", ind, key, param)}
	for _, childKey := range g.Keys() {
		child, _ := g.Get(childKey)
		entry, err := writeEntry(childKey, child, depth+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, entry...)
	}
	lines = append(lines, ind+"}")
	return lines, nil
}

// writeDefine emits the fixed 3-tuple define form.
func writeDefine(g *Group, ind string) ([]string, error) {
	fields := make([]string, 0, 3)
	for _, name := range []string{"attribute_name", "group_name", "attribute_type"} {
		v, ok := g.Get(name)
		if !ok {
			return nil, &WriteError{Key: "define", Value: g, Reason: "define record missing " + name}
		}
		switch sv := v.(type) {
		case String:
			fields = append(fields, string(sv))
		case Number:
			fields = append(fields, string(sv))
		default:
			return nil, &WriteError{Key: "define", Value: v, Reason: "define field " + name + " is not a scalar"}
		}
	}
	return []string{fmt.Sprintf("%sdefine (%s,%s,%s);", ind, fields[0], fields[1], fields[2])}, nil
}
