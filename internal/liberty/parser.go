package liberty

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

// ParseError is a hard failure turning normalized text into a Document.
// Line numbers refer to the source text; lines following a joined
// continuation shift by the number of lines glued on.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseSource normalizes raw Liberty text and parses it into a
// Document. This is the only place hard parse failures originate.
func ParseSource(input string) (*Group, error) {
	doc, err := Parse(Normalize(input))
	if err != nil {
		// The normalizer prepends a wrapper line; discount it so the
		// reported line matches the source.
		var pe *ParseError
		if errors.As(err, &pe) && pe.Line > 1 {
			pe.Line--
		}
		return nil, err
	}
	return doc, nil
}

// Parse reads tree-literal text into a Document. The reader is a
// standard JSON token stream; key insertion is intercepted so that
// repeated sibling keys collapse into a List (duplicate-key rule).
// Exactly one top-level key is permitted.
func Parse(normalized string) (*Group, error) {
	dec := json.NewDecoder(strings.NewReader(normalized))
	dec.UseNumber()

	root, err := readValue(dec)
	if err != nil {
		return nil, parseErrAt(normalized, dec, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, parseErrAt(normalized, dec, fmt.Errorf("trailing content after document"))
	}

	group, ok := root.(*Group)
	if !ok {
		return nil, &ParseError{Reason: "document root is not a group"}
	}
	if group.Len() == 0 {
		return nil, &ParseError{Reason: "empty document"}
	}
	if group.Len() > 1 {
		return nil, &ParseError{Reason: fmt.Sprintf("multiple root objects: %s", strings.Join(group.Keys(), ", "))}
	}
	return group, nil
}

// ParseJSON reads the JSON interchange form back into a Document,
// re-deriving array dimensionality and attribute lists from shape.
func ParseJSON(data []byte) (*Group, error) {
	return Parse(string(data))
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return readToken(dec, tok)
}

func readToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readGroup(dec)
		case '[':
			return readSequence(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t.String())
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	default:
		return nil, fmt.Errorf("unsupported value %v", tok)
	}
}

func readGroup(dec *json.Decoder) (*Group, error) {
	g := NewGroup()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("group key is not a string: %v", keyTok)
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		g.Add(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("unterminated group: %w", err)
	}
	return g, nil
}

// readSequence classifies a JSON array by element shape: all numbers
// make a flat Array, all arrays a Matrix, anything else an
// AttributeList. Dimensionality inferred here must survive the writer
// round trip.
func readSequence(dec *json.Decoder) (Value, error) {
	var elems []Value
	for dec.More() {
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("unterminated array: %w", err)
	}

	if len(elems) == 0 {
		return List(nil), nil
	}
	allNumbers, allArrays := true, true
	for _, e := range elems {
		if _, ok := e.(Number); !ok {
			allNumbers = false
		}
		if _, ok := e.(Array); !ok {
			allArrays = false
		}
	}
	if allNumbers {
		arr := make(Array, len(elems))
		for i, e := range elems {
			arr[i] = e.(Number)
		}
		return arr, nil
	}
	if allArrays {
		mat := make(Matrix, len(elems))
		for i, e := range elems {
			mat[i] = e.(Array)
		}
		return mat, nil
	}
	return List(elems), nil
}

// parseErrAt attaches the 1-based line of the decoder position.
func parseErrAt(text string, dec *json.Decoder, err error) error {
	var pe *ParseError
	offset := int(dec.InputOffset())
	if offset > len(text) {
		offset = len(text)
	}
	line := strings.Count(text[:offset], "\n") + 1
	pe = &ParseError{Line: line, Reason: err.Error(), Err: err}
	return pe
}
