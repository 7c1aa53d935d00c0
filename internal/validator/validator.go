// Package validator is the contract guard between the structural
// parser and the semantic mapper. A parsed Document can be
// syntactically fine yet structurally useless for SDF generation
// (no library root, pins without a direction string, timing entries
// of the wrong shape); unifying the Document against the embedded CUE
// schema catches that up front with a clear error instead of letting
// the mapper trip over it halfway through a cell.
package validator

import (
	"embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	json "github.com/goccy/go-json"

	"github.com/Xiretza/quicklogic-timings-importer/internal/liberty"
)

//go:embed schema.cue
var schemaFS embed.FS

// Validator validates parsed Documents against the timing-library
// contract.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks a parsed Document against the #Document contract.
// Returns nil if valid, or a detailed error explaining what failed.
func (v *Validator) Validate(doc *liberty.Group) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates the JSON interchange form directly.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling document as CUE: %w", dataValue.Err())
	}

	docDef := v.schema.LookupPath(cue.ParsePath("#Document"))
	if docDef.Err() != nil {
		return fmt.Errorf("looking up #Document definition: %w", docDef.Err())
	}

	unified := docDef.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("document contract violated: %w", err)
	}

	return nil
}
