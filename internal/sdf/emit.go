package sdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Emit renders the model as SDF text. Cells, instances and elements
// are emitted in sorted order so output is deterministic.
func Emit(f *File) string {
	var sb strings.Builder
	sb.WriteString("(DELAYFILE\n")
	emitHeader(&sb, f.Header)

	for _, cell := range sortedKeys(f.Cells) {
		instances := f.Cells[cell]
		for _, instance := range sortedKeys(instances) {
			emitCell(&sb, cell, instance, instances[instance])
		}
	}

	sb.WriteString(")\n")
	return sb.String()
}

func emitHeader(sb *strings.Builder, h Header) {
	version := h.Version
	if version == "" {
		version = "2.1"
	}
	fmt.Fprintf(sb, "    (SDFVERSION %q)\n", version)
	fmt.Fprintf(sb, "    (DESIGN %q)\n", h.Design)
	if h.Date != "" {
		fmt.Fprintf(sb, "    (DATE %q)\n", h.Date)
	}
	fmt.Fprintf(sb, "    (VOLTAGE %s)\n", rvalue(h.Voltage))
	if h.Timescale != "" {
		fmt.Fprintf(sb, "    (TIMESCALE %s)\n", h.Timescale)
	}
}

func emitCell(sb *strings.Builder, cell, instance string, elements map[string]Element) {
	sb.WriteString("    (CELL\n")
	fmt.Fprintf(sb, "        (CELLTYPE %q)\n", cell)
	fmt.Fprintf(sb, "        (INSTANCE %s)\n", instance)

	var delays, checks []string
	for _, name := range sortedKeys(elements) {
		elem := elements[name]
		if elem.Kind == KindIOPath {
			delays = append(delays, iopathRecord(elem))
		} else {
			checks = append(checks, checkRecord(elem))
		}
	}

	if len(delays) > 0 {
		sb.WriteString("        (DELAY\n            (ABSOLUTE\n")
		for _, d := range delays {
			sb.WriteString("                " + d + "\n")
		}
		sb.WriteString("            )\n        )\n")
	}
	if len(checks) > 0 {
		sb.WriteString("        (TIMINGCHECK\n")
		for _, c := range checks {
			sb.WriteString("            " + c + "\n")
		}
		sb.WriteString("        )\n")
	}
	sb.WriteString("    )\n")
}

// iopathRecord renders (IOPATH from to rise fall); the rise rvalue is
// the "fast" path class, the fall rvalue "nominal".
func iopathRecord(e Element) string {
	rise, hasRise := e.Paths["fast"]
	fall, hasFall := e.Paths["nominal"]
	rec := fmt.Sprintf("(IOPATH %s %s", e.FromPin, e.ToPin)
	if hasRise {
		rec += " " + rvalue(rise)
	}
	if hasFall {
		rec += " " + rvalue(fall)
	}
	return rec + ")"
}

func checkRecord(e Element) string {
	ref := e.FromPin
	if e.FromEdge != "" {
		ref = fmt.Sprintf("(%s %s)", e.FromEdge, e.FromPin)
	}
	delay := e.Paths["nominal"]
	return fmt.Sprintf("(%s %s %s %s)", strings.ToUpper(e.Kind), e.ToPin, ref, rvalue(delay))
}

// rvalue renders a (min:avg:max) triple; absent slots stay empty.
func rvalue(t Triple) string {
	return fmt.Sprintf("(%s:%s:%s)", slot(t.Min), slot(t.Avg), slot(t.Max))
}

func slot(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
