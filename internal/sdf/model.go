// Package sdf holds the in-memory SDF model assembled by the semantic
// mapper and renders it into SDF text. The model is a nested mapping
// of cell -> instance -> named element, framed by a header record.
package sdf

// Header frames a delay file.
type Header struct {
	Design    string
	Version   string
	Voltage   Triple
	Date      string
	Timescale string
}

// Triple is an avg/min/max delay (or voltage) slot set. Nil means the
// slot is absent, which is different from zero for merging.
type Triple struct {
	Avg *float64
	Min *float64
	Max *float64
}

// Empty reports whether every slot is absent or zero.
func (t Triple) Empty() bool {
	for _, v := range []*float64{t.Avg, t.Min, t.Max} {
		if v != nil && *v != 0 {
			return false
		}
	}
	return true
}

// Element kinds. An IOPath is a combinational delay record; the rest
// are timing checks between a reference edge and a data port.
const (
	KindIOPath   = "iopath"
	KindSetup    = "setup"
	KindHold     = "hold"
	KindRecovery = "recovery"
	KindRemoval  = "removal"
)

// Element is one named delay or timing-check record.
type Element struct {
	Kind string

	// IOPath: source and destination ports.
	// Timing check: FromPin is the reference port, ToPin the target.
	FromPin  string
	FromEdge string // "", "posedge" or "negedge"
	ToPin    string

	// IsAbsolute marks an ABSOLUTE delay record.
	IsAbsolute bool

	// Paths maps a path class ("fast", "nominal") to its delay triple.
	Paths map[string]Triple
}

// File is the complete SDF model: header plus cells -> instances ->
// elements.
type File struct {
	Header Header
	Cells  map[string]map[string]map[string]Element
}

// NewFile returns an empty model with the given header.
func NewFile(header Header) *File {
	return &File{
		Header: header,
		Cells:  make(map[string]map[string]map[string]Element),
	}
}

// AddElement stores an element under (cell, instance, name). When the
// name already exists, the two records are merged with the worst-case
// rule: for every path class and every avg/min/max slot, the larger
// value wins, and a missing value never competes.
func (f *File) AddElement(cell, instance, name string, elem Element) {
	instances, ok := f.Cells[cell]
	if !ok {
		instances = make(map[string]map[string]Element)
		f.Cells[cell] = instances
	}
	elements, ok := instances[instance]
	if !ok {
		elements = make(map[string]Element)
		instances[instance] = elements
	}
	if existing, ok := elements[name]; ok {
		elem = merge(existing, elem)
	}
	elements[name] = elem
}

func merge(a, b Element) Element {
	merged := a
	merged.Paths = make(map[string]Triple, len(a.Paths)+len(b.Paths))
	for class, t := range a.Paths {
		merged.Paths[class] = t
	}
	for class, t := range b.Paths {
		merged.Paths[class] = mergeTriple(merged.Paths[class], t)
	}
	return merged
}

func mergeTriple(a, b Triple) Triple {
	return Triple{
		Avg: maxSlot(a.Avg, b.Avg),
		Min: maxSlot(a.Min, b.Min),
		Max: maxSlot(a.Max, b.Max),
	}
}

func maxSlot(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b > *a {
		return b
	}
	return a
}

// Float is a convenience for building optional slots.
func Float(v float64) *float64 {
	return &v
}
