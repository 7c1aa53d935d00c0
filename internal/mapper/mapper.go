// Package mapper walks a parsed timing-library Document, classifies
// each pin's timing entries by (direction, sequential) and folds them
// into the SDF model.
//
// The classification key space is fixed and small, so dispatch is a
// plain switch rather than anything dynamic. Colliding element names
// are resolved by the worst-case merge in the sdf package.
package mapper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Xiretza/quicklogic-timings-importer/internal/liberty"
	"github.com/Xiretza/quicklogic-timings-importer/internal/sdf"
)

// Options controls SDF assembly.
type Options struct {
	Voltage   float64
	Timescale string
	Date      string

	// NormalizeCellNames strips array-index brackets from cell and
	// instance names; NormalizePortNames does the same for every port
	// reference. Both apply consistently to all map keys.
	NormalizeCellNames bool
	NormalizePortNames bool
}

// Input is one (header, Document) pair. Header is the first line of
// the source file for the bare-cell form and is unused for a
// library-form Document.
type Input struct {
	Header string
	Doc    *liberty.Group
}

// combinationalTypes are the timing_type values that do NOT mark an
// entry as sequential.
var combinationalTypes = map[string]bool{
	"combinational":       true,
	"three_state_disable": true,
	"three_state_enable":  true,
	"rising_edge":         true,
	"falling_edge":        true,
	"clear":               true,
}

// checkTable maps each sequential timing_type to its SDF check kind
// and reference-edge polarity.
var checkTable = map[string]struct {
	kind string
	edge string
}{
	"setup_rising":     {sdf.KindSetup, "posedge"},
	"setup_falling":    {sdf.KindSetup, "negedge"},
	"hold_rising":      {sdf.KindHold, "posedge"},
	"hold_falling":     {sdf.KindHold, "negedge"},
	"recovery_rising":  {sdf.KindRecovery, "posedge"},
	"recovery_falling": {sdf.KindRecovery, "negedge"},
	"removal_rising":   {sdf.KindRemoval, "posedge"},
	"removal_falling":  {sdf.KindRemoval, "negedge"},
}

// ignoredTypes are sequential timing_type values with no SDF
// counterpart; entries carrying them are skipped without a warning.
var ignoredTypes = map[string]bool{
	"min_pulse_width": true,
	"minimum_period":  true,
}

const (
	libraryPrefix = "library "
	cellPrefix    = "cell "
	pinPrefix     = "pin "
)

var headerRe = regexp.MustCompile(`^\s*(\S+)\s+cell\s+(\S+)(?:\s+kfactor\s+(\S+))?(?:\s+instance\s+(\S+))?\s*$`)

var indexBracketRe = regexp.MustCompile(`\[[0-9]+\]`)

// IsHeaderLine reports whether a line looks like a bare-cell header
// ("<cell> cell <design> ..."). Library-form files have no header.
func IsHeaderLine(line string) bool {
	return headerRe.MatchString(line)
}

type mapping struct {
	opts Options
	out  *sdf.File
}

// Map folds one or more (header, Document) pairs into a single SDF
// model. The design name comes from the first input; each Document
// must be rooted at a library group or a single cell.
func Map(inputs []Input, opts Options) (*sdf.File, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no documents to map")
	}
	if opts.Timescale == "" {
		opts.Timescale = "1ps"
	}

	m := &mapping{opts: opts}
	for _, in := range inputs {
		if err := m.mapDocument(in); err != nil {
			return nil, err
		}
	}
	return m.out, nil
}

func (m *mapping) mapDocument(in Input) error {
	rootKey := in.Doc.Keys()[0]
	rootVal, _ := in.Doc.Get(rootKey)

	if strings.HasPrefix(rootKey, libraryPrefix) {
		lib, ok := rootVal.(*liberty.Group)
		if !ok {
			return fmt.Errorf("library %q is not a group", rootKey)
		}
		design := strings.TrimPrefix(rootKey, libraryPrefix)
		m.ensureFile(design)
		return m.mapLibrary(lib)
	}

	hdr := headerRe.FindStringSubmatch(in.Header)
	if hdr == nil {
		return fmt.Errorf("no recognizable header for %q (want \"<cell> cell <design> [kfactor <f>] [instance <name>]\")", rootKey)
	}
	cellName, design := hdr[1], hdr[2]
	kfactor := 1.0
	if hdr[3] != "" {
		f, err := strconv.ParseFloat(hdr[3], 64)
		if err != nil {
			return fmt.Errorf("header kfactor %q: %w", hdr[3], err)
		}
		kfactor = f
	}
	instance := hdr[4]
	if instance == "" {
		instance = cellName
	}

	body, ok := rootVal.(*liberty.Group)
	if !ok {
		return fmt.Errorf("cell root %q is not a group", rootKey)
	}
	m.ensureFile(design)
	return m.mapCell(cellName, instance, kfactor, body)
}

func (m *mapping) ensureFile(design string) {
	if m.out != nil {
		return
	}
	v := m.opts.Voltage
	m.out = sdf.NewFile(sdf.Header{
		Design:    design,
		Version:   "2.1",
		Voltage:   sdf.Triple{Avg: sdf.Float(v), Min: sdf.Float(v), Max: sdf.Float(v)},
		Date:      m.opts.Date,
		Timescale: m.opts.Timescale,
	})
}

// mapLibrary processes every cell child; instance defaults to the cell
// name and kfactor to 1.0 (only the single-cell header form can
// override either).
func (m *mapping) mapLibrary(lib *liberty.Group) error {
	for _, key := range lib.Keys() {
		if !strings.HasPrefix(key, cellPrefix) {
			continue
		}
		cellName := strings.TrimPrefix(key, cellPrefix)
		v, _ := lib.Get(key)
		for _, cell := range asGroups(v) {
			if err := m.mapCell(cellName, cellName, 1.0, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *mapping) mapCell(cell, instance string, kfactor float64, body *liberty.Group) error {
	cellKey := m.cellName(cell)
	instKey := m.cellName(instance)

	for _, key := range body.Keys() {
		if !strings.HasPrefix(key, pinPrefix) {
			continue
		}
		pinName := strings.TrimPrefix(key, pinPrefix)
		v, _ := body.Get(key)
		for _, pin := range asGroups(v) {
			if err := m.mapPin(cellKey, instKey, kfactor, pinName, pin); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *mapping) mapPin(cellKey, instKey string, kfactor float64, pinName string, pin *liberty.Group) error {
	direction, ok := stringAttr(pin, "direction")
	if !ok {
		logrus.Warnf("pin %s has no direction attribute, skipped", pinName)
		return nil
	}

	timing, ok := pin.Get("timing")
	if !ok {
		return nil
	}
	for _, entry := range asGroups(timing) {
		if err := m.mapTiming(cellKey, instKey, kfactor, pinName, direction, entry); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapping) mapTiming(cellKey, instKey string, kfactor float64, pinName, direction string, entry *liberty.Group) error {
	timingType, _ := stringAttr(entry, "timing_type")
	sequential := timingType != "" && !combinationalTypes[timingType]

	rise := m.extractTriple(entry, "intrinsic_rise", kfactor)
	fall := m.extractTriple(entry, "intrinsic_fall", kfactor)
	if rise.Empty() && fall.Empty() {
		return nil
	}

	name := cellKey
	if when, ok := stringAttr(entry, "when"); ok {
		suffix, err := whenSuffix(when, m.opts.NormalizePortNames)
		if err != nil {
			return err
		}
		name += suffix
	}
	if strings.Contains(timingType, "falling") {
		name += "_" + strings.ToUpper(timingType)
	}

	switch {
	case !sequential:
		if timingType == "clear" {
			logrus.Infof("pin %s: no SDF construct for timing_type clear, entry skipped", pinName)
			return nil
		}
		related, ok := stringAttr(entry, "related_pin")
		if !ok {
			logrus.Warnf("pin %s: combinational entry without related_pin, skipped", pinName)
			return nil
		}
		paths := make(map[string]sdf.Triple)
		if !rise.Empty() {
			paths["fast"] = rise
		}
		if !fall.Empty() {
			paths["nominal"] = fall
		}
		m.out.AddElement(cellKey, instKey, name, sdf.Element{
			Kind:       sdf.KindIOPath,
			FromPin:    m.portName(related),
			ToPin:      m.portName(pinName),
			IsAbsolute: true,
			Paths:      paths,
		})
		return nil

	case direction == "input" || direction == "inout":
		if ignoredTypes[timingType] {
			return nil
		}
		check, ok := checkTable[timingType]
		if !ok {
			logrus.Warnf("pin %s: unsupported timing_type %q, entry skipped", pinName, timingType)
			return nil
		}
		related, ok := stringAttr(entry, "related_pin")
		if !ok {
			logrus.Warnf("pin %s: timing check without related_pin, skipped", pinName)
			return nil
		}
		delay := rise
		if delay.Empty() {
			delay = fall
		}
		m.out.AddElement(cellKey, instKey, name, sdf.Element{
			Kind:     check.kind,
			FromPin:  m.portName(related),
			FromEdge: check.edge,
			ToPin:    m.portName(pinName),
			Paths:    map[string]sdf.Triple{"nominal": delay},
		})
		return nil

	default:
		// sequential entry on an output-only pin: no SDF construct.
		logrus.Infof("pin %s: sequential %s entry on %s pin, skipped", pinName, timingType, direction)
		return nil
	}
}

// extractTriple reads the avg/min/max slots of one intrinsic delay,
// scaled by kfactor.
func (m *mapping) extractTriple(entry *liberty.Group, base string, kfactor float64) sdf.Triple {
	return sdf.Triple{
		Avg: floatAttr(entry, base, kfactor),
		Min: floatAttr(entry, base+"_min", kfactor),
		Max: floatAttr(entry, base+"_max", kfactor),
	}
}

func (m *mapping) cellName(name string) string {
	if m.opts.NormalizeCellNames {
		return indexBracketRe.ReplaceAllString(name, "")
	}
	return name
}

func (m *mapping) portName(name string) string {
	if m.opts.NormalizePortNames {
		return indexBracketRe.ReplaceAllString(name, "")
	}
	return name
}

// asGroups flattens a singular Group or a duplicate-key List of
// Groups; anything else yields nothing.
func asGroups(v liberty.Value) []*liberty.Group {
	switch g := v.(type) {
	case *liberty.Group:
		return []*liberty.Group{g}
	case liberty.List:
		var groups []*liberty.Group
		for _, elem := range g {
			if sub, ok := elem.(*liberty.Group); ok {
				groups = append(groups, sub)
			}
		}
		return groups
	}
	return nil
}

func stringAttr(g *liberty.Group, key string) (string, bool) {
	v, ok := g.Get(key)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case liberty.String:
		return string(s), true
	case liberty.Number:
		return string(s), true
	}
	return "", false
}

func floatAttr(g *liberty.Group, key string, kfactor float64) *float64 {
	s, ok := stringAttr(g, key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logrus.Warnf("attribute %s has non-numeric value %q, ignored", key, s)
		return nil
	}
	return sdf.Float(f * kfactor)
}
