package sdf

import (
	"testing"
)

func TestTripleEmpty(t *testing.T) {
	cases := []struct {
		name string
		t    Triple
		want bool
	}{
		{"all nil", Triple{}, true},
		{"all zero", Triple{Avg: Float(0), Min: Float(0), Max: Float(0)}, true},
		{"avg set", Triple{Avg: Float(0.5)}, false},
		{"min set", Triple{Min: Float(0.1)}, false},
	}
	for _, tc := range cases {
		if got := tc.t.Empty(); got != tc.want {
			t.Errorf("%s: Empty() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAddElementMergesWorstCase(t *testing.T) {
	f := NewFile(Header{Design: "top"})
	f.AddElement("C", "C", "C", Element{
		Kind:    KindIOPath,
		FromPin: "A",
		ToPin:   "Y",
		Paths: map[string]Triple{
			"fast": {Avg: Float(1.0), Min: Float(0.2)},
		},
	})
	f.AddElement("C", "C", "C", Element{
		Kind:    KindIOPath,
		FromPin: "A",
		ToPin:   "Y",
		Paths: map[string]Triple{
			"fast":    {Avg: Float(2.0)},
			"nominal": {Avg: Float(0.7)},
		},
	})

	elem := f.Cells["C"]["C"]["C"]
	fast := elem.Paths["fast"]
	if fast.Avg == nil || *fast.Avg != 2.0 {
		t.Errorf("fast.Avg = %v, want 2 (larger value wins)", fast.Avg)
	}
	if fast.Min == nil || *fast.Min != 0.2 {
		t.Errorf("fast.Min = %v, want 0.2 (absent slot never competes)", fast.Min)
	}
	nominal := elem.Paths["nominal"]
	if nominal.Avg == nil || *nominal.Avg != 0.7 {
		t.Errorf("nominal.Avg = %v, want 0.7", nominal.Avg)
	}
}

func TestAddElementKeepsDistinctNames(t *testing.T) {
	f := NewFile(Header{Design: "top"})
	f.AddElement("C", "C", "one", Element{Kind: KindIOPath, Paths: map[string]Triple{"fast": {Avg: Float(1)}}})
	f.AddElement("C", "C", "two", Element{Kind: KindSetup, Paths: map[string]Triple{"nominal": {Avg: Float(2)}}})
	if len(f.Cells["C"]["C"]) != 2 {
		t.Fatalf("elements = %d, want 2", len(f.Cells["C"]["C"]))
	}
}

func TestEmit(t *testing.T) {
	f := NewFile(Header{
		Design:    "top",
		Voltage:   Triple{Avg: Float(1), Min: Float(1), Max: Float(1)},
		Date:      "today",
		Timescale: "1ps",
	})
	f.AddElement("CELLX", "CELLX", "CELLX", Element{
		Kind:       KindIOPath,
		FromPin:    "A",
		ToPin:      "Y",
		IsAbsolute: true,
		Paths: map[string]Triple{
			"fast":    {Avg: Float(0.5)},
			"nominal": {Avg: Float(0.7)},
		},
	})
	f.AddElement("CELLX", "CELLX", "CHK", Element{
		Kind:     KindSetup,
		FromPin:  "CLK",
		FromEdge: "posedge",
		ToPin:    "D",
		Paths: map[string]Triple{
			"nominal": {Avg: Float(0.3)},
		},
	})

	want := `(DELAYFILE
    (SDFVERSION "2.1")
    (DESIGN "top")
    (DATE "today")
    (VOLTAGE (1:1:1))
    (TIMESCALE 1ps)
    (CELL
        (CELLTYPE "CELLX")
        (INSTANCE CELLX)
        (DELAY
            (ABSOLUTE
                (IOPATH A Y (:0.5:) (:0.7:))
            )
        )
        (TIMINGCHECK
            (SETUP D (posedge CLK) (:0.3:))
        )
    )
)
`
	if got := Emit(f); got != want {
		t.Fatalf("Emit() = \n%s\nwant\n%s", got, want)
	}
}

func TestEmitDeterministicOrder(t *testing.T) {
	f := NewFile(Header{Design: "top"})
	f.AddElement("B", "B", "x", Element{Kind: KindIOPath, Paths: map[string]Triple{}})
	f.AddElement("A", "A", "x", Element{Kind: KindIOPath, Paths: map[string]Triple{}})

	first := Emit(f)
	for i := 0; i < 10; i++ {
		if Emit(f) != first {
			t.Fatal("Emit() output differs between calls")
		}
	}
}
