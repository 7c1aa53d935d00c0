package liberty

import (
	"strings"
	"testing"
)

func TestGroupAddDuplicateKeys(t *testing.T) {
	g := NewGroup()
	g.Add("timing", String("a"))
	if v, _ := g.Get("timing"); v != String("a") {
		t.Fatalf("single value = %#v, want String(\"a\")", v)
	}

	g.Add("timing", String("b"))
	g.Add("timing", String("c"))

	v, _ := g.Get("timing")
	list, ok := v.(List)
	if !ok {
		t.Fatalf("value = %T, want List", v)
	}
	if len(list) != 3 || list[0] != String("a") || list[2] != String("c") {
		t.Fatalf("list = %#v, want arrival order a, b, c", list)
	}
	if got := g.Keys(); len(got) != 1 || got[0] != "timing" {
		t.Fatalf("Keys() = %v, want [timing]", got)
	}
}

func TestGroupKeyOrder(t *testing.T) {
	g := NewGroup()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		g.Add(k, Number("1"))
	}
	want := []string{"zeta", "alpha", "mid"}
	got := g.Keys()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same strings", String("x"), String("x"), true},
		{"string vs number", String("1"), Number("1"), false},
		{"numbers compare by literal", Number("1.0"), Number("1"), false},
		{"same arrays", Array{"1", "2"}, Array{"1", "2"}, true},
		{"array vs matrix", Array{"1"}, Matrix{{"1"}}, false},
		{"list never equals scalar", List{String("x")}, String("x"), false},
		{"nested lists", List{String("x"), Number("1")}, List{String("x"), Number("1")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal(%#v, %#v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestEqualGroupsCheckKeyOrder(t *testing.T) {
	a := NewGroup()
	a.Add("x", Number("1"))
	a.Add("y", Number("2"))

	b := NewGroup()
	b.Add("y", Number("2"))
	b.Add("x", Number("1"))

	if Equal(a, b) {
		t.Fatal("groups with different key order must not be equal")
	}
}

func TestDumpJSONPreservesOrderAndLiterals(t *testing.T) {
	g := NewGroup()
	g.Add("beta", Number("0.50"))
	g.Add("alpha", String("x"))
	root := NewGroup()
	root.Add("library l", g)

	out, err := DumpJSON(root, "  ")
	if err != nil {
		t.Fatalf("DumpJSON() failed: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "0.50") {
		t.Errorf("number literal not preserved: %s", text)
	}
	if strings.Index(text, `"beta"`) > strings.Index(text, `"alpha"`) {
		t.Errorf("insertion order not preserved: %s", text)
	}
}

func TestNumberMarshalRejectsBadLiteral(t *testing.T) {
	if _, err := Number("not-a-number").MarshalJSON(); err == nil {
		t.Fatal("expected an error for a non-numeric literal")
	}
}

func TestNumberFloat(t *testing.T) {
	f, err := Number("0.25").Float()
	if err != nil || f != 0.25 {
		t.Fatalf("Float() = %v, %v, want 0.25, nil", f, err)
	}
	if _, err := Number("abc").Float(); err == nil {
		t.Fatal("expected an error for a non-numeric literal")
	}
}
