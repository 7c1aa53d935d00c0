package main

import (
	"strings"
	"testing"
)

func TestSplitHeader(t *testing.T) {
	cases := []struct {
		name       string
		input      string
		wantHeader string
	}{
		{
			name:       "header on first line",
			input:      "CELLX cell top kfactor 1.0\ncell (CELLX) {\n}\n",
			wantHeader: "CELLX cell top kfactor 1.0",
		},
		{
			name:       "header after blank lines",
			input:      "\n\nCELLX cell top\ncell (CELLX) {\n}\n",
			wantHeader: "CELLX cell top",
		},
		{
			name:       "header after comment lines",
			input:      "// generated file\n# tool banner\n/* notice */\nCELLX cell top\ncell (CELLX) {\n}\n",
			wantHeader: "CELLX cell top",
		},
		{
			name:       "library form has no header",
			input:      "library (lib) {\n}\n",
			wantHeader: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			header, body := splitHeader(tc.input)
			if header != tc.wantHeader {
				t.Fatalf("header = %q, want %q", header, tc.wantHeader)
			}
			if tc.wantHeader == "" {
				if body != tc.input {
					t.Errorf("body = %q, want input unchanged", body)
				}
				return
			}
			if strings.Contains(body, tc.wantHeader) {
				t.Errorf("body still contains the header line: %q", body)
			}
			if !strings.Contains(body, "cell (CELLX) {") {
				t.Errorf("body lost content: %q", body)
			}
		})
	}
}
