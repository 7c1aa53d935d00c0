package runner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodSource = `library (demo) {
  time_unit : "1ns";
  cell (CELLX) {
    pin (A) {
      direction : input;
      capacitance : 0.5;
    }
  }
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lib")
	bad := filepath.Join(dir, "bad.lib")
	list := filepath.Join(dir, "files.txt")
	writeFile(t, good, goodSource)
	writeFile(t, bad, "cell (X) {\n  foo bar;\n}\n")
	writeFile(t, list, good+"\n"+bad+"\n")

	jsonRoot := filepath.Join(dir, "json")
	libRoot := filepath.Join(dir, "lib")

	report, err := Run(Options{
		ListPath:            list,
		JSONRoot:            jsonRoot,
		LibRoot:             libRoot,
		SimilarityThreshold: 0.9,
		SimilarityMethod:    "quick",
		Workers:             2,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if report.Files != 2 {
		t.Errorf("Files = %d, want 2", report.Files)
	}
	if got := report.Tallies["lib-to-json"]; got.Failed != 1 || got.Skipped != 0 {
		t.Errorf("lib-to-json tally = %+v, want 1 failed", got)
	}
	// A parse failure skips every later stage for that file.
	for _, stage := range Stages[1:] {
		if got := report.Tallies[stage]; got.Failed != 0 || got.Skipped != 1 {
			t.Errorf("%s tally = %+v, want 0 failed / 1 skipped", stage, got)
		}
	}
	if !report.Failed() {
		t.Error("Failed() = false, want true")
	}

	// Both JSON dumps of the good file were mirrored.
	if got := countFiles(t, jsonRoot, ".json"); got != 2 {
		t.Errorf("JSON dumps = %d, want 2", got)
	}
	if got := countFiles(t, libRoot, ".lib"); got != 1 {
		t.Errorf("Liberty dumps = %d, want 1", got)
	}
}

func countFiles(t *testing.T, root, ext string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ext) {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return count
}

func TestRunMissingList(t *testing.T) {
	if _, err := Run(Options{ListPath: filepath.Join(t.TempDir(), "absent.txt")}); err == nil {
		t.Fatal("expected an error for a missing list file")
	}
}

func TestReportSummary(t *testing.T) {
	report := &Report{Files: 2, Tallies: make(map[string]*Tally)}
	for _, stage := range Stages {
		report.Tallies[stage] = &Tally{}
	}
	report.Tallies["lib-to-json"].Failed = 1
	report.Tallies["json-to-lib"].Skipped = 1

	summary := report.Summary()
	if !strings.Contains(summary, "lib-to-json: 1 out of 2 failed (50% succeeded, 0 were skipped)") {
		t.Errorf("summary missing failure line:\n%s", summary)
	}
	if !strings.Contains(summary, "json-to-lib: 0 out of 2 failed (100% succeeded, 1 were skipped)") {
		t.Errorf("summary missing skip line:\n%s", summary)
	}
	if !report.Failed() {
		t.Error("Failed() = false, want true")
	}

	clean := &Report{Files: 1, Tallies: make(map[string]*Tally)}
	for _, stage := range Stages {
		clean.Tallies[stage] = &Tally{}
	}
	if clean.Failed() {
		t.Error("Failed() = true for a clean report")
	}
}
