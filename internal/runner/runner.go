// Package runner drives the round-trip validation harness: every
// Liberty file in a list is parsed, written back, re-parsed and
// compared, and failures are tallied per stage instead of aborting
// the batch. Files carry no shared state, so they are processed by a
// bounded worker pool.
package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Xiretza/quicklogic-timings-importer/internal/libdiff"
	"github.com/Xiretza/quicklogic-timings-importer/internal/liberty"
)

// Stages in pipeline order. A failure in one stage marks the later
// stages skipped, except that the two comparisons are independent of
// each other.
var Stages = []string{
	"lib-to-json",
	"json-to-lib",
	"newlib-to-json",
	"comparison-json",
	"comparison-lib",
}

// Options configures a batch run.
type Options struct {
	// ListPath is a file holding one Liberty path per line.
	ListPath string

	// JSONRoot and LibRoot, when set, receive the generated JSON and
	// Liberty files, mirroring the input directory layout.
	JSONRoot string
	LibRoot  string

	// PrintDiff renders the cleaned-file diff when comparison-lib
	// fails.
	PrintDiff bool

	// SimilarityThreshold is the value in [0,1] below which two
	// cleaned Liberty files are no longer considered similar.
	SimilarityThreshold float64

	// SimilarityMethod selects the libdiff similarity measure.
	SimilarityMethod string

	// Workers bounds concurrent file processing (0 = one per CPU).
	Workers int
}

// Tally is the per-stage outcome count.
type Tally struct {
	Failed  int
	Skipped int
}

// Report aggregates a whole batch.
type Report struct {
	Files   int
	Tallies map[string]*Tally
}

// Failed reports whether any stage failed for any file.
func (r *Report) Failed() bool {
	for _, t := range r.Tallies {
		if t.Failed > 0 {
			return true
		}
	}
	return false
}

// Summary renders the per-stage aggregate lines.
func (r *Report) Summary() string {
	var sb strings.Builder
	for _, stage := range Stages {
		t := r.Tallies[stage]
		rate := 100.0
		if r.Files > 0 {
			rate = 100.0 * float64(r.Files-t.Failed) / float64(r.Files)
		}
		fmt.Fprintf(&sb, "%s: %d out of %d failed (%g%% succeeded, %d were skipped)\n",
			stage, t.Failed, r.Files, rate, t.Skipped)
	}
	return sb.String()
}

type stageStatus int

const (
	statusOK stageStatus = iota
	statusFailed
	statusSkipped
)

// Run processes every file in the list and returns the aggregate
// report. Per-file failures are tallied, not propagated.
func Run(opts Options) (*Report, error) {
	if opts.SimilarityMethod == "" {
		opts.SimilarityMethod = "quick"
	}

	paths, err := readList(opts.ListPath)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: len(paths), Tallies: make(map[string]*Tally)}
	for _, stage := range Stages {
		report.Tallies[stage] = &Tally{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, workers)
	done := 0

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			statuses := processFile(path, opts)

			mu.Lock()
			defer mu.Unlock()
			done++
			for stage, status := range statuses {
				switch status {
				case statusFailed:
					report.Tallies[stage].Failed++
				case statusSkipped:
					report.Tallies[stage].Skipped++
				}
			}
			fmt.Printf("[%04d/%04d,lj=%04d,jn=%04d,nj=%04d,jj=%04d,ll=%04d] Processing %s\n",
				done, len(paths),
				report.Tallies["lib-to-json"].Failed,
				report.Tallies["json-to-lib"].Failed,
				report.Tallies["newlib-to-json"].Failed,
				report.Tallies["comparison-json"].Failed,
				report.Tallies["comparison-lib"].Failed,
				path)
		}(path)
	}
	wg.Wait()

	return report, nil
}

// processFile runs the full round trip for one file and reports each
// stage's outcome.
func processFile(path string, opts Options) map[string]stageStatus {
	statuses := make(map[string]stageStatus, len(Stages))
	failFrom := func(stage string) {
		failed := false
		for _, s := range Stages {
			if s == stage {
				statuses[s] = statusFailed
				failed = true
			} else if failed {
				statuses[s] = statusSkipped
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("lib-to-json:  %v | %s", err, path)
		failFrom("lib-to-json")
		return statuses
	}
	input := string(data)

	doc, err := liberty.ParseSource(input)
	if err != nil {
		logrus.Errorf("lib-to-json:  %v | %s", err, path)
		failFrom("lib-to-json")
		return statuses
	}
	if opts.JSONRoot != "" {
		if err := dumpJSON(opts.JSONRoot, path, ".json", doc); err != nil {
			logrus.Errorf("writing JSON dump: %v", err)
		}
	}
	logrus.Infof(" lib-to-json: %s", path)

	libLines, err := liberty.Write(doc)
	if err != nil {
		logrus.Errorf("json-to-lib:  %v | %s", err, path)
		failFrom("json-to-lib")
		return statuses
	}
	if opts.LibRoot != "" {
		if err := writeMirrored(opts.LibRoot, path, ".lib", []byte(strings.Join(libLines, "\n")+"\n")); err != nil {
			logrus.Errorf("writing Liberty dump: %v", err)
		}
	}
	logrus.Infof(" json-to-lib: %s", path)

	newDoc, err := liberty.ParseSource(strings.Join(libLines, "\n"))
	if err != nil {
		logrus.Errorf("newlib-to-json:  %v | %s", err, path)
		failFrom("newlib-to-json")
		return statuses
	}
	if opts.JSONRoot != "" {
		if err := dumpJSON(opts.JSONRoot, path, "-new.json", newDoc); err != nil {
			logrus.Errorf("writing JSON dump: %v", err)
		}
	}
	logrus.Infof(" newlib-to-json: %s", path)

	if liberty.Equal(doc, newDoc) {
		logrus.Infof(" comparison-json: %s", path)
	} else {
		logrus.Errorf("comparison-json:  documents differ | %s", path)
		statuses["comparison-json"] = statusFailed
	}

	cleanOpts := libdiff.DefaultCleanOptions()
	in1 := libdiff.CleanLines(strings.Split(input, "\n"), cleanOpts)
	in2 := libdiff.CleanLines(libLines, cleanOpts)
	similarity, err := libdiff.Similarity(in1, in2, opts.SimilarityMethod)
	if err != nil {
		logrus.Errorf("comparison-lib:  %v | %s", err, path)
		statuses["comparison-lib"] = statusFailed
		return statuses
	}
	if similarity > opts.SimilarityThreshold {
		logrus.Infof(" comparison-lib: %g | %s", similarity, path)
	} else {
		logrus.Errorf("comparison-lib:  %g | %s", similarity, path)
		statuses["comparison-lib"] = statusFailed
		if opts.PrintDiff {
			fmt.Print(libdiff.Render(in1, in2))
		}
	}
	return statuses
}

func readList(listPath string) ([]string, error) {
	data, err := os.ReadFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("reading file list: %w", err)
	}
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func dumpJSON(root, path, suffix string, doc *liberty.Group) error {
	out, err := liberty.DumpJSON(doc, "  ")
	if err != nil {
		return err
	}
	return writeMirrored(root, path, suffix, append(out, '\n'))
}

// writeMirrored stores output under root, mirroring the input file's
// directory layout.
func writeMirrored(root, path, suffix string, data []byte) error {
	dir := strings.TrimPrefix(filepath.Dir(path), string(filepath.Separator))
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	target := filepath.Join(root, dir, stem+suffix)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}
