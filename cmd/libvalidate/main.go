// libvalidate round-trips every Liberty file in a list through the
// parser and writer, compares the results, and reports per-stage
// failure tallies. Exit status is non-zero if any file failed any
// stage.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Xiretza/quicklogic-timings-importer/internal/logging"
	"github.com/Xiretza/quicklogic-timings-importer/internal/runner"
)

func main() {
	app := &cli.App{
		Name:      "libvalidate",
		Usage:     "validate Liberty round-trip conversion over a list of files",
		ArgsUsage: "<liblist>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output-json-root-dir",
				Usage: "optional directory to store generated JSON files",
			},
			&cli.StringFlag{
				Name:  "output-lib-root-dir",
				Usage: "optional directory to store generated Liberty files",
			},
			&cli.BoolFlag{
				Name:  "print-lib-diff",
				Usage: "print the Liberty diff on comparison failure",
			},
			&cli.Float64Flag{
				Name:  "lib-similarity-threshold",
				Usage: "similarity threshold below which files are no longer considered similar",
				Value: 0.999,
			},
			&cli.StringFlag{
				Name:  "similarity-method",
				Usage: "the method used for computing similarity (normal, quick, real_quick)",
				Value: "quick",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "number of files processed concurrently (0 = one per CPU)",
			},
			&cli.StringFlag{
				Name:  "log-suppress-below",
				Usage: fmt.Sprintf("the minimal not suppressed log level %v", logging.Levels),
				Value: "ERROR",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected <liblist>, got %d arguments", c.NArg())
	}
	if err := logging.Setup(c.String("log-suppress-below")); err != nil {
		return err
	}
	threshold := c.Float64("lib-similarity-threshold")
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("similarity threshold %g not in range [0,1]", threshold)
	}

	report, err := runner.Run(runner.Options{
		ListPath:            c.Args().Get(0),
		JSONRoot:            c.String("output-json-root-dir"),
		LibRoot:             c.String("output-lib-root-dir"),
		PrintDiff:           c.Bool("print-lib-diff"),
		SimilarityThreshold: threshold,
		SimilarityMethod:    c.String("similarity-method"),
		Workers:             c.Int("workers"),
	})
	if err != nil {
		return err
	}

	fmt.Print(report.Summary())
	if report.Failed() {
		return cli.Exit("", 1)
	}
	return nil
}
