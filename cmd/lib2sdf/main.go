// lib2sdf converts a Liberty timing file into an SDF delay file.
//
// Library-form inputs (rooted at a library group) need no header;
// bare-cell inputs carry a first line of the form
//
//	<cell> cell <design> [kfactor <f>] [instance <name>]
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Xiretza/quicklogic-timings-importer/internal/liberty"
	"github.com/Xiretza/quicklogic-timings-importer/internal/logging"
	"github.com/Xiretza/quicklogic-timings-importer/internal/mapper"
	"github.com/Xiretza/quicklogic-timings-importer/internal/sdf"
	"github.com/Xiretza/quicklogic-timings-importer/internal/validator"
)

func main() {
	app := &cli.App{
		Name:      "lib2sdf",
		Usage:     "convert a Liberty timing file to SDF",
		ArgsUsage: "<input.lib> <output.sdf>",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "voltage",
				Usage: "the operating voltage written to the SDF header",
				Value: 1.0,
			},
			&cli.StringFlag{
				Name:  "timescale",
				Usage: "the timescale written to the SDF header",
				Value: "1ps",
			},
			&cli.StringFlag{
				Name:  "json-dump",
				Usage: "optional path for a JSON dump of the parsed document",
			},
			&cli.BoolFlag{
				Name:  "normalize-cell-names",
				Usage: "strip array-index brackets from cell and instance names",
			},
			&cli.BoolFlag{
				Name:  "normalize-port-names",
				Usage: "strip array-index brackets from port names",
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
	if c.NArg() != 2 {
		return fmt.Errorf("expected <input.lib> <output.sdf>, got %d arguments", c.NArg())
	}
	if err := logging.Setup(c.String("log-suppress-below")); err != nil {
		return err
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	header, body := splitHeader(string(data))

	doc, err := liberty.ParseSource(body)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.Args().Get(0), err)
	}

	guard, err := validator.New()
	if err != nil {
		return fmt.Errorf("loading document schema: %w", err)
	}
	if err := guard.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", c.Args().Get(0), err)
	}

	if dump := c.String("json-dump"); dump != "" {
		out, err := liberty.DumpJSON(doc, "    ")
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
		if err := os.WriteFile(dump, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing JSON dump: %w", err)
		}
	}

	model, err := mapper.Map([]mapper.Input{{Header: header, Doc: doc}}, mapper.Options{
		Voltage:            c.Float64("voltage"),
		Timescale:          c.String("timescale"),
		Date:               time.Now().Format(time.ANSIC),
		NormalizeCellNames: c.Bool("normalize-cell-names"),
		NormalizePortNames: c.Bool("normalize-port-names"),
	})
	if err != nil {
		return fmt.Errorf("mapping %s: %w", c.Args().Get(0), err)
	}

	if err := os.WriteFile(c.Args().Get(1), []byte(sdf.Emit(model)), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// splitHeader pops the bare-cell header line when present; library
// inputs pass through unchanged. Blank and comment lines before the
// header are skipped (the normalizer strips them from the body later).
func splitHeader(input string) (header, body string) {
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}
		if mapper.IsHeaderLine(line) {
			return line, strings.Join(append(lines[:i:i], lines[i+1:]...), "\n")
		}
		break
	}
	return "", input
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") ||
		(strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/"))
}
