// lib2json converts a Liberty timing file into its JSON document form.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Xiretza/quicklogic-timings-importer/internal/liberty"
	"github.com/Xiretza/quicklogic-timings-importer/internal/logging"
)

func main() {
	app := &cli.App{
		Name:      "lib2json",
		Usage:     "convert a Liberty timing file to JSON",
		ArgsUsage: "<input.lib> <output.json>",
		Flags: []cli.Flag{
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
		return fmt.Errorf("expected <input.lib> <output.json>, got %d arguments", c.NArg())
	}
	if err := logging.Setup(c.String("log-suppress-below")); err != nil {
		return err
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := liberty.ParseSource(string(data))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.Args().Get(0), err)
	}

	out, err := liberty.DumpJSON(doc, "    ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := os.WriteFile(c.Args().Get(1), append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
