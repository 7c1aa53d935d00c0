// json2lib regenerates Liberty source text from the JSON document
// form.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Xiretza/quicklogic-timings-importer/internal/liberty"
	"github.com/Xiretza/quicklogic-timings-importer/internal/logging"
)

func main() {
	app := &cli.App{
		Name:      "json2lib",
		Usage:     "convert a JSON timing document back to Liberty",
		ArgsUsage: "<input.json> <output.lib>",
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
		return fmt.Errorf("expected <input.json> <output.lib>, got %d arguments", c.NArg())
	}
	if err := logging.Setup(c.String("log-suppress-below")); err != nil {
		return err
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := liberty.ParseJSON(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.Args().Get(0), err)
	}

	lines, err := liberty.Write(doc)
	if err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}
	if err := os.WriteFile(c.Args().Get(1), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
