package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"pwioi_backend/internals/configs"
)

const description = `Operator tool for the curriculum progress service.
Run schema migration and organization seeding, import curriculum
spreadsheets, and print progress snapshots or unit rollups without HTTP.`

func main() {
	configs.LoadEnv()
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cprctl: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cprctl"
	app.HelpName = "cprctl"
	app.Usage = "curriculum progress operator CLI"
	app.UsageText = "cprctl <command> [arguments...]"
	app.Description = description
	app.Commands = []cli.Command{
		{
			Name:   "migrate",
			Usage:  "auto-migrate all tables",
			Action: migrate,
		},
		{
			Name:      "seed",
			Usage:     "create the organization hierarchy from a JSON file (idempotent)",
			UsageText: "cprctl seed --file <org.json>",
			Flags:     seedFlags,
			Action:    seed,
		},
		{
			Name:      "import",
			Usage:     "replace a subject's curriculum from an xlsx file",
			UsageText: "cprctl import --subject <uuid> --file <path.xlsx>",
			Flags:     importFlags,
			Action:    importCurriculum,
		},
		{
			Name:      "progress",
			Aliases:   []string{"p"},
			Usage:     "print the progress snapshot of one subject",
			UsageText: "cprctl progress --subject <uuid>",
			Flags:     progressFlags,
			Action:    progress,
		},
		{
			Name:      "rollup",
			Usage:     "print aggregated progress per unit",
			UsageText: "cprctl rollup --level school|center|division [--parent <uuid>]",
			Flags:     rollupFlags,
			Action:    rollup,
		},
	}
	return app
}
