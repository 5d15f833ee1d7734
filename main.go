package main

import (
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/starling-data/starling/cmd"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	isDebug := false
	color.NoColor = false

	app := &cli.App{
		Name:     "starling",
		Version:  version,
		Usage:    "The CLI for running the orders warehouse pipeline",
		Compiled: time.Now(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Destination: &isDebug,
			},
		},
		Commands: []*cli.Command{
			cmd.Run(&isDebug),
			cmd.Validate(),
			cmd.Connections(),
			cmd.VersionCmd(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
