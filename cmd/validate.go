package cmd

import (
	"github.com/starling-data/starling/pkg/pipeline"
	"github.com/urfave/cli/v2"
)

func Validate() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "validate the configuration file and the pipeline definition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "the path to the configuration file",
				Value:   "starling.yml",
			},
			&cli.StringFlag{
				Name:    "environment",
				Aliases: []string{"env"},
				Usage:   "the environment to use from the configuration file",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(fs, c)
			if err != nil {
				errorPrinter.Printf("Failed to load the configuration: %v\n", err)
				return cli.Exit("", 1)
			}

			name := cfg.Pipeline.Name
			if name == "" {
				name = defaultPipelineName
			}

			p := pipeline.Orders(name, cfg.Pipeline.Schedule)
			if err := p.Validate(); err != nil {
				errorPrinter.Printf("The pipeline is invalid: %v\n", err)
				return cli.Exit("", 1)
			}

			if cfg.Pipeline.SourceURL == "" {
				warningPrinter.Println("The configuration has no source_url, the ingest task will fail.")
			}
			if cfg.Pipeline.Connection == "" {
				warningPrinter.Println("The configuration has no connection, the load tasks will fail.")
			}

			successPrinter.Printf("The pipeline '%s' is valid: %d tasks, environment '%s'.\n", p.Name, len(p.Assets), cfg.SelectedEnvironmentName)
			return nil
		},
	}
}
