package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/starling-data/starling/pkg/connection"
	"github.com/starling-data/starling/pkg/etl"
	"github.com/starling-data/starling/pkg/executor"
	"github.com/starling-data/starling/pkg/pipeline"
	"github.com/starling-data/starling/pkg/scheduler"
	"github.com/urfave/cli/v2"
)

const defaultPipelineName = "orders_etl"

func Run(isDebug *bool) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the orders pipeline end to end",
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
			&cli.IntFlag{
				Name:  "workers",
				Usage: "the number of workers to run the tasks with, overrides the configuration file",
			},
		},
		Action: func(c *cli.Context) error {
			logger := makeLogger(*isDebug)

			cfg, err := loadConfig(fs, c)
			if err != nil {
				errorPrinter.Printf("Failed to load the configuration: %v\n", err)
				return cli.Exit("", 1)
			}

			manager, err := connection.NewManagerFromConfig(c.Context, cfg)
			if err != nil {
				errorPrinter.Printf("Failed to set up the connections: %v\n", err)
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
				errorPrinter.Println("The configuration has no source_url, nothing to ingest.")
				return cli.Exit("", 1)
			}

			workers := cfg.Pipeline.Workers
			if c.Int("workers") > 0 {
				workers = c.Int("workers")
			}

			operators := executor.OperatorMap{
				pipeline.AssetTypeIngest:    etl.NewIngestOperator(logger, fs, cfg.Pipeline.SourceURL, cfg.Pipeline.StagingDir),
				pipeline.AssetTypeFlatten:   etl.NewFlattenOperator(logger, fs, cfg.Pipeline.StagingDir),
				pipeline.AssetTypeTransform: etl.NewTransformOperator(logger, fs, cfg.Pipeline.StagingDir),
				pipeline.AssetTypeLoad:      etl.NewLoadOperator(logger, fs, manager, cfg.Pipeline.Connection, cfg.Pipeline.StagingDir),
			}

			s := scheduler.NewScheduler(logger, p)
			infoPrinter.Printf("Running the pipeline '%s' with %d tasks and %d workers.\n\n", p.Name, s.InstanceCount(), workers)

			ex := executor.NewConcurrent(logger, operators, workers)
			ex.Start(c.Context, s.WorkQueue, s.Results)

			start := time.Now()
			results := s.Run(c.Context)
			duration := time.Since(start)

			printRunSummary(s, results)

			if s.InstanceCountByStatus(scheduler.Failed) > 0 || s.InstanceCountByStatus(scheduler.UpstreamFailed) > 0 {
				errorPrinter.Printf("\nThe pipeline failed after %s\n", duration.Truncate(time.Millisecond).String())
				if cfg.Pipeline.AlertEmail != "" {
					warningPrinter.Printf("An alert will be delivered to %s\n", cfg.Pipeline.AlertEmail)
				}
				return cli.Exit("", 1)
			}

			successPrinter.Printf("\nExecuted %d tasks in %s\n", len(results), duration.Truncate(time.Millisecond).String())
			return nil
		},
	}
}

func printRunSummary(s *scheduler.Scheduler, results []*scheduler.TaskExecutionResult) {
	errorsByTask := make(map[string]error, len(results))
	for _, result := range results {
		if result.Error != nil {
			errorsByTask[result.Instance.Asset.Name] = result.Error
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Task", "Status", "Details"})

	statuses := []scheduler.TaskInstanceStatus{
		scheduler.Succeeded, scheduler.Failed, scheduler.UpstreamFailed, scheduler.Skipped,
	}
	for _, status := range statuses {
		for _, instance := range s.GetTaskInstancesByStatus(status) {
			details := ""
			if err, ok := errorsByTask[instance.Asset.Name]; ok {
				details = err.Error()
			}
			t.AppendRow(table.Row{instance.Asset.Name, status.String(), details})
		}
	}

	t.Render()
}
