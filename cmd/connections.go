package cmd

import (
	"context"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sourcegraph/conc/pool"
	"github.com/starling-data/starling/pkg/connection"
	"github.com/urfave/cli/v2"
)

func Connections() *cli.Command {
	return &cli.Command{
		Name:  "connections",
		Usage: "manage the warehouse connections",
		Subcommands: []*cli.Command{
			listConnections(),
			pingConnections(),
		},
	}
}

func listConnections() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list the connections defined in the selected environment",
		Flags: connectionFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(fs, c)
			if err != nil {
				errorPrinter.Printf("Failed to load the configuration: %v\n", err)
				return cli.Exit("", 1)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Type", "Name"})
			for _, conn := range cfg.SelectedEnvironment.Connections.MySQL {
				t.AppendRow(table.Row{"mysql", conn.Name})
			}
			for _, conn := range cfg.SelectedEnvironment.Connections.Postgres {
				t.AppendRow(table.Row{"postgres", conn.Name})
			}
			t.Render()

			return nil
		},
	}
}

func pingConnections() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "check that every connection in the selected environment is reachable",
		Flags: connectionFlags(),
		Action: func(c *cli.Context) error {
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

			clients := manager.All()
			names := make([]string, 0, len(clients))
			for name := range clients {
				names = append(names, name)
			}
			sort.Strings(names)

			p := pool.New().WithMaxGoroutines(10).WithContext(c.Context)
			failures := make([]error, len(names))
			for i, name := range names {
				p.Go(func(ctx context.Context) error {
					failures[i] = clients[name].Ping(ctx)
					return nil
				})
			}
			if err := p.Wait(); err != nil {
				errorPrinter.Println(err.Error())
				return cli.Exit("", 1)
			}

			anyFailed := false
			for i, name := range names {
				if failures[i] != nil {
					anyFailed = true
					errorPrinter.Printf("✗ %s: %v\n", name, failures[i])
					continue
				}
				successPrinter.Printf("✓ %s\n", name)
			}

			if anyFailed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func connectionFlags() []cli.Flag {
	return []cli.Flag{
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
	}
}
