package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func VersionCmd(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("starling %s (%s)\n", c.App.Version, commit)
			return nil
		},
	}
}
