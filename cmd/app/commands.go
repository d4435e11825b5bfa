package main

import (
	"slices"

	"github.com/urfave/cli/v3"
)

// getCommands groups every subcommand: operations, key management and accounts.
func getCommands(version string) []*cli.Command {
	return slices.Concat(
		getSystemCommands(version),
		getKeyCommands(),
		getAuthCommands(),
	)
}
