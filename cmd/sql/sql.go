// Package sql holds the administrative commands for the Postgres
// datastore of the paralelo backend.
package sql

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3/ffcli"
)

// NewSQLCmd creates the sql subcommand
func NewSQLCmd() *ffcli.Command {
	return &ffcli.Command{
		Name:       "sql",
		ShortUsage: "sql <subcommand> [flags] [<arg>...]",
		LongHelp:   "Administers the Postgres datastore of the paralelo backend",
		FlagSet:    flag.NewFlagSet("sql", flag.ExitOnError),
		Subcommands: []*ffcli.Command{
			newMigrateCmd(),
		},
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
	}
}
