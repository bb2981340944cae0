package main

import (
	"github.com/spf13/cobra"
	"github.com/trezcool/goose"

	"github.com/skapefps/Unimap-sub001/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <command> [args]",
		Short: "Run database migrations",
		Long: `Run a goose command against the embedded migrations of the configured engine:
up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version, fix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := cli.conf.Database.Engine
			if err := goose.SetDialect(engine); err != nil {
				return err
			}
			return gooseRunFunc(args[0], cli.db, database.Migrations(), database.MigrationsDir(engine), args[1:]...)
		},
	}
}
