package main

import (
	"context"

	"github.com/trezcool/mafunzo/storage/database"
)

var runMigrationsFunc = database.RunMigrations // mockable

func (cmd *commandLine) migrate(ctx context.Context, args []string) error {
	return runMigrationsFunc(ctx, cmd.db, args[0], args[1:]...)
}
