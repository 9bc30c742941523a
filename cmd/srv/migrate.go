package main

import (
	"fmt"

	"github.com/questx-lab/taskmaster/migration"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(c *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}
	defer s.close()

	if err := s.migrateDB(c.Bool("auto")); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated the database successfully")
	return nil
}

// migrateDB runs the versioned migrations on postgres. Other drivers have no
// versioned migrations and always use AutoMigrate.
func (s *srv) migrateDB(auto bool) error {
	if auto || xcontext.Configs(s.ctx).Database.Driver != "postgres" {
		if err := migration.AutoMigrate(s.ctx); err != nil {
			return fmt.Errorf("cannot auto migrate: %w", err)
		}
		return nil
	}

	if err := migration.Migrate(s.ctx); err != nil {
		return fmt.Errorf("cannot migrate: %w", err)
	}

	return nil
}
