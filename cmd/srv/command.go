package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to an optional config file (toml, yaml or json)",
		EnvVars: []string{"TASKMASTER_CONFIG"},
	}

	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "taskmaster"
	app.Usage = "Clan event lifecycle and rewards engine"
	app.Flags = []cli.Flag{configFlag}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:      s.startServer,
			Name:        "start",
			Usage:       "Start the scheduler and the admin api",
			Category:    "Server",
			Description: `Runs the event scheduler, the item price refresher and, if enabled, the admin/ops HTTP api.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "auto",
					Usage: "Use gorm AutoMigrate instead of the versioned SQL migrations",
				},
			},
			Description: `The versioned migrations only exist for postgres, other drivers need --auto.`,
		},
		{
			Action:   s.startDraw,
			Name:     "draw",
			Usage:    "Draw a raffle now",
			Category: "Admin",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:     "id",
					Usage:    "Raffle id",
					Required: true,
				},
			},
			Description: `Closes the raffle, draws the winner and announces it without waiting for the scheduler.`,
		},
	}

	s.app = app
}
