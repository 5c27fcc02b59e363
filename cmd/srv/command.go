package main

import "github.com/urfave/cli/v2"

// NewApp creates an app with sane defaults.
func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "contest-backoffice"
	s.app.Usage = "Weekly contest back office"
	s.app.Before = func(*cli.Context) error {
		if err := s.loadConfig(); err != nil {
			return err
		}

		s.loadLogger()
		return nil
	}
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Used for start the admin api of contests, winners and stats.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Used to create the weekly contest and draw due contests periodically.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database",
			Flags:       []cli.Flag{},
			Category:    "Database",
			Description: `Used to migrate the database to the latest version.`,
		},
	}
}
