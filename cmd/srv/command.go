package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the TOML config file",
		EnvVars: []string{"EVENTREWARD_CONFIG"},
	}

	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "eventreward"
	app.Usage = "Event reward economy"
	app.Flags = []cli.Flag{configFlag}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:   s.startApi,
			Name:     "api",
			Usage:    "Start service api",
			Category: "Api",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:  "node",
					Usage: "Snowflake node id of this instance",
					Value: 1,
				},
			},
			Description: `Used for start service api, it main service included all apis.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Category:    "Database",
			Description: `Used to create or update every table of the service.`,
		},
		{
			Action:      s.startBootstrap,
			Name:        "bootstrap",
			Usage:       "Grant initial roles",
			Category:    "Database",
			Description: `Grants admin to the configured admins and the component roles to the service accounts.`,
		},
		{
			Action:   s.startCron,
			Name:     "cron",
			Usage:    "Start cron jobs",
			Category: "Worker",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:  "node",
					Usage: "Snowflake node id of this instance",
					Value: 2,
				},
			},
			Description: `Used to close the voting phase of events whose voting window has ended.`,
		},
		{
			Action:   s.startToken,
			Name:     "token",
			Usage:    "Issue an access token",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user",
					Usage:    "Account id of the token",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "name",
					Usage: "Display name of the token",
				},
			},
			Description: `Prints a signed access token, useful for operators and local testing.`,
		},
	}

	return app
}
