// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database setup and migrations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations (creates config.toml if absent)",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// regimentCommand handles regiment operations
func regimentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "regiment",
		Aliases: []string{"reg", "r"},
		Usage:   "Practice regiment operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a regiment for a week",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Regiment date as YYYY-MM-DD (default: today)",
					},
					&cli.StringSliceFlag{
						Name:    "piece",
						Aliases: []string{"p"},
						Usage:   "Piece name, repeat for each piece in order",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RegimentCreate,
			},
			{
				Name:  "list",
				Usage: "List regiments with per-piece BPM history",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RegimentList,
			},
			{
				Name:  "delete",
				Usage: "Delete a regiment",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.RegimentDelete,
			},
			{
				Name:  "export",
				Usage: "Export regiments to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, txt or json",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: practicebook_export_{timestamp})",
					},
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Regiment ID to export, repeatable (default: all)",
					},
					&cli.StringFlag{
						Name:  "since",
						Usage: "Only export regiments dated on or after YYYY-MM-DD",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers (max 10)",
						Value: 4,
					},
				},
				Action: r.RegimentExport,
			},
		},
	}
}

// pieceCommand handles the active piece
func pieceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "piece",
		Usage: "Active piece operations",
		Commands: []*cli.Command{
			{
				Name:   "active",
				Usage:  "Print the active piece ID",
				Action: r.PieceActive,
			},
			{
				Name:  "activate",
				Usage: "Mark a piece active so live samples are logged against it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PieceActivate,
			},
		},
	}
}

// bpmCommand handles live BPM
func bpmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "bpm",
		Usage: "Live BPM operations",
		Commands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "Print live BPM samples until interrupted",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "mqtt",
						Usage: "Read directly from the MQTT broker instead of the backend",
					},
				},
				Action: r.BPMWatch,
			},
		},
	}
}

// serveCommand runs the backend
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API, MQTT ingestion and BPM log recorder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-mqtt",
				Usage: "Disable MQTT ingestion",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for regiments and live BPM",
		Action:  r.TUI,
	}
}
