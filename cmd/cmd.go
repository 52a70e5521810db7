// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that touches the config file.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for the local snapshot database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize snapshot database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles session operations against the backend.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with Spotify using the browser OAuth flow",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and discard local credentials",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Check current session state (calls /auth/me)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Rotate the server-side Spotify token",
				Action: r.AuthRefresh,
			},
		},
	}
}

// musicCommand handles listening-graph operations.
func musicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "music",
		Aliases: []string{"m"},
		Usage:   "Listening graph operations",
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import listening history into the graph and watch progress",
				Action: r.MusicImport,
			},
			{
				Name:  "status",
				Usage: "Show the server-side import status",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.MusicStatus,
			},
			{
				Name:    "top-artists",
				Aliases: []string{"artists"},
				Usage:   "List top artists for a time range",
				Flags:   topFlags(),
				Action:  r.MusicTopArtists,
			},
			{
				Name:    "top-tracks",
				Aliases: []string{"tracks"},
				Usage:   "List top tracks for a time range",
				Flags:   topFlags(),
				Action:  r.MusicTopTracks,
			},
			{
				Name:  "profile",
				Usage: "Show the raw Spotify profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.MusicProfile,
			},
			{
				Name:  "export",
				Usage: "Export top artists and tracks for every time range",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (csv, markdown, text, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base name for output files",
					},
				},
				Action: r.MusicExport,
			},
		},
	}
}

// topFlags is the shared flag set for the ranked-list commands.
func topFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "range",
			Aliases: []string{"r"},
			Usage:   "Time range (short_term, medium_term, long_term)",
			Value:   "medium_term",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Cache the response in the local snapshot database",
		},
		&cli.BoolFlag{
			Name:  "cached",
			Usage: "Read the latest cached snapshot instead of calling the backend",
		},
	}
}

// cacheCommand handles the local snapshot cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and prune cached snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached snapshots",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Filter by kind (artists or tracks)",
					},
					&cli.StringFlag{
						Name:  "range",
						Usage: "Filter by time range",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Prune all cached snapshots",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive listening-graph dashboard",
		Action:  r.TUI,
	}
}
