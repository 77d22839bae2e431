// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the session database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml with default values",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session locally",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
					&cli.StringFlag{Name: "nickname", Aliases: []string{"n"}, Usage: "Display name", Required: true},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Verify the stored session with the backend",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// musicCommand handles catalog queries
func musicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "music",
		Usage: "Browse the music catalog",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search titles and artists; prefix with # for a genre",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:  "category",
						Usage: "Restrict the search to title, artist or genre",
					},
				),
				Action: r.MusicSearch,
			},
			{
				Name:  "genre",
				Usage: "List tracks in a genre (aliases like kpop or 힙합 are accepted)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "genre"},
				},
				Flags:  jsonFlags(),
				Action: r.MusicGenre,
			},
			{
				Name:   "all",
				Usage:  "List the whole catalog",
				Flags:  jsonFlags(),
				Action: r.MusicAll,
			},
			{
				Name:   "top50",
				Usage:  "List the ranked catalog",
				Flags:  jsonFlags(),
				Action: r.MusicTop50,
			},
		},
	}
}

// playlistCommand handles playlist operations for the signed-in user
func playlistCommand(r *Runner) *cli.Command {
	ref := []cli.Argument{&cli.StringArg{Name: "playlist"}}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage your playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your playlists",
				Flags:  jsonFlags(),
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist by id or title",
				Arguments: ref,
				Flags:     jsonFlags(),
				Action:    r.PlaylistShow,
			},
			{
				Name:  "create",
				Usage: "Create a playlist from catalog tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
					&cli.StringSliceFlag{Name: "music", Aliases: []string{"m"}, Usage: "Catalog music number to add (repeatable)"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:      "edit",
				Usage:     "Change a playlist's title or description",
				Arguments: ref,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
				},
				Action: r.PlaylistEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				Arguments: ref,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "add",
				Usage: "Add a catalog track to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "music"},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "music"},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:  "export",
				Usage: "Export playlists to files (all when none are named)",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "playlist", Aliases: []string{"p"}, Usage: "Playlist id or title (repeatable)"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, csv, markdown, txt or m3u", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent file writers", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Track fetches per second", Value: 5},
					&cli.BoolFlag{Name: "cover", Usage: "Download cover art for markdown exports"},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// profileCommand handles the signed-in user's profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View or change your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  jsonFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Change your nickname",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nickname", Aliases: []string{"n"}, Usage: "New nickname", Required: true},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// accountCommand handles account lifecycle
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage your account",
		Commands: []*cli.Command{
			{
				Name:  "delete",
				Usage: "Delete your account and sign out",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.AccountDelete,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	path := []cli.Argument{&cli.StringArg{Name: "path"}}
	data := &cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON body to send"}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct backend calls, prints the normalized envelope",
		Commands: []*cli.Command{
			{Name: "get", Usage: "GET a path", Arguments: path, Action: r.APIGet},
			{Name: "post", Usage: "POST a path", Arguments: path, Flags: []cli.Flag{data}, Action: r.APIPost},
			{Name: "put", Usage: "PUT a path", Arguments: path, Flags: []cli.Flag{data}, Action: r.APIPut},
			{Name: "delete", Usage: "DELETE a path", Arguments: path, Action: r.APIDelete},
		},
	}
}

// serveCommand runs the in-memory backend
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local mock backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (defaults to server.host)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (defaults to server.port)"},
			&cli.BoolFlag{Name: "demo", Usage: "Seed the demo account", Value: true},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
