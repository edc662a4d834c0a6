// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/formatter"
	"github.com/desertthunder/cinedb/internal/models"
)

// jsonFlag returns a new --json flag. Flags keep parse state and cannot be shared between commands.
func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true}
}

// movieFlags are the scalar movie fields shared by add and edit.
func movieFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Aliases:  []string{"t"},
			Usage:    "Movie title",
			Required: required,
		},
		&cli.StringFlag{
			Name:  "release-date",
			Usage: "Release date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:     "duration",
			Aliases:  []string{"d"},
			Usage:    "Running time in minutes",
			Required: required,
		},
		&cli.StringFlag{
			Name:  "budget",
			Usage: "Budget in dollars",
		},
	}
}

// associationFlags are repeatable name flags, one per kind. A kind whose flag is absent is left untouched;
// --genre "" replaces the genres with the empty set.
func associationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre name (repeatable)"},
		&cli.StringSliceFlag{Name: "director", Usage: "Director name (repeatable)"},
		&cli.StringSliceFlag{Name: "actor", Aliases: []string{"a"}, Usage: "Actor name (repeatable)"},
		&cli.StringSliceFlag{Name: "studio", Aliases: []string{"s"}, Usage: "Studio name (repeatable)"},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// setupCommand handles database and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show the applied migration version",
				Action: r.SetupStatus,
			},
		},
	}
}

// movieCommand handles movie records and their associations.
func movieCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movie",
		Aliases: []string{"movies", "m"},
		Usage:   "Movie operations",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a movie with its genres, directors, actors and studios",
				Flags:  withFlags(movieFlags(true), associationFlags(), []cli.Flag{jsonFlag()}),
				Action: r.MovieAdd,
			},
			{
				Name:      "edit",
				Usage:     "Update a movie; flags left out keep their current values",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     withFlags(movieFlags(false), associationFlags(), []cli.Flag{jsonFlag()}),
				Action:    r.MovieEdit,
			},
			{
				Name:      "show",
				Usage:     "Show a movie by ID or exact title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie"}},
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.MovieShow,
			},
			{
				Name:   "list",
				Usage:  "List every movie",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.MovieList,
			},
			{
				Name:      "search",
				Usage:     "Find movies whose title contains the query, ignoring case",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.MovieSearch,
			},
			{
				Name:      "delete",
				Usage:     "Delete a movie with its associations and reviews",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MovieDelete,
			},
			{
				Name:      "link",
				Usage:     "Replace the names linked to a movie for the given kinds",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     withFlags(associationFlags(), []cli.Flag{jsonFlag()}),
				Action:    r.MovieLink,
			},
			{
				Name:  "export",
				Usage: "Export the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: movies.{ext})",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only export titles containing this text",
					},
				},
				Action: r.MovieExport,
			},
			{
				Name:      "import",
				Usage:     "Import movies from a YAML catalog file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "workers",
						Usage: "Concurrent writers (1-8)",
						Value: "1",
					},
					&cli.StringFlag{
						Name:  "rate",
						Usage: "Maximum saves per second (0 = unlimited)",
						Value: "0",
					},
					jsonFlag(),
				},
				Action: r.MovieImport,
			},
		},
	}
}

// referenceCommand builds the list/add/rename/delete tree for one kind.
func referenceCommand(r *Runner, kind models.Kind, aliases ...string) *cli.Command {
	name := kind.String()
	return &cli.Command{
		Name:    name,
		Aliases: aliases,
		Usage:   "Manage " + name + "s",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every " + name,
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.ReferenceList(kind),
			},
			{
				Name:      "add",
				Usage:     "Add a " + name + " (returns the existing one when the name is taken)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.ReferenceAdd(kind),
			},
			{
				Name:      "rename",
				Usage:     "Rename a " + name,
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}, &cli.StringArg{Name: "name"}},
				Action:    r.ReferenceRename(kind),
			},
			{
				Name:      "delete",
				Usage:     "Delete a " + name + " no movie uses",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ReferenceDelete(kind),
			},
		},
	}
}

func genreCommand(r *Runner) *cli.Command    { return referenceCommand(r, models.Genre, "genres") }
func directorCommand(r *Runner) *cli.Command { return referenceCommand(r, models.Director, "directors") }
func actorCommand(r *Runner) *cli.Command    { return referenceCommand(r, models.Actor, "actors") }
func studioCommand(r *Runner) *cli.Command   { return referenceCommand(r, models.Studio, "studios") }

// reviewCommand handles movie reviews.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "review",
		Aliases: []string{"reviews"},
		Usage:   "Movie reviews",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Review a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie-id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Reviewer user ID", Required: true},
					&cli.StringFlag{Name: "rating", Aliases: []string{"r"}, Usage: "Rating from 0 to 10", Required: true},
					&cli.StringFlag{Name: "comment", Usage: "Optional comment"},
					&cli.StringFlag{Name: "date", Usage: "Review date (YYYY-MM-DD, default: today)"},
				},
				Action: r.ReviewAdd,
			},
			{
				Name:      "list",
				Usage:     "List a movie's reviews, newest first",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie-id"}},
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.ReviewList,
			},
		},
	}
}

// userCommand handles catalog users.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Catalog users",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "User name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email address (unique)", Required: true},
				},
				Action: r.UserAdd,
			},
			{
				Name:   "list",
				Usage:  "List users",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.UserList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a user and their reviews",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.UserDelete,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog over a JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides config)"},
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
		},
		Action: r.Serve,
	}
}

// browseCommand returns the top-level TUI command for browsing the catalog.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "import",
				Usage: "YAML catalog to import before browsing",
			},
		},
		Action: r.Browse,
	}
}
