package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/formatter"
	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
	"github.com/desertthunder/cinedb/internal/tasks"
	"github.com/desertthunder/cinedb/internal/ui"
)

// MovieAdd stores a new movie and its associations in one transaction.
func (r *Runner) MovieAdd(ctx context.Context, cmd *cli.Command) error {
	var movie models.Movie
	if err := applyMovieFlags(cmd, &movie); err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	id, err := catalog.Save(ctx, movie, associationsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to add movie: %w", err)
	}

	return r.printSavedMovie(ctx, cmd, id, "added")
}

// MovieEdit updates the given scalar fields and replaces the association kinds whose flags were given.
func (r *Runner) MovieEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	current, err := catalog.Movie(ctx, id)
	if err != nil {
		return err
	}

	movie := current.Movie
	if err := applyMovieFlags(cmd, &movie); err != nil {
		return err
	}

	if _, err := catalog.Save(ctx, movie, associationsFromFlags(cmd)); err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}

	return r.printSavedMovie(ctx, cmd, id, "updated")
}

func (r *Runner) printSavedMovie(ctx context.Context, cmd *cli.Command, id int64, verb string) error {
	details, err := r.catalog.Movie(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, true)
	}

	r.writeOK("Movie %s: %s (ID: %d)", verb, details.Title, details.ID)
	r.printMovie(*details)
	return nil
}

// MovieShow prints one movie, looked up by ID or by exact title.
func (r *Runner) MovieShow(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("movie"))
	if ref == "" {
		return fmt.Errorf("%w: movie ID or title", shared.ErrMissingArgument)
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	var details *models.MovieDetails
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		details, err = catalog.Movie(ctx, id)
	} else {
		details, err = catalog.MovieByTitle(ctx, ref)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, cmd.Bool("pretty"))
	}

	r.writePlainHeader(details.Title)
	r.printMovie(*details)
	return nil
}

// MovieList prints every movie.
func (r *Runner) MovieList(ctx context.Context, cmd *cli.Command) error {
	return r.listMovies(ctx, cmd, "")
}

// MovieSearch prints the movies whose title contains the query.
func (r *Runner) MovieSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return r.listMovies(ctx, cmd, query)
}

func (r *Runner) listMovies(ctx context.Context, cmd *cli.Command, query string) error {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	movies, err := catalog.Movies(ctx, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	if len(movies) == 0 {
		return r.writePlain("No movies found\n")
	}

	data, err := formatter.ExportToText(movies)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// MovieDelete removes a movie with its associations and reviews.
func (r *Runner) MovieDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	if err := catalog.DeleteMovie(ctx, id); err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}

	return r.writeOK("Movie %d deleted", id)
}

// MovieLink replaces the associations of the kinds whose flags were given.
func (r *Runner) MovieLink(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	desired := associationsFromFlags(cmd)
	if len(desired) == 0 {
		return fmt.Errorf("%w: at least one of --genre, --director, --actor, --studio", shared.ErrMissingArgument)
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	if err := catalog.ReplaceAll(ctx, id, desired); err != nil {
		return fmt.Errorf("failed to link movie %d: %w", id, err)
	}

	return r.printSavedMovie(ctx, cmd, id, "linked")
}

// MovieExport writes the catalog to a file in the chosen format.
func (r *Runner) MovieExport(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	movies, err := catalog.Movies(ctx, cmd.String("query"))
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(movies, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("catalog exported", "path", path, "movies", len(movies))
	return r.writeOK("Exported %d movie(s) to %s", len(movies), path)
}

// MovieImport saves every entry of a YAML catalog file and reports per-entry failures.
func (r *Runner) MovieImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: catalog file path", shared.ErrMissingArgument)
	}

	opts, err := importOpts(cmd)
	if err != nil {
		return err
	}

	entries, err := tasks.LoadCatalogFile(path)
	if err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if useJSON {
				continue
			}
			switch update.Phase {
			case tasks.LoadCatalog:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ImportMovies:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := tasks.NewImporter(catalog, opts).Import(ctx, entries, progress)
	close(progress)
	<-done

	if result != nil && useJSON {
		if jsonErr := r.writeJSON(importSummary(result), true); jsonErr != nil {
			return jsonErr
		}
	} else if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Import Complete!")
		r.writePlain("Imported: %d/%d\n", result.Succeeded, result.Total)
		if result.Failed > 0 {
			r.writePlain("%s\n", ui.Styles.Warn(fmt.Sprintf("Failed: %d", result.Failed)))
			for _, res := range result.Failures() {
				r.writePlain("  • #%d %s: %v\n", res.Index+1, res.Title, res.Error)
			}
		}
	}

	if err != nil {
		return err
	}
	if result.Failed > 0 && result.Succeeded == 0 {
		return errors.New("no movies were imported")
	}
	return nil
}

func importOpts(cmd *cli.Command) (tasks.ImportOpts, error) {
	workers, err := intFlag(cmd, "workers")
	if err != nil {
		return tasks.ImportOpts{}, err
	}
	rate, err := floatFlag(cmd, "rate")
	if err != nil {
		return tasks.ImportOpts{}, err
	}
	if rate < 0 {
		return tasks.ImportOpts{}, fmt.Errorf("%w: --rate must not be negative", shared.ErrInvalidFlag)
	}
	return tasks.ImportOpts{Workers: workers, RateLimit: rate}, nil
}

type importEntry struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	MovieID int64  `json:"movie_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type importReport struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []importEntry `json:"results"`
}

func importSummary(result *tasks.ImportResult) importReport {
	report := importReport{
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Results:   make([]importEntry, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := importEntry{Index: res.Index, Title: res.Title, MovieID: res.MovieID}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		report.Results = append(report.Results, entry)
	}
	return report
}

func (r *Runner) printMovie(movie models.MovieDetails) {
	r.writePlain("ID:        %d\n", movie.ID)
	if movie.ReleaseDate != "" {
		r.writePlain("Released:  %s\n", movie.ReleaseDate)
	}
	r.writePlain("Duration:  %s\n", formatter.FormatDuration(movie.DurationMinutes))
	r.writePlain("Budget:    %s\n", formatter.FormatBudget(movie.Budget))
	for _, kind := range models.Kinds {
		names := movie.Names(kind)
		value := strings.Join(names, ", ")
		if len(names) == 0 {
			value = "-"
		}
		r.writePlain("%-10s %s\n", kind.String()+"s:", value)
	}
}
