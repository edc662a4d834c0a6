package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

const movieColumns = "id, title, release_date, duration_minutes, budget"

// MovieRepository persists the scalar movie record.
type MovieRepository struct {
	db DBTX
}

// NewMovieRepository creates a new MovieRepository bound to db, which may be a database or a transaction
func NewMovieRepository(db DBTX) *MovieRepository {
	return &MovieRepository{db: db}
}

// Upsert validates movie and inserts it when ID is zero, otherwise updates the row with that ID in place.
//
// Returns the movie's ID. Updating an ID that does not exist fails with [shared.ErrNotFound].
func (r *MovieRepository) Upsert(ctx context.Context, movie models.Movie) (int64, error) {
	if err := movie.Validate(); err != nil {
		return 0, err
	}

	if movie.ID == 0 {
		return r.insert(ctx, movie)
	}
	return movie.ID, r.update(ctx, movie)
}

func (r *MovieRepository) insert(ctx context.Context, movie models.Movie) (int64, error) {
	query := `
		INSERT INTO movies (title, release_date, duration_minutes, budget) VALUES (?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, movie.Title, nullable(movie.ReleaseDate), movie.DurationMinutes, movie.Budget)
	if err != nil {
		return 0, classify(err, "insert movie")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(err, "read movie id")
	}

	return id, nil
}

func (r *MovieRepository) update(ctx context.Context, movie models.Movie) error {
	query := `
		UPDATE movies
		SET title = ?, release_date = ?, duration_minutes = ?, budget = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query, movie.Title, nullable(movie.ReleaseDate), movie.DurationMinutes, movie.Budget, movie.ID)
	if err != nil {
		return classify(err, "update movie")
	}

	rows, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: movie %d", shared.ErrNotFound, movie.ID)
	}

	return nil
}

// Get retrieves a movie by ID
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`

	movie, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: movie %d", shared.ErrNotFound, id)
	}
	return movie, err
}

// Exists reports whether a movie with the given ID is stored
func (r *MovieRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM movies WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, classify(err, "check movie")
	}
	return exists, nil
}

// GetByTitle retrieves the first movie (lowest ID) whose title matches exactly
func (r *MovieRepository) GetByTitle(ctx context.Context, title string) (*models.Movie, error) {
	movies, err := r.List(ctx, map[string]any{"title": title})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: movie titled %q", shared.ErrNotFound, title)
	}
	return &movies[0], nil
}

// List retrieves all movies matching the given criteria, ordered by ID.
//
// Supported criteria: "title" (exact match) and "query" (case-insensitive substring of the title).
func (r *MovieRepository) List(ctx context.Context, criteria map[string]any) ([]models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE 1 = 1`

	args := []any{}

	if title, ok := criteria["title"].(string); ok && title != "" {
		query += " AND title = ?"
		args = append(args, title)
	}

	if term, ok := criteria["query"].(string); ok && strings.TrimSpace(term) != "" {
		query += ` AND LOWER(title) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(strings.TrimSpace(term)))+"%")
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "query movies")
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		movie, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *movie)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterate movies")
	}

	return movies, nil
}

// Search lists movies whose title contains term, ignoring case
func (r *MovieRepository) Search(ctx context.Context, term string) ([]models.Movie, error) {
	return r.List(ctx, map[string]any{"query": term})
}

// Delete removes the movie row only.
//
// Association and review rows must already be gone. When the database enforces foreign keys a remaining
// dependent fails the call with [shared.ErrConstraint]; otherwise the row is removed regardless.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return classify(err, "delete movie")
	}

	rows, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: movie %d", shared.ErrNotFound, id)
	}

	return nil
}

// scanOne scans a single [sql.Row] into a [models.Movie]
func (r *MovieRepository) scanOne(row *sql.Row) (*models.Movie, error) {
	var (
		movie       models.Movie
		releaseDate sql.NullString
	)

	err := row.Scan(&movie.ID, &movie.Title, &releaseDate, &movie.DurationMinutes, &movie.Budget)
	if err != nil {
		return nil, classify(err, "scan movie")
	}

	movie.ReleaseDate = releaseDate.String
	return &movie, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Movie]
func (r *MovieRepository) scanRow(rows *sql.Rows) (*models.Movie, error) {
	var (
		movie       models.Movie
		releaseDate sql.NullString
	)

	err := rows.Scan(&movie.ID, &movie.Title, &releaseDate, &movie.DurationMinutes, &movie.Budget)
	if err != nil {
		return nil, classify(err, "scan movie")
	}

	movie.ReleaseDate = releaseDate.String
	return &movie, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
