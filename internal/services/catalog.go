package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/repositories"
	"github.com/desertthunder/cinedb/internal/shared"
)

// Catalog is the movie catalog service used by the CLI, the HTTP server and the importer.
type Catalog struct {
	db     *sql.DB
	logger *log.Logger
}

// NewCatalog creates a [Catalog] over an open, migrated database. A nil logger falls back to stderr.
func NewCatalog(db *sql.DB, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Catalog{db: db, logger: logger}
}

// operation returns a logger tagged with a fresh operation id
func (c *Catalog) operation(name string) *log.Logger {
	return shared.WithLogger(c.logger, "op", name, "op_id", shared.GenerateID())
}

// Upsert inserts the movie when its ID is zero and updates it in place otherwise. Returns the movie ID.
func (c *Catalog) Upsert(ctx context.Context, movie models.Movie) (int64, error) {
	return repositories.NewMovieRepository(c.db).Upsert(ctx, movie)
}

// ReplaceAll makes the stored associations of every kind present in desired exactly equal the listed
// names. Kinds absent from desired are left untouched.
//
// All kinds are replaced in one transaction. On any failure nothing is changed and the transaction has
// been rolled back by the time the error is returned.
func (c *Catalog) ReplaceAll(ctx context.Context, movieID int64, desired models.Associations) error {
	if err := validateAssociations(desired); err != nil {
		return err
	}

	logger := c.operation("replace_all")
	logger.Debug("replacing associations", "movie_id", movieID, "kinds", len(desired))

	err := repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		exists, err := repositories.NewMovieRepository(tx).Exists(ctx, movieID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
		}

		return replaceAll(ctx, tx, movieID, desired)
	})
	if err != nil {
		logger.Debug("replace failed, rolled back", "movie_id", movieID, "error", err)
		return err
	}

	logger.Debug("associations replaced", "movie_id", movieID)
	return nil
}

// Save upserts the movie and replaces its associations in a single transaction and returns the movie ID.
//
// Either the movie row and every listed association kind are written, or none of them are.
func (c *Catalog) Save(ctx context.Context, movie models.Movie, desired models.Associations) (int64, error) {
	if err := movie.Validate(); err != nil {
		return 0, err
	}
	if err := validateAssociations(desired); err != nil {
		return 0, err
	}

	logger := c.operation("save")

	var id int64
	err := repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		var err error
		if id, err = repositories.NewMovieRepository(tx).Upsert(ctx, movie); err != nil {
			return err
		}
		return replaceAll(ctx, tx, id, desired)
	})
	if err != nil {
		logger.Debug("save failed, rolled back", "title", movie.Title, "error", err)
		return 0, err
	}

	logger.Debug("movie saved", "movie_id", id, "title", movie.Title)
	return id, nil
}

func replaceAll(ctx context.Context, tx *sql.Tx, movieID int64, desired models.Associations) error {
	assocs := repositories.NewAssociationRepository(tx)
	for _, kind := range desired.Kinds() {
		if err := assocs.Replace(ctx, movieID, kind, desired[kind]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssociations rejects unknown kinds and blank names before any statement runs.
func validateAssociations(desired models.Associations) error {
	for kind, names := range desired {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown kind %d", shared.ErrValidation, int(kind))
		}
		for _, name := range names {
			if err := models.ValidateName(kind, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteMovie removes the movie together with its association rows of every kind and its reviews, in one
// transaction. Reference rows are kept even when no movie uses them any more.
func (c *Catalog) DeleteMovie(ctx context.Context, movieID int64) error {
	logger := c.operation("delete_movie")

	var reviews int64
	err := repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		movies := repositories.NewMovieRepository(tx)

		exists, err := movies.Exists(ctx, movieID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
		}

		if err := repositories.NewAssociationRepository(tx).DeleteAll(ctx, movieID); err != nil {
			return err
		}
		if reviews, err = repositories.NewReviewRepository(tx).DeleteByMovie(ctx, movieID); err != nil {
			return err
		}
		return movies.Delete(ctx, movieID)
	})
	if err != nil {
		logger.Debug("delete failed, rolled back", "movie_id", movieID, "error", err)
		return err
	}

	logger.Debug("movie deleted", "movie_id", movieID, "reviews", reviews)
	return nil
}

// Resolve returns the ID of the named reference of kind, creating it if needed.
//
// Runs outside any transaction and is safe to call concurrently for the same name.
func (c *Catalog) Resolve(ctx context.Context, kind models.Kind, name string) (int64, error) {
	return repositories.NewReferenceRepository(c.db).Resolve(ctx, kind, name)
}

// Movie returns a movie with its associated names
func (c *Catalog) Movie(ctx context.Context, movieID int64) (*models.MovieDetails, error) {
	movie, err := repositories.NewMovieRepository(c.db).Get(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return c.details(ctx, *movie)
}

// MovieByTitle returns the first movie with exactly this title, with its associated names
func (c *Catalog) MovieByTitle(ctx context.Context, title string) (*models.MovieDetails, error) {
	movie, err := repositories.NewMovieRepository(c.db).GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return c.details(ctx, *movie)
}

// Movies lists movies with their associated names. A non-blank query keeps only titles containing it,
// ignoring case.
func (c *Catalog) Movies(ctx context.Context, query string) ([]models.MovieDetails, error) {
	movies, err := repositories.NewMovieRepository(c.db).Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	out := make([]models.MovieDetails, 0, len(movies))
	for _, movie := range movies {
		details, err := c.details(ctx, movie)
		if err != nil {
			return nil, err
		}
		out = append(out, *details)
	}
	return out, nil
}

func (c *Catalog) details(ctx context.Context, movie models.Movie) (*models.MovieDetails, error) {
	assocs := repositories.NewAssociationRepository(c.db)
	details := &models.MovieDetails{Movie: movie}

	for _, kind := range models.Kinds {
		names, err := assocs.Names(ctx, movie.ID, kind)
		if err != nil {
			return nil, err
		}
		details.SetNames(kind, names)
	}
	return details, nil
}

// References lists every reference of kind, ordered by name
func (c *Catalog) References(ctx context.Context, kind models.Kind) ([]models.Reference, error) {
	return repositories.NewReferenceRepository(c.db).List(ctx, kind)
}

// Reference returns a single reference of kind
func (c *Catalog) Reference(ctx context.Context, kind models.Kind, id int64) (*models.Reference, error) {
	return repositories.NewReferenceRepository(c.db).Get(ctx, kind, id)
}

// RenameReference renames a reference. Every movie associated with it sees the new name.
func (c *Catalog) RenameReference(ctx context.Context, kind models.Kind, id int64, name string) error {
	return repositories.NewReferenceRepository(c.db).Rename(ctx, kind, id, name)
}

// DeleteReference removes a reference that no movie uses.
//
// The usage check and the delete run in one transaction so a concurrent link cannot slip in between.
func (c *Catalog) DeleteReference(ctx context.Context, kind models.Kind, id int64) error {
	return repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		return repositories.NewReferenceRepository(tx).Delete(ctx, kind, id)
	})
}

// AddReview stores a review after checking that its movie and user exist. The date defaults to today.
func (c *Catalog) AddReview(ctx context.Context, review models.Review) (int64, error) {
	if err := review.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		exists, err := repositories.NewMovieRepository(tx).Exists(ctx, review.MovieID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: movie %d", shared.ErrNotFound, review.MovieID)
		}

		if _, err := repositories.NewUserRepository(tx).Get(ctx, review.UserID); err != nil {
			return err
		}

		id, err = repositories.NewReviewRepository(tx).Create(ctx, review)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Reviews lists the reviews of a movie, newest first
func (c *Catalog) Reviews(ctx context.Context, movieID int64) ([]models.ReviewDetails, error) {
	exists, err := repositories.NewMovieRepository(c.db).Exists(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
	}
	return repositories.NewReviewRepository(c.db).ListByMovie(ctx, movieID)
}

// ReviewStats returns a movie's review count and average rating
func (c *Catalog) ReviewStats(ctx context.Context, movieID int64) (int, float64, error) {
	exists, err := repositories.NewMovieRepository(c.db).Exists(ctx, movieID)
	if err != nil {
		return 0, 0, err
	}
	if !exists {
		return 0, 0, fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
	}
	return repositories.NewReviewRepository(c.db).Stats(ctx, movieID)
}

// AddUser registers a user and returns its ID. The join date defaults to today.
func (c *Catalog) AddUser(ctx context.Context, user models.User) (int64, error) {
	return repositories.NewUserRepository(c.db).Create(ctx, user)
}

// Users lists every user
func (c *Catalog) Users(ctx context.Context) ([]models.User, error) {
	return repositories.NewUserRepository(c.db).List(ctx, nil)
}

// DeleteUser removes a user and every review they wrote, in one transaction
func (c *Catalog) DeleteUser(ctx context.Context, userID int64) error {
	logger := c.operation("delete_user")

	var reviews int64
	err := repositories.InTx(ctx, c.db, func(tx *sql.Tx) error {
		users := repositories.NewUserRepository(tx)
		if _, err := users.Get(ctx, userID); err != nil {
			return err
		}

		var err error
		if reviews, err = repositories.NewReviewRepository(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return users.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	logger.Debug("user deleted", "user_id", userID, "reviews", reviews)
	return nil
}

// Ping checks that the database is reachable
func (c *Catalog) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: failed to ping database: %w", shared.ErrPersistence, err)
	}
	return nil
}
