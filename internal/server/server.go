package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Catalog is the catalog surface the HTTP API calls; satisfied by services.Catalog.
type Catalog interface {
	tasks.Saver
	Ping(ctx context.Context) error
	ReplaceAll(ctx context.Context, movieID int64, desired models.Associations) error
	DeleteMovie(ctx context.Context, movieID int64) error
	Resolve(ctx context.Context, kind models.Kind, name string) (int64, error)
	Movie(ctx context.Context, movieID int64) (*models.MovieDetails, error)
	Movies(ctx context.Context, query string) ([]models.MovieDetails, error)
	References(ctx context.Context, kind models.Kind) ([]models.Reference, error)
	Reference(ctx context.Context, kind models.Kind, id int64) (*models.Reference, error)
	RenameReference(ctx context.Context, kind models.Kind, id int64, name string) error
	DeleteReference(ctx context.Context, kind models.Kind, id int64) error
	AddReview(ctx context.Context, review models.Review) (int64, error)
	Reviews(ctx context.Context, movieID int64) ([]models.ReviewDetails, error)
	AddUser(ctx context.Context, user models.User) (int64, error)
	Users(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// Server serves the catalog over HTTP.
type Server struct {
	catalog    Catalog
	logger     *log.Logger
	importOpts tasks.ImportOpts
}

// New creates a [Server] for catalog.
func New(catalog Catalog, logger *log.Logger, importOpts tasks.ImportOpts) *Server {
	return &Server{catalog: catalog, logger: logger, importOpts: importOpts}
}

// Routes builds the chi router with every API route and middleware attached.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(RequestID)
	mux.Use(RequestLogger(s.logger))

	mux.Get("/health", s.health)

	mux.Route("/api", func(r chi.Router) {
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.listMovies)
			r.Post("/", s.createMovie)
			r.Post("/import", s.importMovies)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getMovie)
				r.Put("/", s.updateMovie)
				r.Delete("/", s.deleteMovie)
				r.Put("/associations", s.replaceAssociations)
				r.Get("/reviews", s.listReviews)
				r.Post("/reviews", s.createReview)
			})
		})

		r.Route("/references/{kind}", func(r chi.Router) {
			r.Get("/", s.listReferences)
			r.Post("/", s.createReference)
			r.Patch("/{id}", s.renameReference)
			r.Delete("/{id}", s.deleteReference)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.createUser)
			r.Delete("/{id}", s.deleteUser)
		})
	})

	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
