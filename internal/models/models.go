package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/desertthunder/cinedb/internal/shared"
)

// Rating bounds for a [Review].
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Movie is the scalar part of a catalog movie.
//
// ID is zero for a movie that has not been stored yet. ReleaseDate is optional and, when set, must be an
// ISO calendar date (YYYY-MM-DD).
type Movie struct {
	ID              int64   `json:"id" yaml:"id,omitempty"`
	Title           string  `json:"title" yaml:"title"`
	ReleaseDate     string  `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	DurationMinutes int     `json:"duration_minutes" yaml:"duration_minutes"`
	Budget          float64 `json:"budget" yaml:"budget"`
}

// Validate checks the scalar fields of the movie.
func (m Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", shared.ErrValidation)
	}
	if m.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", shared.ErrValidation, m.DurationMinutes)
	}
	if math.IsNaN(m.Budget) || math.IsInf(m.Budget, 0) {
		return fmt.Errorf("%w: budget must be a finite number, got %v", shared.ErrValidation, m.Budget)
	}
	if m.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative, got %.2f", shared.ErrValidation, m.Budget)
	}
	if m.ReleaseDate != "" {
		if _, err := time.Parse(shared.DateLayout, m.ReleaseDate); err != nil {
			return fmt.Errorf("%w: release date %q is not YYYY-MM-DD", shared.ErrValidation, m.ReleaseDate)
		}
	}
	return nil
}

// Reference is a named Genre, Director, Actor or Studio row.
type Reference struct {
	ID   int64  `json:"id"`
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// ValidateName rejects reference names that are empty or only whitespace.
//
// Names are otherwise stored exactly as given: "Sci-Fi" and "sci-fi" are different references.
func ValidateName(kind Kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name must not be empty", shared.ErrValidation, kind)
	}
	return nil
}

// MovieDetails is a movie together with the names associated to it, sorted by name.
type MovieDetails struct {
	Movie
	Genres    []string `json:"genres"`
	Directors []string `json:"directors"`
	Actors    []string `json:"actors"`
	Studios   []string `json:"studios"`
}

// Names returns the associated names of the given kind.
func (d MovieDetails) Names(kind Kind) []string {
	switch kind {
	case Genre:
		return d.Genres
	case Director:
		return d.Directors
	case Actor:
		return d.Actors
	case Studio:
		return d.Studios
	}
	return nil
}

// SetNames replaces the associated names of the given kind.
func (d *MovieDetails) SetNames(kind Kind, names []string) {
	switch kind {
	case Genre:
		d.Genres = names
	case Director:
		d.Directors = names
	case Actor:
		d.Actors = names
	case Studio:
		d.Studios = names
	}
}

// Review is a user's rating of a movie. Comment is optional.
type Review struct {
	ID         int64   `json:"id"`
	MovieID    int64   `json:"movie_id"`
	UserID     int64   `json:"user_id"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment,omitempty"`
	ReviewDate string  `json:"review_date"`
}

// Validate checks the rating range and the review date format.
func (r Review) Validate() error {
	if math.IsNaN(r.Rating) || r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %.0f and %.0f, got %g", shared.ErrValidation, MinRating, MaxRating, r.Rating)
	}
	if r.ReviewDate != "" {
		if _, err := time.Parse(shared.DateLayout, r.ReviewDate); err != nil {
			return fmt.Errorf("%w: review date %q is not YYYY-MM-DD", shared.ErrValidation, r.ReviewDate)
		}
	}
	return nil
}

// ReviewDetails is a review joined with its author's email; Email is empty when the user is gone.
type ReviewDetails struct {
	Review
	Email string `json:"email,omitempty"`
}

// User is a catalog user. Credentials are deliberately not part of the model.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	JoinDate string `json:"join_date"`
}

// Validate checks that username and email are present, the email looks like one and the join date, when
// set, is YYYY-MM-DD.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: username must not be empty", shared.ErrValidation)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email must not be empty", shared.ErrValidation)
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("%w: email %q is not valid", shared.ErrValidation, u.Email)
	}
	if u.JoinDate != "" {
		if _, err := time.Parse(shared.DateLayout, u.JoinDate); err != nil {
			return fmt.Errorf("%w: join date %q is not YYYY-MM-DD", shared.ErrValidation, u.JoinDate)
		}
	}
	return nil
}

// CatalogEntry is one movie of a bulk import file: the movie fields plus its desired associations.
type CatalogEntry struct {
	Movie          `yaml:",inline"`
	AssociationSet `yaml:",inline"`
}
