package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/cinedb/internal/formatter"
	"github.com/desertthunder/cinedb/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = reviewItem{}
)

// movieItem wraps [models.MovieDetails] to implement [list.Item].
type movieItem struct {
	movie models.MovieDetails
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Title }
func (i movieItem) Description() string {
	desc := formatter.FormatDuration(i.movie.DurationMinutes)
	if i.movie.ReleaseDate != "" {
		desc = fmt.Sprintf("%s • %s", i.movie.ReleaseDate, desc)
	}
	if len(i.movie.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.movie.Genres, ", "))
	}
	return desc
}

// reviewItem wraps [models.ReviewDetails] to implement [list.Item].
type reviewItem struct {
	review models.ReviewDetails
}

func (i reviewItem) FilterValue() string { return i.review.Comment }
func (i reviewItem) Title() string {
	author := i.review.Email
	if author == "" {
		author = fmt.Sprintf("user %d", i.review.UserID)
	}
	return fmt.Sprintf("%.1f/10 by %s", i.review.Rating, author)
}
func (i reviewItem) Description() string {
	if i.review.Comment == "" {
		return i.review.ReviewDate
	}
	return fmt.Sprintf("%s • %s", i.review.ReviewDate, i.review.Comment)
}
