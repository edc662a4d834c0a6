package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/models"
)

// ReviewAdd stores a review for a movie.
func (r *Runner) ReviewAdd(ctx context.Context, cmd *cli.Command) error {
	movieID, err := parseID("movie-id", cmd.StringArg("movie-id"))
	if err != nil {
		return err
	}
	userID, err := parseID("--user", cmd.String("user"))
	if err != nil {
		return err
	}
	rating, err := floatFlag(cmd, "rating")
	if err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	review := models.Review{
		MovieID:    movieID,
		UserID:     userID,
		Rating:     rating,
		Comment:    cmd.String("comment"),
		ReviewDate: cmd.String("date"),
	}

	id, err := catalog.AddReview(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}

	return r.writeOK("Review added (ID: %d)", id)
}

// ReviewList prints a movie's reviews, newest first.
func (r *Runner) ReviewList(ctx context.Context, cmd *cli.Command) error {
	movieID, err := parseID("movie-id", cmd.StringArg("movie-id"))
	if err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	reviews, err := catalog.Reviews(ctx, movieID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(reviews, cmd.Bool("pretty"))
	}

	if len(reviews) == 0 {
		return r.writePlain("No reviews yet\n")
	}

	count, average, err := catalog.ReviewStats(ctx, movieID)
	if err != nil {
		return err
	}
	r.writePlain("%d review(s), average %.1f/10\n\n", count, average)

	for _, review := range reviews {
		author := review.Email
		if author == "" {
			author = fmt.Sprintf("user %d", review.UserID)
		}
		r.writePlain("%s  %4.1f/10  %s\n", review.ReviewDate, review.Rating, author)
		if review.Comment != "" {
			r.writePlain("            %s\n", review.Comment)
		}
	}
	return nil
}
