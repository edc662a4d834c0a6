package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

// ReviewRepository persists user ratings of movies.
type ReviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a new ReviewRepository bound to db
func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create validates and stores a review and returns its ID. An empty review date defaults to today.
func (r *ReviewRepository) Create(ctx context.Context, review models.Review) (int64, error) {
	if review.ReviewDate == "" {
		review.ReviewDate = shared.Today()
	}
	if err := review.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO reviews (movie_id, user_id, rating, comment, review_date) VALUES (?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, review.MovieID, review.UserID, review.Rating, nullable(review.Comment), review.ReviewDate)
	if err != nil {
		return 0, classify(err, "insert review")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(err, "read review id")
	}

	return id, nil
}

// ListByMovie retrieves the reviews of a movie, newest first, with each author's email
func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID int64) ([]models.ReviewDetails, error) {
	query := `
		SELECT r.id, r.movie_id, r.user_id, r.rating, r.comment, r.review_date, u.email
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.movie_id = ?
		ORDER BY r.review_date DESC, r.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, classify(err, "query reviews")
	}
	defer rows.Close()

	reviews := []models.ReviewDetails{}
	for rows.Next() {
		var (
			review  models.ReviewDetails
			comment sql.NullString
			email   sql.NullString
		)

		err := rows.Scan(&review.ID, &review.MovieID, &review.UserID, &review.Rating, &comment, &review.ReviewDate, &email)
		if err != nil {
			return nil, classify(err, "scan review")
		}

		review.Comment = comment.String
		review.Email = email.String
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterate reviews")
	}

	return reviews, nil
}

// DeleteByMovie removes every review of a movie and returns how many were removed
func (r *ReviewRepository) DeleteByMovie(ctx context.Context, movieID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE movie_id = ?", movieID)
	if err != nil {
		return 0, classify(err, "delete movie reviews")
	}
	return rowsAffected(res)
}

// DeleteByUser removes every review written by a user and returns how many were removed
func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE user_id = ?", userID)
	if err != nil {
		return 0, classify(err, "delete user reviews")
	}
	return rowsAffected(res)
}

// Stats returns the number of reviews of a movie and their average rating (zero when unreviewed)
func (r *ReviewRepository) Stats(ctx context.Context, movieID int64) (count int, average float64, err error) {
	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE movie_id = ?", movieID).
		Scan(&count, &average)
	if err != nil {
		return 0, 0, classify(err, fmt.Sprintf("aggregate reviews of movie %d", movieID))
	}
	return count, average, nil
}
