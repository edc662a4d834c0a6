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

// UserRepository persists [models.User] rows.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new [UserRepository] bound to db
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create validates and inserts a user and returns its ID. An empty join date defaults to today.
//
// Emails are unique, so a second user with the same email fails with [shared.ErrConstraint].
func (r *UserRepository) Create(ctx context.Context, user models.User) (int64, error) {
	if user.JoinDate == "" {
		user.JoinDate = shared.Today()
	}
	if err := user.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO users (username, email, join_date) VALUES (?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, strings.TrimSpace(user.Username), strings.TrimSpace(user.Email), user.JoinDate)
	if err != nil {
		return 0, classify(err, "insert user")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(err, "read user id")
	}

	return id, nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, email, join_date FROM users WHERE id = ?`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username, &user.Email, &user.JoinDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(err, "query user")
	}

	return &user, nil
}

// List retrieves all users matching the given criteria, ordered by ID.
//
// Supported criteria: "email" (exact match).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]models.User, error) {
	query := `
		SELECT id, username, email, join_date
		FROM users
		WHERE 1 = 1
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "query users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.JoinDate); err != nil {
			return nil, classify(err, "scan user")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterate users")
	}

	return users, nil
}

// Delete removes a user row. Reviews written by the user must be removed first.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return classify(err, "delete user")
	}

	rows, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}

	return nil
}
