package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

// ReferenceRepository manages the genre, director, actor and studio dictionaries.
type ReferenceRepository struct {
	db DBTX
}

// NewReferenceRepository creates a new ReferenceRepository bound to db
func NewReferenceRepository(db DBTX) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Resolve returns the ID of the reference with exactly this name, creating it when missing.
//
// Two callers racing on the same new name both end up with the single stored row: the loser of the
// INSERT sees a unique violation and reads the winner's row instead.
func (r *ReferenceRepository) Resolve(ctx context.Context, kind models.Kind, name string) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	if err := models.ValidateName(kind, name); err != nil {
		return 0, err
	}

	id, err := r.lookup(ctx, t, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, classify(err, fmt.Sprintf("look up %s", kind))
	}

	res, err := r.db.ExecContext(ctx, "INSERT INTO "+t.table+" (name) VALUES (?)", name)
	if err != nil {
		if !isUniqueViolation(err) {
			return 0, classify(err, fmt.Sprintf("create %s", kind))
		}

		id, err := r.lookup(ctx, t, name)
		if err != nil {
			return 0, classify(err, fmt.Sprintf("look up %s after conflict", kind))
		}
		return id, nil
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, classify(err, fmt.Sprintf("read %s id", kind))
	}
	return id, nil
}

func (r *ReferenceRepository) lookup(ctx context.Context, t kindTables, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM "+t.table+" WHERE name = ?", name).Scan(&id)
	return id, err
}

// Get retrieves a reference by kind and ID
func (r *ReferenceRepository) Get(ctx context.Context, kind models.Kind, id int64) (*models.Reference, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	ref := models.Reference{Kind: kind}
	err = r.db.QueryRowContext(ctx, "SELECT id, name FROM "+t.table+" WHERE id = ?", id).Scan(&ref.ID, &ref.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, classify(err, fmt.Sprintf("query %s", kind))
	}

	return &ref, nil
}

// List retrieves every reference of a kind, ordered by name
func (r *ReferenceRepository) List(ctx context.Context, kind models.Kind) ([]models.Reference, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM "+t.table+" ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, classify(err, fmt.Sprintf("query %ss", kind))
	}
	defer rows.Close()

	refs := []models.Reference{}
	for rows.Next() {
		ref := models.Reference{Kind: kind}
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, classify(err, fmt.Sprintf("scan %s", kind))
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, fmt.Sprintf("iterate %ss", kind))
	}

	return refs, nil
}

// Rename changes the name of a reference. Taking a name already used by another reference of the same
// kind fails with [shared.ErrConstraint].
func (r *ReferenceRepository) Rename(ctx context.Context, kind models.Kind, id int64, name string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	if err := models.ValidateName(kind, name); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, "UPDATE "+t.table+" SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return classify(err, fmt.Sprintf("rename %s", kind))
	}

	rows, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}

	return nil
}

// Usage counts the movies associated with a reference
func (r *ReferenceRepository) Usage(ctx context.Context, kind models.Kind, id int64) (int, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.join+" WHERE "+t.column+" = ?", id).Scan(&count)
	if err != nil {
		return 0, classify(err, fmt.Sprintf("count %s usage", kind))
	}
	return count, nil
}

// Delete removes a reference that no movie uses. A reference still associated with a movie is kept and
// the call fails with [shared.ErrConstraint].
func (r *ReferenceRepository) Delete(ctx context.Context, kind models.Kind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	used, err := r.Usage(ctx, kind, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return fmt.Errorf("%w: %s %d is used by %d movie(s)", shared.ErrConstraint, kind, id, used)
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM "+t.table+" WHERE id = ?", id)
	if err != nil {
		return classify(err, fmt.Sprintf("delete %s", kind))
	}

	rows, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}

	return nil
}
