package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinedb/internal/models"
)

// AssociationRepository manages the movie to reference join rows.
type AssociationRepository struct {
	db   DBTX
	refs *ReferenceRepository
}

// NewAssociationRepository creates a new AssociationRepository bound to db.
//
// Replace resolves names through the same handle, so bind it to a transaction to make the
// resolve, delete and insert steps atomic.
func NewAssociationRepository(db DBTX) *AssociationRepository {
	return &AssociationRepository{db: db, refs: NewReferenceRepository(db)}
}

// Replace makes the movie's associations of kind exactly the given names.
//
// Names are deduplicated first and missing references are created. An empty list clears the kind.
// Existing join rows are deleted before the new set is inserted, so no stale or duplicate row survives.
func (r *AssociationRepository) Replace(ctx context.Context, movieID int64, kind models.Kind, names []string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	names = models.Dedupe(names)
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := r.refs.Resolve(ctx, kind, name)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+t.join+" WHERE movie_id = ?", movieID); err != nil {
		return classify(err, fmt.Sprintf("clear %s associations", kind))
	}

	insert := "INSERT INTO " + t.join + " (movie_id, " + t.column + ") VALUES (?, ?)"
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx, insert, movieID, id); err != nil {
			return classify(err, fmt.Sprintf("link %s", kind))
		}
	}

	return nil
}

// Names lists the names of kind associated with the movie, sorted by name
func (r *AssociationRepository) Names(ctx context.Context, movieID int64, kind models.Kind) ([]string, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT d.name
		FROM ` + t.join + ` j
		JOIN ` + t.table + ` d ON d.id = j.` + t.column + `
		WHERE j.movie_id = ?
		ORDER BY d.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("query %s associations", kind))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, classify(err, fmt.Sprintf("scan %s association", kind))
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, fmt.Sprintf("iterate %s associations", kind))
	}

	return names, nil
}

// DeleteAll removes every association row of the movie across all kinds. Reference rows are kept.
func (r *AssociationRepository) DeleteAll(ctx context.Context, movieID int64) error {
	for _, kind := range models.Kinds {
		t := tables[kind]
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+t.join+" WHERE movie_id = ?", movieID); err != nil {
			return classify(err, fmt.Sprintf("delete %s associations", kind))
		}
	}
	return nil
}
