package tasks

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/services"
	"github.com/desertthunder/cinedb/internal/shared"
	tu "github.com/desertthunder/cinedb/internal/testing"
)

const catalogYAML = `
- title: Dune
  release_date: "2021-10-22"
  duration_minutes: 155
  budget: 165000000
  genres: [Sci-Fi, Adventure]
  directors: [Denis Villeneuve]
  actors: []
  studios: [Legendary]
- title: Arrival
  duration_minutes: 116
  genres: [Sci-Fi]
- title: ""
  duration_minutes: 90
`

type mockSaver struct {
	mu    sync.Mutex
	calls []models.Associations
	fail  map[string]error
	next  int64
}

func (m *mockSaver) Save(ctx context.Context, movie models.Movie, desired models.Associations) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, desired)
	if err, ok := m.fail[movie.Title]; ok {
		return 0, err
	}
	m.next++
	return m.next, nil
}

func TestParseCatalog(t *testing.T) {
	t.Run("Entries", func(t *testing.T) {
		entries, err := ParseCatalog([]byte(catalogYAML))
		if err != nil {
			t.Fatalf("failed to parse catalog: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		dune := entries[0]
		if dune.Title != "Dune" || dune.ReleaseDate != "2021-10-22" || dune.DurationMinutes != 155 || dune.Budget != 165000000 {
			t.Errorf("unexpected movie fields %+v", dune.Movie)
		}

		assocs := dune.AssociationSet.Map()
		if len(assocs) != 4 {
			t.Errorf("expected all four kinds present, got %v", assocs)
		}
		if names, ok := assocs[models.Actor]; !ok || len(names) != 0 {
			t.Errorf("expected explicit empty actor list, got %v (present: %v)", names, ok)
		}
	})

	t.Run("OmittedKindsAbsent", func(t *testing.T) {
		entries, err := ParseCatalog([]byte(catalogYAML))
		if err != nil {
			t.Fatalf("failed to parse catalog: %v", err)
		}

		assocs := entries[1].AssociationSet.Map()
		if len(assocs) != 1 {
			t.Errorf("expected only genres present, got %v", assocs)
		}
		if _, ok := assocs[models.Director]; ok {
			t.Error("expected directors to be absent")
		}
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		_, err := ParseCatalog([]byte("title: [unterminated"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("NonFiniteBudget", func(t *testing.T) {
		entries, err := ParseCatalog([]byte("- title: X\n  duration_minutes: 90\n  budget: .nan\n- title: Y\n  duration_minutes: 90\n  budget: .inf\n"))
		if err != nil {
			t.Fatalf("failed to parse catalog: %v", err)
		}
		for _, entry := range entries {
			if err := entry.Movie.Validate(); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for budget %v, got %v", entry.Budget, err)
			}
		}
	})

	t.Run("LoadFile", func(t *testing.T) {
		path := tu.MustWriteFile(t, "catalog.yaml", catalogYAML)

		entries, err := LoadCatalogFile(path)
		if err != nil {
			t.Fatalf("failed to load catalog: %v", err)
		}
		if len(entries) != 3 {
			t.Errorf("expected 3 entries, got %d", len(entries))
		}

		if _, err := LoadCatalogFile(path + ".missing"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestImporter(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsFailuresAndContinues", func(t *testing.T) {
		saver := &mockSaver{fail: map[string]error{"Arrival": errors.New("boom")}}
		entries, _ := ParseCatalog([]byte(catalogYAML))

		result, err := NewImporter(saver, ImportOpts{}).Import(ctx, entries, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Total != 3 || result.Succeeded != 2 || result.Failed != 1 {
			t.Errorf("unexpected summary %+v", result)
		}
		failures := result.Failures()
		if len(failures) != 1 || failures[0].Title != "Arrival" || failures[0].Index != 1 {
			t.Errorf("unexpected failures %+v", failures)
		}
		if result.Results[2].Title != "(untitled)" {
			t.Errorf("expected placeholder title, got %q", result.Results[2].Title)
		}
	})

	t.Run("OrderedResultsWithWorkers", func(t *testing.T) {
		saver := &mockSaver{}
		entries := make([]models.CatalogEntry, 20)
		for i := range entries {
			entries[i].Title = strings.Repeat("x", i+1)
			entries[i].DurationMinutes = 90
		}

		result, err := NewImporter(saver, ImportOpts{Workers: 4}).Import(ctx, entries, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, res := range result.Results {
			if res.Index != i {
				t.Fatalf("expected result %d at position %d", res.Index, i)
			}
		}
		if len(saver.calls) != 20 {
			t.Errorf("expected 20 saves, got %d", len(saver.calls))
		}
	})

	t.Run("Progress", func(t *testing.T) {
		saver := &mockSaver{}
		entries, _ := ParseCatalog([]byte(catalogYAML))
		progress := make(chan ProgressUpdate, 16)

		if _, err := NewImporter(saver, ImportOpts{}).Import(ctx, entries, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}

		if len(phases) != 5 {
			t.Fatalf("expected 5 updates, got %d", len(phases))
		}
		if phases[0] != LoadCatalog || phases[4] != ImportDone {
			t.Errorf("unexpected phase order %v", phases)
		}
	})

	t.Run("ProgressNonBlocking", func(t *testing.T) {
		saver := &mockSaver{}
		entries, _ := ParseCatalog([]byte(catalogYAML))
		progress := make(chan ProgressUpdate)

		if _, err := NewImporter(saver, ImportOpts{}).Import(ctx, entries, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		saver := &mockSaver{}
		entries, _ := ParseCatalog([]byte(catalogYAML))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := NewImporter(saver, ImportOpts{}).Import(cctx, entries, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result.Failed != 3 || len(saver.calls) != 0 {
			t.Errorf("expected every entry skipped, got %+v with %d saves", result, len(saver.calls))
		}
	})

	t.Run("WorkerClamp", func(t *testing.T) {
		if got := NewImporter(&mockSaver{}, ImportOpts{Workers: 100}).opts.Workers; got != maxWorkers {
			t.Errorf("expected %d workers, got %d", maxWorkers, got)
		}
		if got := NewImporter(&mockSaver{}, ImportOpts{Workers: -1}).opts.Workers; got != defaultWorkers {
			t.Errorf("expected %d workers, got %d", defaultWorkers, got)
		}
	})
}

func TestImporterWithCatalog(t *testing.T) {
	ctx := context.Background()
	db := tu.NewTestDB(t)
	catalog := services.NewCatalog(db, shared.NewLogger(io.Discard))

	entries, err := ParseCatalog([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("failed to parse catalog: %v", err)
	}

	result, err := NewImporter(catalog, ImportOpts{Workers: 2, RateLimit: 1000}).Import(ctx, entries, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("unexpected summary %+v", result)
	}
	if !errors.Is(result.Results[2].Error, shared.ErrValidation) {
		t.Errorf("expected the untitled entry to fail validation, got %v", result.Results[2].Error)
	}

	movie, err := catalog.MovieByTitle(ctx, "Dune")
	if err != nil {
		t.Fatalf("failed to find imported movie: %v", err)
	}
	if len(movie.Genres) != 2 || len(movie.Directors) != 1 || len(movie.Studios) != 1 || len(movie.Actors) != 0 {
		t.Errorf("unexpected associations %+v", movie)
	}

	if n := tu.CountRows(t, db, "genres"); n != 2 {
		t.Errorf("expected Sci-Fi shared between movies, got %d genres", n)
	}
	if n := tu.CountRows(t, db, "movies"); n != 2 {
		t.Errorf("expected 2 movies, got %d", n)
	}
}
