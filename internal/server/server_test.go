package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/services"
	"github.com/desertthunder/cinedb/internal/shared"
	"github.com/desertthunder/cinedb/internal/tasks"
	tu "github.com/desertthunder/cinedb/internal/testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.Catalog) {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	catalog := services.NewCatalog(tu.NewTestDB(t), logger)

	ts := httptest.NewServer(New(catalog, logger, tasks.ImportOpts{Workers: 2}).Routes())
	t.Cleanup(ts.Close)
	return ts, catalog
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

const duneBody = `{
	"title": "Dune",
	"release_date": "2021-10-22",
	"duration_minutes": 155,
	"budget": 165000000,
	"genres": ["Sci-Fi", "Adventure"],
	"directors": ["Denis Villeneuve"],
	"actors": [],
	"studios": ["Legendary"]
}`

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestRequestIDPassthrough(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestMovieRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Create", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/movies", duneBody)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		got := decode[models.MovieDetails](t, resp)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, []string{"Adventure", "Sci-Fi"}, got.Genres)
		assert.Equal(t, []string{"Denis Villeneuve"}, got.Directors)
		assert.Empty(t, got.Actors)
		assert.Equal(t, []string{"Legendary"}, got.Studios)
	})

	t.Run("Get", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/movies/1", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Dune", decode[models.MovieDetails](t, resp).Title)
	})

	t.Run("Search", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/movies?q=dun", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]models.MovieDetails](t, resp), 1)

		resp = do(t, ts, http.MethodGet, "/api/movies?q=alien", "")
		assert.Empty(t, decode[[]models.MovieDetails](t, resp))
	})

	t.Run("ExportCSV", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/movies?format=csv", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "ID,Title"))
	})

	t.Run("ExportUnknownFormat", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/movies?format=xml", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UpdateLeavesAbsentKinds", func(t *testing.T) {
		body := `{"title": "Dune: Part One", "duration_minutes": 155, "budget": 165000000, "genres": ["Sci-Fi"]}`
		resp := do(t, ts, http.MethodPut, "/api/movies/1", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decode[models.MovieDetails](t, resp)
		assert.Equal(t, "Dune: Part One", got.Title)
		assert.Equal(t, []string{"Sci-Fi"}, got.Genres)
		assert.Equal(t, []string{"Denis Villeneuve"}, got.Directors)
	})

	t.Run("ReplaceAssociations", func(t *testing.T) {
		resp := do(t, ts, http.MethodPut, "/api/movies/1/associations", `{"genres": [], "actors": ["Zendaya", "Timothée Chalamet"]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		got := decode[models.MovieDetails](t, resp)
		assert.Empty(t, got.Genres)
		assert.Equal(t, []string{"Timothée Chalamet", "Zendaya"}, got.Actors)
		assert.Equal(t, []string{"Legendary"}, got.Studios)
	})

	t.Run("Delete", func(t *testing.T) {
		resp := do(t, ts, http.MethodDelete, "/api/movies/1", "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = do(t, ts, http.MethodGet, "/api/movies/1", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMovieErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"InvalidJSON", http.MethodPost, "/api/movies", `{"title":`, http.StatusBadRequest},
		{"UnknownField", http.MethodPost, "/api/movies", `{"title": "Dune", "rating": 9}`, http.StatusBadRequest},
		{"TrailingValue", http.MethodPost, "/api/movies", `{"title": "Dune", "duration_minutes": 1} {}`, http.StatusBadRequest},
		{"ClientID", http.MethodPost, "/api/movies", `{"id": 4, "title": "Dune", "duration_minutes": 1}`, http.StatusBadRequest},
		{"Validation", http.MethodPost, "/api/movies", `{"title": "", "duration_minutes": 155}`, http.StatusBadRequest},
		{"BlankAssociation", http.MethodPost, "/api/movies", `{"title": "Dune", "duration_minutes": 155, "genres": [" "]}`, http.StatusBadRequest},
		{"BadID", http.MethodGet, "/api/movies/abc", "", http.StatusBadRequest},
		{"NegativeID", http.MethodGet, "/api/movies/-1", "", http.StatusBadRequest},
		{"MissingMovie", http.MethodGet, "/api/movies/99", "", http.StatusNotFound},
		{"UpdateMissing", http.MethodPut, "/api/movies/99", `{"title": "Dune", "duration_minutes": 155}`, http.StatusNotFound},
		{"ReplaceMissing", http.MethodPut, "/api/movies/99/associations", `{"genres": ["Drama"]}`, http.StatusNotFound},
		{"DeleteMissing", http.MethodDelete, "/api/movies/99", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decode[errorPayload](t, resp).Error)
		})
	}

	t.Run("FailedCreateLeavesNothing", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/movies", "")
		assert.Empty(t, decode[[]models.MovieDetails](t, resp))
	})
}

func TestReferenceRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/references/genres", `{"name": "Drama"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drama := decode[models.Reference](t, resp)
	assert.Equal(t, models.Genre, drama.Kind)

	t.Run("ResolveIsIdempotent", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/references/genre", `{"name": "Drama"}`)
		assert.Equal(t, drama.ID, decode[models.Reference](t, resp).ID)
	})

	t.Run("List", func(t *testing.T) {
		do(t, ts, http.MethodPost, "/api/references/genre", `{"name": "Comedy"}`)
		resp := do(t, ts, http.MethodGet, "/api/references/genre", "")
		refs := decode[[]models.Reference](t, resp)
		require.Len(t, refs, 2)
		assert.Equal(t, "Comedy", refs[0].Name)
	})

	t.Run("Rename", func(t *testing.T) {
		resp := do(t, ts, http.MethodPatch, fmt.Sprintf("/api/references/genre/%d", drama.ID), `{"name": "Melodrama"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Melodrama", decode[models.Reference](t, resp).Name)
	})

	t.Run("RenameDuplicate", func(t *testing.T) {
		resp := do(t, ts, http.MethodPatch, fmt.Sprintf("/api/references/genre/%d", drama.ID), `{"name": "Comedy"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("DeleteInUse", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/movies", `{"title": "Up", "duration_minutes": 96, "genres": ["Melodrama"]}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = do(t, ts, http.MethodDelete, fmt.Sprintf("/api/references/genre/%d", drama.ID), "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("DeleteUnused", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/references/genre", "")
		var comedy models.Reference
		for _, ref := range decode[[]models.Reference](t, resp) {
			if ref.Name == "Comedy" {
				comedy = ref
			}
		}
		require.NotZero(t, comedy.ID)

		resp = do(t, ts, http.MethodDelete, fmt.Sprintf("/api/references/genre/%d", comedy.ID), "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/references/composers", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("BlankName", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/references/studio", `{"name": "  "}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestReviewAndUserRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/movies", duneBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/users", `{"username": "paul", "email": "paul@arrakis.test"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	paul := decode[models.User](t, resp)
	assert.NotZero(t, paul.ID)
	assert.NotEmpty(t, paul.JoinDate)

	t.Run("DuplicateEmail", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/users", `{"username": "usul", "email": "paul@arrakis.test"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("AddReview", func(t *testing.T) {
		body := fmt.Sprintf(`{"user_id": %d, "rating": 9.5, "comment": "Spice", "review_date": "2024-03-01"}`, paul.ID)
		resp := do(t, ts, http.MethodPost, "/api/movies/1/reviews", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, 9.5, decode[models.Review](t, resp).Rating)

		resp = do(t, ts, http.MethodGet, "/api/movies/1/reviews", "")
		reviews := decode[[]models.ReviewDetails](t, resp)
		require.Len(t, reviews, 1)
		assert.Equal(t, "paul@arrakis.test", reviews[0].Email)
	})

	t.Run("ReviewErrors", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/movies/1/reviews", fmt.Sprintf(`{"user_id": %d, "rating": 11}`, paul.ID))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = do(t, ts, http.MethodPost, "/api/movies/1/reviews", `{"user_id": 42, "rating": 5}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = do(t, ts, http.MethodGet, "/api/movies/42/reviews", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("DeleteUser", func(t *testing.T) {
		resp := do(t, ts, http.MethodDelete, fmt.Sprintf("/api/users/%d", paul.ID), "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = do(t, ts, http.MethodGet, "/api/movies/1/reviews", "")
		assert.Empty(t, decode[[]models.ReviewDetails](t, resp))

		resp = do(t, ts, http.MethodGet, "/api/users", "")
		assert.Empty(t, decode[[]models.User](t, resp))
	})
}

func TestImportRoute(t *testing.T) {
	ts, catalog := newTestServer(t)

	catalogYAML := `
- title: Dune
  duration_minutes: 155
  genres: [Sci-Fi]
- title: Arrival
  duration_minutes: 116
  directors: [Denis Villeneuve]
- title: ""
  duration_minutes: 10
`

	resp := do(t, ts, http.MethodPost, "/api/movies/import", catalogYAML)
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)

	got := decode[importResponse](t, resp)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.NotEmpty(t, got.Results[2].Error)

	movies, err := catalog.Movies(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	t.Run("MalformedYAML", func(t *testing.T) {
		resp := do(t, ts, http.MethodPost, "/api/movies/import", "- title: [")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

type failingCatalog struct {
	*services.Catalog
}

func (failingCatalog) Ping(context.Context) error {
	return fmt.Errorf("%w: disk gone", shared.ErrPersistence)
}

func (failingCatalog) Users(context.Context) ([]models.User, error) {
	return nil, fmt.Errorf("%w: secret path /var/db", shared.ErrPersistence)
}

func TestServerErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := shared.NewLogger(&logs)
	catalog := failingCatalog{services.NewCatalog(tu.NewTestDB(t), logger)}

	ts := httptest.NewServer(New(catalog, logger, tasks.ImportOpts{}).Routes())
	defer ts.Close()

	t.Run("HealthUnavailable", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("InternalErrorHidden", func(t *testing.T) {
		resp := do(t, ts, http.MethodGet, "/api/users", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		payload := decode[errorPayload](t, resp)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), payload.Error)
		assert.Contains(t, logs.String(), "secret path")
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", shared.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: x", shared.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: x", shared.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: x", shared.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x", shared.ErrConstraint), http.StatusConflict},
		{fmt.Errorf("%w: x", shared.ErrPersistence), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	catalog := services.NewCatalog(tu.NewTestDB(t), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(catalog, logger, tasks.ImportOpts{}).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()
	assert.NoError(t, <-done)
}
