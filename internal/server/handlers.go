package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/cinedb/internal/formatter"
	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
	"github.com/desertthunder/cinedb/internal/tasks"
)

const maxImportBytes = 8 << 20

type movieRequest struct {
	models.Movie
	models.AssociationSet
}

type nameRequest struct {
	Name string `json:"name"`
}

type reviewRequest struct {
	UserID     int64   `json:"user_id"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment"`
	ReviewDate string  `json:"review_date"`
}

type entryResponse struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	MovieID int64  `json:"movie_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type importResponse struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []entryResponse `json:"results"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.catalog.Movies(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" || format == formatter.FormatJSON {
		writeJSON(w, http.StatusOK, movies)
		return
	}

	data, err := formatter.Export(movies, format)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func contentType(format string) string {
	switch format {
	case formatter.FormatCSV:
		return "text/csv; charset=utf-8"
	case formatter.FormatMarkdown, "md":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (s *Server) createMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := readJSON(w, r, &req); err != nil {
		s.errorJSON(w, r, err)
		return
	}
	if req.ID != 0 {
		s.errorJSON(w, r, fmt.Errorf("%w: id is assigned by the catalog", shared.ErrInvalidInput))
		return
	}

	s.saveMovie(w, r, req, http.StatusCreated)
}

func (s *Server) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	var req movieRequest
	if err := readJSON(w, r, &req); err != nil {
		s.errorJSON(w, r, err)
		return
	}
	req.ID = id

	s.saveMovie(w, r, req, http.StatusOK)
}

func (s *Server) saveMovie(w http.ResponseWriter, r *http.Request, req movieRequest, status int) {
	id, err := s.catalog.Save(r.Context(), req.Movie, req.AssociationSet.Map())
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	details, err := s.catalog.Movie(r.Context(), id)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, status, details)
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	details, err := s.catalog.Movie(r.Context(), id)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	if err := s.catalog.DeleteMovie(r.Context(), id); err != nil {
		s.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) replaceAssociations(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	var req models.AssociationSet
	if err := readJSON(w, r, &req); err != nil {
		s.errorJSON(w, r, err)
		return
	}

	if err := s.catalog.ReplaceAll(r.Context(), id, req.Map()); err != nil {
		s.errorJSON(w, r, err)
		return
	}

	details, err := s.catalog.Movie(r.Context(), id)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) importMovies(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.errorJSON(w, r, fmt.Errorf("%w: failed to read body: %v", shared.ErrInvalidInput, err))
		return
	}

	entries, err := tasks.ParseCatalog(body)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	result, err := tasks.NewImporter(s.catalog, s.importOpts).Import(r.Context(), entries, nil)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	resp := importResponse{
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Results:   make([]entryResponse, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := entryResponse{Index: res.Index, Title: res.Title, MovieID: res.MovieID}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		resp.Results = append(resp.Results, entry)
	}

	status := http.StatusOK
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	reviews, err := s.catalog.Reviews(r.Context(), id)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	movieID, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	var req reviewRequest
	if err := readJSON(w, r, &req); err != nil {
		s.errorJSON(w, r, err)
		return
	}

	review := models.Review{
		MovieID:    movieID,
		UserID:     req.UserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		ReviewDate: req.ReviewDate,
	}
	if review.ReviewDate == "" {
		review.ReviewDate = shared.Today()
	}

	id, err := s.catalog.AddReview(r.Context(), review)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	review.ID = id
	writeJSON(w, http.StatusCreated, review)
}

func kindParam(r *http.Request) (models.Kind, error) {
	return models.ParseKind(chi.URLParam(r, "kind"))
}

func (s *Server) listReferences(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	refs, err := s.catalog.References(r.Context(), kind)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (s *Server) createReference(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		s.errorJSON(w, r, err)
		return
	}

	id, err := s.catalog.Resolve(r.Context(), kind, req.Name)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Reference{ID: id, Kind: kind, Name: req.Name})
}

func (s *Server) renameReference(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		s.errorJSON(w, r, err)
		return
	}

	if err := s.catalog.RenameReference(r.Context(), kind, id, req.Name); err != nil {
		s.errorJSON(w, r, err)
		return
	}

	ref, err := s.catalog.Reference(r.Context(), kind, id)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) deleteReference(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	if err := s.catalog.DeleteReference(r.Context(), kind, id); err != nil {
		s.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.catalog.Users(r.Context())
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := readJSON(w, r, &user); err != nil {
		s.errorJSON(w, r, err)
		return
	}
	if user.ID != 0 {
		s.errorJSON(w, r, fmt.Errorf("%w: id is assigned by the catalog", shared.ErrInvalidInput))
		return
	}

	id, err := s.catalog.AddUser(r.Context(), user)
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	user.ID = id
	if user.JoinDate == "" {
		user.JoinDate = shared.Today()
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.errorJSON(w, r, err)
		return
	}

	if err := s.catalog.DeleteUser(r.Context(), id); err != nil {
		s.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
