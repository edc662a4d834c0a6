package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
	th "github.com/desertthunder/cinedb/internal/testing"
)

func sampleMovies() []models.MovieDetails {
	return []models.MovieDetails{
		{
			Movie:     models.Movie{ID: 7, Title: "Dune", ReleaseDate: "2021-10-22", DurationMinutes: 155, Budget: 165000000},
			Genres:    []string{"Adventure", "Sci-Fi"},
			Directors: []string{"Denis Villeneuve"},
			Actors:    []string{},
			Studios:   []string{"Legendary"},
		},
		{
			Movie: models.Movie{ID: 8, Title: "Short, Sweet", DurationMinutes: 45},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleMovies())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("CSV output does not parse: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(records))
		}

		if strings.Join(records[0], ",") != "ID,Title,Release Date,Duration,Budget,Genres,Directors,Actors,Studios" {
			t.Errorf("CSV missing headers, got: %v", records[0])
		}
		if records[1][5] != "Adventure; Sci-Fi" {
			t.Errorf("expected joined genres, got %q", records[1][5])
		}
		if records[1][4] != "165000000" {
			t.Errorf("expected plain budget, got %q", records[1][4])
		}
		if records[2][1] != "Short, Sweet" {
			t.Errorf("expected quoted title to round-trip, got %q", records[2][1])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleMovies(), "")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Movie Catalog",
			"**Movies**: 2",
			"## Dune",
			"- **Released**: 2021-10-22",
			"- **Duration**: 2h 35m",
			"- **Budget**: $165,000,000",
			"- **Genres**: Adventure, Sci-Fi",
			"- **Studios**: Legendary",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "**Actors**") {
			t.Error("Markdown should skip empty kinds")
		}
	})

	t.Run("ExportToMarkdownTitle", func(t *testing.T) {
		data, _ := ExportToMarkdown(nil, "Favourites")
		if !strings.HasPrefix(string(data), "# Favourites\n") {
			t.Errorf("expected custom title, got %q", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleMovies())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "1. Dune (2021-10-22) [2h 35m, $165,000,000]") {
			t.Errorf("Text missing first movie line, got:\n%s", output)
		}
		if !strings.Contains(output, "   Directors: Denis Villeneuve") {
			t.Errorf("Text missing directors, got:\n%s", output)
		}
		if !strings.Contains(output, "2. Short, Sweet [45m, $0]") {
			t.Errorf("Text missing second movie line, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleMovies())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.MovieDetails
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("JSON output does not parse: %v", err)
		}
		if len(decoded) != 2 || decoded[0].Title != "Dune" || len(decoded[0].Genres) != 2 {
			t.Errorf("unexpected decoded movies %+v", decoded)
		}
	})
}

func TestExport(t *testing.T) {
	for _, format := range []string{"csv", "markdown", "md", "txt", "text", "json", "JSON", ""} {
		t.Run("Format_"+format, func(t *testing.T) {
			data, err := Export(sampleMovies(), format)
			if err != nil {
				t.Fatalf("Export(%q) failed: %v", format, err)
			}
			if len(data) == 0 {
				t.Errorf("Export(%q) returned no data", format)
			}
		})
	}

	if _, err := Export(sampleMovies(), "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("ExplicitPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.csv")

		written, err := WriteExport(sampleMovies(), FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "ID,Title") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("DefaultFilename", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		written, err := WriteExport(sampleMovies(), FormatMarkdown, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "movies.md" {
			t.Errorf("expected movies.md, got %s", written)
		}
		th.AssertFileExists(t, filepath.Join(tempDir, "movies.md"))
	})

	t.Run("BadDirectory", func(t *testing.T) {
		if _, err := WriteExport(sampleMovies(), FormatText, filepath.Join(t.TempDir(), "missing", "out.txt")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{45, "45m"},
		{60, "1h"},
		{155, "2h 35m"},
		{0, "0m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatBudget(t *testing.T) {
	tests := []struct {
		budget float64
		want   string
	}{
		{0, "$0"},
		{999, "$999"},
		{1000, "$1,000"},
		{165000000, "$165,000,000"},
		{1250.5, "$1,250.50"},
		{12.999, "$13"},
	}

	for _, tt := range tests {
		if got := FormatBudget(tt.budget); got != tt.want {
			t.Errorf("FormatBudget(%v) = %q, want %q", tt.budget, got, tt.want)
		}
	}
}
