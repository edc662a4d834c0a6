// package formatter provides functions to export movie catalog data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

// Supported export formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists the export format names accepted by [Export]
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

const listSeparator = "; "

// ExportToCSV converts movies to CSV with columns: ID, Title, Release Date, Duration, Budget, Genres,
// Directors, Actors, Studios. Associated names are joined with "; ".
func ExportToCSV(movies []models.MovieDetails) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Release Date", "Duration", "Budget", "Genres", "Directors", "Actors", "Studios"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range movies {
		record := []string{
			strconv.FormatInt(movie.ID, 10),
			movie.Title,
			movie.ReleaseDate,
			strconv.Itoa(movie.DurationMinutes),
			strconv.FormatFloat(movie.Budget, 'f', -1, 64),
			strings.Join(movie.Genres, listSeparator),
			strings.Join(movie.Directors, listSeparator),
			strings.Join(movie.Actors, listSeparator),
			strings.Join(movie.Studios, listSeparator),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts movies to a Markdown document with one section per movie
func ExportToMarkdown(movies []models.MovieDetails, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Movie Catalog"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n", len(movies)))

	for _, movie := range movies {
		buf.WriteString(fmt.Sprintf("\n## %s\n\n", movie.Title))

		if movie.ReleaseDate != "" {
			buf.WriteString(fmt.Sprintf("- **Released**: %s\n", movie.ReleaseDate))
		}
		buf.WriteString(fmt.Sprintf("- **Duration**: %s\n", FormatDuration(movie.DurationMinutes)))
		buf.WriteString(fmt.Sprintf("- **Budget**: %s\n", FormatBudget(movie.Budget)))

		for _, kind := range models.Kinds {
			names := movie.Names(kind)
			if len(names) == 0 {
				continue
			}
			buf.WriteString(fmt.Sprintf("- **%s**: %s\n", label(kind), strings.Join(names, ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts movies to plain text format
func ExportToText(movies []models.MovieDetails) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Movies: %d\n", len(movies)))

	for i, movie := range movies {
		buf.WriteString(fmt.Sprintf("\n%d. %s", i+1, movie.Title))
		if movie.ReleaseDate != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", movie.ReleaseDate))
		}
		buf.WriteString(fmt.Sprintf(" [%s, %s]\n", FormatDuration(movie.DurationMinutes), FormatBudget(movie.Budget)))

		for _, kind := range models.Kinds {
			if names := movie.Names(kind); len(names) > 0 {
				buf.WriteString(fmt.Sprintf("   %s: %s\n", label(kind), strings.Join(names, ", ")))
			}
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts movies to indented JSON
func ExportToJSON(movies []models.MovieDetails) ([]byte, error) {
	return shared.MarshalJSON(movies, true)
}

// Export converts movies to the named format
func Export(movies []models.MovieDetails, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(movies)
	case FormatMarkdown, "md":
		return ExportToMarkdown(movies, "")
	case FormatText, "text":
		return ExportToText(movies)
	case FormatJSON, "":
		return ExportToJSON(movies)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteExport exports movies in the given format to path.
//
// Defaults to movies.{ext} as the filename.
func WriteExport(movies []models.MovieDetails, format, path string) (string, error) {
	data, err := Export(movies, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "movies." + extension(format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "csv"
	case FormatMarkdown, "md":
		return "md"
	case FormatText, "text":
		return "txt"
	default:
		return "json"
	}
}

// FormatDuration renders minutes as "2h 35m", or "45m" under an hour
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatBudget renders a budget in dollars with thousands separators, e.g. "$165,000,000" or "$1,250.50"
func FormatBudget(budget float64) string {
	cents := int64(math.Round(budget * 100))
	whole, frac := cents/100, cents%100

	digits := strconv.FormatInt(whole, 10)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	if frac > 0 {
		return fmt.Sprintf("$%s.%02d", grouped.String(), frac)
	}
	return "$" + grouped.String()
}

func label(kind models.Kind) string {
	switch kind {
	case models.Genre:
		return "Genres"
	case models.Director:
		return "Directors"
	case models.Actor:
		return "Actors"
	case models.Studio:
		return "Studios"
	default:
		return kind.String()
	}
}
