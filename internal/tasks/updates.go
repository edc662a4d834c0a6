package tasks

import (
	"fmt"

	"github.com/desertthunder/cinedb/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or HTTP layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadCatalog Phase = iota
	ImportMovies
	ImportDone
)

func (p Phase) String() string {
	switch p {
	case LoadCatalog:
		return "load_catalog"
	case ImportMovies:
		return "import_movies"
	case ImportDone:
		return "import_done"
	default:
		return ""
	}
}

func startImportUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCatalog,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d movie(s)...", total),
	}
}

func importedUpdate(step, total int, res EntryResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (ID: %d)", step, total, res.Title, res.MovieID),
		Data:    res,
	}
}

func importFailedUpdate(step, total int, res EntryResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Title, res.Error),
		Data:    res,
	}
}

func importDoneUpdate(result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Imported %d of %d movie(s), %d failed", result.Succeeded, result.Total, result.Failed),
		Data:    result,
	}
}

func entryTitle(entry models.CatalogEntry) string {
	if entry.Title == "" {
		return "(untitled)"
	}
	return entry.Title
}
