// package tasks implements bulk catalog imports.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/HTTP layers.
package tasks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

const (
	defaultWorkers = 1
	maxWorkers     = 8
)

// Saver stores a movie and its associations atomically; satisfied by services.Catalog.
type Saver interface {
	Save(ctx context.Context, movie models.Movie, desired models.Associations) (int64, error)
}

// ImportOpts configures an [Importer].
type ImportOpts struct {
	Workers   int     // Concurrent savers (default: 1, max: 8)
	RateLimit float64 // Saves per second; zero means unlimited
}

// EntryResult is the outcome of importing one catalog entry.
type EntryResult struct {
	Index   int    // Position in the input
	Title   string // Entry title
	MovieID int64  // Stored movie ID, zero on failure
	Error   error  // Error if the save failed
}

// ImportResult summarizes a bulk import. Results are ordered by input position.
type ImportResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []EntryResult
}

// Failures returns the failed entries
func (r *ImportResult) Failures() []EntryResult {
	var failed []EntryResult
	for _, res := range r.Results {
		if res.Error != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Importer saves catalog entries through a [Saver], one transaction per entry.
type Importer struct {
	saver Saver
	opts  ImportOpts
}

// NewImporter creates an [Importer], clamping the worker count into range.
func NewImporter(saver Saver, opts ImportOpts) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	return &Importer{saver: saver, opts: opts}
}

type importJob struct {
	index int
	entry models.CatalogEntry
}

// Import saves every entry and reports progress on the optional channel.
//
// A failing entry is recorded in the result and the batch continues. Each entry is saved atomically, so a
// failed entry leaves nothing behind. When ctx is cancelled the entries not yet saved are recorded as
// failed with the context error, which is also returned.
func (i *Importer) Import(ctx context.Context, entries []models.CatalogEntry, progress chan<- ProgressUpdate) (*ImportResult, error) {
	result := &ImportResult{
		Total:   len(entries),
		Results: make([]EntryResult, 0, len(entries)),
	}

	var limiter *rate.Limiter
	if i.opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(i.opts.RateLimit), 1)
	}

	jobs := make(chan importJob, len(entries))
	results := make(chan EntryResult, len(entries))

	var wg sync.WaitGroup
	for w := 0; w < i.opts.Workers; w++ {
		wg.Add(1)
		go i.worker(ctx, &wg, limiter, jobs, results)
	}

	sendProgress(progress, startImportUpdate(len(entries)))

	for idx, entry := range entries {
		jobs <- importJob{index: idx, entry: entry}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error == nil {
			result.Succeeded++
			sendProgress(progress, importedUpdate(completed, len(entries), res))
		} else {
			result.Failed++
			sendProgress(progress, importFailedUpdate(completed, len(entries), res))
		}
	}

	sort.Slice(result.Results, func(a, b int) bool {
		return result.Results[a].Index < result.Results[b].Index
	})

	sendProgress(progress, importDoneUpdate(result))
	return result, ctx.Err()
}

// worker saves entries from the jobs channel until it is drained.
func (i *Importer) worker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan importJob, results chan<- EntryResult) {
	defer wg.Done()

	for job := range jobs {
		res := EntryResult{Index: job.index, Title: entryTitle(job.entry)}

		if err := ctx.Err(); err != nil {
			res.Error = err
			results <- res
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				res.Error = err
				results <- res
				continue
			}
		}

		movie := job.entry.Movie
		movie.ID = 0
		res.MovieID, res.Error = i.saver.Save(ctx, movie, job.entry.AssociationSet.Map())
		results <- res
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// LoadCatalogFile reads and parses a YAML catalog file
func LoadCatalogFile(path string) ([]models.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML sequence of catalog entries.
//
// Each entry holds the movie fields and optional genres, directors, actors and studios lists. A list that
// is left out keeps that kind untouched and an explicit empty list clears it.
func ParseCatalog(data []byte) ([]models.CatalogEntry, error) {
	var entries []models.CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog: %v", shared.ErrInvalidInput, err)
	}
	return entries, nil
}
