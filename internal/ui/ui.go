package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/cinedb/internal/formatter"
	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MovieListView ViewState = iota
	DetailView
	ConfirmView
	ImportView
	ResultView
)

// Catalog is the part of the catalog service the browser needs; satisfied by services.Catalog.
type Catalog interface {
	Movies(ctx context.Context, query string) ([]models.MovieDetails, error)
	Reviews(ctx context.Context, movieID int64) ([]models.ReviewDetails, error)
	DeleteMovie(ctx context.Context, movieID int64) error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	confirmFrom  ViewState
	catalog      Catalog
	importer     *tasks.Importer
	entries      []models.CatalogEntry
	width        int
	height       int
	movieList    list.Model
	reviewList   list.Model
	selected     *models.MovieDetails
	progressChan chan tasks.ProgressUpdate
	importDone   chan importCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.ImportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI model. When entries is non-empty the model imports them first and then offers to
// browse the catalog.
func NewModel(ctx context.Context, catalog Catalog, importer *tasks.Importer, entries []models.CatalogEntry) *Model {
	view := MovieListView
	if len(entries) > 0 {
		view = ImportView
	}
	return &Model{
		ctx:        ctx,
		view:       view,
		catalog:    catalog,
		importer:   importer,
		entries:    entries,
		movieList:  list.New(nil, list.NewDefaultDelegate(), 0, 0),
		reviewList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the import when there is one, otherwise loads the movie list.
func (m *Model) Init() tea.Cmd {
	if m.view == ImportView {
		return m.startImport()
	}
	return m.fetchMovies()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movieList.SetSize(msg.Width-4, msg.Height-8)
		m.reviewList.SetSize(msg.Width-4, msg.Height-16)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MovieListView:
			return m.handleMovieListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ImportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case moviesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.movies))
		for i, movie := range msg.movies {
			items[i] = movieItem{movie: movie}
		}
		m.movieList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.movieList.Title = fmt.Sprintf("Movies (%d)", len(msg.movies))
		m.movieList.SetSize(m.width-4, m.height-8)
		m.view = MovieListView
		return m, nil

	case reviewsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = MovieListView
			return m, nil
		}
		movie := msg.movie
		m.selected = &movie
		items := make([]list.Item, len(msg.reviews))
		for i, review := range msg.reviews {
			items[i] = reviewItem{review: review}
		}
		m.reviewList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.reviewList.Title = fmt.Sprintf("Reviews (%d)", len(msg.reviews))
		m.reviewList.SetShowHelp(false)
		m.reviewList.SetSize(m.width-4, m.height-16)
		m.view = DetailView
		return m, nil

	case movieDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = MovieListView
			return m, nil
		}
		m.selected = nil
		return m, m.fetchMovies()

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case importCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.progressChan = nil
		m.importDone = nil
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return Styles.Err(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case MovieListView:
		return m.renderMovieList()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) handleMovieListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.movieList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.movieList, cmd = m.movieList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movieList.SelectedItem().(movieItem); ok {
			return m, m.fetchReviews(item.movie)
		}
		return m, nil
	case key.Matches(msg, m.keys.delete):
		if item, ok := m.movieList.SelectedItem().(movieItem); ok {
			movie := item.movie
			m.selected = &movie
			m.confirmFrom = MovieListView
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = MovieListView
		return m, nil
	case key.Matches(msg, m.keys.delete):
		m.confirmFrom = DetailView
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.reviewList, cmd = m.reviewList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = m.confirmFrom
		return m, nil
	case key.Matches(msg, m.keys.yes):
		if m.selected == nil {
			m.view = MovieListView
			return m, nil
		}
		return m, m.deleteMovie(m.selected.ID)
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.browse):
		m.result = nil
		m.err = nil
		return m, m.fetchMovies()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MovieListView:
		m.movieList, cmd = m.movieList.Update(msg)
	case DetailView:
		m.reviewList, cmd = m.reviewList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchMovies() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.catalog.Movies(m.ctx, "")
		return moviesFetchedMsg{movies: movies, err: err}
	}
}

func (m *Model) fetchReviews(movie models.MovieDetails) tea.Cmd {
	return func() tea.Msg {
		reviews, err := m.catalog.Reviews(m.ctx, movie.ID)
		return reviewsFetchedMsg{movie: movie, reviews: reviews, err: err}
	}
}

func (m *Model) deleteMovie(movieID int64) tea.Cmd {
	return func() tea.Msg {
		return movieDeletedMsg{movieID: movieID, err: m.catalog.DeleteMovie(m.ctx, movieID)}
	}
}

func (m *Model) startImport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan importCompleteMsg, 1)
	m.progressChan = progress
	m.importDone = done

	go func() {
		result, err := m.importer.Import(m.ctx, m.entries, progress)
		close(progress)
		done <- importCompleteMsg{result: result, err: err}
	}()

	return waitForProgress(progress, done)
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progressChan == nil {
		return nil
	}
	return waitForProgress(m.progressChan, m.importDone)
}

// waitForProgress reads the next update; once the channel closes it reports the import outcome.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan importCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderMovieList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.delete, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.movieList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	movie := m.selected

	var b strings.Builder
	b.WriteString(Styles.Title(movie.Title))
	b.WriteString("\n")
	if movie.ReleaseDate != "" {
		fmt.Fprintf(&b, "Released: %s\n", movie.ReleaseDate)
	}
	fmt.Fprintf(&b, "Duration: %s\n", formatter.FormatDuration(movie.DurationMinutes))
	fmt.Fprintf(&b, "Budget:   %s\n", formatter.FormatBudget(movie.Budget))
	for _, kind := range models.Kinds {
		names := movie.Names(kind)
		if len(names) == 0 {
			names = []string{"-"}
		}
		fmt.Fprintf(&b, "%-9s %s\n", kind.String()+"s:", strings.Join(names, ", "))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.delete, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", b.String(), m.reviewList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := Styles.Title(fmt.Sprintf("Delete '%s'?", m.selected.Title))
	info := Styles.Warn("\nIts associations and reviews are removed too. Genres, people and studios are kept.\n")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderImport() string {
	title := Styles.Title("Importing Catalog")

	var phase string
	switch m.progress.Phase {
	case tasks.LoadCatalog:
		phase = fmt.Sprintf("Loading %d entries...", len(m.entries))
	case tasks.ImportMovies:
		phase = fmt.Sprintf("Saving movies (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ImportDone:
		phase = "Finishing..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.browse, m.keys.quit})

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Import failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", Styles.Err(msg), helpView)
	}

	var title string
	if m.result.Failed == 0 && m.err == nil {
		title = Styles.OK("✓ Import Complete!")
	} else {
		title = Styles.Warn("Import finished with errors")
	}
	info := fmt.Sprintf("\nImported: %d/%d\nFailed: %d", m.result.Succeeded, m.result.Total, m.result.Failed)

	var failed string
	if m.result.Failed > 0 {
		failed = "\n"
		for _, res := range m.result.Failures() {
			failed += fmt.Sprintf("\n  • #%d %s: %v", res.Index+1, res.Title, res.Error)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
