// Package ui implements an interactive terminal catalog browser using bubbletea's Elm architecture.
//
// The TUI moves between these views:
//  1. [ImportView] : Monitor a bulk import while it runs (only when started with catalog entries)
//  2. [ResultView] : Show the import summary and failed entries
//  3. [MovieListView] : Browse and filter movies
//  4. [DetailView] : A movie's associations and reviews
//  5. [ConfirmView] : Confirm deleting the selected movie
//
// The [Model] implements bubbletea's Init/Update/View pattern. Import progress flows through a channel from the
// [tasks.Importer], so the view updates without blocking the workers.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, y/n, q) with contextual help displayed via
// charmbracelet/bubbles/help. [Styles] is also used by the CLI for colored output.
package ui
