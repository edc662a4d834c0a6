package ui

import (
	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/tasks"
)

type moviesFetchedMsg struct {
	movies []models.MovieDetails
	err    error
}

type reviewsFetchedMsg struct {
	movie   models.MovieDetails
	reviews []models.ReviewDetails
	err     error
}

type movieDeletedMsg struct {
	movieID int64
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type importCompleteMsg struct {
	result *tasks.ImportResult
	err    error
}
