package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

var kindFlags = map[models.Kind]string{
	models.Genre:    "genre",
	models.Director: "director",
	models.Actor:    "actor",
	models.Studio:   "studio",
}

// parseID parses a positional ID argument.
func parseID(name, raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

func intFlag(cmd *cli.Command, name string) (int, error) {
	raw := strings.TrimSpace(cmd.String(name))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: --%s must be a whole number, got %q", shared.ErrInvalidFlag, name, raw)
	}
	return n, nil
}

func floatFlag(cmd *cli.Command, name string) (float64, error) {
	raw := strings.TrimSpace(cmd.String(name))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: --%s must be a number, got %q", shared.ErrInvalidFlag, name, raw)
	}
	return f, nil
}

// applyMovieFlags copies the scalar flags that were given onto movie.
func applyMovieFlags(cmd *cli.Command, movie *models.Movie) error {
	if cmd.IsSet("title") {
		movie.Title = cmd.String("title")
	}
	if cmd.IsSet("release-date") {
		movie.ReleaseDate = strings.TrimSpace(cmd.String("release-date"))
	}
	if cmd.IsSet("duration") {
		d, err := intFlag(cmd, "duration")
		if err != nil {
			return err
		}
		movie.DurationMinutes = d
	}
	if cmd.IsSet("budget") {
		b, err := floatFlag(cmd, "budget")
		if err != nil {
			return err
		}
		movie.Budget = b
	}
	return nil
}

// associationsFromFlags builds the desired association sets from the kind flags that were given.
//
// Empty values are dropped, so --genre "" yields an empty (clearing) genre set.
func associationsFromFlags(cmd *cli.Command) models.Associations {
	desired := models.Associations{}
	for _, kind := range models.Kinds {
		flag := kindFlags[kind]
		if !cmd.IsSet(flag) {
			continue
		}

		names := []string{}
		for _, n := range cmd.StringSlice(flag) {
			if strings.TrimSpace(n) != "" {
				names = append(names, n)
			}
		}
		desired[kind] = names
	}
	return desired
}
