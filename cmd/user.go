package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/models"
)

// UserAdd registers a user; the join date is today.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	id, err := catalog.AddUser(ctx, models.User{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
	})
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	return r.writeOK("User %s added (ID: %d)", cmd.String("username"), id)
}

// UserList prints every user.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	users, err := catalog.Users(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	if len(users) == 0 {
		return r.writePlain("No users found\n")
	}
	for _, u := range users {
		r.writePlain("%4d  %-16s %-28s joined %s\n", u.ID, u.Username, u.Email, u.JoinDate)
	}
	return nil
}

// UserDelete removes a user together with their reviews.
func (r *Runner) UserDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	if err := catalog.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	return r.writeOK("User %d deleted", id)
}
