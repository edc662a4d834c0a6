package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/models"
	"github.com/desertthunder/cinedb/internal/shared"
)

// ReferenceList prints every reference of kind, ordered by name.
func (r *Runner) ReferenceList(kind models.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		catalog, err := r.Catalog(ctx)
		if err != nil {
			return err
		}

		refs, err := catalog.References(ctx, kind)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(refs, cmd.Bool("pretty"))
		}

		if len(refs) == 0 {
			return r.writePlain("No %ss found\n", kind)
		}
		for _, ref := range refs {
			r.writePlain("%4d  %s\n", ref.ID, ref.Name)
		}
		return nil
	}
}

// ReferenceAdd resolves the name, creating the reference when it does not exist yet.
func (r *Runner) ReferenceAdd(kind models.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		name := cmd.StringArg("name")
		if name == "" {
			return fmt.Errorf("%w: %s name", shared.ErrMissingArgument, kind)
		}

		catalog, err := r.Catalog(ctx)
		if err != nil {
			return err
		}

		id, err := catalog.Resolve(ctx, kind, name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", kind, err)
		}

		return r.writeOK("%s %q (ID: %d)", kind, name, id)
	}
}

// ReferenceRename renames a reference; every linked movie sees the new name.
func (r *Runner) ReferenceRename(kind models.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := parseID("id", cmd.StringArg("id"))
		if err != nil {
			return err
		}
		name := cmd.StringArg("name")
		if name == "" {
			return fmt.Errorf("%w: new %s name", shared.ErrMissingArgument, kind)
		}

		catalog, err := r.Catalog(ctx)
		if err != nil {
			return err
		}

		if err := catalog.RenameReference(ctx, kind, id, name); err != nil {
			return fmt.Errorf("failed to rename %s %d: %w", kind, id, err)
		}

		return r.writeOK("%s %d renamed to %q", kind, id, name)
	}
}

// ReferenceDelete deletes a reference that no movie uses.
func (r *Runner) ReferenceDelete(kind models.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := parseID("id", cmd.StringArg("id"))
		if err != nil {
			return err
		}

		catalog, err := r.Catalog(ctx)
		if err != nil {
			return err
		}

		if err := catalog.DeleteReference(ctx, kind, id); err != nil {
			return fmt.Errorf("failed to delete %s %d: %w", kind, id, err)
		}

		return r.writeOK("%s %d deleted", kind, id)
	}
}
