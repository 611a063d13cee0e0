package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/urfave/cli/v3"
)

// PieceActive prints the active piece ID, or a notice when none is active.
func (r *Runner) PieceActive(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.Service()
	if err != nil {
		return err
	}

	id, ok, err := svc.ActivePiece(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active piece: %w", err)
	}
	if !ok {
		return r.writePlain("No active piece\n")
	}
	return r.writePlain("%s\n", id)
}

// PieceActivate marks the piece named by the id argument active.
func (r *Runner) PieceActivate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: piece id", shared.ErrMissingArgument)
	}

	svc, err := r.Service()
	if err != nil {
		return err
	}

	if err := svc.MarkActivePiece(ctx, id); err != nil {
		return fmt.Errorf("failed to mark piece active: %w", err)
	}
	r.logger.Info("marked piece active", "id", id)
	return r.writePlain("✓ Active piece: %s\n", id)
}
