package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/shared"
)

// ProfileShow fetches and prints the signed-in user's profile.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	user, err := r.session.RefreshProfile(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Profile")
	r.writePlain("User:     %d\n", user.ID)
	r.writePlain("Nickname: %s\n", user.Nickname)
	r.writePlain("Email:    %s\n", user.Email)
	if user.ProfileImageURL != "" {
		r.writePlain("Image:    %s\n", user.ProfileImageURL)
	}
	return nil
}

// ProfileUpdate changes the nickname.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	nickname := cmd.String("nickname")
	if err := r.session.UpdateProfile(ctx, nickname); err != nil {
		return err
	}
	return r.writePlain("✓ Nickname changed to %s\n", nickname)
}

// AccountDelete deletes the account after confirmation and signs out.
func (r *Runner) AccountDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if !cmd.Bool("yes") && !r.confirm("Delete your account and all playlists? This cannot be undone.") {
		return shared.ErrNotConfirmed
	}

	if err := r.session.DeleteAccount(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Account deleted\n")
}
