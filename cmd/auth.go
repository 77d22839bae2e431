package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with email and password and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	var err error
	if email == "" {
		if email, err = r.prompt("Email"); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = r.prompt("Password"); err != nil {
			return err
		}
	}

	user, err := r.session.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	name := user.Nickname
	if name == "" {
		name = user.Email
	}
	return r.writePlain("✓ Signed in as %s (user %d)\n", name, user.ID)
}

// AuthRegister creates an account. It does not sign in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.prompt("Password"); err != nil {
			return err
		}
	}

	if err := r.session.Register(ctx, cmd.String("email"), password, cmd.String("nickname")); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.writePlain("✓ Account created\n")
	return r.writePlain("Run 'listify auth login --email %s' to sign in\n", cmd.String("email"))
}

// AuthLogout forgets the stored session. The backend is not contacted.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus verifies the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	err := r.requireSession(ctx)
	user, _ := r.session.User()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": err == nil,
			"user":          user,
			"backend":       r.api.BaseURL(),
		}, cmd.Bool("pretty"))
	}

	r.writePlain("Backend: %s\n", r.api.BaseURL())
	if err != nil {
		r.logger.Debug("session check failed", "error", err)
		r.writePlain("Authentication: ✗ Not signed in\n")
		return nil
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	r.writePlain("User: %d", user.ID)
	if user.Nickname != "" {
		r.writePlain(" (%s)", user.Nickname)
	}
	if user.Email != "" {
		r.writePlain(" <%s>", user.Email)
	}
	return r.writePlain("\n")
}
