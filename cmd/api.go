package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/shared"
)

// APIGet makes a direct GET request.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(ctx, cmd, http.MethodGet)
}

// APIPost makes a direct POST request with an optional JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(ctx, cmd, http.MethodPost)
}

// APIPut makes a direct PUT request with an optional JSON body.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(ctx, cmd, http.MethodPut)
}

// APIDelete makes a direct DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(ctx, cmd, http.MethodDelete)
}

// apiCall sends the request with the stored session (if any) and prints the envelope.
func (r *Runner) apiCall(ctx context.Context, cmd *cli.Command, method string) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body any
	if data := cmd.String("data"); data != "" {
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(data), &raw); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
		body = raw
	}

	if err := r.session.Restore(ctx); err != nil {
		r.logger.Warn("continuing without a session", "error", err)
	}

	r.logger.Info("api request", "method", method, "path", path)

	resp, err := r.api.Do(ctx, method, path, body)
	if err != nil {
		return err
	}

	if err := r.writeJSON(resp.Envelope, true); err != nil {
		return err
	}
	if !resp.Envelope.Success {
		return fmt.Errorf("%w: status %d: %s", shared.ErrEnvelope, resp.StatusCode, resp.Envelope.Message)
	}
	return nil
}
