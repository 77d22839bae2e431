package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/cart"
	"github.com/desertthunder/listify/internal/catalog"
	"github.com/desertthunder/listify/internal/models"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/session"
	"github.com/desertthunder/listify/internal/shared"
	"github.com/desertthunder/listify/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	client     *services.ListifyClient
	session    *session.Store
	catalog    *catalog.Catalog
	cart       *cart.Cart
	engine     *tasks.PlaylistEngine
	kv         session.KV
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	KV         session.KV // defaults to the sqlite database named in Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: time.Duration(opts.Config.API.TimeoutSeconds) * time.Second}
	}
	if opts.KV == nil {
		opts.KV = newSQLiteKV(opts.Config.Database)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		kv:         opts.KV,
		httpClient: opts.HTTPClient,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
	}
	r.SetLogger(opts.Logger)
	return r
}

// SetLogger rebuilds every service around l.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l

	r.api = services.NewAPIService(r.config.API.BaseURL, r.httpClient)
	r.api.SetLogger(shared.WithLogger(l, "component", "api"))
	r.client = services.NewListifyClient(r.api)
	r.session = session.NewStore(r.client, r.kv, shared.WithLogger(l, "component", "session"))
	r.api.SetIdentity(r.session)

	r.catalog = catalog.New(r.client, shared.WithLogger(l, "component", "catalog"))
	if r.cart == nil {
		r.cart = cart.New()
	}
	r.engine = tasks.NewPlaylistEngine(r.client, r.session, tasks.EngineOpts{
		Notifier:        r.noticeLogger(),
		Logger:          shared.WithLogger(l, "component", "engine"),
		AttachRateLimit: r.config.Engine.AttachRateLimit,
	})
}

// noticeLogger reports engine notices through the logger.
func (r *Runner) noticeLogger() tasks.Notifier {
	return tasks.NotifyFunc(func(n models.Notice) {
		switch n.Level {
		case models.NoticeError:
			r.logger.Error(n.Message)
		case models.NoticeWarning:
			r.logger.Warn(n.Message)
		default:
			r.logger.Info(n.Message)
		}
	})
}

// Close releases the session database.
func (r *Runner) Close() error {
	if c, ok := r.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, musicCommand, playlistCommand, profileCommand, accountCommand,
		apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession restores the persisted session and fails if nobody is signed in.
func (r *Runner) requireSession(ctx context.Context) error {
	if r.session.Authenticated() {
		return nil
	}
	if err := r.session.Restore(ctx); err != nil {
		return fmt.Errorf("%w: run 'listify auth login' again", err)
	}
	if !r.session.Authenticated() {
		return fmt.Errorf("%w: run 'listify auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// confirm asks prompt on the runner's input. Only "y" and "yes" agree.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N]: ", prompt)
	line, err := r.input.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// prompt reads one line, printing label first.
func (r *Runner) prompt(label string) (string, error) {
	r.writePlain("%s: ", label)
	line, err := r.input.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimSpace(line), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func (r *Runner) writeTracks(tracks []models.Track) {
	if len(tracks) == 0 {
		r.writePlain("No tracks found\n")
		return
	}
	for _, t := range tracks {
		id := "-"
		if t.HasID() {
			id = fmt.Sprintf("%d", t.MusicNo)
		}
		r.writePlain("%5s  %s - %s\n", id, t.ArtistName, t.Title)
	}
}
