package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/desertthunder/practicebook/internal/telemetry"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The service is resolved on first use: an [services.APIService] when a remote URL is configured,
// otherwise a [services.LocalService] over the configured database.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.Service
	broker     *telemetry.Broker
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		broker:     telemetry.NewBroker(),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, regimentCommand, pieceCommand, bpmCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --remote.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, err
	}
	if remote := cmd.String("remote"); remote != "" {
		config.Server.RemoteURL = remote
	}

	r.config = config
	r.configPath = path
	return ctx, nil
}

// SetLogger replaces the logger used by the runner.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Service returns the configured backend, opening it on first use.
func (r *Runner) Service() (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	if url := r.config.Server.RemoteURL; url != "" {
		r.logger.Debug("using remote backend", "url", url)
		r.service = services.NewAPIService(url, r.httpClient)
		return r.service, nil
	}

	local, err := r.localService()
	if err != nil {
		return nil, err
	}
	r.service = local
	return r.service, nil
}

func (r *Runner) localService() (*services.LocalService, error) {
	if local, ok := r.service.(*services.LocalService); ok {
		return local, nil
	}

	db, err := shared.SetupDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	r.db = db
	r.logger.Debug("opened database", "driver", r.config.Database.Driver, "path", r.config.Database.Path)
	return services.NewLocalService(db, r.broker, r.logger), nil
}

// Close releases the database and the broker.
func (r *Runner) Close() error {
	r.broker.Close()
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
