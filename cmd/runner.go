package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/repositories"
	"github.com/desertthunder/curator/internal/services"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/desertthunder/curator/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and everything built on it are opened lazily by [Runner.open], so commands
// like setup run without a database.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	ownsDB     bool
	taxonomy   services.Taxonomy
	catalog    *repositories.CatalogRepository
	engine     *tasks.EditEngine
	seeder     *tasks.Seeder
}

// RunnerOpts contains configuration options for creating a Runner.
//
// DB and Taxonomy are optional; when nil they are built from the config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Taxonomy   services.Taxonomy
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		taxonomy:   opts.Taxonomy,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "curator",
		Usage:   "Curate themed product collections and publish them to the storefront",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, seedCommand, catalogCommand, editsCommand, reviewCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the file named by --config. A missing file keeps the defaults.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
		config, err := shared.LoadConfig(path)
		switch {
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return ctx, err
		default:
			r.config = config
		}
	}

	level := r.config.Log.Level
	if override := cmd.String("log-level"); override != "" {
		level = override
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// SetLogger replaces the logger, e.g. to send logs to a file while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// open connects to the database, runs migrations and builds the engine. Safe to call more than once.
func (r *Runner) open() error {
	if r.engine != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.db = db
		r.ownsDB = true
	}

	if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if r.taxonomy == nil {
		r.taxonomy = services.NewTaxonomyService(r.config.Taxonomy)
	}

	edits := repositories.NewEditRepository(r.db)
	r.catalog = repositories.NewCatalogRepository(r.db)
	matcher := tasks.NewMatcher(r.catalog, r.config.Matcher, shared.WithLogger(r.logger, "component", "matcher"))
	r.engine = tasks.NewEditEngine(
		edits,
		repositories.NewMembershipRepository(r.db),
		r.taxonomy,
		matcher,
		r.config.Sync,
		shared.WithLogger(r.logger, "component", "engine"),
	)
	r.seeder = tasks.NewSeeder(edits, shared.WithLogger(r.logger, "component", "seeder"))
	return nil
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.ownsDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withProgress runs op with a progress channel whose updates are printed as they arrive.
// Printing finishes before withProgress returns.
func (r *Runner) withProgress(op func(progress chan<- tasks.ProgressUpdate)) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ScanCatalog, tasks.CreateTerm:
				r.writePlain("%s\n", update.Message)
			case tasks.Batch:
				r.writePlain("\n[%d/%d] %s\n", update.Step, update.Total, update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	op(progressCh)
	close(progressCh)
	<-done
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

func (r *Runner) writeSummary(title string, s *tasks.Summary) {
	r.writePlainHeader(title)
	r.writePlain("Changed: %d\n", s.Added)
	r.writePlain("Skipped: %d\n", s.Skipped)
	r.writePlain("Failed:  %d\n", s.Failed)
	r.writePlain("Total:   %d\n", s.Total)
	if len(s.Errors) > 0 {
		r.writePlainln("Errors:")
		for _, e := range s.Errors {
			r.writePlain("  - %s\n", e)
		}
	}
}
