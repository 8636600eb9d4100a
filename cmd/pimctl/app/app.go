// Package app provides the application context and dependency management
// for the pimctl CLI. It centralizes configuration, logging, and the lazily
// opened address book and reconciliation engine.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/internal/addressbook"
	"github.com/agentstation/pimctl/internal/deps"
	"github.com/agentstation/pimctl/pkg/bridge"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/reconciler"
)

// App represents the pimctl application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Lazily opened store handles
	mu         sync.Mutex
	book       *addressbook.Book
	directory  application.Directory
	reconciler reconciler.Reconciler
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration loaded from the environment
// and ~/.pimctl.yaml; functional options override it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Dependencies lists the external programs the contacts commands drive.
func (a *App) Dependencies() []deps.Dependency {
	return deps.Defaults(a.config.OSAScriptPath)
}

// Directory returns the address book, opening it on first use.
func (a *App) Directory() (application.Directory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.directoryLocked()
}

func (a *App) directoryLocked() (application.Directory, error) {
	if a.directory != nil {
		return a.directory, nil
	}

	book, err := addressbook.Open(a.config.AddressBookDir)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Strs("sources", book.Sources()).Msg("Opened address book")

	a.book = book
	a.directory = book
	return book, nil
}

// Reconciler returns the reconciliation engine, creating it on first use.
// The automation binary must be installed.
func (a *App) Reconciler() (reconciler.Reconciler, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reconciler != nil {
		return a.reconciler, nil
	}

	if err := deps.Ensure(context.Background(), []deps.Dependency{deps.Bridge(a.config.OSAScriptPath)}); err != nil {
		return nil, err
	}

	directory, err := a.directoryLocked()
	if err != nil {
		return nil, err
	}

	executor := bridge.New(
		bridge.WithBinary(a.config.OSAScriptPath),
		bridge.WithTimeout(a.config.BridgeTimeout),
		bridge.WithMaxOutputBytes(a.config.MaxOutputBytes),
	)

	rec, err := reconciler.New(directory, executor,
		reconciler.WithLookupMode(a.config.LookupMode),
		reconciler.WithVerify(a.config.VerifyWrites),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "reconciler", "", err)
	}

	a.reconciler = rec
	return rec, nil
}

// Shutdown releases the address book connections.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.book == nil {
		return nil
	}
	err := a.book.Close()
	a.book = nil
	a.directory = nil
	a.reconciler = nil
	if err != nil {
		return errors.WrapResource("close", "addressbook", "", err)
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithDirectory sets a custom directory (useful for testing).
func WithDirectory(directory application.Directory) Option {
	return func(a *App) error {
		a.directory = directory
		return nil
	}
}

// WithReconciler sets a custom reconciler (useful for testing).
func WithReconciler(rec reconciler.Reconciler) Option {
	return func(a *App) error {
		a.reconciler = rec
		return nil
	}
}
