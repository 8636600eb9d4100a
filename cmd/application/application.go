// Package application provides the application interface for pimctl commands.
//
// The Application interface is the contract between the App in cmd/pimctl/app
// and the command implementations. Commands accept it rather than the
// concrete App so they can be tested with application.Mock from
// internal/cmd/application.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            rec, err := app.Reconciler()
//	            if err != nil {
//	                return err
//	            }
//	            result, err := rec.Execute(cmd.Context(), args[0], socials.FixAll())
//	            // ... print result
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/pimctl/internal/deps"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/reconciler"
)

// Directory is the read side of the native contact store.
type Directory interface {
	Lookup(ctx context.Context, id string) (*contacts.Contact, error)
	Search(ctx context.Context, query string) ([]contacts.Contact, error)
	SearchByPhone(ctx context.Context, digits string) ([]contacts.Contact, error)
}

// Application provides what commands need from the running program.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Reconciler returns the engine that writes to Contacts.app. It fails
	// with a DependencyError when the automation binary is missing.
	Reconciler() (reconciler.Reconciler, error)

	// Directory returns the read-only address book.
	Directory() (Directory, error)

	// Dependencies lists the external programs the contacts commands drive.
	Dependencies() []deps.Dependency

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
