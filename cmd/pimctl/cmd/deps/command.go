// Package deps provides the command that checks the external programs
// pimctl drives.
package deps

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/internal/cmd/output"
	"github.com/agentstation/pimctl/internal/deps"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
)

// NewCommand creates the deps command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "deps",
		GroupID: "management",
		Short:   "Check external dependencies",
		Long: `Check that osascript and Contacts.app are available.

Reading contacts only needs the address book database. Every command that
writes, and get, also drive Contacts.app through osascript.`,
		Example: `  pimctl deps           # JSON report
  pimctl deps -o table  # Table view`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, app)
		},
	}
}

// CheckResults aggregates all statuses.
type CheckResults struct {
	Dependencies  []deps.Status `json:"dependencies" yaml:"dependencies"`
	TotalDeps     int           `json:"total_deps" yaml:"total_deps"`
	AvailableDeps int           `json:"available_deps" yaml:"available_deps"`
	MissingDeps   int           `json:"missing_deps" yaml:"missing_deps"`
}

// TableData implements output.Tabular.
func (r CheckResults) TableData() output.Data {
	rows := make([][]string, 0, len(r.Dependencies))
	for _, s := range r.Dependencies {
		status := "✓ available"
		if !s.Available {
			status = "✗ missing"
		}
		detail := s.Path
		if detail == "" {
			detail = s.CheckError
		}
		required := "optional"
		if s.Required {
			required = "required"
		}
		rows = append(rows, []string{s.Name, status, required, detail})
	}
	return output.Data{Headers: []string{"Dependency", "Status", "Required", "Path"}, Rows: rows}
}

// collectStatuses checks every dependency and counts the outcome.
func collectStatuses(ctx context.Context, dependencies []deps.Dependency) CheckResults {
	statuses := deps.CheckAll(ctx, dependencies)
	results := CheckResults{Dependencies: statuses, TotalDeps: len(statuses)}
	for _, s := range statuses {
		if s.Available {
			results.AvailableDeps++
		} else {
			results.MissingDeps++
		}
	}
	return results
}

// runCheck executes the dependency check command.
func runCheck(cmd *cobra.Command, app application.Application) error {
	// The report goes to stdout; usage text must not follow it.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	results := collectStatuses(ctx, app.Dependencies())
	for _, s := range results.Dependencies {
		logging.FromContext(ctx).Debug().
			Str("dependency", s.Name).
			Bool("available", s.Available).
			Str("path", s.Path).
			Msg("Checked dependency")
	}

	if err := output.Write(cmd.OutOrStdout(), format, results); err != nil {
		return err
	}

	// The report is already on stdout; only the exit status remains.
	if deps.HasMissingDeps(results.Dependencies) {
		return &output.ReportedError{Err: &errors.ValidationError{
			Field:   "dependencies",
			Message: "required dependencies are missing",
		}}
	}

	return nil
}
