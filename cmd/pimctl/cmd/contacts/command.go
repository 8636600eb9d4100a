// Package contacts provides the commands that read and update contacts.
// Every command writes exactly one envelope to stdout; failures are
// reported in the same envelope and marked for exit status 1.
package contacts

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/internal/cmd/output"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/logging"
	"github.com/agentstation/pimctl/pkg/reconciler"
)

// runContext returns the command context carrying the app logger and a
// fresh run id.
func runContext(cmd *cobra.Command, app application.Application) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithRunID(logging.WithLogger(ctx, app.Logger()))
}

// printer writes envelopes in the configured format.
type printer struct {
	w      io.Writer
	format output.Format
}

// newPrinter is called once arguments are validated. From then on errors
// are reported in the envelope, so cobra prints neither usage nor the error.
func newPrinter(cmd *cobra.Command, app application.Application) printer {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		format = output.FormatJSON
	}
	return printer{w: cmd.OutOrStdout(), format: format}
}

func (p printer) success(message string, contact *contacts.Contact) error {
	return output.Write(p.w, p.format, output.Success(message, contact))
}

func (p printer) write(data any) error {
	return output.Write(p.w, p.format, data)
}

func (p printer) fail(err error) error {
	return output.Report(p.w, p.format, err)
}

// summarize folds the results of one invocation into a single message and
// the most recent contact state. Runs that wrote nothing are left out of the
// message unless nothing was written at all.
func summarize(results []*reconciler.Result) (string, *contacts.Contact) {
	if len(results) == 0 {
		return "", nil
	}

	var messages []string
	for _, r := range results {
		if r.HasChanges() {
			messages = append(messages, r.Message)
		}
	}
	if len(messages) == 0 {
		messages = append(messages, results[0].Message)
	}

	return strings.Join(messages, "; "), results[len(results)-1].Contact
}
