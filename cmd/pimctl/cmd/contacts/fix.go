package contacts

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/pkg/socials"
)

// NewFixCommand creates the fix command.
func NewFixCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "fix <id>",
		GroupID: "core",
		Short:   "Repair every social profile on a contact",
		Long: `Fix classifies every social profile on the contact. Service names are
normalized, usernames are recovered from the profile URL when the app
replaced them with a domain fragment, and profiles that cannot be
recovered are cleared. Running fix on a clean contact changes nothing.`,
		Example: `  pimctl fix 1A2B3C4D:ABPerson`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, app, args[0], socials.FixAll())
		},
	}
}

// runAction executes a single action and prints its outcome.
func runAction(cmd *cobra.Command, app application.Application, id string, action socials.Action) error {
	p := newPrinter(cmd, app)
	ctx := runContext(cmd, app)

	if err := action.Validate(); err != nil {
		return p.fail(err)
	}

	rec, err := app.Reconciler()
	if err != nil {
		return p.fail(err)
	}

	result, err := rec.Execute(ctx, id, action)
	if err != nil {
		return p.fail(err)
	}
	return p.success(result.Message, result.Contact)
}
