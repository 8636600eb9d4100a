package contacts

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
)

// NewGetCommand creates the get command.
func NewGetCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		GroupID: "core",
		Short:   "Show a contact with its note and social profiles",
		Example: `  pimctl get 1A2B3C4D:ABPerson
  pimctl get 1A2B3C4D:ABPerson -o table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd, app)
			ctx := runContext(cmd, app)

			rec, err := app.Reconciler()
			if err != nil {
				return p.fail(err)
			}

			contact, err := rec.Contact(ctx, args[0])
			if err != nil {
				return p.fail(err)
			}
			return p.success("Contact found", contact)
		},
	}
}
