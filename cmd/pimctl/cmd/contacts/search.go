package contacts

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/internal/cmd/output"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(app application.Application) *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:     "search [query]",
		GroupID: "core",
		Short:   "Find contacts by name, organization or phone number",
		Long: `Search reads the address book directly and does not start Contacts.app.
A query matches first name, last name, full name and organization. --phone
matches on the trailing digits of any phone number.`,
		Example: `  pimctl search jane
  pimctl search --phone 5551234 -o table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd, app)
			ctx := runContext(cmd, app)

			query := ""
			if len(args) == 1 {
				query = strings.TrimSpace(args[0])
			}
			if query == "" && phone == "" {
				return p.fail(errors.NewValidationError("query", nil, "a name query or --phone is required"))
			}

			directory, err := app.Directory()
			if err != nil {
				return p.fail(err)
			}

			var found []contacts.Contact
			if phone != "" {
				found, err = directory.SearchByPhone(ctx, phone)
			} else {
				found, err = directory.Search(ctx, query)
			}
			if err != nil {
				return p.fail(err)
			}
			return p.write(output.NewSearchResult(found))
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Search by phone number digits")

	return cmd
}
