package contacts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/pkg/contacts"
)

// NewEntryCommand creates the phone, email or url command with its add
// and remove subcommands.
func NewEntryCommand(app application.Application, kind contacts.EntryKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(kind),
		GroupID: "core",
		Short:   fmt.Sprintf("Add or remove a %s", kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	matching := map[contacts.EntryKind]string{
		contacts.EntryPhone: "the last phone whose digits match",
		contacts.EntryEmail: "the last email equal to the address, ignoring case",
		contacts.EntryURL:   "the last url containing the value",
	}
	examples := map[contacts.EntryKind][2]string{
		contacts.EntryPhone: {`"+1 555 010 0100" work`, `5550100100`},
		contacts.EntryEmail: {`jane@example.com work`, `jane@example.com`},
		contacts.EntryURL:   {`https://github.com/janedoe GitHub`, `github.com/janedoe`},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     fmt.Sprintf("add <id> <%s> [label]", kind),
		Short:   fmt.Sprintf("Add a %s (label defaults to %s)", kind, kind.DefaultLabel()),
		Example: fmt.Sprintf("  pimctl %s add 1A2B3C4D:ABPerson %s", kind, examples[kind][0]),
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := ""
			if len(args) == 3 {
				label = args[2]
			}
			return runAddEntry(cmd, app, args[0], contacts.NewEntry(kind, args[1], label))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     fmt.Sprintf("remove <id> <%s>", kind),
		Short:   "Delete " + matching[kind],
		Example: fmt.Sprintf("  pimctl %s remove 1A2B3C4D:ABPerson %s", kind, examples[kind][1]),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoveEntry(cmd, app, args[0], kind, args[1])
		},
	})

	return cmd
}

func runAddEntry(cmd *cobra.Command, app application.Application, id string, entry contacts.Entry) error {
	p := newPrinter(cmd, app)
	ctx := runContext(cmd, app)

	if err := entry.Validate(); err != nil {
		return p.fail(err)
	}

	rec, err := app.Reconciler()
	if err != nil {
		return p.fail(err)
	}

	result, err := rec.AddEntry(ctx, id, entry)
	if err != nil {
		return p.fail(err)
	}
	return p.success(result.Message, result.Contact)
}

func runRemoveEntry(cmd *cobra.Command, app application.Application, id string, kind contacts.EntryKind, value string) error {
	p := newPrinter(cmd, app)
	ctx := runContext(cmd, app)

	if err := contacts.NewEntry(kind, value, "").Validate(); err != nil {
		return p.fail(err)
	}

	rec, err := app.Reconciler()
	if err != nil {
		return p.fail(err)
	}

	result, err := rec.RemoveEntry(ctx, id, kind, value)
	if err != nil {
		return p.fail(err)
	}
	return p.success(result.Message, result.Contact)
}
