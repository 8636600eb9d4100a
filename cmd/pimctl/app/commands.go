package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/pimctl/cmd/contacts"
	"github.com/agentstation/pimctl/cmd/pimctl/cmd/deps"
	pimcontacts "github.com/agentstation/pimctl/pkg/contacts"
)

// NewGetCommand creates the get command with app dependencies.
func (a *App) NewGetCommand() *cobra.Command {
	return contacts.NewGetCommand(a)
}

// NewSearchCommand creates the search command with app dependencies.
func (a *App) NewSearchCommand() *cobra.Command {
	return contacts.NewSearchCommand(a)
}

// NewCreateCommand creates the create command with app dependencies.
func (a *App) NewCreateCommand() *cobra.Command {
	return contacts.NewCreateCommand(a)
}

// NewUpdateCommand creates the update command with app dependencies.
func (a *App) NewUpdateCommand() *cobra.Command {
	return contacts.NewUpdateCommand(a)
}

// NewFixCommand creates the fix command with app dependencies.
func (a *App) NewFixCommand() *cobra.Command {
	return contacts.NewFixCommand(a)
}

// NewSocialCommand creates the social command with app dependencies.
func (a *App) NewSocialCommand() *cobra.Command {
	return contacts.NewSocialCommand(a)
}

// NewEntryCommands creates the phone, email and url commands with app
// dependencies.
func (a *App) NewEntryCommands() []*cobra.Command {
	return []*cobra.Command{
		contacts.NewEntryCommand(a, pimcontacts.EntryPhone),
		contacts.NewEntryCommand(a, pimcontacts.EntryEmail),
		contacts.NewEntryCommand(a, pimcontacts.EntryURL),
	}
}

// NewServicesCommand creates the services command with app dependencies.
func (a *App) NewServicesCommand() *cobra.Command {
	return contacts.NewServicesCommand(a)
}

// NewDepsCommand creates the deps command with app dependencies.
func (a *App) NewDepsCommand() *cobra.Command {
	return deps.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "pimctl %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(w, "  commit:   %s\n", a.commit)
				fmt.Fprintf(w, "  built:    %s\n", a.date)
				fmt.Fprintf(w, "  built by: %s\n", a.builtBy)
			}
		},
	}
}
