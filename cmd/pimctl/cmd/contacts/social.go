package contacts

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/pkg/socials"
)

// NewSocialCommand creates the social command with its add and remove
// subcommands. They are shorthands for update --social and
// update --remove-social.
func NewSocialCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "social",
		GroupID: "core",
		Short:   "Add or remove a social profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "add <id> <service> <username>",
		Short:   "Set the username of a service, adding the profile if needed",
		Example: `  pimctl social add 1A2B3C4D:ABPerson twitter janedoe`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, app, args[0], socials.Upsert(args[1], args[2]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <id> <service>",
		Short:   "Clear every profile of a service",
		Example: `  pimctl social remove 1A2B3C4D:ABPerson myspace`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, app, args[0], socials.Remove(args[1]))
		},
	})

	return cmd
}
