package contacts

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/socials"
)

// createFlags holds the flags of the create command.
type createFlags struct {
	fieldValues

	phone      string
	phoneLabel string
	email      string
	emailLabel string
	url        string
	urlLabel   string
	socials    []string
}

// draft builds the contact to create. Only flags given on the command line
// contribute.
func (f *createFlags) draft(cmd *cobra.Command) (contacts.Draft, error) {
	d := contacts.Draft{Fields: f.fields(cmd)}

	for _, e := range []struct {
		flag  string
		kind  contacts.EntryKind
		value string
		label string
	}{
		{"phone", contacts.EntryPhone, f.phone, f.phoneLabel},
		{"email", contacts.EntryEmail, f.email, f.emailLabel},
		{"url", contacts.EntryURL, f.url, f.urlLabel},
	} {
		if cmd.Flags().Changed(e.flag) {
			d.Entries = append(d.Entries, contacts.NewEntry(e.kind, e.value, e.label))
		}
	}

	for _, arg := range f.socials {
		action, err := socials.ParseSocial(arg)
		if err != nil {
			return contacts.Draft{}, err
		}
		d.Socials = append(d.Socials, socials.Profile{Service: action.Service, Username: action.Username})
	}

	return d, d.Validate()
}

// NewCreateCommand creates the create command.
func NewCreateCommand(app application.Application) *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:     "create",
		GroupID: "core",
		Short:   "Create a contact",
		Long: `Create adds a new person to Contacts.app and prints it with the id the
app assigned. A first name, last name or organization is required.

Social profiles are normalized the way update --social normalizes them.`,
		Example: `  pimctl create --first Jane --last Doe --org Acme
  pimctl create --first Jane --phone "+1 555 010 0100" --email jane@example.com --email-label work
  pimctl create --org Acme --url https://acme.example --social "linkedin:acme"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd, app, flags)
		},
	}

	flags.fieldValues.register(cmd)
	cmd.Flags().StringVar(&flags.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&flags.phoneLabel, "phone-label", contacts.EntryPhone.DefaultLabel(), "Phone label")
	cmd.Flags().StringVar(&flags.email, "email", "", "Email address")
	cmd.Flags().StringVar(&flags.emailLabel, "email-label", contacts.EntryEmail.DefaultLabel(), "Email label")
	cmd.Flags().StringVar(&flags.url, "url", "", "URL")
	cmd.Flags().StringVar(&flags.urlLabel, "url-label", contacts.EntryURL.DefaultLabel(), "URL label")
	cmd.Flags().StringArrayVar(&flags.socials, "social", nil, `Social profile as "service:username" (repeatable)`)

	return cmd
}

func runCreate(cmd *cobra.Command, app application.Application, flags *createFlags) error {
	p := newPrinter(cmd, app)
	ctx := runContext(cmd, app)

	draft, err := flags.draft(cmd)
	if err != nil {
		return p.fail(err)
	}

	rec, err := app.Reconciler()
	if err != nil {
		return p.fail(err)
	}

	result, err := rec.Create(ctx, draft)
	if err != nil {
		return p.fail(err)
	}
	return p.success(result.Message, result.Contact)
}
