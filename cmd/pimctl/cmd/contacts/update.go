package contacts

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
	"github.com/agentstation/pimctl/pkg/reconciler"
	"github.com/agentstation/pimctl/pkg/socials"
)

// fieldValues holds the scalar field flags shared by create and update.
type fieldValues struct {
	first      string
	last       string
	middle     string
	nickname   string
	org        string
	jobTitle   string
	department string
	note       string
}

// updateFlags holds the flags of the update command.
type updateFlags struct {
	fieldValues

	socials       []string
	removeSocials []string
	fixSocials    []string
}

// fieldBinding ties a field flag to the Fields member it sets.
type fieldBinding struct {
	value  *string
	target **string
}

// fieldFlags maps flag names to the Fields member they set.
func (f *fieldValues) fieldFlags(fields *contacts.Fields) map[string]fieldBinding {
	return map[string]fieldBinding{
		"first":      {&f.first, &fields.FirstName},
		"last":       {&f.last, &fields.LastName},
		"middle":     {&f.middle, &fields.MiddleName},
		"nickname":   {&f.nickname, &fields.Nickname},
		"org":        {&f.org, &fields.Organization},
		"job-title":  {&f.jobTitle, &fields.JobTitle},
		"department": {&f.department, &fields.Department},
		"note":       {&f.note, &fields.Note},
	}
}

func (f *fieldValues) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first", "", "First name")
	cmd.Flags().StringVar(&f.last, "last", "", "Last name")
	cmd.Flags().StringVar(&f.middle, "middle", "", "Middle name")
	cmd.Flags().StringVar(&f.nickname, "nickname", "", "Nickname")
	cmd.Flags().StringVar(&f.org, "org", "", "Organization")
	cmd.Flags().StringVar(&f.jobTitle, "job-title", "", "Job title")
	cmd.Flags().StringVar(&f.department, "department", "", "Department")
	cmd.Flags().StringVar(&f.note, "note", "", "Note")
}

// fields returns the update for every field flag given on the command line.
// An explicitly empty value clears the field.
func (f *fieldValues) fields(cmd *cobra.Command) contacts.Fields {
	var fields contacts.Fields
	for name, b := range f.fieldFlags(&fields) {
		if cmd.Flags().Changed(name) {
			value := *b.value
			*b.target = &value
		}
	}
	return fields
}

// actions parses the social flags in the order upsert, remove, fix. Every
// action is validated before anything is written.
func (f *updateFlags) actions() ([]socials.Action, error) {
	var actions []socials.Action
	for _, arg := range f.socials {
		action, err := socials.ParseSocial(arg)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	for _, service := range f.removeSocials {
		actions = append(actions, socials.Remove(service))
	}
	for _, service := range f.fixSocials {
		actions = append(actions, socials.FixOne(service))
	}
	for _, action := range actions {
		if err := action.Validate(); err != nil {
			return nil, err
		}
	}
	return actions, nil
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(app application.Application) *cobra.Command {
	flags := &updateFlags{}

	cmd := &cobra.Command{
		Use:     "update <id>",
		GroupID: "core",
		Short:   "Update contact fields and social profiles",
		Long: `Update writes the given fields to the contact and then repairs every
social profile on it.

--social sets a profile's username, overwriting the first profile of that
service or adding one. --remove-social clears every profile of a service.
--fix-social repairs the profiles of one service, recovering usernames from
their URL where the app replaced them with a domain fragment.`,
		Example: `  pimctl update 1A2B3C4D:ABPerson --social "instagram:janedoe"
  pimctl update 1A2B3C4D:ABPerson --job-title "CTO" --remove-social myspace
  pimctl update 1A2B3C4D:ABPerson --fix-social linkedin -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, app, args[0], flags)
		},
	}

	flags.fieldValues.register(cmd)
	cmd.Flags().StringArrayVar(&flags.socials, "social", nil, `Set a social profile as "service:username" (repeatable)`)
	cmd.Flags().StringArrayVar(&flags.removeSocials, "remove-social", nil, "Remove every profile of a service (repeatable)")
	cmd.Flags().StringArrayVar(&flags.fixSocials, "fix-social", nil, "Repair the profiles of a service (repeatable)")

	return cmd
}

func runUpdate(cmd *cobra.Command, app application.Application, id string, flags *updateFlags) error {
	p := newPrinter(cmd, app)
	ctx := runContext(cmd, app)

	fields := flags.fields(cmd)
	actions, err := flags.actions()
	if err != nil {
		return p.fail(err)
	}
	if fields.Empty() && len(actions) == 0 {
		return p.fail(errors.NewValidationError("update", nil, "no fields or social profile changes given"))
	}

	rec, err := app.Reconciler()
	if err != nil {
		return p.fail(err)
	}

	var results []*reconciler.Result
	if !fields.Empty() {
		result, err := rec.Update(ctx, id, fields)
		if err != nil {
			return p.fail(err)
		}
		results = append(results, result)
	}

	for _, action := range actions {
		result, err := rec.Execute(ctx, id, action)
		if err != nil {
			if len(results) > 0 {
				logging.FromContext(ctx).Warn().
					Int("completed", len(results)).
					Str("failed_action", action.String()).
					Msg("Update stopped after partial success")
			}
			return p.fail(err)
		}
		results = append(results, result)
	}

	message, contact := summarize(results)
	return p.success(message, contact)
}
