// Package reconciler applies social-profile actions to a contact in the
// Contacts application. It reads the stored profiles through the bridge,
// plans edits with package socials, writes them in one script and reports
// the resulting profiles. It holds no state between runs.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/pimctl/pkg/applescript"
	"github.com/agentstation/pimctl/pkg/bridge"
	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
	"github.com/agentstation/pimctl/pkg/socials"
)

// Directory resolves contact ids against the native store.
type Directory interface {
	Lookup(ctx context.Context, id string) (*contacts.Contact, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, id string) (*contacts.Contact, error)

// Lookup implements Directory.
func (f DirectoryFunc) Lookup(ctx context.Context, id string) (*contacts.Contact, error) {
	return f(ctx, id)
}

// Reconciler applies actions and field updates to one contact at a time.
type Reconciler interface {
	// Execute applies one social-profile action.
	Execute(ctx context.Context, id string, action socials.Action) (*Result, error)

	// Update writes scalar fields and then repairs every social profile.
	Update(ctx context.Context, id string, fields contacts.Fields) (*Result, error)

	// Contact returns the contact with its note and visible profiles.
	Contact(ctx context.Context, id string) (*contacts.Contact, error)

	// Create makes a new contact and reports it with the assigned id.
	Create(ctx context.Context, draft contacts.Draft) (*Result, error)

	// AddEntry appends a phone, email or url.
	AddEntry(ctx context.Context, id string, entry contacts.Entry) (*Result, error)

	// RemoveEntry deletes the last phone, email or url matching value.
	RemoveEntry(ctx context.Context, id string, kind contacts.EntryKind, value string) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	directory  Directory
	bridge     bridge.Bridge
	planner    *socials.Planner
	lookupMode string
	verify     bool
}

// New creates a Reconciler that resolves contacts through directory and
// talks to the store through br.
func New(directory Directory, br bridge.Bridge, opts ...Option) (Reconciler, error) {
	if directory == nil {
		return nil, &errors.ValidationError{Field: "directory", Message: "cannot be nil"}
	}
	if br == nil {
		return nil, &errors.ValidationError{Field: "bridge", Message: "cannot be nil"}
	}

	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		directory:  directory,
		bridge:     br,
		planner:    socials.NewPlanner(options.registry),
		lookupMode: options.lookupMode,
		verify:     options.verify,
	}, nil
}

// target is a resolved contact and the selector that reaches it.
type target struct {
	contact  *contacts.Contact
	selector applescript.Selector
}

// Execute performs one action with a clean step-by-step flow.
func (r *reconciler) Execute(ctx context.Context, id string, action socials.Action) (*Result, error) {
	result := newResult()
	ctx = logging.WithAction(ctx, action.String())
	if action.Service != "" {
		ctx = logging.WithService(ctx, r.planner.Registry().Normalize(action.Service))
	}

	// Step 1: Validate before touching the store
	if err := action.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Resolve the contact
	t, ctx, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	// Step 3: Read, plan, write and report
	changed, err := r.reconcile(ctx, t, action, result)
	if err != nil {
		return nil, err
	}

	return result.finalize(actionMessage(r.planner.Registry(), action, changed)), nil
}

// Update writes fields, then runs the implicit fix-all.
func (r *reconciler) Update(ctx context.Context, id string, fields contacts.Fields) (*Result, error) {
	result := newResult()
	ctx = logging.WithAction(ctx, "update")

	if fields.Empty() {
		return nil, errors.NewValidationError("fields", nil, "no fields to update")
	}

	t, ctx, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	script := applescript.UpdateFields(t.selector, fields)
	if _, err := r.run(ctx, "update contact", script); err != nil {
		return nil, err
	}
	result.Metadata.Writes++
	fields.Apply(t.contact)
	t.selector = applescript.SelectorFor(t.contact.Ref(), r.lookupMode)

	logging.FromContext(ctx).Info().
		Int("field_count", len(fields.List())).
		Msg("Updated contact fields")

	changed, err := r.reconcile(ctx, t, socials.FixAll(), result)
	if err != nil {
		return nil, err
	}

	message := "Contact updated"
	if changed > 0 {
		message = fmt.Sprintf("Contact updated; fixed %s", plural(changed, "social profile"))
	}
	return result.finalize(message), nil
}

// Contact returns the native-store contact enriched with the note and the
// visible social profiles read through the bridge.
func (r *reconciler) Contact(ctx context.Context, id string) (*contacts.Contact, error) {
	t, ctx, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	profiles, err := r.readProfiles(ctx, t.selector)
	if err != nil {
		return nil, err
	}
	t.contact.Socials = socials.Visible(profiles)

	res, err := r.read(ctx, "read note", applescript.ReadNote(t.selector))
	if err != nil {
		return nil, err
	}
	t.contact.Note = applescript.DecodeText(res.Stdout)

	return t.contact, nil
}

// resolve looks the contact up and tags the context logger with its id.
func (r *reconciler) resolve(ctx context.Context, id string) (*target, context.Context, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ctx, errors.NewValidationError("id", id, "contact id is required")
	}
	ctx = logging.WithContact(ctx, id)

	contact, err := r.directory.Lookup(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("Contact lookup failed")
		return nil, ctx, err
	}

	return &target{
		contact:  contact,
		selector: applescript.SelectorFor(contact.Ref(), r.lookupMode),
	}, ctx, nil
}

// reconcile reads the stored profiles, plans action, writes the plan and
// records the reported profiles on result. It returns the number of edits
// written.
func (r *reconciler) reconcile(ctx context.Context, t *target, action socials.Action, result *Result) (int, error) {
	logger := logging.FromContext(ctx)

	existing, err := r.readProfiles(ctx, t.selector)
	if err != nil {
		return 0, err
	}

	plan, err := r.planner.Plan(action, existing)
	if err != nil {
		return 0, err
	}

	if plan.Empty() {
		logger.Info().
			Int("profile_count", len(existing)).
			Msg("Social profiles already consistent")
		result.Contact = withProfiles(t.contact, existing)
		return 0, nil
	}

	logPlan(logger, plan)

	if _, err := r.run(ctx, "write profiles", applescript.WriteProfiles(t.selector, plan.Edits)); err != nil {
		return 0, err
	}
	result.Metadata.Writes++
	result.Edits = append(result.Edits, plan.Edits...)

	reported := plan.Apply(existing)
	if r.verify {
		if reported, err = r.readProfiles(ctx, t.selector); err != nil {
			return 0, err
		}
		result.Metadata.Verified = true
		r.checkConverged(ctx, action, reported)
	}
	result.Contact = withProfiles(t.contact, reported)

	return len(plan.Edits), nil
}

// checkConverged warns when re-planning against the read-back profiles
// would still produce edits.
func (r *reconciler) checkConverged(ctx context.Context, action socials.Action, profiles []socials.Profile) {
	again, err := r.planner.Plan(action, profiles)
	if err != nil || again.Empty() {
		return
	}
	logging.FromContext(ctx).Warn().
		Int("pending_edits", len(again.Edits)).
		Msg("Store did not converge after write")
}

// readProfiles runs the profile dump script and decodes its output.
func (r *reconciler) readProfiles(ctx context.Context, sel applescript.Selector) ([]socials.Profile, error) {
	res, err := r.read(ctx, "read profiles", applescript.ReadProfiles(sel))
	if err != nil {
		return nil, err
	}

	profiles, err := applescript.DecodeProfiles(res.Stdout)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Int("profile_count", len(profiles)).
		Msg("Read social profiles")
	return profiles, nil
}

// run executes script and turns a non-zero exit into a ProcessError
// carrying the bridge's diagnostic text. Failed writes are not retried.
func (r *reconciler) run(ctx context.Context, operation, script string) (*bridge.Result, error) {
	res, err := r.bridge.Run(ctx, script)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		logging.FromContext(ctx).Error().
			Str("operation", operation).
			Int("exit_code", res.ExitCode).
			Str("stderr", res.Diagnostic()).
			Msg("Automation script failed")
		return nil, errors.NewProcessError(operation, constants.OSAScriptBinary, res.Diagnostic(), res.ExitCode, nil)
	}
	return res, nil
}

// read runs a script whose output is parsed. Output cut short by the
// capture limit is an error.
func (r *reconciler) read(ctx context.Context, operation, script string) (*bridge.Result, error) {
	res, err := r.run(ctx, operation, script)
	if err != nil {
		return nil, err
	}
	if res.Truncated {
		logging.FromContext(ctx).Error().
			Str("operation", operation).
			Int("stdout_bytes", len(res.Stdout)).
			Msg("Automation output truncated")
		return nil, errors.NewResourceError(operation, "contact", "",
			errors.New("script output exceeded the capture limit; raise max_output_bytes"))
	}
	return res, nil
}

func logPlan(logger *zerolog.Logger, plan socials.Plan) {
	logger.Info().
		Int("edit_count", len(plan.Edits)).
		Msg("Planned social profile edits")
	for _, e := range plan.Edits {
		logger.Debug().
			Str("op", string(e.Op)).
			Int("index", e.Index).
			Str("service", e.Profile.Service).
			Str("username", e.Profile.Username).
			Str("reason", e.Reason).
			Msg("Edit")
	}
}

// withProfiles returns a copy of c reporting the visible profiles.
func withProfiles(c *contacts.Contact, profiles []socials.Profile) *contacts.Contact {
	out := *c
	out.Socials = socials.Visible(profiles)
	return &out
}

func actionMessage(registry *socials.Registry, action socials.Action, changed int) string {
	if changed == 0 {
		return "No social profile changes needed"
	}
	service := registry.Normalize(action.Service)
	switch action.Kind {
	case socials.ActionUpsert:
		return fmt.Sprintf("Set %s username to %s", service, action.Username)
	case socials.ActionRemove:
		return fmt.Sprintf("Removed %s", plural(changed, service+" profile"))
	default:
		return fmt.Sprintf("Fixed %s", plural(changed, "social profile"))
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
