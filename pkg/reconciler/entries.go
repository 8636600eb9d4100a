package reconciler

import (
	"context"
	"fmt"

	"github.com/agentstation/pimctl/pkg/applescript"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
	"github.com/agentstation/pimctl/pkg/socials"
)

// Create makes a new person. Social profiles go through the planner, so
// they are normalized, validated and deduplicated the way upserts are.
func (r *reconciler) Create(ctx context.Context, draft contacts.Draft) (*Result, error) {
	result := newResult()
	ctx = logging.WithAction(ctx, "create")

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var profiles []socials.Profile
	for _, p := range draft.Socials {
		plan, err := r.planner.Plan(socials.Upsert(p.Service, p.Username), profiles)
		if err != nil {
			return nil, err
		}
		profiles = plan.Apply(profiles)
	}
	draft.Socials = socials.Visible(profiles)

	res, err := r.run(ctx, "create contact", applescript.CreatePerson(draft))
	if err != nil {
		return nil, err
	}
	result.Metadata.Writes++

	id := applescript.DecodeText(res.Stdout)
	if id == "" {
		return nil, errors.NewParseError("id", "", "create script returned no contact id", nil)
	}
	result.Contact = draft.Contact(id)

	ctx = logging.WithContact(ctx, id)
	logging.FromContext(ctx).Info().
		Int("entry_count", len(draft.Entries)).
		Int("profile_count", len(draft.Socials)).
		Msg("Created contact")

	return result.finalize(fmt.Sprintf("Created '%s'", result.Contact.DisplayName())), nil
}

// AddEntry appends entry to the contact's phones, emails or urls.
func (r *reconciler) AddEntry(ctx context.Context, id string, entry contacts.Entry) (*Result, error) {
	result := newResult()
	ctx = logging.WithAction(ctx, "add "+string(entry.Kind))

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	t, ctx, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.run(ctx, "add "+string(entry.Kind), applescript.AddEntry(t.selector, entry)); err != nil {
		return nil, err
	}
	result.Metadata.Writes++
	entry.AddTo(t.contact)
	result.Contact = t.contact

	logging.FromContext(ctx).Info().
		Str("kind", string(entry.Kind)).
		Str("label", entry.Label).
		Msg("Added entry")

	return result.finalize(entry.Kind.Title() + " added"), nil
}

// RemoveEntry deletes the last entry of kind matching value. Nothing
// matching is a no-op.
func (r *reconciler) RemoveEntry(ctx context.Context, id string, kind contacts.EntryKind, value string) (*Result, error) {
	result := newResult()
	ctx = logging.WithAction(ctx, "remove "+string(kind))

	want := contacts.NewEntry(kind, value, "")
	if err := want.Validate(); err != nil {
		return nil, err
	}

	t, ctx, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := r.read(ctx, "read "+kind.Plural(), applescript.ReadEntries(t.selector, kind))
	if err != nil {
		return nil, err
	}
	entries, err := applescript.DecodeEntries(res.Stdout, kind)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := len(entries) - 1; i >= 0; i-- {
		if kind.Matches(entries[i].Value, want.Value) {
			index = i
			break
		}
	}
	result.Contact = t.contact
	if index < 0 {
		logging.FromContext(ctx).Info().
			Int("entry_count", len(entries)).
			Msg("No matching entry")
		return result.finalize(fmt.Sprintf("No %s matching %s", kind, want.Value)), nil
	}

	if _, err := r.run(ctx, "remove "+string(kind), applescript.DeleteEntry(t.selector, kind, index)); err != nil {
		return nil, err
	}
	result.Metadata.Writes++
	kind.RemoveFrom(t.contact, entries[index].Value)

	logging.FromContext(ctx).Info().
		Int("index", index).
		Msg("Removed entry")

	return result.finalize(kind.Title() + " removed"), nil
}
