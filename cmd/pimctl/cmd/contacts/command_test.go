package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pimctl/cmd/application"
	mockapp "github.com/agentstation/pimctl/internal/cmd/application"
	"github.com/agentstation/pimctl/internal/cmd/output"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/reconciler"
	"github.com/agentstation/pimctl/pkg/socials"
)

const janeID = "JANE-1:ABPerson"

func jane(profiles ...socials.Profile) *contacts.Contact {
	return &contacts.Contact{ID: janeID, FirstName: "Jane", LastName: "Doe", Socials: profiles}
}

// fakeReconciler records calls and answers with canned results.
type fakeReconciler struct {
	mu sync.Mutex

	executed []socials.Action
	updated  []contacts.Fields
	drafts   []contacts.Draft
	added    []contacts.Entry
	removed  []contacts.Entry
	ids      []string

	executeFunc func(action socials.Action) (*reconciler.Result, error)
	updateFunc  func(fields contacts.Fields) (*reconciler.Result, error)
	contactFunc func(id string) (*contacts.Contact, error)
	createFunc  func(draft contacts.Draft) (*reconciler.Result, error)
}

func (f *fakeReconciler) Execute(_ context.Context, id string, action socials.Action) (*reconciler.Result, error) {
	f.mu.Lock()
	f.executed = append(f.executed, action)
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	if f.executeFunc != nil {
		return f.executeFunc(action)
	}
	return changed("Fixed 0 social profiles", jane()), nil
}

func (f *fakeReconciler) Update(_ context.Context, id string, fields contacts.Fields) (*reconciler.Result, error) {
	f.mu.Lock()
	f.updated = append(f.updated, fields)
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	if f.updateFunc != nil {
		return f.updateFunc(fields)
	}
	return changed("Contact updated", jane()), nil
}

func (f *fakeReconciler) Contact(_ context.Context, id string) (*contacts.Contact, error) {
	f.mu.Lock()
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	if f.contactFunc != nil {
		return f.contactFunc(id)
	}
	return jane(), nil
}

func (f *fakeReconciler) Create(_ context.Context, draft contacts.Draft) (*reconciler.Result, error) {
	f.mu.Lock()
	f.drafts = append(f.drafts, draft)
	f.mu.Unlock()
	if f.createFunc != nil {
		return f.createFunc(draft)
	}
	return changed("Created '"+draft.Contact("NEW-1:ABPerson").DisplayName()+"'", draft.Contact("NEW-1:ABPerson")), nil
}

func (f *fakeReconciler) AddEntry(_ context.Context, id string, entry contacts.Entry) (*reconciler.Result, error) {
	f.mu.Lock()
	f.added = append(f.added, entry)
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	return changed(entry.Kind.Title()+" added", jane()), nil
}

func (f *fakeReconciler) RemoveEntry(_ context.Context, id string, kind contacts.EntryKind, value string) (*reconciler.Result, error) {
	f.mu.Lock()
	f.removed = append(f.removed, contacts.Entry{Kind: kind, Value: value})
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	return changed(kind.Title()+" removed", jane()), nil
}

// changed builds a result that reports one write.
func changed(message string, contact *contacts.Contact) *reconciler.Result {
	return &reconciler.Result{
		Success:  true,
		Message:  message,
		Contact:  contact,
		Metadata: reconciler.ResultMetadata{Writes: 1},
	}
}

// unchanged builds a no-op result.
func unchanged(message string, contact *contacts.Contact) *reconciler.Result {
	return &reconciler.Result{Success: true, Message: message, Contact: contact}
}

func newMock(rec reconciler.Reconciler) *mockapp.Mock {
	return &mockapp.Mock{
		ReconcilerFunc: func() (reconciler.Reconciler, error) { return rec, nil },
	}
}

// fakeDirectory serves canned search results.
type fakeDirectory struct {
	byName  []contacts.Contact
	byPhone []contacts.Contact
	queries []string
	phones  []string
}

var _ application.Directory = (*fakeDirectory)(nil)

func (d *fakeDirectory) Lookup(_ context.Context, _ string) (*contacts.Contact, error) {
	return jane(), nil
}

func (d *fakeDirectory) Search(_ context.Context, query string) ([]contacts.Contact, error) {
	d.queries = append(d.queries, query)
	return d.byName, nil
}

func (d *fakeDirectory) SearchByPhone(_ context.Context, digits string) ([]contacts.Contact, error) {
	d.phones = append(d.phones, digits)
	return d.byPhone, nil
}

// run executes cmd with args and returns its stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// decode parses a JSON envelope and checks nothing follows it.
func decode(t *testing.T, out string) output.Envelope {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(out))
	var env output.Envelope
	require.NoError(t, dec.Decode(&env), out)
	require.ErrorIs(t, dec.Decode(&json.RawMessage{}), io.EOF, out)
	return env
}
