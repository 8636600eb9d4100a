package reconciler

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
	"github.com/agentstation/pimctl/pkg/socials"
)

const janeID = "JANE-1:ABPerson"

func newTestReconciler(t *testing.T, store *fakeStore, opts ...Option) Reconciler {
	t.Helper()
	r, err := New(store, store, opts...)
	require.NoError(t, err)
	return r
}

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	store := newFakeStore()

	_, err := New(nil, store)
	assert.True(t, errors.IsValidationError(err))

	_, err = New(store, nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = New(store, store, WithLookupMode("email"))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(store, store, WithRegistry(nil))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(store, store, WithLookupMode(""), WithVerify(false))
	assert.NoError(t, err)
}

func TestExecuteUpsertAppends(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "Facebook", Username: "jane.doe", URL: "https://facebook.com/jane.doe"})
	r := newTestReconciler(t, store)

	result, err := r.Execute(context.Background(), janeID, socials.Upsert("instagram", "janedoe"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Set Instagram username to janedoe", result.Message)
	assert.True(t, result.Metadata.Verified)
	assert.Equal(t, 1, result.Metadata.Writes)
	assert.Equal(t, []socials.Edit{
		{Op: socials.OpAppend, Index: 1, Profile: socials.Profile{Service: "Instagram", Username: "janedoe"}, Reason: "added"},
	}, result.Edits)

	want := []socials.Profile{
		{Service: "Facebook", Username: "jane.doe", URL: "https://facebook.com/jane.doe"},
		{Service: "Instagram", Username: "janedoe"},
	}
	assert.Equal(t, want, store.snapshot())
	if diff := cmp.Diff(want, result.Contact.Socials); diff != "" {
		t.Errorf("reported profiles mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Jane", result.Contact.FirstName)
	assert.Equal(t, 2, store.reads, "profiles are read before and after the write")
}

func TestExecuteIsIdempotent(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "TWITTER", Username: "old"})
	r := newTestReconciler(t, store)
	ctx := context.Background()
	action := socials.Upsert("x", "newhandle")

	first, err := r.Execute(ctx, janeID, action)
	require.NoError(t, err)
	assert.True(t, first.HasChanges())
	after := store.snapshot()

	second, err := r.Execute(ctx, janeID, action)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.False(t, second.HasChanges())
	assert.Empty(t, second.Edits)
	assert.Equal(t, "No social profile changes needed", second.Message)
	assert.Equal(t, after, store.snapshot())
	assert.Equal(t, []socials.Profile{{Service: "Twitter", Username: "newhandle"}}, second.Contact.Socials)
}

func TestExecuteRemoveNullifies(t *testing.T) {
	store := newFakeStore(
		socials.Profile{Service: "instagram", Username: "a"},
		socials.Profile{Service: "Facebook", Username: "b"},
		socials.Profile{Service: "Instagram", Username: "c", URL: "https://instagram.com/c"},
	)
	r := newTestReconciler(t, store)

	result, err := r.Execute(context.Background(), janeID, socials.Remove("INSTAGRAM"))
	require.NoError(t, err)

	assert.Equal(t, "Removed 2 Instagram profiles", result.Message)
	assert.Equal(t, []socials.Profile{{}, {Service: "Facebook", Username: "b"}, {}}, store.snapshot())
	assert.Equal(t, []socials.Profile{{Service: "Facebook", Username: "b"}}, result.Contact.Socials)
}

func TestExecuteFixAll(t *testing.T) {
	store := newFakeStore(
		socials.Profile{Service: "LINKEDIN", URL: "https://www.linkedin.com/in/johndoe"},
		socials.Profile{Service: "FACEBOOK", Username: "www.facebook.com"},
		socials.Profile{Service: "Google+", Username: "jane"},
	)
	r := newTestReconciler(t, store)

	result, err := r.Execute(context.Background(), janeID, socials.FixAll())
	require.NoError(t, err)

	assert.Equal(t, "Fixed 3 social profiles", result.Message)
	require.Len(t, result.Contact.Socials, 1)
	assert.Equal(t, "LinkedIn", result.Contact.Socials[0].Service)
	assert.Equal(t, "johndoe", result.Contact.Socials[0].Username)
}

func TestExecuteFixOne(t *testing.T) {
	store := newFakeStore(
		socials.Profile{Service: "FACEBOOK", Username: "facebook.com", URL: "https://facebook.com/jane.doe/"},
		socials.Profile{Service: "TWITTER", Username: "TYPE=PREF"},
	)
	r := newTestReconciler(t, store)

	result, err := r.Execute(context.Background(), janeID, socials.FixOne("facebook"))
	require.NoError(t, err)

	assert.Equal(t, "Fixed 1 social profile", result.Message)
	assert.Equal(t, []socials.Profile{
		{Service: "Facebook", Username: "jane.doe", URL: "https://facebook.com/jane.doe/"},
		{Service: "TWITTER", Username: "TYPE=PREF"},
	}, store.snapshot())
}

func TestExecuteContactNotFound(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, store)

	_, err := r.Execute(context.Background(), "MISSING:ABPerson", socials.FixAll())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Zero(t, store.bridgeCalls())
}

func TestExecuteMalformedInput(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, store)

	_, err := r.Execute(context.Background(), janeID, socials.Upsert("instagram", ""))
	assert.True(t, errors.IsValidationError(err))

	_, err = r.Execute(context.Background(), " ", socials.FixAll())
	assert.True(t, errors.IsValidationError(err))

	assert.Zero(t, store.bridgeCalls())
}

func TestExecuteWriteFailure(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "FACEBOOK", Username: "www.facebook.com"})
	store.failWrites = true
	r := newTestReconciler(t, store)

	_, err := r.Execute(context.Background(), janeID, socials.FixAll())
	require.Error(t, err)
	assert.True(t, errors.IsBridgeFailure(err))

	var procErr *errors.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "write profiles", procErr.Operation)
	assert.Equal(t, 1, procErr.ExitCode)
	assert.Contains(t, procErr.Output, "AppleEvent timed out")
	assert.Equal(t, 1, store.writeAttempts, "failed writes are not retried")
}

func TestExecuteRejectsTruncatedRead(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "LINKEDIN", Username: "johndoe", URL: "https://www.linkedin.com/in/johndoe"})
	store.truncate = 10
	r := newTestReconciler(t, store)

	_, err := r.Execute(context.Background(), janeID, socials.FixAll())
	require.Error(t, err)

	var resErr *errors.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "read profiles", resErr.Operation)
	assert.Contains(t, err.Error(), "max_output_bytes")
	assert.Zero(t, store.writeAttempts)
	assert.Equal(t, "https://www.linkedin.com/in/johndoe", store.snapshot()[0].URL)
}

func TestContactRejectsTruncatedNote(t *testing.T) {
	store := newFakeStore()
	store.note = strings.Repeat("long note ", 10)
	store.truncate = 5
	r := newTestReconciler(t, store)

	_, err := r.Contact(context.Background(), janeID)
	var resErr *errors.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "read note", resErr.Operation)
}

func TestExecuteWithoutVerify(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "LINKEDIN", Username: "johndoe"})
	r := newTestReconciler(t, store, WithVerify(false))

	result, err := r.Execute(context.Background(), janeID, socials.Upsert("GitHub", "janedoe"))
	require.NoError(t, err)

	assert.False(t, result.Metadata.Verified)
	assert.Equal(t, 1, store.reads)
	assert.Equal(t, []socials.Profile{
		{Service: "LINKEDIN", Username: "johndoe"},
		{Service: "GitHub", Username: "janedoe"},
	}, result.Contact.Socials)
}

func TestExecuteWarnsWhenStoreDoesNotConverge(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "FACEBOOK", Username: "www.facebook.com"})
	store.ignoreWrites = true
	r := newTestReconciler(t, store)

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := r.Execute(ctx, janeID, socials.FixAll())
	require.NoError(t, err)
	tl.AssertContains(t, "Store did not converge after write")
	tl.AssertContains(t, `"contact_id":"JANE-1:ABPerson"`)
	tl.AssertContains(t, `"action":"fix all"`)
}

func TestExecuteLogsNormalizedService(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, store)

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := r.Execute(ctx, janeID, socials.Upsert("linkedin", "jane"))
	require.NoError(t, err)

	entries := tl.Entries(t)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "LinkedIn", e["service"])
	}
}

func TestExecuteLookupByName(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, store, WithLookupMode(constants.LookupByName))

	_, err := r.Execute(context.Background(), janeID, socials.Upsert("Twitter", "jane"))
	require.NoError(t, err)

	for _, script := range store.scripts {
		assert.Contains(t, script, `first person whose first name is "Jane" and last name is "Doe"`)
	}
	assert.Equal(t, []socials.Profile{{Service: "Twitter", Username: "jane"}}, store.snapshot())
}

func TestExecuteEscapesValues(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, store)

	_, err := r.Execute(context.Background(), janeID, socials.Upsert("Mastodon", `ja"ne\doe`))
	require.NoError(t, err)
	assert.Equal(t, []socials.Profile{{Service: "Mastodon", Username: `ja"ne\doe`}}, store.snapshot())
}

func TestUpdateRunsFixAll(t *testing.T) {
	store := newFakeStore(
		socials.Profile{Service: "FACEBOOK", Username: "www.facebook.com"},
		socials.Profile{Service: "Instagram", Username: "janedoe"},
	)
	r := newTestReconciler(t, store)

	result, err := r.Update(context.Background(), janeID, contacts.Fields{
		LastName: strPtr("Smith"),
		JobTitle: strPtr("CTO"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Contact updated; fixed 1 social profile", result.Message)
	assert.Equal(t, 2, result.Metadata.Writes)
	assert.Equal(t, "Smith", store.last)
	assert.Equal(t, "CTO", store.fields["job title"])
	assert.Equal(t, "Smith", result.Contact.LastName)
	assert.Equal(t, "CTO", result.Contact.JobTitle)
	assert.Equal(t, []socials.Profile{{Service: "Instagram", Username: "janedoe"}}, result.Contact.Socials)
}

func TestUpdateWithoutSocialChanges(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "Instagram", Username: "janedoe"})
	r := newTestReconciler(t, store)

	result, err := r.Update(context.Background(), janeID, contacts.Fields{Note: strPtr("met at conf")})
	require.NoError(t, err)
	assert.Equal(t, "Contact updated", result.Message)
	assert.Equal(t, "met at conf", store.note)
	assert.Equal(t, 1, result.Metadata.Writes)
}

func TestUpdateByNameFollowsRename(t *testing.T) {
	store := newFakeStore(socials.Profile{Service: "TWITTER", Username: "jane"})
	r := newTestReconciler(t, store, WithLookupMode(constants.LookupByName))

	result, err := r.Update(context.Background(), janeID, contacts.Fields{FirstName: strPtr("Janet")})
	require.NoError(t, err)

	assert.Equal(t, "Janet", store.first)
	assert.Equal(t, []socials.Profile{{Service: "Twitter", Username: "jane"}}, result.Contact.Socials)
	last := store.scripts[len(store.scripts)-1]
	assert.True(t, strings.Contains(last, `first name is "Janet"`), last)
}

func TestUpdateRequiresFields(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(t, store)

	_, err := r.Update(context.Background(), janeID, contacts.Fields{})
	assert.True(t, errors.IsValidationError(err))
	assert.Zero(t, store.bridgeCalls())
}

func TestContact(t *testing.T) {
	store := newFakeStore(
		socials.Profile{Service: "Instagram", Username: "janedoe"},
		socials.Profile{},
	)
	store.note = "likes hiking"
	r := newTestReconciler(t, store)

	c, err := r.Contact(context.Background(), janeID)
	require.NoError(t, err)
	assert.Equal(t, "likes hiking", c.Note)
	assert.Equal(t, []socials.Profile{{Service: "Instagram", Username: "janedoe"}}, c.Socials)
}

func TestDirectoryFunc(t *testing.T) {
	dir := DirectoryFunc(func(_ context.Context, id string) (*contacts.Contact, error) {
		return &contacts.Contact{ID: id}, nil
	})
	c, err := dir.Lookup(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", c.ID)
}
