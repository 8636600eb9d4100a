package applescript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/socials"
)

func TestEscape(t *testing.T) {
	tests := map[string]string{
		`plain`:          `plain`,
		`say "hi"`:       `say \"hi\"`,
		`back\slash`:     `back\\slash`,
		`\"`:             `\\\"`,
		`jane"; do shell script "rm`: `jane\"; do shell script \"rm`,
	}
	for in, want := range tests {
		assert.Equal(t, want, Escape(in), in)
	}
}

func TestSelectors(t *testing.T) {
	assert.Equal(t, `first person whose id is "ABC-123:ABPerson"`, ByID("ABC-123:ABPerson").Expression())
	assert.Equal(t,
		`first person whose first name is "Jane" and last name is "O\"Neil"`,
		ByName{First: "Jane", Last: `O"Neil`}.Expression())

	ref := contacts.Ref{ID: "ABC", FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, ByID("ABC"), SelectorFor(ref, constants.LookupByID))
	assert.Equal(t, ByName{First: "Jane", Last: "Doe"}, SelectorFor(ref, constants.LookupByName))
	assert.Equal(t, ByID("ABC"), SelectorFor(contacts.Ref{ID: "ABC"}, constants.LookupByName))
}

func TestReadProfilesScript(t *testing.T) {
	script := ReadProfiles(ByID("ABC"))

	assert.True(t, strings.HasPrefix(script, "tell application \"Contacts\"\n"))
	assert.True(t, strings.HasSuffix(script, "end tell\n"))
	assert.Contains(t, script, `set thePerson to first person whose id is "ABC"`)
	assert.Contains(t, script, "set fieldSep to character id 31")
	assert.Contains(t, script, "set recordSep to character id 30")
	assert.Contains(t, script, "repeat with sp in social profiles of thePerson")
	assert.NotContains(t, script, "try", "errors must reach the exit status")
}

func TestWriteProfilesScript(t *testing.T) {
	edits := []socials.Edit{
		{Op: socials.OpOverwrite, Index: 0, Profile: socials.Profile{Service: "LinkedIn", Username: "john\"doe", URL: "https://linkedin.com/in/johndoe"}},
		{Op: socials.OpNullify, Index: 2},
		{Op: socials.OpAppend, Index: 3, Profile: socials.Profile{Service: "Instagram", Username: "janedoe"}},
	}

	script := WriteProfiles(ByName{First: "Jane", Last: "Doe"}, edits)
	lines := strings.Split(strings.TrimSpace(script), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	require.Equal(t, []string{
		`tell application "Contacts"`,
		`set thePerson to first person whose first name is "Jane" and last name is "Doe"`,
		`set sp to social profile 1 of thePerson`,
		`set service name of sp to "LinkedIn"`,
		`set user name of sp to "john\"doe"`,
		`set url of sp to "https://linkedin.com/in/johndoe"`,
		`set sp to social profile 3 of thePerson`,
		`set service name of sp to ""`,
		`set user name of sp to ""`,
		`set url of sp to ""`,
		`make new social profile at end of social profiles of thePerson with properties {service name:"Instagram", user name:"janedoe"}`,
		`save`,
		`return "ok"`,
		`end tell`,
	}, lines)
}

func TestWriteProfilesAppendWithURL(t *testing.T) {
	script := WriteProfiles(ByID("ABC"), []socials.Edit{
		{Op: socials.OpAppend, Profile: socials.Profile{Service: "GitHub", Username: "octocat", URL: "https://github.com/octocat"}},
	})
	assert.Contains(t, script, `{service name:"GitHub", user name:"octocat", url:"https://github.com/octocat"}`)
}

func TestUpdateFieldsScript(t *testing.T) {
	first, note := "Jane", `likes "quotes"`
	script := UpdateFields(ByID("ABC"), contacts.Fields{FirstName: &first, Note: &note})

	assert.Contains(t, script, `set first name of thePerson to "Jane"`)
	assert.Contains(t, script, `set note of thePerson to "likes \"quotes\""`)
	assert.Less(t, strings.Index(script, "set first name"), strings.Index(script, "set note"))
	assert.Contains(t, script, "\tsave\n")
}

func TestReadNoteScript(t *testing.T) {
	script := ReadNote(ByID("ABC"))
	assert.Contains(t, script, "set theNote to note of thePerson")
	assert.Contains(t, script, `if theNote is missing value then return ""`)
}

func TestCreatePersonScript(t *testing.T) {
	first, org, empty := "Jane", `Doe "&" Co`, ""
	script := CreatePerson(contacts.Draft{
		Fields: contacts.Fields{FirstName: &first, LastName: &empty, Organization: &org},
		Entries: []contacts.Entry{
			contacts.NewEntry(contacts.EntryPhone, "555 0100", ""),
			contacts.NewEntry(contacts.EntryURL, "https://example.com", "blog"),
		},
		Socials: []socials.Profile{{Service: "GitHub", Username: "janedoe"}},
	})

	assert.NotContains(t, script, "first person whose")
	assert.Contains(t, script, `set thePerson to make new person with properties {first name:"Jane", organization:"Doe \"&\" Co"}`)
	assert.Contains(t, script, `make new phone at end of phones of thePerson with properties {label:"mobile", value:"555 0100"}`)
	assert.Contains(t, script, `make new url at end of urls of thePerson with properties {label:"blog", value:"https://example.com"}`)
	assert.Contains(t, script, `{service name:"GitHub", user name:"janedoe"}`)
	assert.Less(t, strings.Index(script, "save"), strings.Index(script, "return id of thePerson"))
}

func TestEntryScripts(t *testing.T) {
	read := ReadEntries(ByID("ABC"), contacts.EntryEmail)
	assert.Contains(t, read, "repeat with theEntry in emails of thePerson")
	assert.Contains(t, read, "set recordSep to character id 30")
	assert.NotContains(t, read, "try")

	add := AddEntry(ByID("ABC"), contacts.NewEntry(contacts.EntryEmail, `ja"ne@example.com`, "work"))
	assert.Contains(t, add, `make new email at end of emails of thePerson with properties {label:"work", value:"ja\"ne@example.com"}`)
	assert.Contains(t, add, "\tsave\n")

	del := DeleteEntry(ByName{First: "Jane", Last: "Doe"}, contacts.EntryPhone, 0)
	assert.Contains(t, del, "delete phone 1 of thePerson")
	assert.Contains(t, del, "\tsave\n")
}
