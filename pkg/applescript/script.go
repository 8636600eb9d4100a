// Package applescript encodes reconciliation plans and contact updates as
// AppleScript for the Contacts application, and decodes the profile dumps
// those scripts print.
//
// Every interpolated value goes through Escape. Scripts do not trap errors,
// so a missing contact or a rejected write surfaces as a non-zero osascript
// exit with the diagnostic on stderr.
package applescript

import (
	"fmt"
	"strings"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/socials"
)

// Escape quotes s for use inside an AppleScript string literal.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// quote returns s as an escaped AppleScript string literal.
func quote(s string) string {
	return `"` + Escape(s) + `"`
}

// Selector locates one person in the Contacts application.
type Selector interface {
	// Expression returns an AppleScript expression evaluating to the person.
	Expression() string
}

// ByID selects a person by the store's unique identifier.
type ByID string

// Expression implements Selector.
func (id ByID) Expression() string {
	return "first person whose id is " + quote(string(id))
}

// ByName selects the first person with the given first and last name.
type ByName struct {
	First string
	Last  string
}

// Expression implements Selector.
func (n ByName) Expression() string {
	return fmt.Sprintf("first person whose first name is %s and last name is %s", quote(n.First), quote(n.Last))
}

// SelectorFor returns the selector for ref under the given lookup mode.
// Name lookup is used only when asked for and the ref carries a name.
func SelectorFor(ref contacts.Ref, mode string) Selector {
	if mode == constants.LookupByName && (ref.FirstName != "" || ref.LastName != "") {
		return ByName{First: ref.FirstName, Last: ref.LastName}
	}
	return ByID(ref.ID)
}

// builder accumulates the lines of one tell block.
type builder struct {
	sb     strings.Builder
	indent int
}

func newBuilder(sel Selector) *builder {
	b := newTell()
	b.line("set thePerson to %s", sel.Expression())
	return b
}

func newTell() *builder {
	b := &builder{}
	b.line(`tell application "%s"`, constants.HostApplication)
	b.indent++
	return b
}

func (b *builder) line(format string, args ...any) *builder {
	b.sb.WriteString(strings.Repeat("\t", b.indent))
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteByte('\n')
	return b
}

// end closes the tell block and returns the script.
func (b *builder) end() string {
	b.indent = 0
	b.line("end tell")
	return b.sb.String()
}

// ReadProfiles returns a script that prints every social profile of the
// selected person, in store order and including nullified ones, in the
// format DecodeProfiles reads.
func ReadProfiles(sel Selector) string {
	b := newBuilder(sel)
	b.line("set fieldSep to character id %d", constants.FieldSeparatorCode)
	b.line("set recordSep to character id %d", constants.RecordSeparatorCode)
	b.line(`set out to ""`)
	b.line("set isFirst to true")
	b.line("repeat with sp in social profiles of thePerson")
	b.indent++
	b.line("set svc to service name of sp")
	b.line(`if svc is missing value then set svc to ""`)
	b.line("set usr to user name of sp")
	b.line(`if usr is missing value then set usr to ""`)
	b.line("set theUrl to url of sp")
	b.line(`if theUrl is missing value then set theUrl to ""`)
	b.line("if isFirst then")
	b.line("\tset isFirst to false")
	b.line("else")
	b.line("\tset out to out & recordSep")
	b.line("end if")
	b.line("set out to out & svc & fieldSep & usr & fieldSep & theUrl")
	b.indent--
	b.line("end repeat")
	b.line("return out")
	return b.end()
}

// WriteProfiles returns one script applying edits to the selected person's
// social profiles, followed by a save. Positional edits address the
// 1-based "social profile N"; appends create a new profile at the end.
func WriteProfiles(sel Selector, edits []socials.Edit) string {
	b := newBuilder(sel)
	for _, e := range edits {
		switch e.Op {
		case socials.OpOverwrite, socials.OpNullify:
			b.line("set sp to social profile %d of thePerson", e.Index+1)
			b.line("set service name of sp to %s", quote(e.Profile.Service))
			b.line("set user name of sp to %s", quote(e.Profile.Username))
			b.line("set url of sp to %s", quote(e.Profile.URL))
		case socials.OpAppend:
			props := fmt.Sprintf("service name:%s, user name:%s", quote(e.Profile.Service), quote(e.Profile.Username))
			if e.Profile.URL != "" {
				props += ", url:" + quote(e.Profile.URL)
			}
			b.line("make new social profile at end of social profiles of thePerson with properties {%s}", props)
		}
	}
	b.line("save")
	b.line(`return "ok"`)
	return b.end()
}

// UpdateFields returns a script setting each of the given scalar fields on
// the selected person, followed by a save.
func UpdateFields(sel Selector, fields contacts.Fields) string {
	b := newBuilder(sel)
	for _, f := range fields.List() {
		b.line("set %s of thePerson to %s", f.Property, quote(f.Value))
	}
	b.line("save")
	b.line(`return "ok"`)
	return b.end()
}

// CreatePerson returns a script making a new person from draft, adding its
// entries and social profiles, saving and printing the new id.
func CreatePerson(draft contacts.Draft) string {
	b := newTell()
	var props []string
	for _, f := range draft.Fields.List() {
		if f.Value != "" {
			props = append(props, f.Property+":"+quote(f.Value))
		}
	}
	b.line("set thePerson to make new person with properties {%s}", strings.Join(props, ", "))
	for _, e := range draft.Entries {
		b.line("make new %s at end of %s of thePerson with properties {label:%s, value:%s}",
			e.Kind, e.Kind.Plural(), quote(e.Label), quote(e.Value))
	}
	for _, p := range draft.Socials {
		b.line("make new social profile at end of social profiles of thePerson with properties {service name:%s, user name:%s}",
			quote(p.Service), quote(p.Username))
	}
	b.line("save")
	b.line("return id of thePerson")
	return b.end()
}

// ReadEntries returns a script printing the label and value of every
// phone, email or url of the selected person, in the format DecodeEntries
// reads.
func ReadEntries(sel Selector, kind contacts.EntryKind) string {
	b := newBuilder(sel)
	b.line("set fieldSep to character id %d", constants.FieldSeparatorCode)
	b.line("set recordSep to character id %d", constants.RecordSeparatorCode)
	b.line(`set out to ""`)
	b.line("set isFirst to true")
	b.line("repeat with theEntry in %s of thePerson", kind.Plural())
	b.indent++
	b.line("set theLabel to label of theEntry")
	b.line(`if theLabel is missing value then set theLabel to ""`)
	b.line("set theValue to value of theEntry")
	b.line(`if theValue is missing value then set theValue to ""`)
	b.line("if isFirst then")
	b.line("\tset isFirst to false")
	b.line("else")
	b.line("\tset out to out & recordSep")
	b.line("end if")
	b.line("set out to out & theLabel & fieldSep & theValue")
	b.indent--
	b.line("end repeat")
	b.line("return out")
	return b.end()
}

// AddEntry returns a script appending entry to the selected person.
func AddEntry(sel Selector, entry contacts.Entry) string {
	b := newBuilder(sel)
	b.line("make new %s at end of %s of thePerson with properties {label:%s, value:%s}",
		entry.Kind, entry.Kind.Plural(), quote(entry.Label), quote(entry.Value))
	b.line("save")
	b.line(`return "ok"`)
	return b.end()
}

// DeleteEntry returns a script deleting the entry at the 0-based index of
// the selected person's phones, emails or urls.
func DeleteEntry(sel Selector, kind contacts.EntryKind, index int) string {
	b := newBuilder(sel)
	b.line("delete %s %d of thePerson", kind, index+1)
	b.line("save")
	b.line(`return "ok"`)
	return b.end()
}

// ReadNote returns a script printing the selected person's note.
func ReadNote(sel Selector) string {
	b := newBuilder(sel)
	b.line("set theNote to note of thePerson")
	b.line(`if theNote is missing value then return ""`)
	b.line("return theNote")
	return b.end()
}
