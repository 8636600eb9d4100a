package reconciler

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/agentstation/pimctl/pkg/applescript"
	"github.com/agentstation/pimctl/pkg/bridge"
	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/socials"
)

const quoted = `"((?:[^"\\]|\\.)*)"`

var (
	reSelectID   = regexp.MustCompile(`first person whose id is ` + quoted)
	reSelectName = regexp.MustCompile(`first person whose first name is ` + quoted + ` and last name is ` + quoted)
	reSelectSP   = regexp.MustCompile(`^set sp to social profile (\d+) of thePerson$`)
	reSetSP      = regexp.MustCompile(`^set (service name|user name|url) of sp to ` + quoted + `$`)
	reMakeSP     = regexp.MustCompile(`^make new social profile at end of social profiles of thePerson with properties \{(.*)\}$`)
	reProp       = regexp.MustCompile(`(service name|user name|url):` + quoted)
	reSetField   = regexp.MustCompile(`^set ([a-z ]+) of thePerson to ` + quoted + `$`)
	reReadEntry  = regexp.MustCompile(`repeat with theEntry in (phones|emails|urls) of thePerson`)
	reMakeEntry  = regexp.MustCompile(`^make new (phone|email|url) at end of [a-z]+ of thePerson with properties \{label:` + quoted + `, value:` + quoted + `\}$`)
	reDelete     = regexp.MustCompile(`^delete (phone|email|url) (\d+) of thePerson$`)

	unescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`)
)

// fakeStore is an in-memory Contacts.app that understands the scripts
// package applescript generates.
type fakeStore struct {
	mu sync.Mutex

	id       string
	first    string
	last     string
	note     string
	fields   map[string]string
	profiles []socials.Profile
	entries  map[contacts.EntryKind][]contacts.Entry

	failWrites   bool
	ignoreWrites bool
	// truncate drops this many trailing bytes from read output and flags
	// the result as truncated.
	truncate int
	created  []string

	scripts       []string
	reads         int
	writeAttempts int
}

func newFakeStore(profiles ...socials.Profile) *fakeStore {
	return &fakeStore{
		id:       "JANE-1:ABPerson",
		first:    "Jane",
		last:     "Doe",
		fields:   map[string]string{},
		profiles: profiles,
		entries:  map[contacts.EntryKind][]contacts.Entry{},
	}
}

// Lookup implements Directory.
func (s *fakeStore) Lookup(_ context.Context, id string) (*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.id {
		return nil, errors.NewNotFoundError("contact", id)
	}
	return &contacts.Contact{ID: s.id, FirstName: s.first, LastName: s.last}, nil
}

func (s *fakeStore) snapshot() []socials.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]socials.Profile(nil), s.profiles...)
}

func (s *fakeStore) bridgeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scripts)
}

func fail(stderr string) *bridge.Result {
	return &bridge.Result{Stderr: "execution error: " + stderr + "\n", ExitCode: 1}
}

// Run implements bridge.Bridge.
func (s *fakeStore) Run(_ context.Context, script string) (*bridge.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, script)

	if strings.Contains(script, "make new person with properties") {
		s.writeAttempts++
		if s.failWrites {
			return fail("Contacts got an error: AppleEvent timed out. (-1712)"), nil
		}
		s.created = append(s.created, script)
		return &bridge.Result{Stdout: "NEW-1:ABPerson\n"}, nil
	}

	if m := reSelectID.FindStringSubmatch(script); m != nil && unescaper.Replace(m[1]) != s.id {
		return fail(`Contacts got an error: Can’t get person 1 whose id = "` + m[1] + `". Invalid index. (-1719)`), nil
	}
	if m := reSelectName.FindStringSubmatch(script); m != nil &&
		(unescaper.Replace(m[1]) != s.first || unescaper.Replace(m[2]) != s.last) {
		return fail("Contacts got an error: Can’t get person 1 whose first name = … (-1719)"), nil
	}

	switch {
	case strings.Contains(script, "repeat with sp in social profiles"):
		s.reads++
		return s.output(applescript.EncodeProfiles(s.profiles)), nil
	case strings.Contains(script, "set theNote to note of thePerson"):
		return s.output(s.note), nil
	}
	if m := reReadEntry.FindStringSubmatch(script); m != nil {
		kind := contacts.EntryKind(strings.TrimSuffix(m[1], "s"))
		return s.output(encodeEntries(s.entries[kind])), nil
	}

	s.writeAttempts++
	if s.failWrites {
		return fail("Contacts got an error: AppleEvent timed out. (-1712)"), nil
	}
	if s.ignoreWrites {
		return &bridge.Result{Stdout: "ok\n"}, nil
	}
	if res := s.apply(script); res != nil {
		return res, nil
	}
	return &bridge.Result{Stdout: "ok\n"}, nil
}

func (s *fakeStore) output(out string) *bridge.Result {
	if s.truncate > 0 && len(out) > s.truncate {
		return &bridge.Result{Stdout: out[:len(out)-s.truncate], Truncated: true}
	}
	return &bridge.Result{Stdout: out + "\n"}
}

func encodeEntries(entries []contacts.Entry) string {
	records := make([]string, len(entries))
	for i, e := range entries {
		records[i] = e.Label + constants.FieldSeparator + e.Value
	}
	return strings.Join(records, constants.RecordSeparator)
}

// apply interprets a write script. Nothing is saved if any line fails.
func (s *fakeStore) apply(script string) *bridge.Result {
	profiles := append([]socials.Profile(nil), s.profiles...)
	first, last, note := s.first, s.last, s.note
	fields := map[string]string{}
	entries := map[contacts.EntryKind][]contacts.Entry{}
	for k, v := range s.entries {
		entries[k] = append([]contacts.Entry(nil), v...)
	}
	cur := -1

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if m := reSelectSP.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			if n < 1 || n > len(profiles) {
				return fail("Contacts got an error: Can’t get social profile " + m[1] + " of person. Invalid index. (-1719)")
			}
			cur = n - 1
			continue
		}
		if m := reSetSP.FindStringSubmatch(line); m != nil {
			v := unescaper.Replace(m[2])
			switch m[1] {
			case "service name":
				profiles[cur].Service = v
			case "user name":
				profiles[cur].Username = v
			case "url":
				profiles[cur].URL = v
			}
			continue
		}
		if m := reMakeSP.FindStringSubmatch(line); m != nil {
			var p socials.Profile
			for _, prop := range reProp.FindAllStringSubmatch(m[1], -1) {
				v := unescaper.Replace(prop[2])
				switch prop[1] {
				case "service name":
					p.Service = v
				case "user name":
					p.Username = v
				case "url":
					p.URL = v
				}
			}
			profiles = append(profiles, p)
			continue
		}
		if m := reMakeEntry.FindStringSubmatch(line); m != nil {
			kind := contacts.EntryKind(m[1])
			entries[kind] = append(entries[kind], contacts.Entry{
				Kind:  kind,
				Label: unescaper.Replace(m[2]),
				Value: unescaper.Replace(m[3]),
			})
			continue
		}
		if m := reDelete.FindStringSubmatch(line); m != nil {
			kind := contacts.EntryKind(m[1])
			n, _ := strconv.Atoi(m[2])
			if n < 1 || n > len(entries[kind]) {
				return fail("Contacts got an error: Can’t get " + m[1] + " " + m[2] + " of person. Invalid index. (-1719)")
			}
			entries[kind] = append(entries[kind][:n-1:n-1], entries[kind][n:]...)
			continue
		}
		if m := reSetField.FindStringSubmatch(line); m != nil {
			v := unescaper.Replace(m[2])
			switch m[1] {
			case "first name":
				first = v
			case "last name":
				last = v
			case "note":
				note = v
			default:
				fields[m[1]] = v
			}
		}
	}

	s.profiles, s.first, s.last, s.note = profiles, first, last, note
	s.entries = entries
	for k, v := range fields {
		s.fields[k] = v
	}
	return nil
}
