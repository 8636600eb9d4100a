package contacts

import (
	"fmt"
	"strings"

	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/socials"
)

// EntryKind names a multi-valued contact property.
type EntryKind string

// Multi-valued properties that can be added and removed.
const (
	EntryPhone EntryKind = "phone"
	EntryEmail EntryKind = "email"
	EntryURL   EntryKind = "url"
)

// Plural returns the AppleScript element list name ("phones").
func (k EntryKind) Plural() string {
	return string(k) + "s"
}

// Title returns the kind for messages ("Phone", "URL").
func (k EntryKind) Title() string {
	if k == EntryURL {
		return "URL"
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// DefaultLabel is the label used when none is given.
func (k EntryKind) DefaultLabel() string {
	switch k {
	case EntryPhone:
		return "mobile"
	case EntryEmail:
		return "home"
	default:
		return "homepage"
	}
}

// Matches reports whether a stored value is the one target names. Phones
// compare by digits in either direction, emails case-insensitively and
// urls by substring.
func (k EntryKind) Matches(stored, target string) bool {
	switch k {
	case EntryPhone:
		s, t := Digits(stored), Digits(target)
		if s == "" || t == "" {
			return false
		}
		return strings.Contains(s, t) || strings.Contains(t, s)
	case EntryEmail:
		return strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(target))
	default:
		return target != "" && strings.Contains(stored, target)
	}
}

// ParseEntryKind validates a kind name.
func ParseEntryKind(s string) (EntryKind, error) {
	switch k := EntryKind(strings.ToLower(strings.TrimSpace(s))); k {
	case EntryPhone, EntryEmail, EntryURL:
		return k, nil
	}
	return "", errors.NewValidationError("kind", s, "expected phone, email or url")
}

// Entry is one labeled value of a multi-valued property.
type Entry struct {
	Kind  EntryKind `json:"kind" yaml:"kind"`
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
	Value string    `json:"value" yaml:"value"`
}

// NewEntry returns an entry with surrounding space trimmed and the default
// label filled in.
func NewEntry(kind EntryKind, value, label string) Entry {
	label = strings.TrimSpace(label)
	if label == "" {
		label = kind.DefaultLabel()
	}
	return Entry{Kind: kind, Label: label, Value: strings.TrimSpace(value)}
}

// Validate checks that the entry has a known kind and a value.
func (e Entry) Validate() error {
	if _, err := ParseEntryKind(string(e.Kind)); err != nil {
		return err
	}
	if e.Value == "" {
		return errors.NewValidationError(string(e.Kind), e.Value, "value is required")
	}
	if e.Kind == EntryPhone && Digits(e.Value) == "" {
		return errors.NewValidationError("phone", e.Value, "must contain at least one digit")
	}
	return nil
}

// AddTo records the entry on c's phone or email list.
func (e Entry) AddTo(c *Contact) {
	switch e.Kind {
	case EntryPhone:
		c.Phones = append(c.Phones, Phone{Number: e.Value, Label: e.Label})
	case EntryEmail:
		c.Emails = append(c.Emails, Email{Address: e.Value, Label: e.Label})
	}
}

// RemoveFrom drops the last phone or email of c matching value.
func (k EntryKind) RemoveFrom(c *Contact, value string) {
	switch k {
	case EntryPhone:
		for i := len(c.Phones) - 1; i >= 0; i-- {
			if k.Matches(c.Phones[i].Number, value) {
				c.Phones = append(c.Phones[:i:i], c.Phones[i+1:]...)
				return
			}
		}
	case EntryEmail:
		for i := len(c.Emails) - 1; i >= 0; i-- {
			if k.Matches(c.Emails[i].Address, value) {
				c.Emails = append(c.Emails[:i:i], c.Emails[i+1:]...)
				return
			}
		}
	}
}

// Digits returns the decimal digits of s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Draft is a contact to be created.
type Draft struct {
	Fields  Fields
	Entries []Entry
	Socials []socials.Profile
}

// Validate requires a first name, last name or organization, and checks
// every entry.
func (d Draft) Validate() error {
	named := false
	for _, v := range []*string{d.Fields.FirstName, d.Fields.LastName, d.Fields.Organization} {
		if v != nil && strings.TrimSpace(*v) != "" {
			named = true
		}
	}
	if !named {
		return errors.NewValidationError("name", nil, "a first name, last name or organization is required")
	}
	for _, e := range d.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("invalid %s: %w", e.Kind, err)
		}
	}
	return nil
}

// Contact returns the view of the draft once the store assigned id.
func (d Draft) Contact(id string) *Contact {
	c := &Contact{ID: id}
	d.Fields.Apply(c)
	for _, e := range d.Entries {
		e.AddTo(c)
	}
	c.Socials = d.Socials
	return c
}
