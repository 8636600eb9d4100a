// Package contacts defines the contact records pimctl reads from the native
// address book and reports back to callers.
package contacts

import (
	"strings"

	"github.com/agentstation/pimctl/pkg/socials"
)

// Ref identifies a contact. ID is the store-assigned unique identifier; the
// name pair is what the automation layer falls back to when it cannot look
// a person up by id.
type Ref struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
}

// Phone is a labeled phone number.
type Phone struct {
	Number string `json:"number" yaml:"number"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Email is a labeled email address.
type Email struct {
	Address string `json:"address" yaml:"address"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Contact is the view of a person returned by get, search and update.
type Contact struct {
	ID           string            `json:"id" yaml:"id"`
	FirstName    string            `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	MiddleName   string            `json:"middleName,omitempty" yaml:"middleName,omitempty"`
	Nickname     string            `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Organization string            `json:"organization,omitempty" yaml:"organization,omitempty"`
	JobTitle     string            `json:"jobTitle,omitempty" yaml:"jobTitle,omitempty"`
	Department   string            `json:"department,omitempty" yaml:"department,omitempty"`
	Note         string            `json:"note,omitempty" yaml:"note,omitempty"`
	Phones       []Phone           `json:"phones,omitempty" yaml:"phones,omitempty"`
	Emails       []Email           `json:"emails,omitempty" yaml:"emails,omitempty"`
	Socials      []socials.Profile `json:"socials,omitempty" yaml:"socials,omitempty"`
}

// Ref returns the reference used to address c in the store.
func (c *Contact) Ref() Ref {
	return Ref{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
}

// FullName joins the non-empty first, middle and last names.
func (c *Contact) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.FirstName, c.MiddleName, c.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName returns the full name, falling back to the organization and
// then the id.
func (c *Contact) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	if c.Organization != "" {
		return c.Organization
	}
	return c.ID
}

// Fields is a partial update of a contact's scalar fields. Nil means the
// field is left unchanged.
type Fields struct {
	FirstName    *string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	MiddleName   *string `json:"middleName,omitempty" yaml:"middleName,omitempty"`
	Nickname     *string `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Organization *string `json:"organization,omitempty" yaml:"organization,omitempty"`
	JobTitle     *string `json:"jobTitle,omitempty" yaml:"jobTitle,omitempty"`
	Department   *string `json:"department,omitempty" yaml:"department,omitempty"`
	Note         *string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Field is one set value of a Fields update, named by its store property.
type Field struct {
	Property string
	Value    string
}

// List returns the set fields in a fixed order.
func (f Fields) List() []Field {
	all := []struct {
		property string
		value    *string
	}{
		{"first name", f.FirstName},
		{"last name", f.LastName},
		{"middle name", f.MiddleName},
		{"nickname", f.Nickname},
		{"organization", f.Organization},
		{"job title", f.JobTitle},
		{"department", f.Department},
		{"note", f.Note},
	}

	var out []Field
	for _, field := range all {
		if field.value != nil {
			out = append(out, Field{Property: field.property, Value: *field.value})
		}
	}
	return out
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return len(f.List()) == 0
}

// Apply copies the set fields onto c.
func (f Fields) Apply(c *Contact) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.FirstName, f.FirstName)
	set(&c.LastName, f.LastName)
	set(&c.MiddleName, f.MiddleName)
	set(&c.Nickname, f.Nickname)
	set(&c.Organization, f.Organization)
	set(&c.JobTitle, f.JobTitle)
	set(&c.Department, f.Department)
	set(&c.Note, f.Note)
}
