package socials

import "strings"

// Profile is one social-profile entry of a contact as stored. The store only
// supports overwriting all fields; a removed profile is one whose fields are
// all empty.
type Profile struct {
	Service  string `json:"service" yaml:"service"`
	Username string `json:"username" yaml:"username"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

// IsEmpty reports whether the profile has been nullified.
func (p Profile) IsEmpty() bool {
	return strings.TrimSpace(p.Service) == "" &&
		strings.TrimSpace(p.Username) == "" &&
		strings.TrimSpace(p.URL) == ""
}

// Visible filters out nullified profiles, keeping store order.
func Visible(profiles []Profile) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if !p.IsEmpty() {
			out = append(out, p)
		}
	}
	return out
}
