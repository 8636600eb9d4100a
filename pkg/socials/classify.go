package socials

import (
	"strings"

	"github.com/agentstation/pimctl/pkg/constants"
)

// VerdictKind classifies a stored username.
type VerdictKind int

const (
	// Unrecoverable means neither the username nor the url yields a handle.
	Unrecoverable VerdictKind = iota
	// Valid means the stored username can be kept.
	Valid
	// RecoveredFromURL means the username was rebuilt from the profile url.
	RecoveredFromURL
)

// String returns the verdict name used in logs and plan reasons.
func (k VerdictKind) String() string {
	switch k {
	case Valid:
		return "valid"
	case RecoveredFromURL:
		return "recovered_from_url"
	default:
		return "unrecoverable"
	}
}

// Verdict is the classifier's judgement of one profile. It is derived on
// every read and never cached: the store may change between runs.
type Verdict struct {
	Kind     VerdictKind
	Username string
}

// Usable reports whether the verdict carries a username to write back.
func (v Verdict) Usable() bool {
	return v.Kind != Unrecoverable
}

// Classifier decides whether stored usernames are real handles or domain
// fragments the store wrote back into the username slot.
type Classifier struct {
	registry *Registry
}

// NewClassifier creates a classifier backed by reg, or by the default
// registry when reg is nil.
func NewClassifier(reg *Registry) *Classifier {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Classifier{registry: reg}
}

// Classify judges p, whose service has already been normalized.
//
// A username is unusable when it is empty, the preference marker, or a
// substring of the service's "www."-prefixed domain. An unusable username is
// recovered from the last non-empty url path segment when that segment is
// not itself a domain fragment.
func (c *Classifier) Classify(p Profile, service string) Verdict {
	domain, _ := c.registry.DomainFor(service)

	if username := strings.TrimSpace(p.Username); usable(username, domain) {
		return Verdict{Kind: Valid, Username: username}
	}

	if candidate := usernameFromURL(p.URL); candidate != "" && !isDomainFragment(candidate, domain) {
		return Verdict{Kind: RecoveredFromURL, Username: candidate}
	}

	return Verdict{Kind: Unrecoverable}
}

func usable(username, domain string) bool {
	if username == "" || username == constants.PreferenceMarker {
		return false
	}
	return !isDomainFragment(username, domain)
}

// isDomainFragment reports whether s is contained in the www-prefixed
// domain. Services without a domain have no fragments.
func isDomainFragment(s, domain string) bool {
	if domain == "" {
		return false
	}
	return containsFold("www."+domain, s)
}

// usernameFromURL returns the last path segment of raw, falling back to the
// second-to-last one when raw ends in a slash.
func usernameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == constants.MissingValue {
		return ""
	}
	parts := strings.Split(raw, "/")
	candidate := parts[len(parts)-1]
	if candidate == "" && len(parts) > 1 {
		candidate = parts[len(parts)-2]
	}
	return strings.TrimSpace(candidate)
}
