// Package socials implements social-profile reconciliation for contacts whose
// store cannot delete profiles, mangles service-name casing and tends to
// write domain fragments into username fields.
//
// The package is pure: it classifies and plans but never talks to the store.
// The Registry maps service names to canonical entries, the Classifier judges
// stored usernames, and the Planner turns an Action into positional Edits.
package socials

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/pimctl/pkg/errors"
)

//go:embed services.yaml
var servicesYAML []byte

// Service is one entry of the service table.
type Service struct {
	Name    string   `yaml:"name" json:"name"`
	Domain  string   `yaml:"domain,omitempty" json:"domain,omitempty"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Defunct bool     `yaml:"defunct,omitempty" json:"defunct,omitempty"`
}

// Registry is an immutable, case-insensitive service table.
type Registry struct {
	services []Service
	byKey    map[string]int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the process-wide registry built from the embedded
// service table. The table is compiled in, so a failure to load it panics.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r, err := LoadRegistry(servicesYAML)
		if err != nil {
			panic(fmt.Sprintf("socials: embedded services.yaml: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// LoadRegistry parses a YAML service list and validates it: names and
// aliases must be unique ignoring case, and domains must be bare hostnames.
func LoadRegistry(data []byte) (*Registry, error) {
	var services []Service
	if err := yaml.Unmarshal(data, &services); err != nil {
		return nil, errors.WrapParse("yaml", "services.yaml", err)
	}
	return NewRegistry(services...)
}

// NewRegistry builds a registry from entries, applying the same validation
// as LoadRegistry.
func NewRegistry(services ...Service) (*Registry, error) {
	r := &Registry{
		services: make([]Service, 0, len(services)),
		byKey:    make(map[string]int, len(services)*2),
	}

	for _, svc := range services {
		svc.Name = strings.TrimSpace(svc.Name)
		if svc.Name == "" {
			return nil, errors.NewValidationError("name", svc, "service name is required")
		}
		if err := validateDomain(svc.Domain); err != nil {
			return nil, errors.WrapValidation("domain", fmt.Errorf("%s: %w", svc.Name, err))
		}
		svc.Aliases = append([]string(nil), svc.Aliases...)

		idx := len(r.services)
		for _, key := range append([]string{svc.Name}, svc.Aliases...) {
			k := fold(key)
			if k == "" {
				continue
			}
			if prev, dup := r.byKey[k]; dup {
				return nil, errors.NewValidationError("name", key,
					fmt.Sprintf("%q collides with service %s", key, r.services[prev].Name))
			}
			r.byKey[k] = idx
		}
		r.services = append(r.services, svc)
	}

	return r, nil
}

// validateDomain enforces the bare-hostname invariant.
func validateDomain(domain string) error {
	switch {
	case domain == "":
		return nil
	case strings.Contains(domain, "://"):
		return fmt.Errorf("domain %q must not include a scheme", domain)
	case strings.HasPrefix(strings.ToLower(domain), "www."):
		return fmt.Errorf("domain %q must not include www.", domain)
	case strings.ContainsAny(domain, "/ "):
		return fmt.Errorf("domain %q must be a bare hostname", domain)
	}
	return nil
}

// Resolve looks a raw service name up, ignoring case and surrounding space.
func (r *Registry) Resolve(raw string) (Service, bool) {
	idx, ok := r.byKey[fold(raw)]
	if !ok {
		return Service{}, false
	}
	return r.services[idx], true
}

// Normalize returns the canonical display name for raw. Unknown services
// get their first letter upper-cased and the remainder lower-cased, which
// undoes the store's habit of rendering names in all caps.
func (r *Registry) Normalize(raw string) string {
	if svc, ok := r.Resolve(raw); ok {
		return svc.Name
	}
	return capitalize(strings.TrimSpace(raw))
}

// DomainFor returns the domain of the service raw resolves to.
func (r *Registry) DomainFor(raw string) (string, bool) {
	svc, ok := r.Resolve(raw)
	if !ok || svc.Domain == "" {
		return "", false
	}
	return svc.Domain, true
}

// IsDefunct reports whether raw names a service that no longer exists.
func (r *Registry) IsDefunct(raw string) bool {
	svc, ok := r.Resolve(raw)
	return ok && svc.Defunct
}

// Services returns a copy of the table in declaration order.
func (r *Registry) Services() []Service {
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}

// SameService reports whether two stored or requested service names
// normalize to the same service.
func (r *Registry) SameService(a, b string) bool {
	na, nb := r.Normalize(a), r.Normalize(b)
	return na != "" && fold(na) == fold(nb)
}

// fold case-folds s for comparisons. Casers carry state, so one is built
// per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// capitalize title-cases the first rune and lower-cases the rest. The first
// rune maps to exactly one rune so a second pass splits s the same way.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + cases.Lower(language.Und).String(s[size:])
}

// containsFold reports whether haystack contains needle, ignoring case.
func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}
