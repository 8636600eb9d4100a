package socials

import (
	"fmt"

	"github.com/agentstation/pimctl/pkg/errors"
)

// EditOp is the kind of store write an Edit performs.
type EditOp string

const (
	// OpOverwrite rewrites all fields of an existing profile.
	OpOverwrite EditOp = "overwrite"
	// OpAppend adds a new profile at the end of the list.
	OpAppend EditOp = "append"
	// OpNullify sets all fields of an existing profile to empty.
	OpNullify EditOp = "nullify"
)

// Edit is one positional write. Index is the 0-based position in store
// order; for appends it is the position the new profile will take.
type Edit struct {
	Op      EditOp  `json:"op"`
	Index   int     `json:"index"`
	Profile Profile `json:"profile"`
	Reason  string  `json:"reason,omitempty"`
}

// Plan is the ordered list of edits for one action.
type Plan struct {
	Action Action `json:"action"`
	Edits  []Edit `json:"edits"`
}

// Empty reports whether the plan leaves the store unchanged.
func (p Plan) Empty() bool {
	return len(p.Edits) == 0
}

// Apply projects the plan onto existing and returns the resulting profile
// list. existing is not modified.
func (p Plan) Apply(existing []Profile) []Profile {
	out := make([]Profile, len(existing), len(existing)+len(p.Edits))
	copy(out, existing)
	for _, e := range p.Edits {
		switch e.Op {
		case OpAppend:
			out = append(out, e.Profile)
		case OpOverwrite, OpNullify:
			if e.Index >= 0 && e.Index < len(out) {
				out[e.Index] = e.Profile
			}
		}
	}
	return out
}

// Planner turns actions into edits against a contact's stored profiles.
type Planner struct {
	registry   *Registry
	classifier *Classifier
}

// NewPlanner creates a planner backed by reg, or by the default registry
// when reg is nil.
func NewPlanner(reg *Registry) *Planner {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Planner{
		registry:   reg,
		classifier: NewClassifier(reg),
	}
}

// Registry returns the registry the planner normalizes against.
func (p *Planner) Registry() *Registry {
	return p.registry
}

// Plan computes the edits for action given the profiles currently stored,
// in store order. Edits that would not change a profile are omitted, so
// re-planning after a successful write yields an empty plan.
func (p *Planner) Plan(action Action, existing []Profile) (Plan, error) {
	if err := action.Validate(); err != nil {
		return Plan{}, err
	}

	plan := Plan{Action: action}
	switch action.Kind {
	case ActionUpsert:
		edit, err := p.upsert(action, existing)
		if err != nil {
			return Plan{}, err
		}
		plan.Edits = append(plan.Edits, edit)
	case ActionRemove:
		for i, stored := range existing {
			if p.registry.SameService(stored.Service, action.Service) {
				plan.Edits = append(plan.Edits, nullify(i, "removed"))
			}
		}
	case ActionFixOne:
		for i, stored := range existing {
			if p.registry.SameService(stored.Service, action.Service) {
				plan.Edits = append(plan.Edits, p.fix(i, stored))
			}
		}
	case ActionFixAll:
		for i, stored := range existing {
			if !stored.IsEmpty() {
				plan.Edits = append(plan.Edits, p.fix(i, stored))
			}
		}
	}

	plan.Edits = dropNoops(plan.Edits, existing)
	return plan, nil
}

// upsert overwrites the first profile of the service in place, keeping its
// url, or appends a new one. Later duplicates are left alone.
func (p *Planner) upsert(action Action, existing []Profile) (Edit, error) {
	if p.registry.IsDefunct(action.Service) {
		return Edit{}, errors.NewValidationError("service", action.Service,
			fmt.Sprintf("%s no longer exists", p.registry.Normalize(action.Service)))
	}

	service := p.registry.Normalize(action.Service)
	for i, stored := range existing {
		if p.registry.SameService(stored.Service, service) {
			return Edit{
				Op:      OpOverwrite,
				Index:   i,
				Profile: Profile{Service: service, Username: action.Username, URL: stored.URL},
				Reason:  "updated",
			}, nil
		}
	}

	return Edit{
		Op:      OpAppend,
		Index:   len(existing),
		Profile: Profile{Service: service, Username: action.Username},
		Reason:  "added",
	}, nil
}

// fix repairs one stored profile using the classifier only.
func (p *Planner) fix(i int, stored Profile) Edit {
	if p.registry.IsDefunct(stored.Service) {
		return nullify(i, "defunct service")
	}

	service := p.registry.Normalize(stored.Service)
	verdict := p.classifier.Classify(stored, service)
	if !verdict.Usable() {
		return nullify(i, verdict.Kind.String())
	}

	return Edit{
		Op:      OpOverwrite,
		Index:   i,
		Profile: Profile{Service: service, Username: verdict.Username, URL: stored.URL},
		Reason:  verdict.Kind.String(),
	}
}

func nullify(i int, reason string) Edit {
	return Edit{Op: OpNullify, Index: i, Reason: reason}
}

// dropNoops removes overwrites and nullifications that match what is
// already stored.
func dropNoops(edits []Edit, existing []Profile) []Edit {
	out := edits[:0]
	for _, e := range edits {
		if e.Op != OpAppend && e.Index < len(existing) && existing[e.Index] == e.Profile {
			continue
		}
		out = append(out, e)
	}
	return out
}
