package socials

import (
	"fmt"
	"strings"

	"github.com/agentstation/pimctl/pkg/errors"
)

// ActionKind names a reconciliation request.
type ActionKind string

const (
	// ActionUpsert sets an authoritative username for one service.
	ActionUpsert ActionKind = "upsert"
	// ActionRemove nullifies every profile of one service.
	ActionRemove ActionKind = "remove"
	// ActionFixOne self-heals the profiles of one service.
	ActionFixOne ActionKind = "fix"
	// ActionFixAll self-heals every profile of the contact.
	ActionFixAll ActionKind = "fix_all"
)

// Action is a reconciliation request against one contact.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Service  string     `json:"service,omitempty"`
	Username string     `json:"username,omitempty"`
}

// Upsert creates an action that stores username for service.
func Upsert(service, username string) Action {
	return Action{Kind: ActionUpsert, Service: service, Username: username}
}

// Remove creates an action that removes every profile of service.
func Remove(service string) Action {
	return Action{Kind: ActionRemove, Service: service}
}

// FixOne creates an action that repairs the profiles of service.
func FixOne(service string) Action {
	return Action{Kind: ActionFixOne, Service: service}
}

// FixAll creates an action that repairs every profile.
func FixAll() Action {
	return Action{Kind: ActionFixAll}
}

// ParseSocial parses the "service:username" form accepted on the command
// line. Only the first colon separates, so usernames may contain colons.
func ParseSocial(arg string) (Action, error) {
	service, username, ok := strings.Cut(arg, ":")
	if !ok {
		return Action{}, errors.NewValidationError("social", arg, "expected service:username")
	}
	action := Upsert(strings.TrimSpace(service), strings.TrimSpace(username))
	if err := action.Validate(); err != nil {
		return Action{}, err
	}
	return action, nil
}

// Validate checks that the action carries the fields its kind needs.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionUpsert:
		if strings.TrimSpace(a.Service) == "" {
			return errors.NewValidationError("service", a.Service, "service is required")
		}
		if strings.TrimSpace(a.Username) == "" {
			return errors.NewValidationError("username", a.Username, "username is required")
		}
	case ActionRemove, ActionFixOne:
		if strings.TrimSpace(a.Service) == "" {
			return errors.NewValidationError("service", a.Service, "service is required")
		}
	case ActionFixAll:
	default:
		return errors.NewValidationError("action", a.Kind, "unknown action")
	}
	return nil
}

// String renders the action for logs and messages.
func (a Action) String() string {
	switch a.Kind {
	case ActionUpsert:
		return fmt.Sprintf("upsert %s:%s", a.Service, a.Username)
	case ActionFixAll:
		return "fix all"
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.Service)
	}
}
