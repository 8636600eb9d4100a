package reconciler

import (
	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/socials"
)

// options configures a reconciler.
type options struct {
	registry   *socials.Registry
	lookupMode string
	verify     bool
}

func defaultOptions() *options {
	return &options{
		registry:   socials.DefaultRegistry(),
		lookupMode: constants.LookupByID,
		verify:     true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithRegistry sets the service table used for normalization.
func WithRegistry(registry *socials.Registry) Option {
	return func(o *options) error {
		if registry == nil {
			return &errors.ValidationError{
				Field:   "registry",
				Message: "cannot be nil",
			}
		}
		o.registry = registry
		return nil
	}
}

// WithLookupMode sets how generated scripts locate the contact: by store
// id (the default) or by first and last name.
func WithLookupMode(mode string) Option {
	return func(o *options) error {
		switch mode {
		case constants.LookupByID, constants.LookupByName:
			o.lookupMode = mode
			return nil
		case "":
			return nil
		default:
			return &errors.ValidationError{
				Field:   "lookup_mode",
				Value:   mode,
				Message: "must be id or name",
			}
		}
	}
}

// WithVerify controls how the reported profiles are obtained after a write.
// Enabled, the profiles are read back from the store; disabled, the plan
// is projected onto the profiles read before the write.
func WithVerify(enabled bool) Option {
	return func(o *options) error {
		o.verify = enabled
		return nil
	}
}
