package reconciler

import (
	"time"

	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/socials"
)

// Result represents the outcome of one reconciliation run.
type Result struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Contact *contacts.Contact `json:"contact,omitempty"`

	// Edits lists every edit written to the store, in write order.
	Edits []socials.Edit `json:"edits,omitempty"`

	Metadata ResultMetadata `json:"-"`
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Writes counts bridge write scripts that were run.
	Writes int

	// Verified is set when the reported profiles were read back from the
	// store rather than projected from the plan.
	Verified bool
}

// HasChanges reports whether anything was written.
func (r *Result) HasChanges() bool {
	return r.Metadata.Writes > 0
}

// newResult creates a result stamped with the start time.
func newResult() *Result {
	return &Result{
		Metadata: ResultMetadata{StartTime: time.Now()},
	}
}

// finalize marks the result successful and records the duration.
func (r *Result) finalize(message string) *Result {
	r.Success = true
	r.Message = message
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	return r
}
