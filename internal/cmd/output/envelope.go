package output

import (
	"fmt"
	"io"

	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
)

// Error kinds reported in failure envelopes.
const (
	KindNotFound    = "not_found"
	KindInvalid     = "invalid_input"
	KindBridge      = "bridge_failure"
	KindTimeout     = "timeout"
	KindCanceled    = "canceled"
	KindUnavailable = "unavailable"
	KindInternal    = "error"
)

// Envelope is the single document every contacts command prints.
type Envelope struct {
	Success bool              `json:"success" yaml:"success"`
	Message string            `json:"message" yaml:"message"`
	Contact *contacts.Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	Error   string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Success builds a successful envelope.
func Success(message string, contact *contacts.Contact) Envelope {
	return Envelope{Success: true, Message: message, Contact: contact}
}

// Failure builds a failure envelope for err.
func Failure(err error) Envelope {
	return Envelope{Success: false, Message: err.Error(), Error: Kind(err)}
}

// Kind classifies err for the failure envelope.
func Kind(err error) string {
	switch {
	case errors.IsNotFound(err):
		return KindNotFound
	case errors.IsValidationError(err):
		return KindInvalid
	case errors.IsTimeout(err):
		return KindTimeout
	case errors.IsCanceled(err):
		return KindCanceled
	case errors.IsBridgeFailure(err):
		return KindBridge
	case errors.Is(err, errors.ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// TableData implements Tabular.
func (e Envelope) TableData() Data {
	rows := [][]string{
		{"Success", fmt.Sprintf("%t", e.Success)},
		{"Message", e.Message},
	}
	if e.Error != "" {
		rows = append(rows, []string{"Error", e.Error})
	}
	if c := e.Contact; c != nil {
		rows = append(rows, contactRows(c)...)
	}
	return Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

func contactRows(c *contacts.Contact) [][]string {
	var rows [][]string
	add := func(name, value string) {
		if value != "" {
			rows = append(rows, []string{name, value})
		}
	}
	add("ID", c.ID)
	add("Name", c.FullName())
	add("Nickname", c.Nickname)
	add("Organization", c.Organization)
	add("Job Title", c.JobTitle)
	add("Department", c.Department)
	add("Note", c.Note)
	for _, p := range c.Phones {
		add("Phone", labeled(p.Number, p.Label))
	}
	for _, e := range c.Emails {
		add("Email", labeled(e.Address, e.Label))
	}
	for _, s := range c.Socials {
		add("Social", s.Service+":"+s.Username)
	}
	return rows
}

func labeled(value, label string) string {
	if label == "" {
		return value
	}
	return fmt.Sprintf("%s (%s)", value, label)
}

// SearchResult is printed by search.
type SearchResult struct {
	Count    int                `json:"count" yaml:"count"`
	Contacts []contacts.Contact `json:"contacts" yaml:"contacts"`
}

// NewSearchResult wraps found contacts.
func NewSearchResult(found []contacts.Contact) SearchResult {
	if found == nil {
		found = []contacts.Contact{}
	}
	return SearchResult{Count: len(found), Contacts: found}
}

// TableData implements Tabular.
func (r SearchResult) TableData() Data {
	rows := make([][]string, 0, len(r.Contacts))
	for _, c := range r.Contacts {
		rows = append(rows, []string{
			c.ID,
			c.FullName(),
			c.Organization,
			c.JobTitle,
		})
	}
	return Data{Headers: []string{"ID", "Name", "Organization", "Job Title"}, Rows: rows}
}

// Write formats data to w.
func Write(w io.Writer, format Format, data any) error {
	return NewFormatter(format).Format(w, data)
}

// ReportedError wraps an error whose failure envelope was already written,
// so the entry point only sets the exit status.
type ReportedError struct {
	Err error
}

// Error implements the error interface.
func (e *ReportedError) Error() string {
	return e.Err.Error()
}

// Unwrap implements errors.Unwrap.
func (e *ReportedError) Unwrap() error {
	return e.Err
}

// Report writes the failure envelope for err and returns it wrapped in a
// ReportedError. A failure to write is returned as is.
func Report(w io.Writer, format Format, err error) error {
	if werr := Write(w, format, Failure(err)); werr != nil {
		return werr
	}
	return &ReportedError{Err: err}
}

// IsReported reports whether err already produced an envelope.
func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}
