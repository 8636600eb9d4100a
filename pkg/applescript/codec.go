package applescript

import (
	"fmt"
	"strings"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/contacts"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/socials"
)

// EncodeProfiles renders profiles in the dump format ReadProfiles prints:
// fields joined by the unit separator, records by the record separator.
func EncodeProfiles(profiles []socials.Profile) string {
	records := make([]string, len(profiles))
	for i, p := range profiles {
		records[i] = strings.Join([]string{p.Service, p.Username, p.URL}, constants.FieldSeparator)
	}
	return strings.Join(records, constants.RecordSeparator)
}

// DecodeProfiles parses a profile dump. The trailing newline osascript
// appends is ignored and "missing value" reads as empty.
func DecodeProfiles(out string) ([]socials.Profile, error) {
	out = strings.TrimSuffix(out, "\n")
	out = strings.TrimSuffix(out, "\r")
	if out == "" {
		return nil, nil
	}

	records := strings.Split(out, constants.RecordSeparator)
	profiles := make([]socials.Profile, 0, len(records))
	for i, record := range records {
		fields := strings.Split(record, constants.FieldSeparator)
		if len(fields) != 3 {
			return nil, errors.NewParseError("profiles", "",
				fmt.Sprintf("record %d has %d fields, want 3", i+1, len(fields)), nil)
		}
		profiles = append(profiles, socials.Profile{
			Service:  value(fields[0]),
			Username: value(fields[1]),
			URL:      value(fields[2]),
		})
	}
	return profiles, nil
}

// DecodeEntries parses the label and value dump ReadEntries prints.
func DecodeEntries(out string, kind contacts.EntryKind) ([]contacts.Entry, error) {
	out = strings.TrimRight(out, "\r\n")
	if out == "" {
		return nil, nil
	}

	records := strings.Split(out, constants.RecordSeparator)
	entries := make([]contacts.Entry, 0, len(records))
	for i, record := range records {
		fields := strings.Split(record, constants.FieldSeparator)
		if len(fields) != 2 {
			return nil, errors.NewParseError(kind.Plural(), "",
				fmt.Sprintf("record %d has %d fields, want 2", i+1, len(fields)), nil)
		}
		entries = append(entries, contacts.Entry{Kind: kind, Label: value(fields[0]), Value: value(fields[1])})
	}
	return entries, nil
}

// DecodeText returns a script's scalar result.
func DecodeText(out string) string {
	return value(strings.TrimRight(out, "\r\n"))
}

func value(s string) string {
	if s == constants.MissingValue {
		return ""
	}
	return s
}
