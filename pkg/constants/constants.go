// Package constants provides shared constants used throughout pimctl.
// This includes bridge timeouts, output limits, store locations and the
// separators of the profile wire format.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// BridgeTimeout is the default wall-clock limit for one osascript run.
	// Contacts.app can take several seconds to launch on a cold start.
	BridgeTimeout = 30 * time.Second

	// MaxBridgeTimeout caps user-configured bridge timeouts
	MaxBridgeTimeout = 10 * time.Minute

	// LookupTimeout bounds a single AddressBook database query
	LookupTimeout = 5 * time.Second

	// ShutdownTimeout is how long main waits for cleanup after a failure
	ShutdownTimeout = 5 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxBridgeOutputBytes is the maximum captured stdout/stderr per bridge run
	MaxBridgeOutputBytes = 1 << 20

	// MaxSearchResults limits name searches against the AddressBook
	MaxSearchResults = 50
)

// Executable and store locations
const (
	// OSAScriptBinary is the host automation interpreter
	OSAScriptBinary = "osascript"

	// HostApplication is the scripting target for every generated script
	HostApplication = "Contacts"

	// AddressBookDir is the per-user root of the Contacts database sources
	AddressBookDir = "~/Library/Application Support/AddressBook"

	// AddressBookGlob matches every source database under AddressBookDir
	AddressBookGlob = "Sources/*/AddressBook-v22.abcddb"

	// DefaultConfigName is the config file base name searched in $HOME and "."
	DefaultConfigName = ".pimctl"
)

// Profile wire format. Both separators are ASCII control characters, which
// never occur in service names or usernames typed into Contacts.app.
const (
	// FieldSeparator joins service, username and url of one profile (ASCII US)
	FieldSeparator = "\x1f"

	// RecordSeparator joins profiles (ASCII RS)
	RecordSeparator = "\x1e"

	// FieldSeparatorCode is FieldSeparator as an AppleScript character id
	FieldSeparatorCode = 31

	// RecordSeparatorCode is RecordSeparator as an AppleScript character id
	RecordSeparatorCode = 30
)

// Store sentinels
const (
	// PreferenceMarker is the literal the store writes into empty username
	// slots of vCard-imported profiles
	PreferenceMarker = "TYPE=PREF"

	// MissingValue is how AppleScript renders an unset property as text
	MissingValue = "missing value"
)

// Lookup modes for locating a contact inside generated scripts
const (
	// LookupByID addresses the person by its store identifier
	LookupByID = "id"

	// LookupByName addresses the first person with matching first/last name
	LookupByName = "name"
)
