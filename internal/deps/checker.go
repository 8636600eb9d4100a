// Package deps checks that the external programs pimctl drives are present.
package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/errors"
)

// Dependency describes one external requirement.
type Dependency struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`

	// CheckCommands are looked up in PATH in order.
	CheckCommands []string `json:"check_commands,omitempty" yaml:"check_commands,omitempty"`
	// CheckPaths are tried with os.Stat after the commands.
	CheckPaths []string `json:"check_paths,omitempty" yaml:"check_paths,omitempty"`

	// Required dependencies fail Ensure when missing.
	Required bool `json:"required" yaml:"required"`
}

// Status is the result of checking one dependency.
type Status struct {
	Name       string `json:"name" yaml:"name"`
	Available  bool   `json:"available" yaml:"available"`
	Required   bool   `json:"required" yaml:"required"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	CheckError string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Defaults returns the dependencies of the contacts commands. osascript is
// the configured automation binary.
func Defaults(osascript string) []Dependency {
	return []Dependency{Bridge(osascript), ContactsApp()}
}

// Bridge describes the automation interpreter every write goes through.
func Bridge(osascript string) Dependency {
	if osascript == "" {
		osascript = constants.OSAScriptBinary
	}
	return Dependency{
		Name:          "osascript",
		DisplayName:   "osascript",
		Description:   "Runs the AppleScript that reads and writes Contacts.app",
		CheckCommands: []string{osascript},
		Required:      true,
	}
}

// ContactsApp describes the scripted application.
func ContactsApp() Dependency {
	return Dependency{
		Name:        "contacts",
		DisplayName: "Contacts.app",
		Description: "The application whose people are updated",
		CheckPaths: []string{
			"/System/Applications/Contacts.app",
			"/Applications/Contacts.app",
		},
		Required: true,
	}
}

// Check verifies if a dependency is available on the system.
// It tries all CheckCommands, then all CheckPaths, and stops at the first hit.
func Check(_ context.Context, dep Dependency) Status {
	status := Status{Name: dep.Name, Required: dep.Required}

	for _, cmd := range dep.CheckCommands {
		path, err := exec.LookPath(cmd)
		if err != nil {
			continue
		}
		status.Available = true
		status.Path = path
		return status
	}

	for _, path := range dep.CheckPaths {
		if _, err := os.Stat(path); err == nil {
			status.Available = true
			status.Path = path
			return status
		}
	}

	tried := append(append([]string(nil), dep.CheckCommands...), dep.CheckPaths...)
	status.CheckError = fmt.Sprintf("%s not found (tried: %s)", dep.DisplayName, strings.Join(tried, ", "))
	return status
}

// CheckAll checks every dependency, keeping input order.
func CheckAll(ctx context.Context, deps []Dependency) []Status {
	results := make([]Status, 0, len(deps))
	for _, dep := range deps {
		results = append(results, Check(ctx, dep))
	}
	return results
}

// HasMissingDeps returns true if any required dependency is missing.
func HasMissingDeps(statuses []Status) bool {
	for _, status := range statuses {
		if status.Required && !status.Available {
			return true
		}
	}
	return false
}

// Ensure returns a DependencyError for the first missing required
// dependency.
func Ensure(ctx context.Context, deps []Dependency) error {
	for _, status := range CheckAll(ctx, deps) {
		if status.Required && !status.Available {
			return &errors.DependencyError{Dependency: status.Name, Message: status.CheckError}
		}
	}
	return nil
}
