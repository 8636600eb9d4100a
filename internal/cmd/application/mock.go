// Package application provides test doubles for cmd/application.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/pimctl/cmd/application"
	"github.com/agentstation/pimctl/internal/deps"
	"github.com/agentstation/pimctl/pkg/reconciler"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ReconcilerFunc: func() (reconciler.Reconciler, error) {
//	        return fake, nil
//	    },
//	}
//	cmd := contacts.NewFixCommand(mock)
type Mock struct {
	ReconcilerFunc   func() (reconciler.Reconciler, error)
	DirectoryFunc    func() (application.Directory, error)
	DependenciesFunc func() []deps.Dependency
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ application.Application = (*Mock)(nil)

// Reconciler returns a reconciler using the mock function or nil.
func (m *Mock) Reconciler() (reconciler.Reconciler, error) {
	if m.ReconcilerFunc != nil {
		return m.ReconcilerFunc()
	}
	return nil, nil
}

// Directory returns a directory using the mock function or nil.
func (m *Mock) Directory() (application.Directory, error) {
	if m.DirectoryFunc != nil {
		return m.DirectoryFunc()
	}
	return nil, nil
}

// Dependencies returns dependencies using the mock function or the defaults.
func (m *Mock) Dependencies() []deps.Dependency {
	if m.DependenciesFunc != nil {
		return m.DependenciesFunc()
	}
	return deps.Defaults("")
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
