package deps

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockapp "github.com/agentstation/pimctl/internal/cmd/application"
	"github.com/agentstation/pimctl/internal/cmd/output"
	"github.com/agentstation/pimctl/internal/deps"
	"github.com/agentstation/pimctl/pkg/errors"
)

func TestCollectStatuses(t *testing.T) {
	present := filepath.Join(t.TempDir(), "Contacts.app")
	require.NoError(t, os.Mkdir(present, 0o755))

	results := collectStatuses(context.Background(), []deps.Dependency{
		{Name: "contacts", DisplayName: "Contacts.app", CheckPaths: []string{present}, Required: true},
		{Name: "osascript", DisplayName: "osascript", CheckCommands: []string{"/nonexistent/osascript"}, Required: true},
	})

	assert.Equal(t, 2, results.TotalDeps)
	assert.Equal(t, 1, results.AvailableDeps)
	assert.Equal(t, 1, results.MissingDeps)
	assert.Equal(t, present, results.Dependencies[0].Path)
}

func TestRunCheckReportsMissing(t *testing.T) {
	mock := &mockapp.Mock{
		DependenciesFunc: func() []deps.Dependency {
			return []deps.Dependency{
				{Name: "osascript", DisplayName: "osascript", CheckCommands: []string{"/nonexistent/osascript"}, Required: true},
			}
		},
	}

	cmd := NewCommand(mock)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(nil)

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, output.IsReported(err))
	assert.True(t, errors.IsValidationError(err))

	dec := json.NewDecoder(&stdout)
	var results CheckResults
	require.NoError(t, dec.Decode(&results))
	assert.ErrorIs(t, dec.Decode(&json.RawMessage{}), io.EOF, "stdout holds exactly one document")
	assert.Equal(t, 1, results.MissingDeps)
	assert.False(t, results.Dependencies[0].Available)
}

func TestRunCheckAllPresent(t *testing.T) {
	present := t.TempDir()
	mock := &mockapp.Mock{
		OutputFormatFunc: func() string { return "table" },
		DependenciesFunc: func() []deps.Dependency {
			return []deps.Dependency{{Name: "contacts", DisplayName: "Contacts.app", CheckPaths: []string{present}, Required: true}}
		},
	}

	cmd := NewCommand(mock)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, stdout.String(), "available")
	assert.Contains(t, stdout.String(), "contacts")
}
