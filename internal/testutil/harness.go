// Package testutil provides a test environment for tasklog packages.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/newhook/tasklog/internal/archive"
	"github.com/newhook/tasklog/internal/logscan"
	"github.com/newhook/tasklog/internal/project"
	"github.com/newhook/tasklog/internal/taskparam"
	"github.com/stretchr/testify/require"
)

// TestHarness is a throwaway project directory with its archive opened.
type TestHarness struct {
	T       *testing.T
	Project *project.Project
	Archive *archive.DB
}

// NewTestHarness creates a project under t.TempDir() and opens its archive.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	proj, err := project.Create(t.TempDir())
	require.NoError(t, err, "failed to create project")

	db, err := proj.Archive(context.Background())
	require.NoError(t, err, "failed to open archive")

	h := &TestHarness{T: t, Project: proj, Archive: db}
	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup releases the project's resources. It is registered with
// t.Cleanup, so calling it directly is only needed to close early.
func (h *TestHarness) Cleanup() {
	if h.Project == nil {
		return
	}
	if err := h.Project.Close(); err != nil {
		h.T.Logf("warning: failed to close project: %v", err)
	}
	h.Project = nil
}

// Root is the project directory.
func (h *TestHarness) Root() string {
	return h.Project.Root
}

// WriteLog writes content to name inside the project and returns its path.
func (h *TestHarness) WriteLog(name, content string) string {
	h.T.Helper()
	path := filepath.Join(h.Project.Root, name)
	require.NoError(h.T, os.WriteFile(path, []byte(content), 0644))
	return path
}

// CreateParameter parses message and fails the test on error.
func (h *TestHarness) CreateParameter(message, prefix string) *taskparam.Parameter {
	h.T.Helper()
	p, err := taskparam.Create(message, prefix)
	require.NoError(h.T, err)
	return p
}

// ArchiveMessage parses message and stores it, returning the record id.
func (h *TestHarness) ArchiveMessage(msg logscan.Message, source string) string {
	h.T.Helper()
	p := h.CreateParameter(msg.Text, msg.Prefix)
	id, err := h.Archive.SaveParameter(context.Background(), p, archive.Origin{
		Prefix: msg.Prefix,
		Source: source,
		Line:   msg.Line,
	})
	require.NoError(h.T, err)
	return id
}
