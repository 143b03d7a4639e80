// Package testutil provides temp-workspace fixture builders for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Workspace is a temporary workspace directory tree for discovery tests.
type Workspace struct {
	Root string
	t    *testing.T
}

// NewWorkspace creates an empty temp workspace removed on test cleanup.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{Root: t.TempDir(), t: t}
}

// AddDir creates a directory under the workspace root and returns its path.
func (w *Workspace) AddDir(rel string) string {
	w.t.Helper()
	path := filepath.Join(w.Root, rel)
	require.NoError(w.t, os.MkdirAll(path, 0755))
	return path
}

// AddFile writes a file under the workspace root and returns its path.
func (w *Workspace) AddFile(rel, content string) string {
	w.t.Helper()
	path := filepath.Join(w.Root, rel)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(w.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// AddPipeline creates a pipeline directory with the given stage
// subdirectories.
func (w *Workspace) AddPipeline(name string, stages ...string) string {
	w.t.Helper()
	dir := w.AddDir(name)
	for _, stage := range stages {
		w.AddDir(filepath.Join(name, stage))
	}
	return dir
}

// AddAgent writes an agent config file with the given yaml body.
func (w *Workspace) AddAgent(rel, body string) string {
	w.t.Helper()
	return w.AddFile(rel, body)
}

// AddSkill creates a skill directory under the skills root, optionally
// with a README.
func (w *Workspace) AddSkill(name, readme string) string {
	w.t.Helper()
	dir := w.AddDir(filepath.Join("skills", name))
	if readme != "" {
		w.AddFile(filepath.Join("skills", name, "README.md"), readme)
	}
	return dir
}

// Touch sets the mtime of a path.
func (w *Workspace) Touch(path string, mtime time.Time) {
	w.t.Helper()
	require.NoError(w.t, os.Chtimes(path, mtime, mtime))
}
