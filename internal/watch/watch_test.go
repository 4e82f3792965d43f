package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/sklang/internal/config"
	"github.com/gnolang/sklang/internal/diag"
	"github.com/gnolang/sklang/loader"
)

type result struct {
	filename    string
	diagnostics []diag.Diagnostic
	err         error
}

func newWatcher(t *testing.T) (*Watcher, chan result) {
	t.Helper()
	engine, err := loader.New(config.Default(), nil)
	require.NoError(t, err)

	results := make(chan result, 16)
	w, err := New(engine, func(filename string, diagnostics []diag.Diagnostic, err error) {
		results <- result{filename, diagnostics, err}
	}, nil, 10*time.Millisecond)
	require.NoError(t, err)
	return w, results
}

func TestWatcherChecksWrittenScripts(t *testing.T) {
	dir := t.TempDir()
	w, results := newWatcher(t)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	// not a script, must not be checked
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	script := filepath.Join(dir, "a.sk")
	require.NoError(t, os.WriteFile(script, []byte("1 + 2\n\"a\" > 1\n"), 0o644))

	// a check may run between the create and the write; wait for the one
	// that saw the content
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			assert.Equal(t, script, r.filename)
			require.NoError(t, r.err)
			if len(r.diagnostics) == 0 {
				continue
			}
			require.Len(t, r.diagnostics, 1)
			assert.Equal(t, 2, r.diagnostics[0].Start.Line)
			assert.Equal(t, diag.RuleSemantic, r.diagnostics[0].Rule)
			return
		case <-timeout:
			t.Fatal("script was not checked")
		}
	}
}

func TestWatcherStartStop(t *testing.T) {
	w, _ := newWatcher(t)
	assert.Error(t, w.Stop())

	require.NoError(t, w.Start(t.TempDir()))
	assert.Error(t, w.Start(t.TempDir()))
	assert.NoError(t, w.Stop())
}

func TestWatcherMissingDirectory(t *testing.T) {
	w, _ := newWatcher(t)
	err := w.Start(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error adding directory to watcher")
}

func TestNewRequiresHandler(t *testing.T) {
	engine, err := loader.New(config.Default(), nil)
	require.NoError(t, err)
	_, err = New(engine, nil, nil, 0)
	assert.Error(t, err)
}
