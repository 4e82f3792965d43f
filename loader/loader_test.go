package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/sklang/internal/config"
	"github.com/gnolang/sklang/internal/diag"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Run(filename string) ([]diag.Diagnostic, error) {
	args := m.Called(filename)
	return args.Get(0).([]diag.Diagnostic), args.Error(1)
}

func (m *mockChecker) RunSource(filename string, source []byte) ([]diag.Diagnostic, error) {
	args := m.Called(filename, source)
	return args.Get(0).([]diag.Diagnostic), args.Error(1)
}

func (m *mockChecker) HasExtension(path string) bool {
	return filepath.Ext(path) == ".sk"
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(config.Default(), nil)
	require.NoError(t, err)
	return e
}

func TestRunSource(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	src := []byte(`# arithmetic
1 + 2
  6*(6+6*6)-6/6   # folded

if 2 > 1:
	range from 1 to 3
	"a" > 1
else:
	nonsense here
if true:
`)
	diagnostics, err := e.RunSource("test.sk", src)
	require.NoError(t, err)
	require.Len(t, diagnostics, 3)

	assert.Equal(t, diag.RuleSemantic, diagnostics[0].Rule)
	assert.Equal(t, 7, diagnostics[0].Start.Line)
	assert.Equal(t, 2, diagnostics[0].Start.Column)
	assert.Contains(t, diagnostics[0].Message, "can't be compared")

	assert.Equal(t, diag.RuleNoMatch, diagnostics[1].Rule)
	assert.Equal(t, 9, diagnostics[1].Start.Line)

	assert.Equal(t, diag.RuleSemantic, diagnostics[2].Rule)
	assert.Equal(t, 10, diagnostics[2].Start.Line)
	assert.Equal(t, 4, diagnostics[2].Start.Column)
	assert.Equal(t, "test.sk", diagnostics[2].Filename)
}

func TestNewRejectsUnknownNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{"disabled", func(c *config.Config) { c.Disabled = []string{"nope"} }, "disable unknown syntax"},
		{"priority", func(c *config.Config) { c.Priorities = map[string]int{"nope": 1} }, "priority of unknown syntax"},
		{"expected type", func(c *config.Config) { c.ExpectedType = "widgets" }, "unknown expected type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(&cfg)
			_, err := New(cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDisabledSyntax(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Disabled = []string{"range"}
	e, err := New(cfg, nil)
	require.NoError(t, err)

	diagnostics, err := e.RunSource("a.sk", []byte("range from 1 to 2\n"))
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, diag.RuleNoMatch, diagnostics[0].Rule)
}

func TestProcessPathDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := map[string]string{
		"a.sk":         "1 +\n",
		"sub/b.sk":     "2 > \"x\"\n",
		"sub/ok.sk":    "1 + 1\n",
		"notes.txt":    "not a script\n",
		"sub/skip.txt": "1 +\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	var progress bytes.Buffer
	diagnostics, err := ProcessFiles(context.Background(), nil, newEngine(t), []string{dir}, &progress)
	require.NoError(t, err)
	require.Len(t, diagnostics, 2)
	assert.Equal(t, filepath.Join(dir, "a.sk"), diagnostics[0].Filename)
	assert.Equal(t, filepath.Join(dir, "sub", "b.sk"), diagnostics[1].Filename)
	assert.NotEmpty(t, progress.String())
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()
	want := []diag.Diagnostic{{Rule: "test-rule", Filename: "test.sk", Message: "Test issue"}}
	m := new(mockChecker)
	path := filepath.Join(t.TempDir(), "test.sk")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	m.On("Run", path).Return(want, nil)

	got, err := ProcessPath(context.Background(), nil, m, path, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	m.AssertExpectations(t)
}

func TestProcessPathSkipsFailingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	good := filepath.Join(dir, "good.sk")
	bad := filepath.Join(dir, "bad.sk")
	require.NoError(t, os.WriteFile(good, nil, 0o644))
	require.NoError(t, os.WriteFile(bad, nil, 0o644))

	m := new(mockChecker)
	m.On("Run", good).Return([]diag.Diagnostic{{Filename: good}}, nil)
	m.On("Run", bad).Return([]diag.Diagnostic(nil), errors.New("unreadable"))

	got, err := ProcessPath(context.Background(), nil, m, dir, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, good, got[0].Filename)
}

func TestProcessPathMissing(t *testing.T) {
	t.Parallel()
	_, err := ProcessPath(context.Background(), nil, new(mockChecker), filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)
}

func TestProcessPathCancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sk"), nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ProcessPath(ctx, nil, new(mockChecker), dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStatement(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line string
		want Statement
		ok   bool
	}{
		{"1 + 2", Statement{Text: "1 + 2", Column: 1}, true},
		{"    1 + 2  ", Statement{Text: "1 + 2", Column: 5}, true},
		{"if {x} > 1:", Statement{Text: "{x} > 1", Column: 4, Condition: true}, true},
		{"\tELSE IF  2 > 1:", Statement{Text: "2 > 1", Column: 11, Condition: true}, true},
		{"while not {done}:", Statement{Text: "not {done}", Column: 7, Condition: true}, true},
		{`"a # b" # comment`, Statement{Text: `"a # b"`, Column: 1}, true},
		{"{a#b}", Statement{Text: "{a#b}", Column: 1}, true},
		{"else:", Statement{}, false},
		{"   # only a comment", Statement{}, false},
		{"", Statement{}, false},
		{"if :", Statement{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseStatement(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
