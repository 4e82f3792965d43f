package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/sklang/internal/config"
	"github.com/gnolang/sklang/loader"
)

func init() {
	color.NoColor = true
}

func newTestEngine(t *testing.T) *loader.Engine {
	t.Helper()
	engine, err := loader.New(config.Default(), zap.NewNop())
	require.NoError(t, err)
	return engine
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ok.sk", "1 + 2\nif 2 > 1:\n")
	bad := writeScript(t, dir, "bad.sk", "# comparisons\n\"a\" > 1\n")
	writeScript(t, dir, "ignored.txt", "\"a\" > 1\n")

	var out bytes.Buffer
	count, err := runCheck(context.Background(), &out, nil, newTestEngine(t), []string{dir}, false, "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, out.String(), "error: semantic-error")
	assert.Contains(t, out.String(), bad+":2:1")
	assert.Contains(t, out.String(), "can't be compared")
}

func TestRunCheckJSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeScript(t, dir, "bad.sk", "nonsense here\n")
	outFile := filepath.Join(dir, "out.json")

	count, err := runCheck(context.Background(), &bytes.Buffer{}, nil, newTestEngine(t), []string{bad}, true, outFile)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var byFile map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &byFile))
	require.Len(t, byFile[bad], 1)
	assert.Equal(t, "no-match", byFile[bad][0]["rule"])
	assert.Equal(t, "error", byFile[bad][0]["severity"])
}

func TestRunCheckMissingPath(t *testing.T) {
	_, err := runCheck(context.Background(), &bytes.Buffer{}, nil, newTestEngine(t), []string{filepath.Join(t.TempDir(), "nope")}, false, "")
	assert.Error(t, err)
}

func TestCompilePatterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		dump     bool
		contains []string
		wantErr  bool
	}{
		{
			name:     "canonical form",
			patterns: []string{"give %number% to %string%"},
			contains: []string{"give %number% to %string%\n"},
		},
		{
			name:     "dump",
			patterns: []string{"[the ]length of %string%"},
			dump:     true,
			contains: []string{"Sequence(", "Optional:", "Placeholder("},
		},
		{
			name:     "warning",
			patterns: []string{"a [ ] b"},
			contains: []string{"warning: pattern-warning", "pattern #1:1:3", "optional group is empty or whitespace only"},
		},
		{
			name:     "malformed",
			patterns: []string{"ok", "give [%number%"},
			contains: []string{"error: malformed-input", "pattern #2:1:"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := compilePatterns(&out, zap.NewNop(), tt.patterns, tt.dump)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestEvalLine(t *testing.T) {
	engine := newTestEngine(t)
	tests := []struct {
		line    string
		want    string
		wantErr bool
	}{
		{"1 + 2", "3 (number literal)", false},
		{"if 3 > 2:", "true (boolean literal)", false},
		{"# only a comment", "", true},
		{`"a" > 1`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := evalLine(engine, tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplCommand(t *testing.T) {
	engine := newTestEngine(t)
	var out bytes.Buffer
	assert.False(t, replCommand(&out, engine, ":syntaxes"))
	assert.Contains(t, out.String(), "arithmetic")
	assert.False(t, replCommand(&out, engine, ":nope"))
	assert.Contains(t, out.String(), "unknown command")
	assert.True(t, replCommand(&out, engine, ":quit"))
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sklang.toml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", "--config", path})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
