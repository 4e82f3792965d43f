package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		check    func(t *testing.T, c Config)
		errorMsg string
	}{
		{
			name:    "yaml overrides",
			file:    "cfg.yaml",
			content: "name: scripts\nmax_depth: 8\ndisabled: [sum]\npriorities:\n  compare: 3\n",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "scripts", c.Name)
				assert.Equal(t, 8, c.MaxDepth)
				assert.Equal(t, []string{"sum"}, c.Disabled)
				assert.Equal(t, map[string]int{"compare": 3}, c.Priorities)
				assert.Equal(t, []string{".sk"}, c.Extensions)
			},
		},
		{
			name:    "toml",
			file:    "cfg.toml",
			content: "name = \"t\"\nextensions = [\".sk\", \".skript\"]\nexpected_type = \"numbers\"\n",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "t", c.Name)
				assert.Equal(t, []string{".sk", ".skript"}, c.Extensions)
				assert.Equal(t, "numbers", c.ExpectedType)
				assert.Equal(t, 64, c.MaxDepth)
			},
		},
		{
			name:    "empty yaml keeps defaults",
			file:    "empty.yaml",
			content: "",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name:     "unknown yaml field",
			file:     "bad.yaml",
			content:  "rules: {}\n",
			errorMsg: "parsing",
		},
		{
			name:     "malformed toml",
			file:     "bad.toml",
			content:  "name = \n",
			errorMsg: "parsing",
		},
		{
			name:     "negative depth",
			file:     "depth.yaml",
			content:  "max_depth: -1\n",
			errorMsg: "max_depth",
		},
		{
			name:     "extension without dot",
			file:     "ext.yaml",
			content:  "extensions: [sk]\n",
			errorMsg: "must start with a dot",
		},
		{
			name:     "bad log level",
			file:     "level.yaml",
			content:  "log_level: loud\n",
			errorMsg: "log_level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeFile(t, tt.file, tt.content))
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestWriteThenLoad(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := Default()
			want.Disabled = []string{"range"}
			want.Priorities = map[string]int{"arithmetic": 2}
			require.NoError(t, Write(path, want))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestHasExtension(t *testing.T) {
	c := Default()
	assert.True(t, c.HasExtension("a/b.sk"))
	assert.True(t, c.HasExtension("B.SK"))
	assert.False(t, c.HasExtension("main.go"))
}
