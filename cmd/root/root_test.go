package root_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"fjacquet/gl-posting/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var initOnce sync.Once

func setup(t *testing.T) {
	t.Helper()
	initOnce.Do(root.Init)
	t.Cleanup(func() {
		root.Close()
		root.SharedFlags = root.CommonFlags{}
	})
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "gl-posting", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "journal entries")
	assert.NotNil(t, root.Cmd.RunE)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	setup(t)

	tests := []struct {
		name      string
		shorthand string
	}{
		{"input", "i"},
		{"output", "o"},
		{"config", ""},
		{"log-level", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestGetContainer(t *testing.T) {
	setup(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history:\n  path: "+filepath.Join(dir, "h.db")+"\nlog:\n  level: warn\n"), 0600))

	root.SharedFlags.ConfigFile = cfgPath
	root.SharedFlags.LogLevel = "error"

	c, err := root.GetContainer()
	require.NoError(t, err)
	again, err := root.GetContainer()
	require.NoError(t, err)
	assert.Same(t, c, again)

	cfg, err := root.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level, "the flag overrides the file")
	assert.NotNil(t, root.GetLogger())
}

func TestGetContainer_BadConfig(t *testing.T) {
	setup(t)
	root.SharedFlags.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := root.GetContainer()
	assert.Error(t, err)
}
