package banks_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/gl-posting/cmd/banks"
	"fjacquet/gl-posting/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanksCommand_ListsTemplates(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history:\n  enabled: false\nlog:\n  level: error\n"), 0600))
	root.SharedFlags.ConfigFile = cfgPath
	t.Cleanup(func() {
		root.Close()
		root.SharedFlags = root.CommonFlags{}
	})

	var out bytes.Buffer
	banks.Cmd.SetOut(&out)
	require.NoError(t, banks.Cmd.RunE(banks.Cmd, nil))

	text := out.String()
	assert.Contains(t, text, "truist")
	assert.Contains(t, text, "chase")
	assert.Contains(t, text, "generic")
	assert.Contains(t, text, "(fallback)")
}
