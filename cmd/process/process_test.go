package process_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"fjacquet/gl-posting/cmd/process"
	"fjacquet/gl-posting/cmd/root"
	"fjacquet/gl-posting/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Community Credit Union
Statement Period: 01/01/2025 to 01/31/2025
01/05 SERVICE FEE 15.00-
01/07 MYSTERY ITEM -12.34
`

var initOnce sync.Once

func setup(t *testing.T) string {
	t.Helper()
	initOnce.Do(func() {
		root.Init()
		root.Cmd.AddCommand(process.Cmd)
	})
	t.Cleanup(func() {
		root.Close()
		root.SharedFlags = root.CommonFlags{}
	})

	dir := t.TempDir()
	cfg := "history:\n  path: " + filepath.Join(dir, "history.db") + "\nlog:\n  level: error\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))
	return cfgPath
}

func TestProcessCommand_Metadata(t *testing.T) {
	assert.Equal(t, "process", process.Cmd.Use)
	assert.Contains(t, process.Cmd.Short, "journal entries")
	assert.NotNil(t, process.Cmd.RunE)
}

func TestProcessCommand_Flags(t *testing.T) {
	tests := []struct {
		name   string
		defVal string
	}{
		{"bank", ""},
		{"commit", "false"},
		{"xlsx", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := process.Cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defVal, flag.DefValue)
			assert.NotEmpty(t, flag.Usage)
		})
	}
}

func TestProcessCommand_WritesModuleFiles(t *testing.T) {
	cfgPath := setup(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(input, []byte(statement), 0600))
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs([]string{"process", "--config", cfgPath, "-i", input, "-o", outDir})
	require.NoError(t, root.Cmd.Execute())

	assert.FileExists(t, filepath.Join(outDir, "CD.csv"))
	assert.FileExists(t, filepath.Join(outDir, export.ReviewFile))
	assert.NoFileExists(t, filepath.Join(outDir, "CR.csv"))
	assert.Contains(t, out.String(), "(generic)")
	assert.Contains(t, out.String(), "transactions: 2")
}

func TestProcessCommand_MissingInput(t *testing.T) {
	cfgPath := setup(t)

	root.Cmd.SetOut(&bytes.Buffer{})
	root.Cmd.SetErr(&bytes.Buffer{})
	root.Cmd.SetArgs([]string{"process", "--config", cfgPath})
	err := root.Cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file is required")
}

func TestProcessCommand_Directory(t *testing.T) {
	cfgPath := setup(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	require.NoError(t, os.Mkdir(in, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(in, "january.txt"), []byte(statement), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "readme.md"), []byte("skip me"), 0600))
	outDir := filepath.Join(dir, "out")

	root.Cmd.SetOut(&bytes.Buffer{})
	root.Cmd.SetArgs([]string{"process", "--config", cfgPath, "-i", in, "-o", outDir})
	require.NoError(t, root.Cmd.Execute())

	assert.FileExists(t, filepath.Join(outDir, "january", "CD.csv"))
	assert.NoDirExists(t, filepath.Join(outDir, "readme"))
}
