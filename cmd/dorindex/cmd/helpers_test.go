package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testItemJSON = `{
  "type": "https://cocina.sul.stanford.edu/models/object",
  "externalIdentifier": "druid:xx999xx9999",
  "label": "Test item",
  "version": 1,
  "administrative": {"hasAdminPolicy": "druid:gf999hb9999"},
  "description": {"title": [{"value": "Test item"}]},
  "structural": {"isMemberOf": ["druid:bc999df2323"]}
}`

const testCollectionJSON = `{
  "type": "https://cocina.sul.stanford.edu/models/collection",
  "externalIdentifier": "druid:bc999df2323",
  "label": "Test collection",
  "version": 1,
  "administrative": {"hasAdminPolicy": "druid:gf999hb9999"},
  "description": {"title": [{"value": "Test collection"}]}
}`

const testAPOJSON = `{
  "type": "https://cocina.sul.stanford.edu/models/admin_policy",
  "externalIdentifier": "druid:gf999hb9999",
  "label": "Test APO",
  "version": 1,
  "administrative": {"hasAdminPolicy": "druid:gf999hb9999"},
  "description": {"title": [{"value": "Test APO"}]}
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// projectDir creates a file repository with an item, its collection and
// its admin policy, and isolates the user config.
func projectDir(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "records", "xx999xx9999.json"), testItemJSON)
	writeFile(t, filepath.Join(dir, "records", "bc999df2323.json"), testCollectionJSON)
	writeFile(t, filepath.Join(dir, "records", "gf999hb9999.json"), testAPOJSON)
	return dir
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}
