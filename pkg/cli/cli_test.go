package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"lambda", "serve", "invoke", "apply", "delete", "get"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "region", "endpoint", "state-dir", "zap-log-level", "zap-devel"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestGetCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewStateManager(dir).SaveState(&ResourceState{Name: "orders", PhysicalResourceID: "a1"}))

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"get", "--state-dir", dir})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "orders")
	assert.Contains(t, out.String(), "a1")
}

func TestReadEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "RequestType": "Delete",
  "RequestId": "req-1",
  "PhysicalResourceId": "a1",
  "ResourceProperties": {"Definition": {"S3Bucket": "defs", "S3Key": "orders.yaml"}}
}`), 0o600))

	event, err := readEvent(path)
	require.NoError(t, err)
	assert.Equal(t, cfn.RequestDelete, event.RequestType)
	assert.Equal(t, "a1", event.PhysicalResourceID)

	_, err = readEvent(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
