package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-motivation/internal/model"
)

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "leads.json")
	yamlPath := filepath.Join(dir, "refs.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id":"l1","address":"123 Main St","zip":"77002"}]`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("- id: p1\n  external_id: \"0101\"\n  jurisdiction_id: harris\n"), 0o644))

	t.Run("json file", func(t *testing.T) {
		var leads []model.Lead
		require.NoError(t, readInput(jsonPath, nil, &leads))
		require.Len(t, leads, 1)
		assert.Equal(t, "123 Main St", leads[0].Address)
		assert.Equal(t, "77002", leads[0].Zip)
	})

	t.Run("yaml file", func(t *testing.T) {
		var refs []model.PropertyRef
		require.NoError(t, readInput(yamlPath, nil, &refs))
		assert.Equal(t, []model.PropertyRef{{ID: "p1", ExternalID: "0101", JurisdictionID: "harris"}}, refs)
	})

	t.Run("stdin", func(t *testing.T) {
		var leads []model.Lead
		require.NoError(t, readInput("-", strings.NewReader(`[{"owner_name":"JOHN DOE"}]`), &leads))
		require.Len(t, leads, 1)
		assert.Equal(t, "JOHN DOE", leads[0].OwnerName)
	})

	t.Run("missing file", func(t *testing.T) {
		var leads []model.Lead
		err := readInput(filepath.Join(dir, "nope.json"), nil, &leads)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.json")
	})

	t.Run("bad stdin", func(t *testing.T) {
		var leads []model.Lead
		assert.Error(t, readInput("", strings.NewReader("{"), &leads))
	})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"n": 1}))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", buf.String())
}
