package compat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIndex(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadIndex_ValidRecords(t *testing.T) {
	path := writeIndex(t, `[
	  {
	    "path": "Alamofire",
	    "platforms": ["Darwin"],
	    "compatibility": {"3.1": {"commit": "abc123"}}
	  },
	  {
	    "path": "swift-protobuf",
	    "platforms": ["Darwin", "Linux"],
	    "compatibility": {"3.0": {"commit": "def456"}}
	  }
	]`)

	idx, err := LoadIndex(path)
	require.NoError(t, err)
	require.Len(t, idx, 2)

	p, err := idx.Lookup("swift-protobuf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Darwin", "Linux"}, p.Platforms)
	assert.Equal(t, "3.0", p.CompatVersion())
}

func TestLoadIndex_MissingFieldReportsRecord(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "missing path",
			body:  `[{"platforms": ["Linux"], "compatibility": {"3.0": {}}}]`,
			field: "path",
		},
		{
			name:  "empty platforms",
			body:  `[{"path": "p", "platforms": [], "compatibility": {"3.0": {}}}]`,
			field: "platforms",
		},
		{
			name:  "missing compatibility",
			body:  `[{"path": "p", "platforms": ["Linux"]}]`,
			field: "compatibility",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadIndex(writeIndex(t, tc.body))
			var ie *IndexError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, 0, ie.Record)
			assert.Equal(t, tc.field, ie.Field)
		})
	}
}

func TestLoadIndex_MalformedJSON(t *testing.T) {
	_, err := LoadIndex(writeIndex(t, `[{"path": "p",`))
	require.Error(t, err)
}

func TestLookup_AbsentProject(t *testing.T) {
	path := writeIndex(t, `[{"path": "p", "platforms": ["Linux"], "compatibility": {"3.0": {}}}]`)
	idx, err := LoadIndex(path)
	require.NoError(t, err)

	_, err = idx.Lookup("nope")
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestCompatList_PreservesDocumentOrder(t *testing.T) {
	// GIVEN a project declaring several compatibility versions
	path := writeIndex(t, `[{
	  "path": "multi",
	  "platforms": ["Linux"],
	  "compatibility": {"3.1": {"commit": "a"}, "3.0": {"commit": "b"}, "4.0": {"commit": "c"}}
	}]`)
	idx, err := LoadIndex(path)
	require.NoError(t, err)

	// THEN the first version in document order wins
	p, err := idx.Lookup("multi")
	require.NoError(t, err)
	assert.Equal(t, "3.1", p.CompatVersion())
	require.Len(t, p.Compatibility, 3)
	assert.Equal(t, "3.0", p.Compatibility[1].Version)
	assert.Equal(t, "4.0", p.Compatibility[2].Version)
}

func TestSupportsPlatform(t *testing.T) {
	p := Project{Path: "p", Platforms: []string{"Darwin", "Linux"}}
	assert.True(t, p.SupportsPlatform("Linux"))
	assert.False(t, p.SupportsPlatform("linux"))
	assert.False(t, p.SupportsPlatform("Windows"))
}
