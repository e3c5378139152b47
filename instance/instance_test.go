package instance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	in := "InstanceId,InstanceName\ni-111,db-1\n\ni-222 , db-2\n"

	records, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{ID: "i-111", Name: "db-1"},
		{ID: "i-222", Name: "db-2"},
	}, records)
}

// TestRead_ColumnOrder verifies columns are located by header name.
func TestRead_ColumnOrder(t *testing.T) {
	in := "\ufeffInstanceName,Team,InstanceId\nweb-01,core,i-abc\n"

	records, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Record{{ID: "i-abc", Name: "web-01"}}, records)
}

func TestRead_MissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("InstanceId,Name\ni-1,a\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRead_ShortRow(t *testing.T) {
	_, err := Read(strings.NewReader("InstanceId,InstanceName\ni-1\n"))
	assert.Error(t, err)
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReadFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "instances.csv")
	require.NoError(t, os.WriteFile(filename, []byte("InstanceId,InstanceName\ni-1,web-01\n"), 0o600))

	records, err := ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, []Record{{ID: "i-1", Name: "web-01"}}, records)
}
