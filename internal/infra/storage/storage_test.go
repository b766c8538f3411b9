package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_SaveAndRemove(t *testing.T) {
	d, err := NewDisk(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, size, err := d.Save(context.Background(), "Q1 Report.XLSX", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, size)
	assert.Equal(t, ".xlsx", filepath.Ext(path))
	assert.NotContains(t, path, "Q1 Report")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))

	other, _, err := d.Save(context.Background(), "Q1 Report.XLSX", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, path, other)

	require.NoError(t, d.Remove(context.Background(), path))
	require.NoError(t, d.Remove(context.Background(), path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.ms-excel", ContentType("a.XLS"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("/x/b.xlsx"))
	assert.Equal(t, "application/octet-stream", ContentType("c.csv"))
}
