package spreadsheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bryanwahyu/finsight/internal/domain/errs"
)

func writeBook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExtract(t *testing.T) {
	path := writeBook(t, "acme.xlsx", [][]any{
		{"Month", "Revenue", "Expenses"},
		{"Jan", 1000, 800},
		{"Feb", 1200, 850},
	})

	got, err := (&Extractor{}).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Month Revenue Expenses\nJan 1000 800\nFeb 1200 850", got)
}

func TestExtract_EmptySheet(t *testing.T) {
	path := writeBook(t, "empty.xlsx", nil)

	got, err := (&Extractor{}).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestExtract_Unreadable(t *testing.T) {
	_, err := (&Extractor{}).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Equal(t, errs.KindExtraction, errs.KindOf(err))
}

func TestExtractAll(t *testing.T) {
	a := writeBook(t, "a.xlsx", [][]any{{"Revenue", 10}})
	b := writeBook(t, "b.xlsx", [][]any{{"Revenue", 20}})

	got, err := (&Extractor{Parallel: 1}).ExtractAll(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, "File: "+a+"\nData:\nRevenue 10\n\nFile: "+b+"\nData:\nRevenue 20", got)
}
