package spreadsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
)

// Extractor reads the first sheet of a workbook as plain text.
type Extractor struct {
	// Parallel caps concurrent reads in ExtractAll; 0 means one per file.
	Parallel int
}

var _ projects.Extractor = (*Extractor)(nil)

// Extract returns every row of the first sheet space-joined, one line per
// row. An empty sheet yields "".
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", errs.Extraction(err, "Failed to read spreadsheet %s", filepath.Base(path))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", errs.Extraction(err, "Failed to read spreadsheet %s", filepath.Base(path))
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, " ")
	}
	return strings.Join(lines, "\n"), nil
}

// ExtractAll reads every file independently and concatenates the results,
// each prefixed with its path, in input order.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) (string, error) {
	out := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if e.Parallel > 0 {
		g.SetLimit(e.Parallel)
	}
	for i, p := range paths {
		g.Go(func() error {
			text, err := e.Extract(gctx, p)
			if err != nil {
				return err
			}
			out[i] = fmt.Sprintf("File: %s\nData:\n%s", p, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(out, "\n\n"), nil
}
