package export

import (
	"fmt"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// SheetName is the worksheet XLSX results are written to.
const SheetName = "close_approaches"

// WriteXLSX writes results to a single-sheet workbook with the tabular header.
func (w *Writer) WriteXLSX(results iter.Seq[*domain.CloseApproach], path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	stream, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet writer: %w", err)
	}

	header := make([]any, len(Header))
	for i, column := range Header {
		header[i] = column
	}
	if err := stream.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for approach := range results {
		record, err := newApproachRecord(approach)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := stream.SetRow(cell, record.cells()); err != nil {
			return fmt.Errorf("write approach row %d: %w", row, err)
		}
		row++
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return w.writeFile(path, func(out io.Writer) error {
		if err := f.Write(out); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	})
}
