package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// WriteCSV writes a header row followed by one row per result, in order.
func (w *Writer) WriteCSV(results iter.Seq[*domain.CloseApproach], path string) error {
	return w.writeFile(path, func(out io.Writer) error {
		csvWriter := csv.NewWriter(out)
		if err := csvWriter.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		var writeErr error
		for approach := range results {
			record, err := newApproachRecord(approach)
			if err != nil {
				writeErr = err
				break
			}
			if err := csvWriter.Write(record.csvRow()); err != nil {
				writeErr = fmt.Errorf("write approach row: %w", err)
				break
			}
		}
		if writeErr != nil {
			return writeErr
		}

		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return fmt.Errorf("flush rows: %w", err)
		}
		return nil
	})
}
