package export

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// WriteJSON writes results as a single indented JSON array, in order.
// An empty result stream produces [].
func (w *Writer) WriteJSON(results iter.Seq[*domain.CloseApproach], path string) error {
	records := []approachRecord{}
	for approach := range results {
		record, err := newApproachRecord(approach)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	encoded, err := json.MarshalIndent(records, "", w.indent)
	if err != nil {
		return fmt.Errorf("encode approaches: %w", err)
	}
	return w.writeFile(path, func(out io.Writer) error {
		if _, err := out.Write(encoded); err != nil {
			return fmt.Errorf("write approaches: %w", err)
		}
		return nil
	})
}
