package ingestion

import (
	"fmt"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// NEO table columns consumed by the loader. Other columns are ignored.
const (
	columnDesignation = "pdes"
	columnName        = "name"
	columnDiameter    = "diameter"
	columnHazardous   = "pha"
)

// LoadNEOs reads NEOs from a CSV (or XLSX) file on the OS filesystem.
func LoadNEOs(path string) ([]domain.NearEarthObject, error) {
	return defaultLoader.LoadNEOs(path)
}

// LoadNEOs reads one NEO per data row of the table at path, in row order.
func (l *Loader) LoadNEOs(path string) ([]domain.NearEarthObject, error) {
	payload, err := l.readFile(path)
	if err != nil {
		return nil, err
	}

	table, err := parseTable(path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	columns := make(map[string]int, 4)
	for _, name := range []string{columnDesignation, columnName, columnDiameter, columnHazardous} {
		idx := table.column(name)
		if idx < 0 {
			return nil, fmt.Errorf("%s: %w %q", path, ErrMissingColumn, name)
		}
		columns[name] = idx
	}

	neos := make([]domain.NearEarthObject, 0, len(table.rows))
	for i, row := range table.rows {
		designation := row[columns[columnDesignation]]
		if designation == "" {
			// Header is line 1.
			return nil, fmt.Errorf("%s: %w: row %d has an empty designation", path, ErrMalformedInput, i+2)
		}
		neos = append(neos, domain.NewNearEarthObject(
			designation,
			row[columns[columnName]],
			coerceDiameter(row[columns[columnDiameter]]),
			coerceHazardous(row[columns[columnHazardous]]),
		))
	}
	return neos, nil
}
