// Package ingestion loads near-Earth objects and close approaches from flat
// files into domain records.
package ingestion

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
)

var (
	// ErrUnsupportedFormat is returned when an input file extension is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMissingColumn is returned when the NEO table lacks a required header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedInput is returned when the input does not have the expected shape.
	ErrMalformedInput = errors.New("malformed input")
)

// Loader reads input files from a filesystem. Every load is all-or-nothing:
// either every record of the file is returned or an error is.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader reading from fs. A nil fs means the OS filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	payload, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return payload, nil
}

var defaultLoader = NewLoader(nil)
