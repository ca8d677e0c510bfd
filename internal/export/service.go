// Package export writes close-approach result streams to CSV, JSON or XLSX files.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned when the output extension is not supported.
	ErrUnsupportedFormat = errors.New("unsupported output format")
	// ErrUnlinkedApproach is returned when a result has no associated NEO.
	ErrUnlinkedApproach = errors.New("close approach is not linked to an NEO")
)

// Format names an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath derives the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Writer serializes results into files. Each file is written to a temporary
// sibling first and renamed over the destination once complete.
type Writer struct {
	fs     afero.Fs
	indent string
	newID  func() uuid.UUID
}

type Option func(*Writer)

// WithIndent sets the indentation used for JSON output.
func WithIndent(indent string) Option {
	return func(w *Writer) {
		w.indent = indent
	}
}

// NewWriter creates a writer on fs. A nil fs means the OS filesystem.
func NewWriter(fs afero.Fs, opts ...Option) *Writer {
	writer := &Writer{
		fs:     fs,
		indent: "  ",
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(writer)
	}
	if writer.fs == nil {
		writer.fs = afero.NewOsFs()
	}
	return writer
}

var defaultWriter = NewWriter(nil)

// Write writes results to path in the format chosen by the path's extension.
func Write(results iter.Seq[*domain.CloseApproach], path string) error {
	return defaultWriter.Write(results, path)
}

// WriteCSV writes results to a CSV file on the OS filesystem.
func WriteCSV(results iter.Seq[*domain.CloseApproach], path string) error {
	return defaultWriter.WriteCSV(results, path)
}

// WriteJSON writes results to a JSON file on the OS filesystem.
func WriteJSON(results iter.Seq[*domain.CloseApproach], path string) error {
	return defaultWriter.WriteJSON(results, path)
}

// WriteXLSX writes results to an XLSX workbook on the OS filesystem.
func WriteXLSX(results iter.Seq[*domain.CloseApproach], path string) error {
	return defaultWriter.WriteXLSX(results, path)
}

func (w *Writer) Write(results iter.Seq[*domain.CloseApproach], path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return w.WriteJSON(results, path)
	case FormatXLSX:
		return w.WriteXLSX(results, path)
	default:
		return w.WriteCSV(results, path)
	}
}

// defaultFileMode is the mode of newly created output files.
const defaultFileMode os.FileMode = 0o644

// writeFile creates or replaces path with the output of write. The temporary
// file is named after a fresh run ID and is closed and removed on every error
// path. A replaced file keeps its permissions.
func (w *Writer) writeFile(path string, write func(io.Writer) error) error {
	runID := w.newID()
	tempPath := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), runID))
	tempFile, err := w.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFileMode)
	if err != nil {
		return fmt.Errorf("create temp export file for run %s: %w", runID, err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = w.fs.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriterSize(tempFile, 1<<16)
	if err := write(buffered); err != nil {
		return err
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("flush export file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync export file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	// OpenFile is subject to the umask; set the final mode explicitly.
	mode := defaultFileMode
	if info, err := w.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := w.fs.Chmod(tempPath, mode); err != nil {
		return fmt.Errorf("set export file mode: %w", err)
	}
	if err := w.fs.Rename(tempPath, path); err != nil {
		return fmt.Errorf("promote export file: %w", err)
	}
	cleanup = false
	return nil
}
