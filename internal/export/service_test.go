package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"github.com/idumahg/NearEarthObjects/internal/domain"
	"github.com/idumahg/NearEarthObjects/internal/ingestion"
)

func sampleApproaches() []*domain.CloseApproach {
	eros := domain.NewNearEarthObject("2000433", "Eros", 16.84, false)
	unnamed := domain.NewNearEarthObject("2019 AA", "", domain.UnknownDiameter(), true)
	return []*domain.CloseApproach{
		{
			Designation: "2000433",
			Time:        time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
			DistanceAU:  0.15,
			VelocityKmS: 5.2,
			NEO:         &eros,
		},
		{
			Designation: "2019 AA",
			Time:        time.Date(2020, time.February, 29, 23, 59, 0, 0, time.UTC),
			DistanceAU:  0.0921795123769547,
			VelocityKmS: 16.7523040362574,
			NEO:         &unnamed,
		},
	}
}

func readCSV(t *testing.T, fs afero.Fs, path string) [][]string {
	t.Helper()
	payload, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file %s left behind", entry.Name())
		}
	}
}

func TestWriteCSVFlattensApproaches(t *testing.T) {
	fs := afero.NewMemMapFs()
	writer := NewWriter(fs)

	if err := writer.WriteCSV(slices.Values(sampleApproaches()), "/out/results.csv"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	want := [][]string{
		{"datetime_utc", "distance_au", "velocity_km_s", "designation", "name", "diameter_km", "potentially_hazardous"},
		{"1900-01-01 00:00", "0.15", "5.2", "2000433", "Eros", "16.84", "False"},
		{"2020-02-29 23:59", "0.0921795123769547", "16.7523040362574", "2019 AA", "", "nan", "True"},
	}
	if diff := cmp.Diff(want, readCSV(t, fs, "/out/results.csv")); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
	assertNoTempFiles(t, fs, "/out")
}

func TestWriteCSVEmptyResultsWritesHeaderOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := NewWriter(fs).WriteCSV(slices.Values([]*domain.CloseApproach{}), "empty.csv"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	payload, err := afero.ReadFile(fs, "empty.csv")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "datetime_utc,distance_au,velocity_km_s,designation,name,diameter_km,potentially_hazardous\n"
	if string(payload) != want {
		t.Fatalf("expected header only, got %q", payload)
	}
}

func TestWriteJSONNestsNEO(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := NewWriter(fs).WriteJSON(slices.Values(sampleApproaches()), "results.json"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	payload, err := afero.ReadFile(fs, "results.json")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(payload, []byte("\n  {\n    \"datetime_utc\"")) {
		t.Fatalf("expected indented output, got:\n%s", payload)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := []map[string]any{
		{
			"datetime_utc":  "1900-01-01 00:00",
			"distance_au":   0.15,
			"velocity_km_s": 5.2,
			"designation":   "2000433",
			"neo": map[string]any{
				"designation":           "2000433",
				"name":                  "Eros",
				"diameter_km":           16.84,
				"potentially_hazardous": false,
			},
		},
		{
			"datetime_utc":  "2020-02-29 23:59",
			"distance_au":   0.0921795123769547,
			"velocity_km_s": 16.7523040362574,
			"designation":   "2019 AA",
			"neo": map[string]any{
				"designation":           "2019 AA",
				"name":                  nil,
				"diameter_km":           nil,
				"potentially_hazardous": true,
			},
		},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONEmptyResults(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := NewWriter(fs).WriteJSON(slices.Values([]*domain.CloseApproach(nil)), "empty.json"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	payload, err := afero.ReadFile(fs, "empty.json")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(payload) != "[]" {
		t.Fatalf("expected empty array, got %q", payload)
	}
}

func TestWriteXLSX(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := NewWriter(fs).WriteXLSX(slices.Values(sampleApproaches()), "results.xlsx"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	payload, err := afero.ReadFile(fs, "results.xlsx")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if diff := cmp.Diff(Header, rows[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if rows[1][3] != "2000433" || rows[1][4] != "Eros" || rows[1][6] != "FALSE" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][4] != "" || rows[2][5] != "" {
		t.Fatalf("expected empty name and diameter cells: %v", rows[2])
	}
}

func TestWriteDispatchesOnExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	writer := NewWriter(fs)
	results := slices.Values(sampleApproaches())

	for _, path := range []string{"out.CSV", "out.json", "out.xlsx"} {
		if err := writer.Write(results, path); err != nil {
			t.Fatalf("%s: write returned error: %v", path, err)
		}
		if exists, _ := afero.Exists(fs, path); !exists {
			t.Fatalf("%s: expected output file", path)
		}
	}

	if err := writer.Write(results, "out.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if exists, _ := afero.Exists(fs, "out.txt"); exists {
		t.Fatalf("did not expect unsupported output to be created")
	}
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "results.csv", []byte("stale content that is longer than the header row by quite a bit\n\n\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := NewWriter(fs).WriteCSV(slices.Values(sampleApproaches()[:1]), "results.csv"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	records := readCSV(t, fs, "results.csv")
	if len(records) != 2 || records[1][3] != "2000433" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestWriteSetsFileMode(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()
	writer := NewWriter(fs)

	fresh := filepath.Join(dir, "fresh.json")
	if err := writer.WriteJSON(slices.Values(sampleApproaches()), fresh); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	info, err := fs.Stat(fresh)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected a new file to get 0644, got %v", info.Mode())
	}

	for _, perm := range []os.FileMode{0o644, 0o600} {
		existing := filepath.Join(dir, fmt.Sprintf("results-%o.csv", perm))
		if err := afero.WriteFile(fs, existing, []byte("stale\n"), perm); err != nil {
			t.Fatalf("seed file: %v", err)
		}
		if err := fs.Chmod(existing, perm); err != nil {
			t.Fatalf("chmod seed file: %v", err)
		}
		if err := writer.WriteCSV(slices.Values(sampleApproaches()), existing); err != nil {
			t.Fatalf("write returned error: %v", err)
		}
		info, err := fs.Stat(existing)
		if err != nil {
			t.Fatalf("stat output: %v", err)
		}
		if info.Mode().Perm() != perm {
			t.Fatalf("expected overwrite to keep %v, got %v", perm, info.Mode().Perm())
		}
	}
	assertNoTempFiles(t, fs, dir)
}

func TestWriteNamesTempFileAfterRunID(t *testing.T) {
	fs := afero.NewMemMapFs()
	runID := uuid.MustParse("0b5f7f0e-3c1a-4d2e-9b8f-6a7c5d4e3f21")
	writer := NewWriter(fs)
	writer.newID = func() uuid.UUID { return runID }

	tempPath := "/out/.results.csv." + runID.String() + ".tmp"
	if err := afero.WriteFile(fs, tempPath, []byte("in use"), 0o644); err != nil {
		t.Fatalf("seed temp file: %v", err)
	}

	err := writer.WriteCSV(slices.Values(sampleApproaches()), "/out/results.csv")
	if err == nil || !strings.Contains(err.Error(), runID.String()) {
		t.Fatalf("expected error naming run %s, got %v", runID, err)
	}
	if payload, _ := afero.ReadFile(fs, tempPath); string(payload) != "in use" {
		t.Fatalf("existing temp file was modified: %q", payload)
	}
	if exists, _ := afero.Exists(fs, "/out/results.csv"); exists {
		t.Fatalf("did not expect output without a temp file")
	}
}

func TestWriteJSONUsesIndent(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := NewWriter(fs, WithIndent("    ")).WriteJSON(slices.Values(sampleApproaches()[:1]), "results.json"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	payload, err := afero.ReadFile(fs, "results.json")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(string(payload), "\n")
	if len(lines) < 3 || lines[1] != "    {" || !strings.HasPrefix(lines[2], "        \"datetime_utc\": ") {
		t.Fatalf("expected four-space indentation, got:\n%s", payload)
	}
}

func TestWriteRejectsUnlinkedApproach(t *testing.T) {
	approaches := sampleApproaches()
	approaches[1].NEO = nil

	fs := afero.NewMemMapFs()
	writer := NewWriter(fs)
	for _, path := range []string{"/out/results.csv", "/out/results.json", "/out/results.xlsx"} {
		err := writer.Write(slices.Values(approaches), path)
		if !errors.Is(err, ErrUnlinkedApproach) {
			t.Fatalf("%s: expected ErrUnlinkedApproach, got %v", path, err)
		}
		if exists, _ := afero.Exists(fs, path); exists {
			t.Fatalf("%s: did not expect a partial output file", path)
		}
	}
	if exists, _ := afero.DirExists(fs, "/out"); exists {
		assertNoTempFiles(t, fs, "/out")
	}
}

func TestWriteCSVRoundTripsLoadedRecords(t *testing.T) {
	fs := afero.NewMemMapFs()
	neoCSV := "pdes,name,diameter,pha\n" +
		"2000433,Eros,16.84,N\n" +
		"2101955,Bennu,0.49,Y\n" +
		"2019 AA,,,N\n"
	cadJSON := `{"data": [
		["2101955", "2135-Sep-25 06:42", "0.00136", "12.8"],
		["2000433", "1900-Jan-01 00:00", 0.15, 5.2],
		["2019 AA", "2020-Feb-29 23:59", 0.0000123, 30.125]
	]}`
	if err := afero.WriteFile(fs, "neos.csv", []byte(neoCSV), 0o644); err != nil {
		t.Fatalf("seed neos: %v", err)
	}
	if err := afero.WriteFile(fs, "cad.json", []byte(cadJSON), 0o644); err != nil {
		t.Fatalf("seed approaches: %v", err)
	}

	loader := ingestion.NewLoader(fs)
	neos, err := loader.LoadNEOs("neos.csv")
	if err != nil {
		t.Fatalf("load neos: %v", err)
	}
	approaches, err := loader.LoadApproaches("cad.json")
	if err != nil {
		t.Fatalf("load approaches: %v", err)
	}

	byDesignation := map[string]*domain.NearEarthObject{}
	for i := range neos {
		byDesignation[neos[i].Designation] = &neos[i]
	}
	results := make([]*domain.CloseApproach, len(approaches))
	for i := range approaches {
		approaches[i].NEO = byDesignation[approaches[i].Designation]
		results[i] = &approaches[i]
	}

	if err := NewWriter(fs).WriteCSV(slices.Values(results), "results.csv"); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	records := readCSV(t, fs, "results.csv")
	if len(records) != len(results)+1 {
		t.Fatalf("expected %d records, got %d", len(results)+1, len(records))
	}
	for i, record := range records[1:] {
		approach := results[i]
		if record[3] != approach.Designation {
			t.Fatalf("row %d: designation %q, want %q", i, record[3], approach.Designation)
		}
		distance, err := strconv.ParseFloat(record[1], 64)
		if err != nil || distance != approach.DistanceAU {
			t.Fatalf("row %d: distance %q, want %v", i, record[1], approach.DistanceAU)
		}
		velocity, err := strconv.ParseFloat(record[2], 64)
		if err != nil || velocity != approach.VelocityKmS {
			t.Fatalf("row %d: velocity %q, want %v", i, record[2], approach.VelocityKmS)
		}
		if record[4] != approach.NEO.NameOrEmpty() {
			t.Fatalf("row %d: name %q, want %q", i, record[4], approach.NEO.NameOrEmpty())
		}
		if record[6] != formatBool(approach.NEO.Hazardous) {
			t.Fatalf("row %d: hazardous %q", i, record[6])
		}
		diameter, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			t.Fatalf("row %d: diameter %q does not parse: %v", i, record[5], err)
		}
		if approach.NEO.HasDiameter() != !math.IsNaN(diameter) {
			t.Fatalf("row %d: diameter %q does not round-trip", i, record[5])
		}
	}
}
