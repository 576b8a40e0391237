package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"apple-music-schedule-scraper/internal/models"
)

const (
	csvSnapshotName  = "apple_music_schedule.csv"
	jsonSnapshotName = "apple_music_schedule.json"
)

// SnapshotWriter writes schedule snapshots to local files. Files are written
// to a temp name and renamed so readers never see a partial snapshot.
type SnapshotWriter struct {
	outputDir string
}

// NewSnapshotWriter creates a writer using SCHEDULE_OUTPUT_DIR, defaulting to
// the current directory
func NewSnapshotWriter() *SnapshotWriter {
	outputDir := os.Getenv("SCHEDULE_OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "."
	}
	return &SnapshotWriter{outputDir: outputDir}
}

// NewSnapshotWriterWithDir creates a writer targeting a specific directory
func NewSnapshotWriterWithDir(dir string) *SnapshotWriter {
	return &SnapshotWriter{outputDir: dir}
}

// OutputDir returns the directory snapshots are written to
func (w *SnapshotWriter) OutputDir() string {
	return w.outputDir
}

// CSVPath returns the path of the CSV snapshot
func (w *SnapshotWriter) CSVPath() string {
	return filepath.Join(w.outputDir, csvSnapshotName)
}

// JSONPath returns the path of the JSON snapshot
func (w *SnapshotWriter) JSONPath() string {
	return filepath.Join(w.outputDir, jsonSnapshotName)
}

// WriteSnapshot writes both the CSV and JSON snapshots for a completed run
func (w *SnapshotWriter) WriteSnapshot(output *models.ScheduleOutput) error {
	if output == nil {
		return fmt.Errorf("schedule output cannot be nil")
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", w.outputDir, err)
	}

	if err := w.WriteCSV(output.Shows); err != nil {
		return err
	}
	if err := w.WriteJSON(output); err != nil {
		return err
	}

	log.Printf("[OUTPUT] Wrote %d shows to %s and %s", len(output.Shows), w.CSVPath(), w.JSONPath())
	return nil
}

// WriteCSV writes the show records as a CSV snapshot
func (w *SnapshotWriter) WriteCSV(shows []models.ShowRecord) error {
	tmpPath := w.CSVPath() + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV snapshot: %w", err)
	}

	writer := csv.NewWriter(file)
	writeErr := writer.Write(models.CSVHeader)
	for _, show := range shows {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write(show.CSVRow())
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}

	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write CSV snapshot: %w", writeErr)
	}

	if err := os.Rename(tmpPath, w.CSVPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize CSV snapshot: %w", err)
	}
	return nil
}

// WriteJSON writes the full schedule output as a JSON snapshot
func (w *SnapshotWriter) WriteJSON(output *models.ScheduleOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule output: %w", err)
	}

	tmpPath := w.JSONPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, w.JSONPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize JSON snapshot: %w", err)
	}
	return nil
}

// ReadCSVSnapshot reads a previously written CSV snapshot back into records.
// Only the columns needed for coverage checks are populated.
func ReadCSVSnapshot(path string) ([]models.ShowRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV snapshot: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV snapshot %s is empty", path)
	}

	// Map header positions so column reordering does not break readers
	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[name] = i
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	records := make([]models.ShowRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, models.ShowRecord{
			Station:         field(row, "station"),
			TimeSlotUTC:     field(row, "time_slot_utc"),
			TimeSlotPacific: field(row, "time_slot_pacific"),
			Title:           field(row, "show_title"),
			Description:     field(row, "description"),
			ImageURL:        field(row, "image_url"),
			ShowURL:         field(row, "show_url"),
		})
	}
	return records, nil
}
