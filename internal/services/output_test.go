package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"apple-music-schedule-scraper/internal/models"
)

func sampleShows() []models.ShowRecord {
	scrapedAt := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	return []models.ShowRecord{
		{
			ID:              "show_aaaa1111",
			Station:         "Apple Music 1",
			StationURL:      "https://music.apple.com/us/radio/ra.978194965",
			TimeSlot:        "5 – 7 AM",
			TimeSlotUTC:     "05:00 – 07:00",
			TimeSlotPacific: "10:00 PM – 12:00 AM",
			Title:           "The Morning Show",
			Description:     "Wake up with the hits.",
			ImageURL:        "https://is1-ssl.mzstatic.com/image/morning.jpg",
			ShowURL:         "https://music.apple.com/us/curator/morning-show",
			ScrapedAt:       scrapedAt,
		},
		{
			ID:              "show_bbbb2222",
			Station:         "Apple Music Hits",
			StationURL:      "https://music.apple.com/us/radio/ra.1498155548",
			TimeSlot:        "7 – 9 AM",
			TimeSlotUTC:     "07:00 – 09:00",
			TimeSlotPacific: "12:00 AM – 2:00 AM",
			Title:           "Daybreak Sessions",
			ScrapedAt:       scrapedAt,
		},
	}
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	writer := NewSnapshotWriterWithDir(dir)

	shows := sampleShows()
	output := models.NewScheduleOutput("run_12345678", []string{"Apple Music 1", "Apple Music Hits"}, shows)

	if err := writer.WriteSnapshot(&output); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	t.Run("csv round trip", func(t *testing.T) {
		records, err := ReadCSVSnapshot(writer.CSVPath())
		if err != nil {
			t.Fatalf("ReadCSVSnapshot: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Station != "Apple Music 1" {
			t.Errorf("station = %q", records[0].Station)
		}
		if records[0].TimeSlotUTC != "05:00 – 07:00" {
			t.Errorf("utc slot = %q", records[0].TimeSlotUTC)
		}
		if records[0].TimeSlotPacific != "10:00 PM – 12:00 AM" {
			t.Errorf("pacific slot = %q", records[0].TimeSlotPacific)
		}
		if records[0].Title != "The Morning Show" {
			t.Errorf("title = %q", records[0].Title)
		}
	})

	t.Run("json round trip", func(t *testing.T) {
		data, err := os.ReadFile(writer.JSONPath())
		if err != nil {
			t.Fatalf("read JSON snapshot: %v", err)
		}
		var got models.ScheduleOutput
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal JSON snapshot: %v", err)
		}
		if got.RunID != "run_12345678" {
			t.Errorf("run id = %q", got.RunID)
		}
		if got.TotalShows != 2 || len(got.Shows) != 2 {
			t.Errorf("total shows = %d, records = %d", got.TotalShows, len(got.Shows))
		}
		if got.Shows[1].Title != "Daybreak Sessions" {
			t.Errorf("second title = %q", got.Shows[1].Title)
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		for _, entry := range entries {
			if filepath.Ext(entry.Name()) == ".tmp" {
				t.Errorf("leftover temp file %s", entry.Name())
			}
		}
	})
}

func TestWriteSnapshotNilOutput(t *testing.T) {
	writer := NewSnapshotWriterWithDir(t.TempDir())
	if err := writer.WriteSnapshot(nil); err == nil {
		t.Error("expected error for nil output")
	}
}

func TestWriteSnapshotCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	writer := NewSnapshotWriterWithDir(dir)

	output := models.NewScheduleOutput("run_12345678", []string{"Apple Music 1"}, sampleShows()[:1])
	if err := writer.WriteSnapshot(&output); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := os.Stat(writer.CSVPath()); err != nil {
		t.Errorf("CSV snapshot missing: %v", err)
	}
}

func TestReadCSVSnapshotMissingFile(t *testing.T) {
	if _, err := ReadCSVSnapshot(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteCSVEmptyShows(t *testing.T) {
	writer := NewSnapshotWriterWithDir(t.TempDir())
	if err := writer.WriteCSV(nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := ReadCSVSnapshot(writer.CSVPath())
	if err != nil {
		t.Fatalf("ReadCSVSnapshot: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected header-only snapshot, got %d records", len(records))
	}
}
