package models

import (
	"testing"
	"time"
)

func TestCSVRowMatchesHeader(t *testing.T) {
	record := ShowRecord{
		Station:         "Apple Music 1",
		TimeSlotUTC:     "05:00 – 07:00",
		TimeSlotPacific: "10:00 PM – 12:00 AM",
		Title:           "The Morning Show",
		Description:     "Wake up with the hits.",
		ImageURL:        "https://example.com/a.jpg",
		ShowURL:         "https://music.apple.com/us/curator/morning-show",
		ScrapedAt:       time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC),
	}

	row := record.CSVRow()
	if len(row) != len(CSVHeader) {
		t.Fatalf("row has %d fields, header has %d", len(row), len(CSVHeader))
	}
	if row[0] != "Apple Music 1" {
		t.Errorf("station column = %q", row[0])
	}
	if row[1] != "05:00 – 07:00" {
		t.Errorf("utc column = %q", row[1])
	}
	if row[2] != "10:00 PM – 12:00 AM" {
		t.Errorf("pacific column = %q", row[2])
	}
	if row[7] != "2025-07-15T12:00:00Z" {
		t.Errorf("scraped_at column = %q", row[7])
	}
}

func TestNewScheduleOutput(t *testing.T) {
	shows := []ShowRecord{{ID: "show_aaaa1111"}, {ID: "show_bbbb2222"}}
	output := NewScheduleOutput("run_12345678", []string{"Apple Music 1"}, shows)

	if output.RunID != "run_12345678" {
		t.Errorf("run id = %q", output.RunID)
	}
	if output.TotalShows != 2 {
		t.Errorf("total shows = %d", output.TotalShows)
	}
	if output.ScrapedAt.IsZero() {
		t.Error("scraped at not set")
	}
	if output.ScrapedAt.Location() != time.UTC {
		t.Error("scraped at should be UTC")
	}
}
