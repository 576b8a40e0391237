package models

import "time"

// ScheduleOutput represents the complete JSON structure for a schedule snapshot
type ScheduleOutput struct {
	ScrapedAt       time.Time    `json:"scraped_at"`
	RunID           string       `json:"run_id"`
	StationsScraped []string     `json:"stations_scraped"`
	TotalShows      int          `json:"total_shows"`
	Shows           []ShowRecord `json:"shows"`
}

// ShowRecord represents a single show entry extracted from a station schedule
type ShowRecord struct {
	ID         string `json:"id"`
	Station    string `json:"station"`
	StationURL string `json:"station_url"`

	// Time slots
	TimeSlot        string `json:"time_slot"`         // raw slot text as displayed on the page
	TimeSlotUTC     string `json:"time_slot_utc"`     // normalized 24-hour slot, source zone
	TimeSlotPacific string `json:"time_slot_pacific"` // converted 12-hour slot, America/Los_Angeles

	// Content
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	ShowURL     string `json:"show_url,omitempty"`

	// Raw extraction context, truncated for diagnostics
	RawText string `json:"raw_text,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// CSVHeader is the fixed column order for the CSV snapshot.
var CSVHeader = []string{
	"station",
	"time_slot_utc",
	"time_slot_pacific",
	"show_title",
	"description",
	"image_url",
	"show_url",
	"scraped_at",
}

// CSVRow returns the record's fields in CSVHeader order.
func (r ShowRecord) CSVRow() []string {
	return []string{
		r.Station,
		r.TimeSlotUTC,
		r.TimeSlotPacific,
		r.Title,
		r.Description,
		r.ImageURL,
		r.ShowURL,
		r.ScrapedAt.Format(time.RFC3339),
	}
}

// NewScheduleOutput creates a snapshot wrapper for the given shows
func NewScheduleOutput(runID string, stations []string, shows []ShowRecord) ScheduleOutput {
	return ScheduleOutput{
		ScrapedAt:       time.Now().UTC(),
		RunID:           runID,
		StationsScraped: stations,
		TotalShows:      len(shows),
		Shows:           shows,
	}
}
