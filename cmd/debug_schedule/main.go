package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"apple-music-schedule-scraper/internal/models"
	"apple-music-schedule-scraper/internal/services"
)

// Debug tool for inspecting extraction on a single station. Renders the page,
// runs the DOM extractor, and prints what each entry parsed into.
//
// Usage:
//
//	debug_schedule               inspect all stations
//	debug_schedule "Apple Music 1"  inspect one station
//	debug_schedule -slots        exercise slot parsing against sample inputs
//	debug_schedule -runs         print recent runs from the history table
//	debug_schedule -remote       inspect the published S3 snapshot and backups
func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-slots":
			debugSlots()
			return
		case "-runs":
			debugRuns()
			return
		case "-remote":
			debugRemote()
			return
		}
	}

	var filter string
	if len(os.Args) > 1 {
		filter = strings.ToLower(os.Args[1])
	}

	converter, err := services.NewSlotConverter()
	if err != nil {
		log.Fatalf("failed to create slot converter: %v", err)
	}

	browser := services.NewBrowserClient()
	extractor := services.NewScheduleExtractor(converter)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, station := range models.GetStations() {
		if filter != "" && !strings.Contains(strings.ToLower(station.Name), filter) {
			continue
		}
		debugStation(ctx, browser, extractor, station)
	}
}

func debugStation(ctx context.Context, browser *services.BrowserClient, extractor *services.ScheduleExtractor, station models.Station) {
	fmt.Printf("\n=== %s ===\n%s\n", station.Name, station.URL)

	rendered, err := browser.RenderStationPage(ctx, station)
	if err != nil {
		fmt.Printf("render failed: %v\n", err)
		return
	}
	fmt.Printf("rendered %d chars in %v (%d attempts)\n", rendered.HTMLLength, rendered.RenderTime.Round(time.Millisecond), rendered.Attempts)

	result, err := extractor.ExtractShows(rendered.HTML, station, time.Now().UTC())
	if err != nil {
		fmt.Printf("extraction failed: %v\n", err)
		return
	}

	fmt.Printf("selector=%q fallback=%t examined=%d filtered=%d shows=%d\n",
		result.SelectorMatched, result.UsedFallback, result.ItemsExamined, result.ItemsFiltered, len(result.Shows))

	for i, show := range result.Shows {
		fmt.Printf("\n[%d] %s\n", i+1, show.Title)
		fmt.Printf("    raw slot: %q\n", show.TimeSlot)
		fmt.Printf("    utc:      %q  pacific: %q\n", show.TimeSlotUTC, show.TimeSlotPacific)
		if show.Description != "" {
			fmt.Printf("    desc:     %s\n", show.Description)
		}
		if show.ShowURL != "" {
			fmt.Printf("    url:      %s\n", show.ShowURL)
		}
		fmt.Printf("    context:  %s\n", show.RawText)
	}
}

// debugSlots runs the slot parser against the range formats the widget has
// been seen using, printing each conversion
func debugSlots() {
	samples := []string{
		"5 – 7 AM",
		"7 – 9 AM",
		"12 – 2 PM",
		"11 PM – 12 AM",
		"LIVE · 3 – 5 PM",
		"9:30 – 11 AM",
		"7:05 PM – 9:00 PM",
		"22:00 – 00:00",
		"12 AM – 2 AM",
	}

	converter, err := services.NewSlotConverter()
	if err != nil {
		log.Fatalf("failed to create slot converter: %v", err)
	}

	now := time.Now().UTC()
	fmt.Printf("anchor date: %s\n\n", now.Format("2006-01-02"))

	for _, sample := range samples {
		parsed, err := services.ParseTimeSlot(sample)
		if err != nil {
			fmt.Printf("%-22q parse error: %v\n", sample, err)
			continue
		}
		utcSlot, pacificSlot := converter.Convert(parsed, now)
		fmt.Printf("%-22q -> start %02d:%02d end %02d:%02d | utc %q | pacific %q\n",
			sample, parsed.Start.Hour, parsed.Start.Minute, parsed.End.Hour, parsed.End.Minute, utcSlot, pacificSlot)
	}
}

// debugRuns prints the most recent runs recorded in the history table
func debugRuns() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history, err := services.NewRunHistoryService(ctx)
	if err != nil {
		log.Fatalf("run history unavailable: %v", err)
	}

	runs, err := history.GetRecentRuns(ctx, 10)
	if err != nil {
		log.Fatalf("failed to query recent runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Printf("no runs recorded in %s\n", history.GetTableName())
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %-9s  %d shows from %d/%d stations  trigger=%s\n",
			run.StartedAt.UTC().Format("2006-01-02 15:04"), run.ID, run.Status,
			run.TotalShows, run.SuccessfulStations, run.TotalStations, run.TriggerType)
		for _, warning := range run.Warnings {
			fmt.Printf("    warning: %s\n", warning)
		}
	}
}

// debugRemote summarizes the published snapshot and lists recent backups
func debugRemote() {
	s3Client, err := services.NewS3Client()
	if err != nil {
		log.Fatalf("S3 unavailable: %v", err)
	}

	const latestKey = "schedule/latest.json"
	exists, err := s3Client.FileExists(latestKey)
	if err != nil {
		log.Fatalf("failed to check %s: %v", latestKey, err)
	}
	if !exists {
		fmt.Printf("no published snapshot at %s\n", s3Client.GetPublicURL(latestKey))
		return
	}

	output, err := s3Client.DownloadSchedule(latestKey)
	if err != nil {
		log.Fatalf("failed to download %s: %v", latestKey, err)
	}
	fmt.Printf("latest snapshot: run %s, %d shows across %d stations, scraped %s\n",
		output.RunID, output.TotalShows, len(output.StationsScraped), output.ScrapedAt.UTC().Format(time.RFC3339))
	fmt.Printf("public url: %s\n", s3Client.GetPublicURL(latestKey))

	backups, err := s3Client.ListFiles("schedule/backups/")
	if err != nil {
		log.Fatalf("failed to list backups: %v", err)
	}
	fmt.Printf("\n%d backups:\n", len(backups))
	for _, backup := range backups {
		fmt.Printf("  %s  %d bytes  %s\n", backup.Key, backup.Size, backup.LastModified.UTC().Format(time.RFC3339))
	}
}
