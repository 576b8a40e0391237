package main

import (
	"fmt"
	"log"
	"os"

	"apple-music-schedule-scraper/internal/services"
)

// Verifies that a CSV snapshot covers a full broadcast day per station.
// Exits non-zero when any station has coverage gaps, so CI can flag a bad
// scrape before it is published.
func main() {
	path := "apple_music_schedule.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	shows, err := services.ReadCSVSnapshot(path)
	if err != nil {
		log.Fatalf("failed to read snapshot: %v", err)
	}

	report := services.VerifyCoverage(shows)

	for _, station := range report.Stations {
		status := "OK"
		if !station.FullyCovered {
			status = "GAPS"
		}
		fmt.Printf("%-24s %2d slots  %4d/1440 min  %s\n",
			station.Station, station.SlotCount, station.CoveredMinutes, status)
		for _, gap := range station.Gaps {
			fmt.Printf("  gap of %d min starting %s (between %q and %q)\n",
				gap.Minutes, gap.StartsAt, gap.AfterSlot, gap.BeforeSlot)
		}
		for _, parseErr := range station.ParseErrors {
			fmt.Printf("  unparseable slot %s\n", parseErr)
		}
	}

	if !report.FullyCovered {
		fmt.Println("\ncoverage check failed")
		os.Exit(1)
	}
	fmt.Println("\nall stations fully covered")
}
