package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"apple-music-schedule-scraper/internal/models"
	"apple-music-schedule-scraper/internal/services"
)

func main() {
	log.Printf("[MAIN] Apple Music schedule scraper starting")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	triggerType := models.TriggerTypeManual
	if os.Getenv("CI") != "" {
		triggerType = models.TriggerTypeCI
	}

	scraper, err := services.NewScheduleScraper()
	if err != nil {
		log.Fatalf("[MAIN] Failed to create scraper: %v", err)
	}

	result, err := scraper.ScrapeAllStations(ctx, triggerType)
	if err != nil {
		if result == nil {
			log.Fatalf("[MAIN] Scrape run failed: %v", err)
		}
		// Partial results are still worth publishing
		log.Printf("[MAIN] Scrape run finished with errors: %v", err)
	}

	output := services.BuildScheduleOutput(result)

	writer := services.NewSnapshotWriter()
	if err := writer.WriteSnapshot(output); err != nil {
		log.Fatalf("[MAIN] Failed to write snapshot: %v", err)
	}

	publishArtifacts(ctx, output, result.Run)

	services.GetScrapeMetrics().LogMetricsSummary()

	if result.Run.Status == models.ScrapeStatusFailed {
		os.Exit(1)
	}
	log.Printf("[MAIN] Done: %d shows across %d stations", output.TotalShows, len(output.StationsScraped))
}

// publishArtifacts uploads the snapshot and records the run when the
// respective services are configured. Local snapshots stand on their own.
func publishArtifacts(ctx context.Context, output *models.ScheduleOutput, run *models.ScrapeRun) {
	if s3Client, err := services.NewS3Client(); err == nil {
		if _, err := s3Client.UploadLatestSchedule(output); err != nil {
			log.Printf("[MAIN] S3 upload failed: %v", err)
		} else if _, err := s3Client.BackupSchedule(output); err != nil {
			log.Printf("[MAIN] S3 backup failed: %v", err)
		}
		runKey := fmt.Sprintf("schedule/runs/%s.json", run.ID)
		if _, err := s3Client.UploadScrapeRun(run, runKey); err != nil {
			log.Printf("[MAIN] Run artifact upload failed: %v", err)
		}
	} else {
		log.Printf("[MAIN] S3 publishing skipped: %v", err)
	}

	if history, err := services.NewRunHistoryService(ctx); err == nil {
		if err := history.PutScrapeRun(ctx, run); err != nil {
			log.Printf("[MAIN] Failed to record run history: %v", err)
		}
	} else {
		log.Printf("[MAIN] Run history skipped: %v", err)
	}
}
