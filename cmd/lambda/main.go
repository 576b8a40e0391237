package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"apple-music-schedule-scraper/internal/models"
	"apple-music-schedule-scraper/internal/services"
)

// LambdaEvent represents the EventBridge trigger event
type LambdaEvent struct {
	Source      string                 `json:"source"`
	DetailType  string                 `json:"detail-type"`
	Detail      map[string]interface{} `json:"detail"`
	TriggerType string                 `json:"trigger-type,omitempty"`
}

// LambdaResponse represents the function response
type LambdaResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	RunID          string   `json:"run_id"`
	TotalShows     int      `json:"total_shows"`
	Stations       []string `json:"stations"`
	ProcessingTime int64    `json:"processing_time_ms"`
	EstimatedCost  float64  `json:"estimated_cost"`
	UploadedFiles  []string `json:"uploaded_files,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

func handleRequest(ctx context.Context, event LambdaEvent) (*LambdaResponse, error) {
	startTime := time.Now()

	triggerType := resolveTriggerType(event)
	log.Printf("[LAMBDA] Schedule scrape triggered: source=%s, trigger=%s", event.Source, triggerType)

	scraper, err := services.NewScheduleScraper()
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper: %w", err)
	}

	result, scrapeErr := scraper.ScrapeAllStations(ctx, triggerType)
	if result == nil {
		return nil, scrapeErr
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		result.Run.LambdaRequestId = lc.AwsRequestID
	}

	output := services.BuildScheduleOutput(result)

	response := &LambdaResponse{
		Success:    result.Run.Status != models.ScrapeStatusFailed,
		RunID:      result.Run.ID,
		TotalShows: output.TotalShows,
		Stations:   output.StationsScraped,
	}
	if scrapeErr != nil {
		response.Errors = append(response.Errors, scrapeErr.Error())
	}
	response.Errors = append(response.Errors, result.Run.Warnings...)

	// Publish artifacts. The Lambda path always wants S3, run history is
	// optional.
	s3Client, err := services.NewS3Client()
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	uploads, err := s3Client.UploadLatestSchedule(output)
	if err != nil {
		return nil, fmt.Errorf("failed to upload schedule: %w", err)
	}
	for _, upload := range uploads {
		response.UploadedFiles = append(response.UploadedFiles, upload.Key)
	}
	if backup, err := s3Client.BackupSchedule(output); err != nil {
		log.Printf("[LAMBDA] Backup upload failed: %v", err)
	} else {
		response.UploadedFiles = append(response.UploadedFiles, backup.Key)
	}
	runKey := fmt.Sprintf("schedule/runs/%s.json", result.Run.ID)
	if runArtifact, err := s3Client.UploadScrapeRun(result.Run, runKey); err != nil {
		log.Printf("[LAMBDA] Run artifact upload failed: %v", err)
	} else {
		response.UploadedFiles = append(response.UploadedFiles, runArtifact.Key)
	}

	if history, err := services.NewRunHistoryService(ctx); err == nil {
		if err := history.PutScrapeRun(ctx, result.Run); err != nil {
			log.Printf("[LAMBDA] Failed to record run history: %v", err)
		}
	} else {
		log.Printf("[LAMBDA] Run history skipped: %v", err)
	}

	response.ProcessingTime = time.Since(startTime).Milliseconds()
	response.EstimatedCost = result.Run.EstimatedCost
	response.Message = fmt.Sprintf("Scraped %d shows from %d stations (%s)",
		output.TotalShows, len(output.StationsScraped), result.Run.Status)

	log.Printf("[LAMBDA] %s", response.Message)
	return response, nil
}

// resolveTriggerType maps the incoming event to a run trigger type
func resolveTriggerType(event LambdaEvent) string {
	if event.TriggerType != "" && models.ValidateTriggerType(event.TriggerType) {
		return event.TriggerType
	}
	if event.Source == "aws.events" {
		return models.TriggerTypeScheduled
	}
	return models.TriggerTypeManual
}

func main() {
	lambda.Start(handleRequest)
}
