package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"apple-music-schedule-scraper/internal/models"
)

// ScraperVersion identifies the pipeline build in run records.
const ScraperVersion = "2.1.0"

// ScheduleScraper orchestrates a scrape across all enabled stations. Stations
// are scraped one at a time, a failing station never blocks the rest.
type ScheduleScraper struct {
	browser   *BrowserClient
	extractor *ScheduleExtractor
	converter *SlotConverter
	reader    *ReaderClient
	openai    *OpenAIClient
	metrics   *ScrapeMetrics
}

// ScrapeResult pairs the run record with the shows it produced
type ScrapeResult struct {
	Run   *models.ScrapeRun
	Shows []models.ShowRecord
}

// NewScheduleScraper wires the scrape pipeline. The OpenAI fallback is
// optional, the pipeline runs DOM-only when the key is absent.
func NewScheduleScraper() (*ScheduleScraper, error) {
	converter, err := NewSlotConverter()
	if err != nil {
		return nil, fmt.Errorf("failed to create slot converter: %w", err)
	}

	scraper := &ScheduleScraper{
		browser:   NewBrowserClient(),
		extractor: NewScheduleExtractor(converter),
		converter: converter,
		reader:    NewReaderClient(),
		metrics:   GetScrapeMetrics(),
	}

	if openaiClient, err := NewOpenAIClient(); err == nil {
		scraper.openai = openaiClient
	} else {
		log.Printf("[SCRAPER] OpenAI fallback disabled: %v", err)
	}

	return scraper, nil
}

// NewScheduleScraperWithClients wires a pipeline from existing components,
// used by tests and the debug tooling
func NewScheduleScraperWithClients(browser *BrowserClient, extractor *ScheduleExtractor, converter *SlotConverter, reader *ReaderClient, openai *OpenAIClient) *ScheduleScraper {
	return &ScheduleScraper{
		browser:   browser,
		extractor: extractor,
		converter: converter,
		reader:    reader,
		openai:    openai,
		metrics:   GetScrapeMetrics(),
	}
}

// ScrapeAllStations scrapes every enabled station and assembles the run record
func (s *ScheduleScraper) ScrapeAllStations(ctx context.Context, triggerType string) (*ScrapeResult, error) {
	stations := models.FilterEnabled(models.GetStations())
	if len(stations) == 0 {
		return nil, fmt.Errorf("no enabled stations to scrape")
	}

	startedAt := time.Now()
	run := &models.ScrapeRun{
		ID:             models.GenerateScrapeRunID(startedAt),
		StartedAt:      startedAt,
		Status:         models.ScrapeStatusRunning,
		TotalStations:  len(stations),
		TriggerType:    triggerType,
		ScraperVersion: ScraperVersion,
	}

	log.Printf("[SCRAPER] Starting run %s: %d stations, trigger=%s", run.ID, len(stations), triggerType)

	var allShows []models.ShowRecord
	for _, station := range stations {
		job, shows := s.ScrapeStation(ctx, station)
		run.Jobs = append(run.Jobs, *job)

		if job.Status == models.ScrapeStatusCompleted {
			run.SuccessfulStations++
			allShows = append(allShows, shows...)
		} else {
			run.FailedStations++
			run.Warnings = append(run.Warnings, fmt.Sprintf("%s: %s", station.Name, job.ErrorMessage))
		}
		run.TotalTokensUsed += job.TokensUsed

		if ctx.Err() != nil {
			run.Warnings = append(run.Warnings, "run cancelled before all stations completed")
			break
		}
	}

	deduped, removed := dedupeShows(allShows)
	run.TotalShows = len(deduped)
	run.DuplicatesRemoved = removed
	run.CompletedAt = time.Now()
	run.Duration = run.CompletedAt.Sub(run.StartedAt).Milliseconds()
	run.EstimatedCost = float64(run.TotalTokensUsed) * 0.0003 / 1000.0

	switch {
	case run.FailedStations == 0:
		run.Status = models.ScrapeStatusCompleted
	case run.SuccessfulStations > 0:
		run.Status = models.ScrapeStatusPartial
		run.ErrorSummary = fmt.Sprintf("%d of %d stations failed", run.FailedStations, run.TotalStations)
	default:
		run.Status = models.ScrapeStatusFailed
		run.ErrorSummary = "all stations failed"
	}

	s.metrics.RecordShowQuality(deduped)

	coverage := VerifyCoverage(deduped)
	LogCoverageReport(coverage)
	if !coverage.FullyCovered {
		run.Warnings = append(run.Warnings, "schedule does not cover a full 24 hours for every station")
	}

	log.Printf("[SCRAPER] Run %s %s: %d shows from %d/%d stations in %v (%d duplicates removed)",
		run.ID, run.Status, run.TotalShows, run.SuccessfulStations, run.TotalStations,
		run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond), removed)

	if run.Status == models.ScrapeStatusFailed {
		return &ScrapeResult{Run: run, Shows: deduped}, fmt.Errorf("scrape run %s failed: %s", run.ID, run.ErrorSummary)
	}
	return &ScrapeResult{Run: run, Shows: deduped}, nil
}

// ScrapeStation renders and extracts one station, falling back to the reader
// plus LLM path when DOM extraction yields nothing
func (s *ScheduleScraper) ScrapeStation(ctx context.Context, station models.Station) (*models.ScrapeJob, []models.ShowRecord) {
	startedAt := time.Now()
	job := &models.ScrapeJob{
		ID:         models.GenerateScrapeJobID(station.URL, startedAt),
		Station:    station.Name,
		StationURL: station.URL,
		Status:     models.ScrapeStatusRunning,
		StartedAt:  startedAt,
	}

	shows, err := s.scrapeStationOnce(ctx, station, job)
	if err != nil {
		job.Status = models.ScrapeStatusFailed
		job.ErrorMessage = err.Error()
		log.Printf("[SCRAPER] %s failed: %v", station.Name, err)
	} else {
		job.Status = models.ScrapeStatusCompleted
		job.ShowsFound = len(shows)
	}

	job.CompletedAt = time.Now()
	job.Duration = job.CompletedAt.Sub(job.StartedAt).Milliseconds()

	s.metrics.RecordScrapeAttempt(station.Name, job.Status == models.ScrapeStatusCompleted,
		job.FallbackUsed, job.ShowsFound, job.CompletedAt.Sub(job.StartedAt))

	return job, shows
}

func (s *ScheduleScraper) scrapeStationOnce(ctx context.Context, station models.Station, job *models.ScrapeJob) ([]models.ShowRecord, error) {
	scrapedAt := time.Now().UTC()

	rendered, err := s.browser.RenderStationPage(ctx, station)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	job.HTMLLength = rendered.HTMLLength
	job.RenderTime = rendered.RenderTime.Milliseconds()

	extraction, err := s.extractor.ExtractShows(rendered.HTML, station, scrapedAt)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	job.SelectorMatched = extraction.SelectorMatched
	job.ShowsFiltered = extraction.ItemsFiltered

	if len(extraction.Shows) > 0 {
		return extraction.Shows, nil
	}

	// DOM path came up empty. Try the text fallback when it is configured.
	if s.openai == nil || s.reader == nil {
		return nil, fmt.Errorf("no shows extracted and text fallback is not configured")
	}

	log.Printf("[SCRAPER] %s: DOM extraction empty, trying text fallback", station.Name)
	job.FallbackUsed = true

	page, err := s.reader.FetchPageTextWithMetadata(ctx, station.URL)
	if err != nil {
		return nil, fmt.Errorf("fallback fetch failed: %w", err)
	}
	log.Printf("[SCRAPER] %s: reader returned %d chars in %dms", station.Name, page.Length, page.ProcessingMS)

	fallback, err := s.openai.ExtractSchedule(ctx, page.Content, station, s.converter, scrapedAt)
	if err != nil {
		return nil, fmt.Errorf("fallback extraction failed: %w", err)
	}
	job.TokensUsed = fallback.TokensUsed

	if len(fallback.Shows) == 0 {
		return nil, fmt.Errorf("no shows extracted by either path")
	}
	return fallback.Shows, nil
}

// dedupeShows removes cross-station duplicates on station, slot, and title
func dedupeShows(shows []models.ShowRecord) ([]models.ShowRecord, int) {
	seen := make(map[string]bool, len(shows))
	deduped := make([]models.ShowRecord, 0, len(shows))
	removed := 0

	for _, show := range shows {
		key := strings.ToLower(show.Station + "|" + show.TimeSlot + "|" + show.Title)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		deduped = append(deduped, show)
	}
	return deduped, removed
}

// BuildScheduleOutput assembles the snapshot document for a finished run
func BuildScheduleOutput(result *ScrapeResult) *models.ScheduleOutput {
	stations := make([]string, 0, len(result.Run.Jobs))
	for _, job := range result.Run.Jobs {
		if job.Status == models.ScrapeStatusCompleted {
			stations = append(stations, job.Station)
		}
	}
	output := models.NewScheduleOutput(result.Run.ID, stations, result.Shows)
	return &output
}
