package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"apple-music-schedule-scraper/internal/models"
)

// ScrapeMetrics tracks success rates and quality metrics for the scrape pipeline
type ScrapeMetrics struct {
	mu                sync.RWMutex
	TotalScrapes      int64                     `json:"total_scrapes"`
	SuccessfulScrapes int64                     `json:"successful_scrapes"`
	FailedScrapes     int64                     `json:"failed_scrapes"`
	FallbackScrapes   int64                     `json:"fallback_scrapes"`
	StationMetrics    map[string]*StationMetric `json:"station_metrics"`
	QualityMetrics    *QualityMetrics           `json:"quality_metrics"`
	AlertThresholds   *AlertThresholds          `json:"alert_thresholds"`
	LastUpdated       time.Time                 `json:"last_updated"`
}

// StationMetric tracks metrics for a specific station
type StationMetric struct {
	Station           string    `json:"station"`
	TotalAttempts     int64     `json:"total_attempts"`
	SuccessfulScrapes int64     `json:"successful_scrapes"`
	FailedScrapes     int64     `json:"failed_scrapes"`
	TotalShowsFound   int64     `json:"total_shows_found"`
	AvgShowsPerRun    float64   `json:"avg_shows_per_run"`
	AvgProcessingTime float64   `json:"avg_processing_time_ms"`
	LastSuccessfulRun time.Time `json:"last_successful_run"`
	LastFailedRun     time.Time `json:"last_failed_run"`
	SuccessRate       float64   `json:"success_rate"`
}

// QualityMetrics tracks how complete the extracted records are
type QualityMetrics struct {
	OverallQualityScore float64 `json:"overall_quality_score"`
	AvgFieldCoverage    float64 `json:"avg_field_coverage"`
	ShowsWithSlots      int64   `json:"shows_with_slots"`
	ShowsWithTitles     int64   `json:"shows_with_titles"`
	ShowsWithArtwork    int64   `json:"shows_with_artwork"`
	TotalShowsProcessed int64   `json:"total_shows_processed"`
}

// AlertThresholds defines when to trigger alerts
type AlertThresholds struct {
	MinSuccessRate      float64 `json:"min_success_rate"`
	MinQualityScore     float64 `json:"min_quality_score"`
	MinShowsPerStation  int64   `json:"min_shows_per_station"`
	MaxProcessingTimeMs int64   `json:"max_processing_time_ms"`
}

// ScrapeAlert represents an alert condition
type ScrapeAlert struct {
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Station   string    `json:"station,omitempty"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

var globalScrapeMetrics *ScrapeMetrics
var metricsOnce sync.Once

// GetScrapeMetrics returns the global metrics instance
func GetScrapeMetrics() *ScrapeMetrics {
	metricsOnce.Do(func() {
		globalScrapeMetrics = &ScrapeMetrics{
			StationMetrics: make(map[string]*StationMetric),
			QualityMetrics: &QualityMetrics{},
			AlertThresholds: &AlertThresholds{
				MinSuccessRate:      0.8,
				MinQualityScore:     0.7,
				MinShowsPerStation:  3,
				MaxProcessingTimeMs: 60000,
			},
			LastUpdated: time.Now(),
		}
	})
	return globalScrapeMetrics
}

// RecordScrapeAttempt records one station scrape attempt
func (sm *ScrapeMetrics) RecordScrapeAttempt(station string, success, usedFallback bool, showsFound int, processingTime time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.TotalScrapes++
	if success {
		sm.SuccessfulScrapes++
	} else {
		sm.FailedScrapes++
	}
	if usedFallback {
		sm.FallbackScrapes++
	}

	if sm.StationMetrics[station] == nil {
		sm.StationMetrics[station] = &StationMetric{Station: station}
	}

	stationMetric := sm.StationMetrics[station]
	stationMetric.TotalAttempts++

	if success {
		stationMetric.SuccessfulScrapes++
		stationMetric.TotalShowsFound += int64(showsFound)
		stationMetric.LastSuccessfulRun = time.Now()
		if stationMetric.SuccessfulScrapes > 0 {
			stationMetric.AvgShowsPerRun = float64(stationMetric.TotalShowsFound) / float64(stationMetric.SuccessfulScrapes)
		}
	} else {
		stationMetric.FailedScrapes++
		stationMetric.LastFailedRun = time.Now()
	}

	if stationMetric.TotalAttempts > 0 {
		stationMetric.SuccessRate = float64(stationMetric.SuccessfulScrapes) / float64(stationMetric.TotalAttempts)
	}

	processingTimeMs := float64(processingTime.Nanoseconds()) / 1e6
	if stationMetric.AvgProcessingTime == 0 {
		stationMetric.AvgProcessingTime = processingTimeMs
	} else {
		// Exponential moving average
		stationMetric.AvgProcessingTime = 0.8*stationMetric.AvgProcessingTime + 0.2*processingTimeMs
	}

	sm.LastUpdated = time.Now()

	log.Printf("[METRICS] Recorded scrape: Station=%s, Success=%t, Fallback=%t, Shows=%d, Time=%.1fms",
		station, success, usedFallback, showsFound, processingTimeMs)
}

// RecordShowQuality folds one extracted record into the quality metrics
func (sm *ScrapeMetrics) RecordShowQuality(shows []models.ShowRecord) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, show := range shows {
		sm.QualityMetrics.TotalShowsProcessed++
		if show.TimeSlotUTC != "" {
			sm.QualityMetrics.ShowsWithSlots++
		}
		if show.Title != "" {
			sm.QualityMetrics.ShowsWithTitles++
		}
		if show.ImageURL != "" {
			sm.QualityMetrics.ShowsWithArtwork++
		}
	}

	if sm.QualityMetrics.TotalShowsProcessed > 0 {
		total := float64(sm.QualityMetrics.TotalShowsProcessed)
		slotRate := float64(sm.QualityMetrics.ShowsWithSlots) / total
		titleRate := float64(sm.QualityMetrics.ShowsWithTitles) / total
		artworkRate := float64(sm.QualityMetrics.ShowsWithArtwork) / total

		sm.QualityMetrics.AvgFieldCoverage = (slotRate + titleRate + artworkRate) / 3.0
		// Slots and titles carry the snapshot, artwork is nice to have
		sm.QualityMetrics.OverallQualityScore = slotRate*0.5 + titleRate*0.4 + artworkRate*0.1
	}

	sm.LastUpdated = time.Now()
}

// CheckAlerts checks for alert conditions and returns any active alerts
func (sm *ScrapeMetrics) CheckAlerts() []ScrapeAlert {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var alerts []ScrapeAlert
	now := time.Now()

	if sm.TotalScrapes > 10 {
		globalSuccessRate := float64(sm.SuccessfulScrapes) / float64(sm.TotalScrapes)
		if globalSuccessRate < sm.AlertThresholds.MinSuccessRate {
			alerts = append(alerts, ScrapeAlert{
				Type:      "success_rate",
				Severity:  "warning",
				Message:   fmt.Sprintf("Global scrape success rate (%.1f%%) is below threshold (%.1f%%)", globalSuccessRate*100, sm.AlertThresholds.MinSuccessRate*100),
				Metric:    "global_success_rate",
				Value:     globalSuccessRate,
				Threshold: sm.AlertThresholds.MinSuccessRate,
				Timestamp: now,
			})
		}
	}

	if sm.QualityMetrics.OverallQualityScore > 0 && sm.QualityMetrics.OverallQualityScore < sm.AlertThresholds.MinQualityScore {
		alerts = append(alerts, ScrapeAlert{
			Type:      "quality_score",
			Severity:  "warning",
			Message:   fmt.Sprintf("Overall quality score (%.1f) is below threshold (%.1f)", sm.QualityMetrics.OverallQualityScore, sm.AlertThresholds.MinQualityScore),
			Metric:    "overall_quality_score",
			Value:     sm.QualityMetrics.OverallQualityScore,
			Threshold: sm.AlertThresholds.MinQualityScore,
			Timestamp: now,
		})
	}

	for station, stationMetric := range sm.StationMetrics {
		if stationMetric.TotalAttempts > 5 && stationMetric.SuccessRate < sm.AlertThresholds.MinSuccessRate {
			alerts = append(alerts, ScrapeAlert{
				Type:      "success_rate",
				Severity:  "error",
				Message:   fmt.Sprintf("Station %s success rate (%.1f%%) is below threshold (%.1f%%)", station, stationMetric.SuccessRate*100, sm.AlertThresholds.MinSuccessRate*100),
				Station:   station,
				Metric:    "station_success_rate",
				Value:     stationMetric.SuccessRate,
				Threshold: sm.AlertThresholds.MinSuccessRate,
				Timestamp: now,
			})
		}

		if stationMetric.SuccessfulScrapes > 0 && stationMetric.AvgShowsPerRun < float64(sm.AlertThresholds.MinShowsPerStation) {
			alerts = append(alerts, ScrapeAlert{
				Type:      "shows_per_run",
				Severity:  "warning",
				Message:   fmt.Sprintf("Station %s averages %.1f shows per run, below threshold %d", station, stationMetric.AvgShowsPerRun, sm.AlertThresholds.MinShowsPerStation),
				Station:   station,
				Metric:    "avg_shows_per_run",
				Value:     stationMetric.AvgShowsPerRun,
				Threshold: float64(sm.AlertThresholds.MinShowsPerStation),
				Timestamp: now,
			})
		}

		if stationMetric.AvgProcessingTime > float64(sm.AlertThresholds.MaxProcessingTimeMs) {
			alerts = append(alerts, ScrapeAlert{
				Type:      "processing_time",
				Severity:  "warning",
				Message:   fmt.Sprintf("Station %s average processing time (%.1fms) exceeds threshold (%dms)", station, stationMetric.AvgProcessingTime, sm.AlertThresholds.MaxProcessingTimeMs),
				Station:   station,
				Metric:    "avg_processing_time",
				Value:     stationMetric.AvgProcessingTime,
				Threshold: float64(sm.AlertThresholds.MaxProcessingTimeMs),
				Timestamp: now,
			})
		}

		if !stationMetric.LastFailedRun.IsZero() && stationMetric.LastFailedRun.After(stationMetric.LastSuccessfulRun) {
			timeSinceFailure := now.Sub(stationMetric.LastFailedRun)
			if timeSinceFailure < 24*time.Hour {
				alerts = append(alerts, ScrapeAlert{
					Type:      "recent_failure",
					Severity:  "error",
					Message:   fmt.Sprintf("Station %s had a recent failure %v ago", station, timeSinceFailure.Round(time.Minute)),
					Station:   station,
					Metric:    "recent_failure",
					Value:     float64(timeSinceFailure.Minutes()),
					Threshold: 0,
					Timestamp: now,
				})
			}
		}
	}

	return alerts
}

// GetDashboardMetrics returns metrics formatted for dashboard display
func (sm *ScrapeMetrics) GetDashboardMetrics() map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var globalSuccessRate float64
	if sm.TotalScrapes > 0 {
		globalSuccessRate = float64(sm.SuccessfulScrapes) / float64(sm.TotalScrapes)
	}

	stations := make([]map[string]interface{}, 0, len(sm.StationMetrics))
	for _, stationMetric := range sm.StationMetrics {
		if stationMetric.TotalAttempts > 0 {
			stations = append(stations, map[string]interface{}{
				"station":             stationMetric.Station,
				"success_rate":        stationMetric.SuccessRate,
				"avg_shows":           stationMetric.AvgShowsPerRun,
				"total_attempts":      stationMetric.TotalAttempts,
				"last_successful":     stationMetric.LastSuccessfulRun,
				"avg_processing_time": stationMetric.AvgProcessingTime,
			})
		}
	}

	return map[string]interface{}{
		"scraping": map[string]interface{}{
			"total_attempts": sm.TotalScrapes,
			"successful":     sm.SuccessfulScrapes,
			"failed":         sm.FailedScrapes,
			"fallback":       sm.FallbackScrapes,
			"success_rate":   globalSuccessRate,
		},
		"quality": map[string]interface{}{
			"overall_score":     sm.QualityMetrics.OverallQualityScore,
			"field_coverage":    sm.QualityMetrics.AvgFieldCoverage,
			"shows_with_slots":  sm.QualityMetrics.ShowsWithSlots,
			"shows_with_titles": sm.QualityMetrics.ShowsWithTitles,
			"shows_with_art":    sm.QualityMetrics.ShowsWithArtwork,
			"total_processed":   sm.QualityMetrics.TotalShowsProcessed,
		},
		"stations":     stations,
		"alerts":       sm.CheckAlerts(),
		"last_updated": sm.LastUpdated,
	}
}

// ResetMetrics resets all metrics, used by tests
func (sm *ScrapeMetrics) ResetMetrics() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.TotalScrapes = 0
	sm.SuccessfulScrapes = 0
	sm.FailedScrapes = 0
	sm.FallbackScrapes = 0
	sm.StationMetrics = make(map[string]*StationMetric)
	sm.QualityMetrics = &QualityMetrics{}
	sm.LastUpdated = time.Now()

	log.Printf("[METRICS] Metrics reset")
}

// LogMetricsSummary logs a summary of current metrics
func (sm *ScrapeMetrics) LogMetricsSummary() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var globalSuccessRate float64
	if sm.TotalScrapes > 0 {
		globalSuccessRate = float64(sm.SuccessfulScrapes) / float64(sm.TotalScrapes)
	}

	log.Printf("[METRICS] === SCRAPE METRICS SUMMARY ===")
	log.Printf("[METRICS] Total Scrapes: %d (Success: %d, Failed: %d, Fallback: %d, Rate: %.1f%%)",
		sm.TotalScrapes, sm.SuccessfulScrapes, sm.FailedScrapes, sm.FallbackScrapes, globalSuccessRate*100)
	log.Printf("[METRICS] Quality Score: %.1f, Field Coverage: %.1f%%",
		sm.QualityMetrics.OverallQualityScore, sm.QualityMetrics.AvgFieldCoverage*100)
	log.Printf("[METRICS] Active Stations: %d", len(sm.StationMetrics))

	alerts := sm.CheckAlerts()
	if len(alerts) > 0 {
		log.Printf("[METRICS] Active Alerts: %d", len(alerts))
		for _, alert := range alerts {
			log.Printf("[METRICS] ALERT [%s]: %s", alert.Severity, alert.Message)
		}
	}
	log.Printf("[METRICS] ================================")
}
