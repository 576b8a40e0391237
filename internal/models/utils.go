package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateShowID creates a unique ID for a show based on its core attributes
func GenerateShowID(station, timeSlot, title string) string {
	// Normalize inputs
	normalizedStation := strings.ToLower(strings.TrimSpace(station))
	normalizedSlot := strings.ToLower(strings.TrimSpace(timeSlot))
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))

	// Create hash input
	input := fmt.Sprintf("%s|%s|%s", normalizedStation, normalizedSlot, normalizedTitle)

	// Generate SHA256 hash
	hash := sha256.Sum256([]byte(input))

	// Return first 8 characters with prefix
	return "show_" + hex.EncodeToString(hash[:])[:8]
}

// GenerateScrapeJobID creates a unique ID for a station scrape job
func GenerateScrapeJobID(stationURL string, timestamp time.Time) string {
	input := fmt.Sprintf("%s|%d", stationURL, timestamp.Unix())
	hash := sha256.Sum256([]byte(input))
	return "job_" + hex.EncodeToString(hash[:])[:8]
}

// GenerateScrapeRunID creates a unique ID for a scrape run
func GenerateScrapeRunID(timestamp time.Time) string {
	input := fmt.Sprintf("run|%d", timestamp.Unix())
	hash := sha256.Sum256([]byte(input))
	return "run_" + hex.EncodeToString(hash[:])[:8]
}

// IsValidURL performs basic URL validation
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}

	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// ValidateImageURL performs enhanced URL validation for artwork images
func ValidateImageURL(url string) bool {
	if !IsValidURL(url) {
		return false
	}

	// Check for common image extensions
	imageExtensions := []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}
	urlLower := strings.ToLower(url)

	for _, ext := range imageExtensions {
		if strings.Contains(urlLower, ext) {
			return true
		}
	}

	// Allow URLs that might have query parameters or no extension (many CDNs)
	return true
}

// ValidateScrapeStatus checks if the scrape status is valid
func ValidateScrapeStatus(status string) bool {
	validStatuses := []string{
		ScrapeStatusPending,
		ScrapeStatusRunning,
		ScrapeStatusCompleted,
		ScrapeStatusFailed,
		ScrapeStatusPartial,
	}

	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// ValidateTriggerType checks if the trigger type is valid
func ValidateTriggerType(triggerType string) bool {
	validTypes := []string{
		TriggerTypeScheduled,
		TriggerTypeManual,
		TriggerTypeCI,
	}

	for _, validType := range validTypes {
		if triggerType == validType {
			return true
		}
	}
	return false
}

// TruncateRawText shortens extraction context for storage in a record
func TruncateRawText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
