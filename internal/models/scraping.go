package models

import "time"

// ScrapeJob represents a single station scrape within a run
type ScrapeJob struct {
	ID          string    `json:"id"`
	Station     string    `json:"station"`
	StationURL  string    `json:"stationUrl"`
	Status      string    `json:"status"` // pending|running|completed|failed
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
	Duration    int64     `json:"duration,omitempty"` // duration in milliseconds

	// Results
	ShowsFound      int    `json:"showsFound"`
	ShowsFiltered   int    `json:"showsFiltered"` // entries dropped by the validity filter
	ErrorMessage    string `json:"errorMessage,omitempty"`
	FallbackUsed    bool   `json:"fallbackUsed"` // reader+LLM fallback path was taken
	SelectorMatched string `json:"selectorMatched,omitempty"`

	// Processing details
	HTMLLength int   `json:"htmlLength,omitempty"` // length of rendered HTML
	TokensUsed int   `json:"tokensUsed,omitempty"` // LLM tokens consumed by the fallback
	RenderTime int64 `json:"renderTime,omitempty"` // page render time in ms
}

// ScrapeRun represents a complete scrape across all stations
type ScrapeRun struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
	Duration    int64     `json:"duration,omitempty"` // total duration in milliseconds
	Status      string    `json:"status"`             // running|completed|failed|partial

	// Aggregated results
	TotalStations      int `json:"totalStations"`
	SuccessfulStations int `json:"successfulStations"`
	FailedStations     int `json:"failedStations"`
	TotalShows         int `json:"totalShows"`
	DuplicatesRemoved  int `json:"duplicatesRemoved"`

	// Individual jobs
	Jobs []ScrapeJob `json:"jobs"`

	// Error summary
	ErrorSummary string   `json:"errorSummary,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`

	// Fallback cost tracking
	TotalTokensUsed int     `json:"totalTokensUsed"`
	EstimatedCost   float64 `json:"estimatedCost"` // estimated LLM cost in USD

	// Metadata
	TriggerType     string `json:"triggerType"` // scheduled|manual|ci
	ScraperVersion  string `json:"scraperVersion"`
	LambdaRequestId string `json:"lambdaRequestId,omitempty"`
}

// Scrape job status constants
const (
	ScrapeStatusPending   = "pending"
	ScrapeStatusRunning   = "running"
	ScrapeStatusCompleted = "completed"
	ScrapeStatusFailed    = "failed"
	ScrapeStatusPartial   = "partial"
)

// Trigger type constants
const (
	TriggerTypeScheduled = "scheduled"
	TriggerTypeManual    = "manual"
	TriggerTypeCI        = "ci"
)
