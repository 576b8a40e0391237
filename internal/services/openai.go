package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"apple-music-schedule-scraper/internal/models"
)

// OpenAIClient extracts schedule entries from page text when DOM extraction
// comes up empty
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// OpenAIExtractionResponse represents a fallback extraction result
type OpenAIExtractionResponse struct {
	Shows         []models.ShowRecord `json:"shows"`
	TotalFound    int                 `json:"total_found"`
	ProcessingMS  int64               `json:"processing_ms"`
	TokensUsed    int                 `json:"tokens_used"`
	EstimatedCost float64             `json:"estimated_cost"`
	SourceURL     string              `json:"source_url"`
	ExtractionID  string              `json:"extraction_id"`
}

// extractedShow is the shape the model is asked to return per entry
type extractedShow struct {
	TimeSlot    string `json:"time_slot"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewOpenAIClient creates an OpenAI client from the environment. Returns an
// error when OPENAI_API_KEY is unset so callers can skip the fallback.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       "gpt-4o-mini",
		temperature: 0.1,
		maxTokens:   4000,
	}, nil
}

// NewOpenAIClientWithConfig creates an OpenAI client with custom configuration
func NewOpenAIClientWithConfig(model string, temperature float32, maxTokens int) (*OpenAIClient, error) {
	client, err := NewOpenAIClient()
	if err != nil {
		return nil, err
	}
	client.model = model
	client.temperature = temperature
	client.maxTokens = maxTokens
	return client, nil
}

// ExtractSchedule extracts show entries from page text for one station
func (o *OpenAIClient) ExtractSchedule(ctx context.Context, content string, station models.Station, converter *SlotConverter, scrapedAt time.Time) (*OpenAIExtractionResponse, error) {
	startTime := time.Now()

	if content == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	if len(content) < 200 {
		return nil, fmt.Errorf("content too short (%d chars) to extract a schedule", len(content))
	}

	extractionID := "ext_" + uuid.NewString()[:8]

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       o.model,
			Temperature: o.temperature,
			MaxTokens:   o.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: o.buildSystemPrompt(),
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: o.buildUserPrompt(content, station),
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices from OpenAI")
	}

	cleanedContent := o.cleanJSONResponse(resp.Choices[0].Message.Content)

	var scheduleData struct {
		Shows []extractedShow `json:"shows"`
	}
	if err := json.Unmarshal([]byte(cleanedContent), &scheduleData); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response JSON: %w\nResponse: %s", err, cleanedContent)
	}

	shows := make([]models.ShowRecord, 0, len(scheduleData.Shows))
	for _, entry := range scheduleData.Shows {
		record := models.ShowRecord{
			Station:     station.Name,
			StationURL:  station.URL,
			TimeSlot:    strings.TrimSpace(entry.TimeSlot),
			Title:       strings.TrimSpace(entry.Title),
			Description: strings.TrimSpace(entry.Description),
			ScrapedAt:   scrapedAt,
		}
		if record.TimeSlot == "" && record.Title == "" {
			continue
		}
		if record.TimeSlot != "" && converter != nil {
			sourceSlot, targetSlot, err := converter.NormalizeSlot(record.TimeSlot, scrapedAt)
			if err == nil {
				record.TimeSlotUTC = sourceSlot
				record.TimeSlotPacific = targetSlot
			}
		}
		record.ID = models.GenerateShowID(record.Station, record.TimeSlot, record.Title)
		shows = append(shows, record)
	}

	tokensUsed := resp.Usage.TotalTokens
	return &OpenAIExtractionResponse{
		Shows:         shows,
		TotalFound:    len(shows),
		ProcessingMS:  time.Since(startTime).Milliseconds(),
		TokensUsed:    tokensUsed,
		EstimatedCost: o.calculateCost(tokensUsed),
		SourceURL:     station.URL,
		ExtractionID:  extractionID,
	}, nil
}

// buildSystemPrompt creates the system prompt for schedule extraction
func (o *OpenAIClient) buildSystemPrompt() string {
	return `You are an expert at extracting radio broadcast schedules from web page text.

Your task is to analyze the provided page text from an Apple Music radio station and extract the broadcast schedule entries shown on it.

IMPORTANT GUIDELINES:
1. Only extract entries that have a broadcast time range, a show name, or both
2. Keep time ranges exactly as displayed, for example "5 – 7 AM" or "11:00 PM – 1:00 AM"
3. Ignore page navigation such as Home, Radio, Search, or Sign In
4. Do not invent shows that are not in the text

OUTPUT FORMAT:
Return a JSON object with this exact structure:
{
  "shows": [
    {
      "time_slot": "5 – 7 AM",
      "title": "The Show Name",
      "description": "optional description text"
    }
  ]
}

Leave "description" empty when the text has none. Return {"shows": []} when the page holds no schedule. Return only JSON, no other text.`
}

// buildUserPrompt creates the user prompt with page text and station context
func (o *OpenAIClient) buildUserPrompt(content string, station models.Station) string {
	return fmt.Sprintf(`Please analyze the following page text from the %s station page and extract all broadcast schedule entries.

Source URL: %s

Content to analyze:
%s

Extract the schedule as structured JSON following the schema in the system prompt.`, station.Name, station.URL, content)
}

// calculateCost estimates the cost based on tokens used
func (o *OpenAIClient) calculateCost(tokensUsed int) float64 {
	// GPT-4o-mini blended rate, roughly $0.0003 per 1K tokens
	return float64(tokensUsed) * 0.0003 / 1000.0
}

// GetModel returns the current OpenAI model being used
func (o *OpenAIClient) GetModel() string {
	return o.model
}

// SetModel sets the OpenAI model to use
func (o *OpenAIClient) SetModel(model string) {
	o.model = model
}

// cleanJSONResponse removes markdown code blocks from an OpenAI response
func (o *OpenAIClient) cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}
