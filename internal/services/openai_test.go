package services

import (
	"strings"
	"testing"
)

func TestCleanJSONResponse(t *testing.T) {
	client := &OpenAIClient{}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"shows": []}`,
			expected: `{"shows": []}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"shows\": []}\n```",
			expected: `{"shows": []}`,
		},
		{
			name:     "bare fence stripped",
			input:    "```\n{\"shows\": []}\n```",
			expected: `{"shows": []}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n{\"shows\": []}\n  ",
			expected: `{"shows": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.cleanJSONResponse(tt.input); got != tt.expected {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCalculateCost(t *testing.T) {
	client := &OpenAIClient{}
	cost := client.calculateCost(10000)
	if cost < 0.0029 || cost > 0.0031 {
		t.Errorf("cost for 10k tokens = %f, want ~0.003", cost)
	}
	if client.calculateCost(0) != 0 {
		t.Error("zero tokens should cost nothing")
	}
}

func TestBuildUserPromptIncludesStationContext(t *testing.T) {
	client := &OpenAIClient{}
	prompt := client.buildUserPrompt("page text here", testStation())

	if !strings.Contains(prompt, "Apple Music 1") {
		t.Error("prompt should name the station")
	}
	if !strings.Contains(prompt, "https://music.apple.com/us/radio/ra.978194965") {
		t.Error("prompt should include the station URL")
	}
	if !strings.Contains(prompt, "page text here") {
		t.Error("prompt should include the page text")
	}
}

func TestBuildSystemPromptDescribesSchema(t *testing.T) {
	client := &OpenAIClient{}
	prompt := client.buildSystemPrompt()

	for _, field := range []string{`"shows"`, `"time_slot"`, `"title"`, `"description"`} {
		if !strings.Contains(prompt, field) {
			t.Errorf("system prompt missing %s", field)
		}
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIClient(); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
}
