package models

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateShowID(t *testing.T) {
	id := GenerateShowID("Apple Music 1", "5 – 7 AM", "The Morning Show")

	if !strings.HasPrefix(id, "show_") {
		t.Errorf("id %q missing show_ prefix", id)
	}
	if len(id) != len("show_")+8 {
		t.Errorf("id %q has unexpected length", id)
	}

	t.Run("deterministic", func(t *testing.T) {
		again := GenerateShowID("Apple Music 1", "5 – 7 AM", "The Morning Show")
		if id != again {
			t.Errorf("same inputs produced %q and %q", id, again)
		}
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		normalized := GenerateShowID("  apple music 1 ", "5 – 7 AM", "THE MORNING SHOW")
		if id != normalized {
			t.Errorf("normalization failed: %q vs %q", id, normalized)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		other := GenerateShowID("Apple Music 1", "7 – 9 AM", "The Morning Show")
		if id == other {
			t.Error("different slots produced the same id")
		}
	})
}

func TestGenerateJobAndRunIDs(t *testing.T) {
	now := time.Now()

	jobID := GenerateScrapeJobID("https://music.apple.com/us/radio/ra.978194965", now)
	if !strings.HasPrefix(jobID, "job_") {
		t.Errorf("job id %q missing job_ prefix", jobID)
	}

	runID := GenerateScrapeRunID(now)
	if !strings.HasPrefix(runID, "run_") {
		t.Errorf("run id %q missing run_ prefix", runID)
	}

	laterRunID := GenerateScrapeRunID(now.Add(time.Second))
	if runID == laterRunID {
		t.Error("different timestamps produced the same run id")
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://music.apple.com/us/radio/ra.978194965", true},
		{"http://example.com", true},
		{"music.apple.com", false},
		{"ftp://example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.url); got != tt.expected {
			t.Errorf("IsValidURL(%q) = %t, want %t", tt.url, got, tt.expected)
		}
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://is1-ssl.mzstatic.com/image/artwork.jpg", true},
		{"https://is1-ssl.mzstatic.com/image/artwork", true},
		{"http://example.com/cover.png?w=300", true},
		{"artwork.jpg", false},
		{"//is1-ssl.mzstatic.com/image/artwork.jpg", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateImageURL(tt.url); got != tt.expected {
			t.Errorf("ValidateImageURL(%q) = %t, want %t", tt.url, got, tt.expected)
		}
	}
}

func TestValidateScrapeStatus(t *testing.T) {
	for _, status := range []string{ScrapeStatusPending, ScrapeStatusRunning, ScrapeStatusCompleted, ScrapeStatusFailed, ScrapeStatusPartial} {
		if !ValidateScrapeStatus(status) {
			t.Errorf("status %q should be valid", status)
		}
	}
	if ValidateScrapeStatus("bogus") {
		t.Error("bogus status should be invalid")
	}
}

func TestValidateTriggerType(t *testing.T) {
	for _, trigger := range []string{TriggerTypeScheduled, TriggerTypeManual, TriggerTypeCI} {
		if !ValidateTriggerType(trigger) {
			t.Errorf("trigger %q should be valid", trigger)
		}
	}
	if ValidateTriggerType("webhook") {
		t.Error("unknown trigger should be invalid")
	}
}

func TestTruncateRawText(t *testing.T) {
	if got := TruncateRawText("short", 200); got != "short" {
		t.Errorf("short text should pass through, got %q", got)
	}
	long := strings.Repeat("x", 250)
	got := TruncateRawText(long, 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text = %d chars, suffix %q", len(got), got[len(got)-3:])
	}
	if got := TruncateRawText(long, 0); got != long {
		t.Error("non-positive max should disable truncation")
	}
}
