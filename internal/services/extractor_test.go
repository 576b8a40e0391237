package services

import (
	"testing"
	"time"

	"apple-music-schedule-scraper/internal/models"
)

func testStation() models.Station {
	return models.Station{
		Name:    "Apple Music 1",
		URL:     "https://music.apple.com/us/radio/ra.978194965",
		Domain:  "music.apple.com",
		Enabled: true,
	}
}

func testExtractor(t *testing.T) *ScheduleExtractor {
	t.Helper()
	converter, err := NewSlotConverter()
	if err != nil {
		t.Fatalf("NewSlotConverter: %v", err)
	}
	return NewScheduleExtractor(converter)
}

const scheduleHTML = `<html><body>
<nav>
	<div data-testid="schedule-nav-item"><h3>Home</h3></div>
</nav>
<div class="page">
	<div data-testid="schedule-item">
		<img src="//is1-ssl.mzstatic.com/image/morning.jpg"/>
		<h3>The Morning Show</h3>
		<p>Wake up with the hits.</p>
		<span>5 – 7 AM</span>
		<a href="/us/curator/morning-show">Details</a>
	</div>
	<div data-testid="schedule-item">
		<img data-src="https://is1-ssl.mzstatic.com/image/midday.jpg"/>
		<h3>Midday Mix</h3>
		<span>LIVE · 7 – 9 AM</span>
	</div>
	<div data-testid="schedule-item">
		<h3>Evening Block</h3>
		<span>7:05 PM – 9:00 PM</span>
		<a href="https://music.apple.com/us/curator/evening">Details</a>
	</div>
</div>
</body></html>`

func TestExtractShowsFromScheduleMarkup(t *testing.T) {
	extractor := testExtractor(t)
	scrapedAt := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	result, err := extractor.ExtractShows(scheduleHTML, testStation(), scrapedAt)
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}

	if result.UsedFallback {
		t.Error("expected selector cascade to match, not fallback")
	}
	if result.SelectorMatched == "" {
		t.Error("expected a matched selector")
	}
	if len(result.Shows) != 3 {
		t.Fatalf("expected 3 shows, got %d", len(result.Shows))
	}

	morning := result.Shows[0]
	if morning.Title != "The Morning Show" {
		t.Errorf("title = %q, want The Morning Show", morning.Title)
	}
	if morning.TimeSlot != "5 – 7 AM" {
		t.Errorf("raw slot = %q, want 5 – 7 AM", morning.TimeSlot)
	}
	if morning.TimeSlotUTC != "05:00 – 07:00" {
		t.Errorf("utc slot = %q, want 05:00 – 07:00", morning.TimeSlotUTC)
	}
	if morning.TimeSlotPacific != "10:00 PM – 12:00 AM" {
		t.Errorf("pacific slot = %q, want 10:00 PM – 12:00 AM", morning.TimeSlotPacific)
	}
	if morning.Description != "Wake up with the hits." {
		t.Errorf("description = %q", morning.Description)
	}
	if morning.ImageURL != "https://is1-ssl.mzstatic.com/image/morning.jpg" {
		t.Errorf("image url = %q, protocol-relative src should gain https", morning.ImageURL)
	}
	if morning.ShowURL != "https://music.apple.com/us/curator/morning-show" {
		t.Errorf("show url = %q, relative href should resolve", morning.ShowURL)
	}
	if morning.ID == "" {
		t.Error("expected a generated show ID")
	}
	if morning.Station != "Apple Music 1" {
		t.Errorf("station = %q", morning.Station)
	}

	midday := result.Shows[1]
	if midday.TimeSlot != "7 – 9 AM" {
		t.Errorf("live badge should not leak into slot, got %q", midday.TimeSlot)
	}
	if midday.ImageURL != "https://is1-ssl.mzstatic.com/image/midday.jpg" {
		t.Errorf("lazy-load image url = %q", midday.ImageURL)
	}

	evening := result.Shows[2]
	if evening.ShowURL != "https://music.apple.com/us/curator/evening" {
		t.Errorf("absolute href should pass through, got %q", evening.ShowURL)
	}
}

func TestExtractShowsFiltersNavigation(t *testing.T) {
	extractor := testExtractor(t)

	// Navigation entries match broad selectors but carry no schedule signal
	html := `<html><body>
	<div data-testid="show-item"><h3>Home</h3></div>
	<div data-testid="show-item"><h3>Radio</h3></div>
	<div data-testid="show-item"><h3>Search</h3></div>
	<div data-testid="show-item">
		<h3>The Morning Show</h3>
		<span>5 – 7 AM</span>
	</div>
	</body></html>`

	result, err := extractor.ExtractShows(html, testStation(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}

	if len(result.Shows) != 1 {
		t.Fatalf("expected 1 show after filtering, got %d", len(result.Shows))
	}
	if result.Shows[0].Title != "The Morning Show" {
		t.Errorf("surviving show = %q", result.Shows[0].Title)
	}
	if result.ItemsFiltered != 3 {
		t.Errorf("filtered count = %d, want 3", result.ItemsFiltered)
	}
}

func TestExtractShowsKeywordEntriesWithoutSlot(t *testing.T) {
	extractor := testExtractor(t)

	html := `<html><body>
	<div data-testid="show-item"><h3>The Chart Show</h3></div>
	<div data-testid="show-item"><h3>Random Widget</h3></div>
	<div data-testid="show-item"><h3>Heavy Rotation Hits</h3></div>
	</body></html>`

	result, err := extractor.ExtractShows(html, testStation(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}

	// Keyword-bearing titles stay even without a slot, the rest are dropped
	if len(result.Shows) != 2 {
		t.Fatalf("expected 2 shows, got %d", len(result.Shows))
	}
	for _, show := range result.Shows {
		if show.Title == "Random Widget" {
			t.Error("entry without slot or keyword should be filtered")
		}
	}
}

func TestExtractShowsFallbackClimbsToContainers(t *testing.T) {
	extractor := testExtractor(t)

	// No cascade selector matches more than one node here, forcing the
	// time-pattern fallback.
	html := `<html><body>
	<div class="entry-card">
		<span>5 – 7 AM</span>
		<span>Morning Mix</span>
	</div>
	<div class="entry-card">
		<span>7 – 9 AM</span>
		<span>Daybreak Sessions</span>
	</div>
	</body></html>`

	result, err := extractor.ExtractShows(html, testStation(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}

	if !result.UsedFallback {
		t.Fatal("expected the time-pattern fallback to run")
	}
	if len(result.Shows) != 2 {
		t.Fatalf("expected 2 shows from fallback, got %d", len(result.Shows))
	}
	if result.Shows[0].TimeSlot != "5 – 7 AM" {
		t.Errorf("slot = %q", result.Shows[0].TimeSlot)
	}
	if result.Shows[0].Title != "Morning Mix" {
		t.Errorf("title = %q, want Morning Mix", result.Shows[0].Title)
	}
}

func TestExtractShowsDedupesRepeatedEntries(t *testing.T) {
	extractor := testExtractor(t)

	html := `<html><body>
	<div data-testid="show-item">
		<h3>The Morning Show</h3>
		<span>5 – 7 AM</span>
	</div>
	<div data-testid="show-item">
		<h3>The Morning Show</h3>
		<span>5 – 7 AM</span>
	</div>
	</body></html>`

	result, err := extractor.ExtractShows(html, testStation(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}

	if len(result.Shows) != 1 {
		t.Errorf("expected duplicate entry to collapse, got %d shows", len(result.Shows))
	}
}

func TestExtractShowsDropsUnresolvableImageURLs(t *testing.T) {
	extractor := testExtractor(t)

	// Only absolute http(s) image sources are kept
	html := `<html><body>
	<div data-testid="show-item">
		<img src="artwork.jpg"/>
		<h3>The Morning Show</h3>
		<span>5 – 7 AM</span>
	</div>
	<div data-testid="show-item">
		<img src="https://is1-ssl.mzstatic.com/image/midday.jpg"/>
		<h3>Midday Mix</h3>
		<span>7 – 9 AM</span>
	</div>
	</body></html>`

	result, err := extractor.ExtractShows(html, testStation(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}
	if len(result.Shows) != 2 {
		t.Fatalf("expected 2 shows, got %d", len(result.Shows))
	}
	if result.Shows[0].ImageURL != "" {
		t.Errorf("relative image src should be dropped, got %q", result.Shows[0].ImageURL)
	}
	if result.Shows[1].ImageURL != "https://is1-ssl.mzstatic.com/image/midday.jpg" {
		t.Errorf("absolute image src should survive, got %q", result.Shows[1].ImageURL)
	}
}

func TestExtractShowsEmptyPage(t *testing.T) {
	extractor := testExtractor(t)

	result, err := extractor.ExtractShows("<html><body><p>Nothing here</p></body></html>", testStation(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ExtractShows: %v", err)
	}
	if len(result.Shows) != 0 {
		t.Errorf("expected no shows, got %d", len(result.Shows))
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := normalizeSpace("  a \n\t b  "); got != "a b" {
		t.Errorf("normalizeSpace = %q, want %q", got, "a b")
	}
	if got := normalizeSpace(""); got != "" {
		t.Errorf("normalizeSpace empty = %q", got)
	}
}
