package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"apple-music-schedule-scraper/internal/models"
)

// scheduleSelectors is the cascade tried against the rendered page, most
// specific first. A selector only wins when it matches more than one node,
// otherwise it usually grabbed a page chrome element rather than the list.
var scheduleSelectors = []string{
	`[data-testid*="schedule"]`,
	`[data-testid*="show"]`,
	`[data-testid*="program"]`,
	`[data-testid*="episode"]`,
	`[data-testid*="track"]`,
	`.schedule-item`,
	`.show-item`,
	`[class*="schedule"]`,
	`[class*="show"]`,
	`[class*="program"]`,
	`[class*="episode"]`,
	`[class*="track-list"]`,
	`[class*="content-item"]`,
	`[class*="media-item"]`,
	`li[role="listitem"]`,
	`article`,
}

var titleSelectors = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	`[class*="title"]`, `[class*="name"]`, `[class*="heading"]`,
	"strong", "b", ".typography-headline",
}

var descriptionSelectors = []string{
	`[class*="description"]`, `[class*="subtitle"]`,
	"p", ".typography-body", `[class*="summary"]`,
}

// navigationTitles are page chrome entries that leak into broad selectors.
var navigationTitles = map[string]bool{
	"home":       true,
	"new":        true,
	"radio":      true,
	"search":     true,
	"sign in":    true,
	"browse":     true,
	"listen now": true,
}

// showKeywords mark entries that are valid even without an extracted slot.
var showKeywords = []string{"show", "list", "takeover", "hits"}

const maxRawTextLength = 200

// ScheduleExtractor walks rendered station pages for show entries
type ScheduleExtractor struct {
	baseURL   string
	converter *SlotConverter
}

// ExtractionResult captures the shows plus diagnostics about how the page
// yielded them
type ExtractionResult struct {
	Shows           []models.ShowRecord `json:"shows"`
	SelectorMatched string              `json:"selector_matched"`
	ItemsExamined   int                 `json:"items_examined"`
	ItemsFiltered   int                 `json:"items_filtered"`
	UsedFallback    bool                `json:"used_fallback"`
}

// NewScheduleExtractor creates an extractor with the given slot converter
func NewScheduleExtractor(converter *SlotConverter) *ScheduleExtractor {
	return &ScheduleExtractor{
		baseURL:   "https://music.apple.com",
		converter: converter,
	}
}

// ExtractShows parses rendered HTML for a station and returns the normalized
// show records found in it
func (e *ScheduleExtractor) ExtractShows(html string, station models.Station, scrapedAt time.Time) (*ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse station page: %w", err)
	}

	result := &ExtractionResult{}

	items := e.findScheduleItems(doc, result)
	if len(items) == 0 {
		log.Printf("[EXTRACT] No schedule items found for %s with any selector", station.Name)
		return result, nil
	}

	log.Printf("[EXTRACT] %s: examining %d candidate items (selector %q, fallback=%t)",
		station.Name, len(items), result.SelectorMatched, result.UsedFallback)

	seen := make(map[string]bool)
	for _, item := range items {
		result.ItemsExamined++

		record, ok := e.extractShow(item, station, scrapedAt)
		if !ok {
			continue
		}
		if !e.isValidShow(record) {
			result.ItemsFiltered++
			continue
		}

		key := strings.ToLower(record.Station + "|" + record.TimeSlot + "|" + record.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		record.ID = models.GenerateShowID(record.Station, record.TimeSlot, record.Title)
		result.Shows = append(result.Shows, record)
	}

	log.Printf("[EXTRACT] %s: %d shows extracted, %d filtered", station.Name, len(result.Shows), result.ItemsFiltered)
	return result, nil
}

// findScheduleItems runs the selector cascade and falls back to climbing from
// time-pattern text nodes when no selector yields a list.
func (e *ScheduleExtractor) findScheduleItems(doc *goquery.Document, result *ExtractionResult) []*goquery.Selection {
	for _, selector := range scheduleSelectors {
		matched := doc.Find(selector)
		if matched.Length() > 1 {
			result.SelectorMatched = selector
			items := make([]*goquery.Selection, 0, matched.Length())
			matched.Each(func(_ int, s *goquery.Selection) {
				items = append(items, s)
			})
			return items
		}
	}

	// Fallback: any element whose own text contains a time range, climbed to
	// a container that plausibly holds the whole entry.
	result.UsedFallback = true
	var items []*goquery.Selection
	seen := make(map[*html.Node]bool)
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if ExtractTimeSlot(s.Text()) == "" {
			return
		}
		container := climbToContainer(s)
		if container == nil || container.Length() == 0 {
			return
		}
		node := container.Get(0)
		if !seen[node] {
			seen[node] = true
			items = append(items, container)
		}
	})
	return items
}

// climbToContainer walks ancestors until one looks like an entry container.
func climbToContainer(s *goquery.Selection) *goquery.Selection {
	containerHints := []string{"item", "card", "container", "section"}

	current := s.Parent()
	for current.Length() > 0 {
		tag := goquery.NodeName(current)
		if tag == "body" || tag == "html" {
			return s.Parent()
		}

		class, _ := current.Attr("class")
		haystack := strings.ToLower(class + " " + tag)
		for _, hint := range containerHints {
			if strings.Contains(haystack, hint) {
				return current
			}
		}
		current = current.Parent()
	}
	return s.Parent()
}

// extractShow pulls the fields of one schedule entry. The second return is
// false when the node held nothing usable.
func (e *ScheduleExtractor) extractShow(item *goquery.Selection, station models.Station, scrapedAt time.Time) (models.ShowRecord, bool) {
	rawText := item.Text()
	fullText := normalizeSpace(rawText)

	record := models.ShowRecord{
		Station:    station.Name,
		StationURL: station.URL,
		TimeSlot:   ExtractTimeSlot(fullText),
		Title:      e.extractTitle(item, rawText),
		RawText:    models.TruncateRawText(fullText, maxRawTextLength),
		ScrapedAt:  scrapedAt,
	}
	record.Description = e.extractDescription(item, record.Title)
	record.ImageURL = e.extractImageURL(item)
	record.ShowURL = e.extractShowURL(item)

	if record.TimeSlot != "" {
		sourceSlot, targetSlot, err := e.converter.NormalizeSlot(record.TimeSlot, scrapedAt)
		if err != nil {
			log.Printf("[EXTRACT] %s: could not normalize slot %q: %v", station.Name, record.TimeSlot, err)
		} else {
			record.TimeSlotUTC = sourceSlot
			record.TimeSlotPacific = targetSlot
		}
	}

	if record.TimeSlot == "" && record.Title == "" && record.Description == "" {
		return models.ShowRecord{}, false
	}
	return record, true
}

// extractTitle tries heading-like elements first and falls back to the first
// line of text that is not just a time range.
func (e *ScheduleExtractor) extractTitle(item *goquery.Selection, rawText string) string {
	for _, selector := range titleSelectors {
		title := ""
		item.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			candidate := normalizeSpace(s.Text())
			if candidate != "" && !IsTimeSlotOnly(candidate) {
				title = candidate
				return false
			}
			return true
		})
		if title != "" {
			return title
		}
	}

	cleaned := liveBadgeRe.ReplaceAllString(rawText, "")
	for _, line := range strings.Split(cleaned, "\n") {
		line = normalizeSpace(line)
		if line == "" || IsTimeSlotOnly(line) {
			continue
		}
		if len(line) > 3 {
			return line
		}
	}
	return ""
}

func (e *ScheduleExtractor) extractDescription(item *goquery.Selection, title string) string {
	for _, selector := range descriptionSelectors {
		desc := ""
		item.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			candidate := normalizeSpace(s.Text())
			if candidate != "" && candidate != title && !IsTimeSlotOnly(candidate) {
				desc = candidate
				return false
			}
			return true
		})
		if desc != "" {
			return desc
		}
	}
	return ""
}

// extractImageURL reads the first artwork image, preferring lazy-load
// attributes and fixing protocol-relative URLs.
func (e *ScheduleExtractor) extractImageURL(item *goquery.Selection) string {
	img := item.Find("img").First()
	if img.Length() == 0 {
		return ""
	}

	src, _ := img.Attr("src")
	if src == "" {
		src, _ = img.Attr("data-src")
	}
	if src == "" {
		src, _ = img.Attr("data-lazy-src")
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	if !models.ValidateImageURL(src) {
		return ""
	}
	return src
}

// extractShowURL reads the first detail link, resolving relative paths
// against music.apple.com.
func (e *ScheduleExtractor) extractShowURL(item *goquery.Selection) string {
	link := item.Find("a[href]").First()
	if link.Length() == 0 {
		return ""
	}

	href, _ := link.Attr("href")
	if href == "" {
		return ""
	}
	if !strings.HasPrefix(href, "http") {
		if !strings.HasPrefix(href, "/") {
			href = "/" + href
		}
		href = e.baseURL + href
	}
	return href
}

// isValidShow filters navigation chrome and entries with no schedule signal.
func (e *ScheduleExtractor) isValidShow(record models.ShowRecord) bool {
	title := strings.ToLower(strings.TrimSpace(record.Title))

	if navigationTitles[title] {
		return false
	}

	if record.TimeSlot == "" {
		for _, keyword := range showKeywords {
			if strings.Contains(title, keyword) {
				return true
			}
		}
		return false
	}

	return true
}

// normalizeSpace collapses runs of whitespace to single spaces
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
