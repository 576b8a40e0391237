package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Time-range patterns observed on Apple Music schedule widgets, most specific
// first. The separator is an en dash or hyphen, spacing varies.
var timeSlotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM)?\s*[–-]\s*\d{1,2}:\d{2}\s*(?:AM|PM))`), // 7:05 PM – 9:00 PM
	regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[–-]\s*\d{1,2}:\d{2}\s*(?:AM|PM))`),              // 7:05 – 9:00 PM
	regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM)?\s*[–-]\s*\d{1,2}\s*(?:AM|PM))`),       // 7:05 PM – 9 AM
	regexp.MustCompile(`(?i)(\d{1,2}\s*(?:AM|PM)\s*[–-]\s*\d{1,2}\s*(?:AM|PM))`),              // 11PM – 12AM
	regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[–-]\s*\d{1,2}\s*(?:AM|PM))`),                    // 7:05 – 9 PM
	regexp.MustCompile(`(?i)(\d{1,2}\s*[–-]\s*\d{1,2}:\d{2}\s*(?:AM|PM))`),                    // 7 – 9:00 PM
	regexp.MustCompile(`(?i)(\d{1,2}\s*[–-]\s*\d{1,2}\s*(?:AM|PM))`),                          // 7 – 9 PM
}

// Live schedule entries carry a "LIVE ·" badge ahead of the time range.
var liveBadgeRe = regexp.MustCompile(`(?i)^LIVE\s*[·•]?\s*`)

var (
	slotSeparatorRe = regexp.MustCompile(`\s*[–-]\s*`)
	clockRe         = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?$`)
	timeOnlyRe      = regexp.MustCompile(`(?i)^\d{1,2}(?::\d{2})?\s*(?:AM|PM)?\s*[–-]\s*\d{1,2}(?::\d{2})?\s*(AM|PM)$`)
)

// ClockTime is a wall-clock time of day without a date
type ClockTime struct {
	Hour   int // 0-23
	Minute int
}

// TimeSlotRange is a parsed schedule slot in the zone the page displayed it in
type TimeSlotRange struct {
	Start ClockTime
	End   ClockTime
}

// ExtractTimeSlot finds the schedule time range inside free text. It tries the
// raw text first and the LIVE-stripped text second, keeping the longest match.
func ExtractTimeSlot(text string) string {
	cleaned := liveBadgeRe.ReplaceAllString(text, "")

	for _, pattern := range timeSlotPatterns {
		if slot := longestMatch(pattern, text); slot != "" {
			return slot
		}
		if slot := longestMatch(pattern, cleaned); slot != "" {
			return slot
		}
	}

	return ""
}

func longestMatch(pattern *regexp.Regexp, text string) string {
	matches := pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(best) {
			best = m
		}
	}
	return strings.TrimSpace(best)
}

// IsTimeSlotOnly reports whether text is nothing but a time range, which rules
// it out as a show title or description.
func IsTimeSlotOnly(text string) bool {
	return timeOnlyRe.MatchString(strings.TrimSpace(text))
}

// ParseTimeSlot parses a raw slot like "5 – 7 AM" or "22:00 – 00:00" into
// structured start/end clock times. When only one endpoint carries a meridiem
// the other endpoint inherits it.
func ParseTimeSlot(slot string) (TimeSlotRange, error) {
	slot = strings.TrimSpace(liveBadgeRe.ReplaceAllString(slot, ""))
	if slot == "" {
		return TimeSlotRange{}, fmt.Errorf("time slot cannot be empty")
	}

	parts := slotSeparatorRe.Split(slot, 2)
	if len(parts) != 2 {
		return TimeSlotRange{}, fmt.Errorf("time slot %q has no range separator", slot)
	}

	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])

	startMeridiem := meridiemOf(startStr)
	endMeridiem := meridiemOf(endStr)
	if startMeridiem == "" {
		startMeridiem = endMeridiem
	}
	if endMeridiem == "" {
		endMeridiem = startMeridiem
	}

	start, err := parseClock(startStr, startMeridiem)
	if err != nil {
		return TimeSlotRange{}, fmt.Errorf("invalid slot start %q: %w", parts[0], err)
	}
	end, err := parseClock(endStr, endMeridiem)
	if err != nil {
		return TimeSlotRange{}, fmt.Errorf("invalid slot end %q: %w", parts[1], err)
	}

	return TimeSlotRange{Start: start, End: end}, nil
}

func meridiemOf(s string) string {
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "AM") {
		return "AM"
	}
	if strings.HasSuffix(upper, "PM") {
		return "PM"
	}
	return ""
}

// parseClock parses one endpoint. A bare hour with no meridiem is treated as
// 24-hour notation, which is how already-normalized slots read back in.
func parseClock(s, meridiem string) (ClockTime, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ClockTime{}, fmt.Errorf("unrecognized clock time")
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return ClockTime{}, err
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil {
			return ClockTime{}, err
		}
	}

	if m[3] != "" {
		meridiem = strings.ToUpper(m[3])
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return ClockTime{}, fmt.Errorf("hour %d out of 12-hour range", hour)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return ClockTime{}, fmt.Errorf("hour %d out of 12-hour range", hour)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return ClockTime{}, fmt.Errorf("hour %d out of 24-hour range", hour)
		}
	}

	if minute > 59 {
		return ClockTime{}, fmt.Errorf("minute %d out of range", minute)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// SlotConverter converts parsed slots between the zone the page rendered them
// in and the local zone for the snapshot.
type SlotConverter struct {
	source *time.Location
	target *time.Location
}

// NewSlotConverter creates a converter with the default zones: Apple Music
// schedule widgets display UTC, snapshots carry America/Los_Angeles.
func NewSlotConverter() (*SlotConverter, error) {
	return NewSlotConverterWithZones("UTC", "America/Los_Angeles")
}

// NewSlotConverterWithZones creates a converter between two IANA zone names
func NewSlotConverterWithZones(source, target string) (*SlotConverter, error) {
	sourceLoc, err := time.LoadLocation(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load source zone %s: %w", source, err)
	}
	targetLoc, err := time.LoadLocation(target)
	if err != nil {
		return nil, fmt.Errorf("failed to load target zone %s: %w", target, err)
	}
	return &SlotConverter{source: sourceLoc, target: targetLoc}, nil
}

// Convert anchors the slot on the given date in the source zone and returns
// the normalized source slot (24-hour) and the converted target slot
// (12-hour). Anchoring on a real date makes day boundaries and DST
// transitions follow the tz database instead of a fixed offset.
func (sc *SlotConverter) Convert(slot TimeSlotRange, date time.Time) (sourceSlot, targetSlot string) {
	year, month, day := date.In(sc.source).Date()

	start := time.Date(year, month, day, slot.Start.Hour, slot.Start.Minute, 0, 0, sc.source)
	end := time.Date(year, month, day, slot.End.Hour, slot.End.Minute, 0, 0, sc.source)
	if !end.After(start) {
		// Slot spans midnight in the source zone.
		end = end.Add(24 * time.Hour)
	}

	sourceSlot = fmt.Sprintf("%s – %s", start.Format("15:04"), end.Format("15:04"))
	targetSlot = fmt.Sprintf("%s – %s", start.In(sc.target).Format("3:04 PM"), end.In(sc.target).Format("3:04 PM"))
	return sourceSlot, targetSlot
}

// NormalizeSlot extracts, parses, and converts a raw slot in one step
func (sc *SlotConverter) NormalizeSlot(raw string, date time.Time) (sourceSlot, targetSlot string, err error) {
	parsed, err := ParseTimeSlot(raw)
	if err != nil {
		return "", "", err
	}
	sourceSlot, targetSlot = sc.Convert(parsed, date)
	return sourceSlot, targetSlot, nil
}
