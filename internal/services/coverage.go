package services

import (
	"fmt"
	"log"
	"sort"

	"apple-music-schedule-scraper/internal/models"
)

// Gaps shorter than this are rounding noise from minute-level slots.
const coverageGapToleranceMinutes = 5

const minutesPerDay = 24 * 60

// CoverageGap is an uncovered stretch between two adjacent slots
type CoverageGap struct {
	AfterSlot  string `json:"after_slot"`
	BeforeSlot string `json:"before_slot"`
	StartsAt   string `json:"starts_at"`
	Minutes    int    `json:"minutes"`
}

// StationCoverage is the 24-hour coverage result for one station
type StationCoverage struct {
	Station        string        `json:"station"`
	SlotCount      int           `json:"slot_count"`
	CoveredMinutes int           `json:"covered_minutes"`
	Gaps           []CoverageGap `json:"gaps,omitempty"`
	ParseErrors    []string      `json:"parse_errors,omitempty"`
	FullyCovered   bool          `json:"fully_covered"`
}

// CoverageReport aggregates coverage across all stations in a snapshot
type CoverageReport struct {
	Stations     []StationCoverage `json:"stations"`
	FullyCovered bool              `json:"fully_covered"`
}

// coverageSlot is one parsed slot laid out on a minute timeline that may run
// past midnight
type coverageSlot struct {
	label string
	start int
	end   int
}

// VerifyCoverage checks that each station's slots cover a full broadcast day.
// Slots are read from the normalized 24-hour column.
func VerifyCoverage(shows []models.ShowRecord) *CoverageReport {
	byStation := make(map[string][]models.ShowRecord)
	var order []string
	for _, show := range shows {
		if _, seen := byStation[show.Station]; !seen {
			order = append(order, show.Station)
		}
		byStation[show.Station] = append(byStation[show.Station], show)
	}

	report := &CoverageReport{FullyCovered: true}
	for _, station := range order {
		coverage := verifyStationCoverage(station, byStation[station])
		if !coverage.FullyCovered {
			report.FullyCovered = false
		}
		report.Stations = append(report.Stations, coverage)
	}
	return report
}

func verifyStationCoverage(station string, shows []models.ShowRecord) StationCoverage {
	coverage := StationCoverage{Station: station}

	var slots []coverageSlot
	for _, show := range shows {
		if show.TimeSlotUTC == "" {
			continue
		}
		parsed, err := ParseTimeSlot(show.TimeSlotUTC)
		if err != nil {
			coverage.ParseErrors = append(coverage.ParseErrors, fmt.Sprintf("%s: %v", show.TimeSlotUTC, err))
			continue
		}

		start := parsed.Start.Minutes()
		end := parsed.End.Minutes()
		if end <= start {
			end += minutesPerDay
		}
		slots = append(slots, coverageSlot{label: show.TimeSlotUTC, start: start, end: end})
	}

	coverage.SlotCount = len(slots)
	if len(slots) == 0 {
		coverage.Gaps = append(coverage.Gaps, CoverageGap{Minutes: minutesPerDay, StartsAt: "00:00"})
		return coverage
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].start < slots[j].start })

	// Mark covered minutes on a day-length timeline, wrapping past-midnight
	// tails around.
	covered := make([]bool, minutesPerDay)
	for _, slot := range slots {
		for m := slot.start; m < slot.end; m++ {
			covered[m%minutesPerDay] = true
		}
	}
	for _, c := range covered {
		if c {
			coverage.CoveredMinutes++
		}
	}

	// Walk adjacent slots for reporting. Overlapping neighbours are not gaps.
	for i := 1; i < len(slots); i++ {
		prev, slot := slots[i-1], slots[i]
		gap := slot.start - prev.end
		if gap > coverageGapToleranceMinutes {
			prevEnd := prev.end % minutesPerDay
			coverage.Gaps = append(coverage.Gaps, CoverageGap{
				AfterSlot:  prev.label,
				BeforeSlot: slot.label,
				StartsAt:   fmt.Sprintf("%02d:%02d", prevEnd/60, prevEnd%60),
				Minutes:    gap,
			})
		}
	}

	// Wrap seam: the last slot closes the day against the first one. A slot
	// running past the first slot's start is an overlap, not a gap.
	last, first := slots[len(slots)-1], slots[0]
	if gap := first.start + minutesPerDay - last.end; gap > coverageGapToleranceMinutes && gap < minutesPerDay {
		lastEnd := last.end % minutesPerDay
		coverage.Gaps = append(coverage.Gaps, CoverageGap{
			AfterSlot:  last.label,
			BeforeSlot: first.label,
			StartsAt:   fmt.Sprintf("%02d:%02d", lastEnd/60, lastEnd%60),
			Minutes:    gap,
		})
	}

	coverage.FullyCovered = minutesPerDay-coverage.CoveredMinutes <= coverageGapToleranceMinutes && len(coverage.ParseErrors) == 0
	return coverage
}

// LogCoverageReport writes a readable coverage summary to the log
func LogCoverageReport(report *CoverageReport) {
	for _, station := range report.Stations {
		if station.FullyCovered {
			log.Printf("[COVERAGE] %s: %d slots, full 24h coverage", station.Station, station.SlotCount)
			continue
		}
		log.Printf("[COVERAGE] %s: %d slots, %d of %d minutes covered",
			station.Station, station.SlotCount, station.CoveredMinutes, minutesPerDay)
		for _, gap := range station.Gaps {
			log.Printf("[COVERAGE]   gap of %d min starting %s (between %q and %q)",
				gap.Minutes, gap.StartsAt, gap.AfterSlot, gap.BeforeSlot)
		}
		for _, parseErr := range station.ParseErrors {
			log.Printf("[COVERAGE]   unparseable slot %s", parseErr)
		}
	}
}
