package models

import (
	"strings"
	"testing"
)

func TestGetStations(t *testing.T) {
	stations := GetStations()

	if len(stations) != 6 {
		t.Fatalf("expected 6 stations, got %d", len(stations))
	}

	seen := make(map[string]bool)
	for _, station := range stations {
		if station.Name == "" {
			t.Error("station with empty name")
		}
		if !strings.HasPrefix(station.URL, "https://music.apple.com/us/radio/ra.") {
			t.Errorf("station %s has unexpected URL %q", station.Name, station.URL)
		}
		if station.Domain != "music.apple.com" {
			t.Errorf("station %s has domain %q", station.Name, station.Domain)
		}
		if station.Timeout <= 0 {
			t.Errorf("station %s has no timeout", station.Name)
		}
		if seen[station.URL] {
			t.Errorf("duplicate station URL %q", station.URL)
		}
		seen[station.URL] = true
	}

	if stations[0].Name != "Apple Music 1" {
		t.Errorf("first station = %q, want Apple Music 1", stations[0].Name)
	}
}

func TestStationNames(t *testing.T) {
	names := StationNames(GetStations())
	if len(names) != 6 {
		t.Fatalf("expected 6 names, got %d", len(names))
	}
	if names[0] != "Apple Music 1" {
		t.Errorf("first name = %q", names[0])
	}
}

func TestFilterEnabled(t *testing.T) {
	stations := []Station{
		{Name: "a", Enabled: true},
		{Name: "b", Enabled: false},
		{Name: "c", Enabled: true},
	}

	enabled := FilterEnabled(stations)
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled, got %d", len(enabled))
	}
	if enabled[0].Name != "a" || enabled[1].Name != "c" {
		t.Errorf("enabled = %v", enabled)
	}
}
