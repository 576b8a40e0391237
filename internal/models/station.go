package models

// Station represents a single Apple Music radio station to scrape
type Station struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Domain     string `json:"domain"`
	Enabled    bool   `json:"enabled"`
	Timeout    int    `json:"timeout"` // timeout in seconds
	RetryCount int    `json:"retryCount"`
}

// GetStations returns the fixed list of Apple Music radio stations
func GetStations() []Station {
	return []Station{
		{
			Name:       "Apple Music 1",
			URL:        "https://music.apple.com/us/radio/ra.978194965",
			Domain:     "music.apple.com",
			Enabled:    true,
			Timeout:    45,
			RetryCount: 2,
		},
		{
			Name:       "Apple Music Hits",
			URL:        "https://music.apple.com/us/radio/ra.1498155548",
			Domain:     "music.apple.com",
			Enabled:    true,
			Timeout:    45,
			RetryCount: 2,
		},
		{
			Name:       "Apple Music Country",
			URL:        "https://music.apple.com/us/radio/ra.1498157166",
			Domain:     "music.apple.com",
			Enabled:    true,
			Timeout:    45,
			RetryCount: 2,
		},
		{
			Name:       "Apple Music Club",
			URL:        "https://music.apple.com/us/radio/ra.1740613864",
			Domain:     "music.apple.com",
			Enabled:    true,
			Timeout:    45,
			RetryCount: 2,
		},
		{
			Name:       "Apple Music Chill",
			URL:        "https://music.apple.com/us/radio/ra.1740613859",
			Domain:     "music.apple.com",
			Enabled:    true,
			Timeout:    45,
			RetryCount: 2,
		},
		{
			Name:       "Apple Music Classical",
			URL:        "https://music.apple.com/us/radio/ra.1740614260",
			Domain:     "music.apple.com",
			Enabled:    true,
			Timeout:    45,
			RetryCount: 2,
		},
	}
}

// StationNames returns the display names of all stations in the list
func StationNames(stations []Station) []string {
	names := make([]string, 0, len(stations))
	for _, s := range stations {
		names = append(names, s.Name)
	}
	return names
}

// FilterEnabled returns only the stations marked enabled
func FilterEnabled(stations []Station) []Station {
	enabled := make([]Station, 0, len(stations))
	for _, s := range stations {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled
}
