package services

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReaderValidateURL(t *testing.T) {
	client := NewReaderClient()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://music.apple.com/us/radio/ra.978194965", false},
		{"valid http", "http://example.com", false},
		{"empty", "", true},
		{"no scheme", "music.apple.com/us/radio", true},
		{"too long", "https://example.com/" + strings.Repeat("a", 2048), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %t", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestReaderFetchPageText(t *testing.T) {
	pageText := strings.Repeat("5 – 7 AM The Morning Show\n", 20)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a user agent header")
		}
		w.Write([]byte(pageText))
	}))
	defer server.Close()

	client := NewReaderClient()
	client.baseURL = server.URL

	got, err := client.FetchPageText(context.Background(), "https://music.apple.com/us/radio/ra.978194965")
	if err != nil {
		t.Fatalf("FetchPageText: %v", err)
	}
	if got != pageText {
		t.Errorf("content mismatch, got %d chars", len(got))
	}
}

func TestReaderFetchPageTextWithMetadata(t *testing.T) {
	pageText := strings.Repeat("12 – 2 PM Midday Mix\n", 20)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageText))
	}))
	defer server.Close()

	client := NewReaderClient()
	client.baseURL = server.URL

	pageURL := "https://music.apple.com/us/radio/ra.978194965"
	resp, err := client.FetchPageTextWithMetadata(context.Background(), pageURL)
	if err != nil {
		t.Fatalf("FetchPageTextWithMetadata: %v", err)
	}
	if resp.Content != pageText {
		t.Errorf("content mismatch, got %d chars", len(resp.Content))
	}
	if resp.Length != len(pageText) {
		t.Errorf("length = %d, want %d", resp.Length, len(pageText))
	}
	if resp.URL != pageURL {
		t.Errorf("url = %q, want %q", resp.URL, pageURL)
	}
	if resp.ProcessingMS < 0 {
		t.Errorf("processing time = %d", resp.ProcessingMS)
	}
}

func TestReaderFetchPageTextGzip(t *testing.T) {
	pageText := strings.Repeat("7 – 9 AM Daybreak Sessions\n", 20)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(pageText))
		gz.Close()
	}))
	defer server.Close()

	client := NewReaderClient()
	client.baseURL = server.URL

	got, err := client.FetchPageText(context.Background(), "https://music.apple.com/us/radio/ra.978194965")
	if err != nil {
		t.Fatalf("FetchPageText: %v", err)
	}
	if got != pageText {
		t.Errorf("gzip content mismatch, got %d chars", len(got))
	}
}

func TestReaderFetchPageTextClientErrorNoRetry(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewReaderClient()
	client.baseURL = server.URL

	if _, err := client.FetchPageText(context.Background(), "https://music.apple.com/us/radio/ra.978194965"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if requests != 1 {
		t.Errorf("client errors should not retry, got %d requests", requests)
	}
}

func TestReaderFetchPageTextRejectsShortContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	}))
	defer server.Close()

	client := NewReaderClient()
	client.baseURL = server.URL
	client.retryConfig.MaxRetries = 0

	if _, err := client.FetchPageText(context.Background(), "https://music.apple.com/us/radio/ra.978194965"); err == nil {
		t.Error("expected error for suspiciously short content")
	}
}

func TestReaderCalculateDelayCapped(t *testing.T) {
	client := NewReaderClient()
	if got := client.calculateDelay(50); got != client.retryConfig.MaxDelay {
		t.Errorf("delay = %v, want cap %v", got, client.retryConfig.MaxDelay)
	}
}
