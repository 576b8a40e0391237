package services

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ReaderClient fetches station pages as rendered text through Jina AI Reader.
// It backs the text-based fallback extractor when the DOM path finds nothing.
type ReaderClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgents  []string
	retryConfig RetryConfig
}

// ReaderResponse represents a fetched page with basic metadata
type ReaderResponse struct {
	Content      string `json:"content"`
	URL          string `json:"url"`
	Length       int    `json:"length"`
	ProcessingMS int64  `json:"processing_ms"`
}

// NewReaderClient creates a reader client with browser-like headers
func NewReaderClient() *ReaderClient {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},
		DisableKeepAlives: false,
		IdleConnTimeout:   90 * time.Second,
	}

	return &ReaderClient{
		httpClient: &http.Client{
			Timeout:   45 * time.Second,
			Transport: transport,
		},
		baseURL: "https://r.jina.ai",
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		retryConfig: RetryConfig{
			MaxRetries:    3,
			InitialDelay:  1 * time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// NewReaderClientWithTimeout creates a reader client with a custom timeout
func NewReaderClientWithTimeout(timeout time.Duration) *ReaderClient {
	client := NewReaderClient()
	client.httpClient.Timeout = timeout
	return client
}

// FetchPageText fetches a station page as readable text
func (r *ReaderClient) FetchPageText(ctx context.Context, url string) (string, error) {
	if err := r.ValidateURL(url); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= r.retryConfig.MaxRetries; attempt++ {
		content, err := r.attemptFetch(ctx, url, attempt)
		if err == nil {
			return content, nil
		}

		lastErr = err

		// Client errors will not improve on retry
		if strings.Contains(err.Error(), "status 4") {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt < r.retryConfig.MaxRetries {
			delay := r.calculateDelay(attempt)
			log.Printf("[READER] Attempt %d failed for %s, retrying in %v: %v", attempt+1, url, delay, err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("reader fetch failed after %d attempts: %w", r.retryConfig.MaxRetries+1, lastErr)
}

// FetchPageTextWithMetadata fetches page text and returns detailed metadata
func (r *ReaderClient) FetchPageTextWithMetadata(ctx context.Context, url string) (*ReaderResponse, error) {
	startTime := time.Now()

	content, err := r.FetchPageText(ctx, url)
	if err != nil {
		return nil, err
	}

	return &ReaderResponse{
		Content:      content,
		URL:          url,
		Length:       len(content),
		ProcessingMS: time.Since(startTime).Milliseconds(),
	}, nil
}

// attemptFetch performs a single fetch attempt
func (r *ReaderClient) attemptFetch(ctx context.Context, url string, attempt int) (string, error) {
	readerURL := fmt.Sprintf("%s/%s", r.baseURL, url)

	req, err := http.NewRequestWithContext(ctx, "GET", readerURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	r.setHeaders(req, attempt)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reader request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("reader returned status %d: %s", resp.StatusCode, string(body))
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read reader response: %w", err)
	}

	contentStr := string(content)
	if len(contentStr) < 100 {
		return "", fmt.Errorf("content too short (%d chars), might be an error page", len(contentStr))
	}

	return contentStr, nil
}

// setHeaders sets realistic browser headers, rotating the user agent on retries
func (r *ReaderClient) setHeaders(req *http.Request, attempt int) {
	userAgent := r.userAgents[attempt%len(r.userAgents)]
	req.Header.Set("User-Agent", userAgent)

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if attempt > 0 {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}
}

// calculateDelay calculates exponential backoff delay
func (r *ReaderClient) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(r.retryConfig.InitialDelay) * r.retryConfig.BackoffFactor * float64(attempt+1))
	if delay > r.retryConfig.MaxDelay {
		delay = r.retryConfig.MaxDelay
	}
	return delay
}

// ValidateURL performs basic URL validation before hitting the reader
func (r *ReaderClient) ValidateURL(url string) error {
	if url == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(url) > 2048 {
		return fmt.Errorf("URL too long: %d characters", len(url))
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}
