package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"apple-music-schedule-scraper/internal/models"
)

// RetryConfig defines retry behavior for failed page renders
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// RenderResult holds the rendered page plus timing diagnostics
type RenderResult struct {
	HTML       string        `json:"-"`
	HTMLLength int           `json:"html_length"`
	RenderTime time.Duration `json:"render_time"`
	Attempts   int           `json:"attempts"`
}

// BrowserClient renders station pages with headless Chromium. The schedule
// widget is drawn client-side, so a plain HTTP fetch returns an empty shell.
type BrowserClient struct {
	timezone    string
	locale      string
	userAgent   string
	settleWait  time.Duration
	retryConfig RetryConfig
}

// Selectors worth waiting for before snapshotting the DOM. Best effort only,
// the widget markup shifts between releases.
const scheduleReadySelector = `[class*="item"], [class*="show"], [role="listitem"]`

const minRenderedLength = 1000

// NewBrowserClient creates a renderer pinned to the Pacific zone, matching
// the zone the snapshot normalizes into
func NewBrowserClient() *BrowserClient {
	return &BrowserClient{
		timezone:   "America/Los_Angeles",
		locale:     "en-US",
		userAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		settleWait: 3 * time.Second,
		retryConfig: RetryConfig{
			MaxRetries:    2,
			InitialDelay:  1 * time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2.0,
		},
	}
}

// NewBrowserClientWithSettleWait creates a renderer with a custom post-load wait
func NewBrowserClientWithSettleWait(settleWait time.Duration) *BrowserClient {
	client := NewBrowserClient()
	client.settleWait = settleWait
	return client
}

// RenderStationPage renders a station page and returns its HTML after the
// schedule widget has had a chance to draw
func (b *BrowserClient) RenderStationPage(ctx context.Context, station models.Station) (*RenderResult, error) {
	startTime := time.Now()

	if !models.IsValidURL(station.URL) {
		return nil, fmt.Errorf("invalid station URL %q", station.URL)
	}

	maxRetries := b.maxRetriesFor(station)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		html, err := b.attemptRender(ctx, station)
		if err == nil {
			return &RenderResult{
				HTML:       html,
				HTMLLength: len(html),
				RenderTime: time.Since(startTime),
				Attempts:   attempt + 1,
			}, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < maxRetries {
			delay := b.calculateDelay(attempt)
			log.Printf("[RENDER] Attempt %d failed for %s, retrying in %v: %v", attempt+1, station.Name, delay, err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("render failed after %d attempts: %w", maxRetries+1, lastErr)
}

// maxRetriesFor resolves the retry budget for a station, the same way
// attemptRender resolves its timeout
func (b *BrowserClient) maxRetriesFor(station models.Station) int {
	if station.RetryCount > 0 {
		return station.RetryCount
	}
	return b.retryConfig.MaxRetries
}

// attemptRender performs a single render in a fresh browser context
func (b *BrowserClient) attemptRender(ctx context.Context, station models.Station) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(b.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	timeout := time.Duration(station.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	log.Printf("[RENDER] Navigating to %s (%s)", station.Name, station.URL)

	err := chromedp.Run(tabCtx,
		emulation.SetTimezoneOverride(b.timezone),
		emulation.SetLocaleOverride().WithLocale(b.locale),
		chromedp.Navigate(station.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.settleWait),
	)
	if err != nil {
		return "", fmt.Errorf("navigation failed for %s: %w", station.URL, err)
	}

	// Best-effort wait for schedule markup. The snapshot proceeds either way,
	// the extractor has its own fallbacks.
	waitCtx, cancelWait := context.WithTimeout(tabCtx, 10*time.Second)
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(scheduleReadySelector, chromedp.ByQuery)); err != nil {
		log.Printf("[RENDER] Schedule selectors not visible for %s, snapshotting anyway", station.Name)
	}
	cancelWait()

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture HTML for %s: %w", station.URL, err)
	}

	if len(html) < minRenderedLength {
		return "", fmt.Errorf("rendered HTML too short (%d chars), likely an error page", len(html))
	}

	log.Printf("[RENDER] Captured %d characters from %s", len(html), station.Name)
	return html, nil
}

// calculateDelay returns the backoff delay for the given attempt
func (b *BrowserClient) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(b.retryConfig.InitialDelay) * math.Pow(b.retryConfig.BackoffFactor, float64(attempt)))
	if delay > b.retryConfig.MaxDelay {
		delay = b.retryConfig.MaxDelay
	}
	return delay
}
