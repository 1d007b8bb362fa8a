package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	resty "github.com/go-resty/resty/v2"

	"lfscli/internal/config"
	apperrors "lfscli/internal/errors"
)

// Page is the release listing document fetched for one run
type Page struct {
	URL  string
	HTML string
}

// PageFetcher retrieves the release listing page
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher fetches pages with a plain GET request
type HTTPFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

// NewHTTPFetcher creates a fetcher using client; the client carries the User-Agent and timeout
func NewHTTPFetcher(client *resty.Client, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{client: client, logger: logger.With(slog.String("component", "page_fetcher"))}
}

// Fetch returns the page body. Transport failures and non-2xx statuses are
// NETWORK errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch release page", err).
			WithContext("url", url)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewNetworkError("release page returned "+resp.Status(), nil).
			WithContext("url", url).
			WithContext("status", resp.StatusCode())
	}

	f.logger.DebugContext(ctx, "Fetched release page",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode()),
		slog.Int("bytes", len(resp.Body())),
		slog.Duration("duration", time.Since(start)))

	return &Page{URL: url, HTML: string(resp.Body())}, nil
}

// BrowserFetcher renders the page in headless Chrome before reading its HTML
type BrowserFetcher struct {
	userAgent string
	timeout   time.Duration
	headless  bool
	logger    *slog.Logger
}

// NewBrowserFetcher creates a chromedp based fetcher
func NewBrowserFetcher(cfg config.SourceConfig, logger *slog.Logger) *BrowserFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserFetcher{
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		headless:  true,
		logger:    logger.With(slog.String("component", "page_fetcher")),
	}
}

// Fetch navigates to url and returns the rendered document
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.headless),
		chromedp.UserAgent(f.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if f.timeout > 0 {
		var cancelTimeout context.CancelFunc
		browserCtx, cancelTimeout = context.WithTimeout(browserCtx, f.timeout)
		defer cancelTimeout()
	}

	start := time.Now()
	var html string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, apperrors.NewNetworkError("failed to render release page", err).
			WithContext("url", url)
	}

	f.logger.DebugContext(ctx, "Rendered release page",
		slog.String("url", url),
		slog.Int("bytes", len(html)),
		slog.Duration("duration", time.Since(start)))

	return &Page{URL: url, HTML: html}, nil
}

// NewPageFetcher selects the fetcher for cfg.FetchMode
func NewPageFetcher(cfg config.SourceConfig, client *resty.Client, logger *slog.Logger) PageFetcher {
	if cfg.FetchMode == config.FetchModeBrowser {
		return NewBrowserFetcher(cfg, logger)
	}
	return NewHTTPFetcher(client, logger)
}
