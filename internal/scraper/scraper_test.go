package scraper

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfscli/internal/config"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/infrastructure"
)

const listingURL = "https://www.abs.gov.au/statistics/labour/employment-and-unemployment/labour-force-australia"

func TestExtractReleaseLink(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		selector string
		wantHref string
		wantErr  bool
	}{
		{
			name:     "single anchor in content",
			html:     `<html><body><div id="content"><a href="/statistics/labour/lfs/aug-2024">August 2024</a></div></body></html>`,
			selector: config.DefaultLinkSelector,
			wantHref: "/statistics/labour/lfs/aug-2024",
		},
		{
			name: "first of several anchors wins",
			html: `<div id="nav"><a href="/about">About</a></div>
<div id="content"><p><a href="/release/latest">Latest</a></p><a href="/release/previous">Previous</a></div>`,
			selector: config.DefaultLinkSelector,
			wantHref: "/release/latest",
		},
		{
			name:     "anchor nested deep inside content",
			html:     `<div id="content"><section><ul><li><a href="/deep">x</a></li></ul></section></div>`,
			selector: config.DefaultLinkSelector,
			wantHref: "/deep",
		},
		{
			name:     "anchors only outside content",
			html:     `<div id="sidebar"><a href="/elsewhere">x</a></div><div id="content"><p>no links</p></div>`,
			selector: config.DefaultLinkSelector,
			wantErr:  true,
		},
		{
			name:     "no content container",
			html:     `<html><body><a href="/x">x</a></body></html>`,
			selector: config.DefaultLinkSelector,
			wantErr:  true,
		},
		{
			name:     "first anchor without href",
			html:     `<div id="content"><a name="top">Top</a><a href="/later">later</a></div>`,
			selector: config.DefaultLinkSelector,
			wantErr:  true,
		},
		{
			name:     "empty href",
			html:     `<div id="content"><a href="  ">blank</a></div>`,
			selector: config.DefaultLinkSelector,
			wantErr:  true,
		},
		{
			name:     "href returned exactly as published",
			html:     `<div id="content"><a href=" /release/aug-2024?x=1 ">Aug</a></div>`,
			selector: config.DefaultLinkSelector,
			wantHref: " /release/aug-2024?x=1 ",
		},
		{
			name:     "custom selector",
			html:     `<main><a class="release" href="/r1">r1</a></main>`,
			selector: "main a.release",
			wantHref: "/r1",
		},
		{
			name:     "empty document",
			html:     "",
			selector: config.DefaultLinkSelector,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ExtractReleaseLink(tt.html, tt.selector)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLinkNotFound))
				assert.Contains(t, err.Error(), "site layout may have changed")
				assert.Empty(t, link.Href)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHref, link.Href)
		})
	}
}

func newMockedFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	client := infrastructure.NewHTTPClient(config.Default().Source)
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewHTTPFetcher(client, nil)
}

func TestHTTPFetcherFetch(t *testing.T) {
	fetcher := newMockedFetcher(t)

	var gotUserAgent string
	httpmock.RegisterResponder(http.MethodGet, listingURL,
		func(req *http.Request) (*http.Response, error) {
			gotUserAgent = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(200, `<div id="content"><a href="/aug-2024">Aug</a></div>`), nil
		})

	page, err := fetcher.Fetch(context.Background(), listingURL)
	require.NoError(t, err)
	assert.Equal(t, listingURL, page.URL)
	assert.Contains(t, page.HTML, "/aug-2024")
	assert.Equal(t, config.DefaultUserAgent, gotUserAgent)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestHTTPFetcherFailures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{name: "not found", responder: httpmock.NewStringResponder(404, "gone")},
		{name: "server error", responder: httpmock.NewStringResponder(503, "busy")},
		{name: "transport error", responder: httpmock.NewErrorResponder(assert.AnError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newMockedFetcher(t)
			httpmock.RegisterResponder(http.MethodGet, listingURL, tt.responder)

			page, err := fetcher.Fetch(context.Background(), listingURL)
			require.Error(t, err)
			assert.Nil(t, page)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
			assert.Equal(t, apperrors.ExitPageFetch, apperrors.ExitCode(err))
			// no retries
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
		})
	}
}

func TestNewPageFetcher(t *testing.T) {
	src := config.Default().Source
	client := infrastructure.NewHTTPClient(src)

	assert.IsType(t, &HTTPFetcher{}, NewPageFetcher(src, client, nil))

	src.FetchMode = config.FetchModeBrowser
	src.Timeout = 5 * time.Second
	browser, ok := NewPageFetcher(src, client, nil).(*BrowserFetcher)
	require.True(t, ok)
	assert.Equal(t, config.DefaultUserAgent, browser.userAgent)
	assert.Equal(t, 5*time.Second, browser.timeout)
}
