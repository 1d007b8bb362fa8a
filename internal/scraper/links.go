package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "lfscli/internal/errors"
)

// ReleaseLink is the href of the latest release found on the listing page.
// Href is the attribute value exactly as published and never blank.
type ReleaseLink struct {
	Href string
	Text string
}

// ExtractReleaseLink returns the first anchor matched by selector.
// The selector is expected to target anchors inside the page's content
// container, the first of which points at the latest release.
func ExtractReleaseLink(html, selector string) (ReleaseLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ReleaseLink{}, apperrors.NewLinkNotFoundError(selector)
	}

	anchor := doc.Find(selector).First()
	if anchor.Length() == 0 {
		return ReleaseLink{}, apperrors.NewLinkNotFoundError(selector)
	}

	href, exists := anchor.Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return ReleaseLink{}, apperrors.NewLinkNotFoundError(selector).
			WithContext("reason", "first match has no href")
	}

	return ReleaseLink{
		Href: href,
		Text: strings.TrimSpace(anchor.Text()),
	}, nil
}
