package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

var ErrLogoNotFound = errors.New("no logo found on page")

// logoSelectors are tried in order; the first non-empty match wins.
var logoSelectors = []struct {
	selector string
	attr     string
}{
	{"meta[property='og:logo']", "content"},
	{"meta[property='og:image']", "content"},
	{"meta[name='twitter:image']", "content"},
	{"link[rel='apple-touch-icon']", "href"},
	{"link[rel~='icon']", "href"},
	{"img[class*='logo'], img[id*='logo'], img[alt*='Logo'], img[alt*='logo']", "src"},
}

type logoParser struct{}

func newLogoParser() *logoParser {
	return &logoParser{}
}

// ParseLogo extracts a logo URL from a vendor homepage and resolves it against pageURL.
func (p *logoParser) ParseLogo(html, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}

	// A <base href> changes how relative references resolve
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if baseHref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(baseHref)
		}
	}

	for _, candidate := range logoSelectors {
		value, ok := doc.Find(candidate.selector).First().Attr(candidate.attr)
		value = strings.TrimSpace(value)
		if !ok || value == "" || strings.HasPrefix(value, "data:") {
			continue
		}

		ref, err := url.Parse(value)
		if err != nil {
			log.Debugf("Skipping malformed logo reference %q: %v", value, err)
			continue
		}

		resolved := base.ResolveReference(ref).String()
		log.Debugf("Found logo %s via %s", resolved, candidate.selector)
		return resolved, nil
	}

	return "", ErrLogoNotFound
}
