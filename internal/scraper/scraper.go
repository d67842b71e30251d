// Package scraper holds the per-site extractors and the pure field parsers
// they share. Each extractor implements the same contract: given a page
// session, produce the raw items one run could find on its site. Site
// behavior differences (listing-only vs listing-then-detail, calendar
// pagination) live entirely inside the variant.
package scraper

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"gachahub/internal/catalog"
	"gachahub/internal/fetch"
)

// Extractor is the per-site extraction contract.
type Extractor interface {
	// Site returns the site name the extractor is registered under
	Site() string

	// Manufacturer returns the manufacturer stored on extracted items
	Manufacturer() string

	// Extract produces the raw items of one run. A returned error aborts
	// the whole run; per-candidate failures are skipped internally.
	Extract(ctx context.Context, session fetch.Session) ([]catalog.RawItem, error)
}

// Limits bound one run against third-party latency: a hard cap on detail
// pages visited and a randomized politeness delay between detail fetches.
type Limits struct {
	MaxItems int
	DelayMin time.Duration
	DelayMax time.Duration
}

// politenessDelay sleeps for a random duration within the configured range,
// returning early if the context is cancelled.
func (l Limits) politenessDelay(ctx context.Context) {
	d := l.DelayMin
	if spread := l.DelayMax - l.DelayMin; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// collectLinks gathers candidate detail URLs from the current document:
// anchors whose href contains marker, normalized, deduplicated against seen.
// The seen set is shared across pages of a multi-page run.
func collectLinks(session fetch.Session, marker string, seen map[string]bool, normalize func(string) string) []string {
	var urls []string
	for _, a := range session.FindAll("a") {
		href := a.Attr("href")
		if href == "" || !strings.Contains(href, marker) {
			continue
		}
		if normalize != nil {
			href = normalize(href)
		}
		if seen[href] {
			continue
		}
		seen[href] = true
		urls = append(urls, href)
	}
	return urls
}

// firstImageSrc returns the src of the first image matching all markers
func firstImageSrc(session fetch.Session, markers ...string) string {
	for _, img := range session.FindAll("img") {
		src := img.Attr("src")
		if src == "" {
			continue
		}
		match := true
		for _, m := range markers {
			if !strings.Contains(src, m) {
				match = false
				break
			}
		}
		if match {
			return src
		}
	}
	return ""
}

// elementTexts collects the text of every element matching the tag
func elementTexts(session fetch.Session, tag string) []string {
	var texts []string
	for _, el := range session.FindAll(tag) {
		texts = append(texts, el.Text())
	}
	return texts
}
