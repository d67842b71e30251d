// Package fetch provides the page-session abstraction the extractors run
// against: navigate to a URL, query elements by tag, read attributes and
// text. The production implementation fetches over HTTP and parses with
// goquery; tests substitute canned documents.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gachahub/helpers"
	errs "gachahub/pkg/errors"
	"gachahub/services/cache"
)

// Element is a single queried DOM element.
type Element interface {
	// Attr returns the attribute value, or "" when absent
	Attr(name string) string

	// Text returns the element's trimmed text content
	Text() string
}

// Session is a navigable page handle. One session is acquired per site run
// and released on every exit path.
type Session interface {
	// Navigate loads the given URL, replacing the current document
	Navigate(ctx context.Context, pageURL string) error

	// FindAll returns all elements matching the tag selector
	FindAll(selector string) []Element

	// Find returns the first element matching the tag selector, or nil
	Find(selector string) Element

	// BodyText returns the full rendered text of the current page
	BodyText() string

	// Close releases the session's resources
	Close() error
}

// Factory acquires a fresh session for one run.
type Factory interface {
	Acquire() (Session, error)
}

// HTTPFactory builds HTTP-backed sessions sharing a block cache.
type HTTPFactory struct {
	Cache     cache.CacheService
	BlockTime time.Duration

	// Timeout caps each page fetch; zero means the helpers default
	Timeout time.Duration
}

// Acquire returns a new HTTP session
func (f *HTTPFactory) Acquire() (Session, error) {
	return &httpSession{cache: f.Cache, blockTime: f.BlockTime, timeout: f.Timeout}, nil
}

// httpSession implements Session over plain HTTP GETs. Each Navigate fetches
// the page with randomized browser headers and holds the parsed document
// until the next Navigate.
type httpSession struct {
	cache     cache.CacheService
	blockTime time.Duration
	timeout   time.Duration
	doc       *goquery.Document
	current   string
}

// fetchPage is swappable in tests
var fetchPage = helpers.FetchWithRandomHeaders

func (s *httpSession) Navigate(ctx context.Context, pageURL string) error {
	if err := ctx.Err(); err != nil {
		return errs.NewFetch(s.current, "navigation cancelled", err)
	}

	key := blockKey(pageURL)

	// A site that rate-limited us recently is not fetched again until the
	// block key expires.
	if s.cache != nil && key != "" {
		if _, err := s.cache.Get(key); err == nil {
			return errs.NewFetch(pageURL, fmt.Sprintf("%s: blocked for %d seconds after rate limiting", key, int(s.blockTime/time.Second)), nil)
		}
	}

	body, err := fetchPage(pageURL, s.timeout)
	if err != nil {
		if s.cache != nil && key != "" && helpers.IsRateLimited(err) {
			s.cache.Set(key, []byte(fmt.Sprintf("%d", int(s.blockTime/time.Second))), s.blockTime)
		}
		return errs.NewFetch(pageURL, "navigation failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return errs.NewFetch(pageURL, "HTML parse failed", err)
	}

	s.doc = doc
	s.current = pageURL
	return nil
}

func (s *httpSession) FindAll(selector string) []Element {
	if s.doc == nil {
		return nil
	}
	var elements []Element
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &docElement{sel: sel})
	})
	return elements
}

func (s *httpSession) Find(selector string) Element {
	if s.doc == nil {
		return nil
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return &docElement{sel: sel}
}

func (s *httpSession) BodyText() string {
	if s.doc == nil {
		return ""
	}
	return s.doc.Find("body").Text()
}

func (s *httpSession) Close() error {
	s.doc = nil
	s.current = ""
	return nil
}

// docElement wraps a goquery selection
type docElement struct {
	sel *goquery.Selection
}

func (e *docElement) Attr(name string) string {
	value, _ := e.sel.Attr(name)
	return value
}

func (e *docElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// blockKey derives the rate-limit block key from a page URL's host
func blockKey(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ReplaceAll(u.Host, ".", "_") + "_rate_limited"
}
