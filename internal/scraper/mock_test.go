package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gachahub/internal/fetch"
)

// fakeSession serves canned HTML documents keyed by URL
type fakeSession struct {
	pages       map[string]string
	failing     map[string]bool
	navigations []string
	doc         *goquery.Document
	closed      bool
}

func newFakeSession(pages map[string]string) *fakeSession {
	return &fakeSession{pages: pages, failing: make(map[string]bool)}
}

func (s *fakeSession) Navigate(_ context.Context, pageURL string) error {
	s.navigations = append(s.navigations, pageURL)
	if s.failing[pageURL] {
		return fmt.Errorf("navigation failed: %s", pageURL)
	}
	html, ok := s.pages[pageURL]
	if !ok {
		return fmt.Errorf("no such page: %s", pageURL)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

func (s *fakeSession) FindAll(selector string) []fetch.Element {
	if s.doc == nil {
		return nil
	}
	var elements []fetch.Element
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &fakeElement{sel: sel})
	})
	return elements
}

func (s *fakeSession) Find(selector string) fetch.Element {
	if s.doc == nil {
		return nil
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return &fakeElement{sel: sel}
}

func (s *fakeSession) BodyText() string {
	if s.doc == nil {
		return ""
	}
	return s.doc.Find("body").Text()
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeElement struct {
	sel *goquery.Selection
}

func (e *fakeElement) Attr(name string) string {
	value, _ := e.sel.Attr(name)
	return value
}

func (e *fakeElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}
