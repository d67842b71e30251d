package worker

import (
	"context"
	"errors"
	"time"

	"gachahub/internal/catalog"
	"gachahub/internal/fetch"
)

// stubExtractor returns canned raw items or a canned failure
type stubExtractor struct {
	site         string
	manufacturer string
	items        []catalog.RawItem
	err          error
	calls        int
}

func (e *stubExtractor) Site() string { return e.site }

func (e *stubExtractor) Manufacturer() string { return e.manufacturer }

func (e *stubExtractor) Extract(ctx context.Context, _ fetch.Session) ([]catalog.RawItem, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.items, nil
}

// stubIngestor records ingested items and marks the configured names as new
type stubIngestor struct {
	newNames map[string]bool
	ingested []catalog.RawItem
	failFor  map[string]error
	agedOff  int
	ageErr   error
	nextID   int64
}

func newStubIngestor(newNames ...string) *stubIngestor {
	s := &stubIngestor{
		newNames: make(map[string]bool),
		failFor:  make(map[string]error),
		nextID:   1,
	}
	for _, name := range newNames {
		s.newNames[name] = true
	}
	return s
}

func (s *stubIngestor) Ingest(raw catalog.RawItem) (catalog.Item, bool, error) {
	if err := s.failFor[raw.Name]; err != nil {
		return catalog.Item{}, false, err
	}
	s.ingested = append(s.ingested, raw)
	item := catalog.Item{
		ID:           s.nextID,
		ProductName:  raw.Name,
		Manufacturer: raw.Manufacturer,
		IsNew:        s.newNames[raw.Name],
	}
	s.nextID++
	return item, s.newNames[raw.Name], nil
}

func (s *stubIngestor) AgeOff(int) (int, error) {
	if s.ageErr != nil {
		return 0, s.ageErr
	}
	return s.agedOff, nil
}

// memRunLogs is an in-memory run log store
type memRunLogs struct {
	logs    []catalog.RunLog
	saveErr error
}

func (m *memRunLogs) Save(log *catalog.RunLog) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	log.ID = int64(len(m.logs) + 1)
	if log.ExecutedAt.IsZero() {
		log.ExecutedAt = time.Now()
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memRunLogs) FindRecent(n int) ([]catalog.RunLog, error) {
	if len(m.logs) == 0 {
		return nil, nil
	}
	var out []catalog.RunLog
	for i := len(m.logs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

// nopSession satisfies fetch.Session for extractor stubs that ignore it
type nopSession struct{ closed bool }

func (s *nopSession) Navigate(context.Context, string) error { return nil }
func (s *nopSession) FindAll(string) []fetch.Element         { return nil }
func (s *nopSession) Find(string) fetch.Element              { return nil }
func (s *nopSession) BodyText() string                       { return "" }
func (s *nopSession) Close() error                           { s.closed = true; return nil }

type stubFactory struct {
	session    *nopSession
	acquireErr error
	acquires   int
}

func (f *stubFactory) Acquire() (fetch.Session, error) {
	f.acquires++
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	if f.session == nil {
		f.session = &nopSession{}
	}
	return f.session, nil
}

// memConfigs is an in-memory site config store
type memConfigs struct {
	enabled  []catalog.SiteConfig
	lastRuns map[string]time.Time
	findErr  error
}

func newMemConfigs(sites ...string) *memConfigs {
	m := &memConfigs{lastRuns: make(map[string]time.Time)}
	for i, site := range sites {
		m.enabled = append(m.enabled, catalog.SiteConfig{
			ID:       int64(i + 1),
			SiteName: site,
			Schedule: "0 6 * * *",
			Enabled:  true,
		})
	}
	return m
}

func (m *memConfigs) FindEnabled() ([]catalog.SiteConfig, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.enabled, nil
}

func (m *memConfigs) UpdateLastRun(siteName string, t time.Time) error {
	m.lastRuns[siteName] = t
	return nil
}

// recordingPublisher records published items per site
type recordingPublisher struct {
	published map[string][]catalog.Item
	trims     int
	pubErr    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{published: make(map[string][]catalog.Item)}
}

func (p *recordingPublisher) PublishNewItem(site string, item catalog.Item) error {
	if p.pubErr != nil {
		return p.pubErr
	}
	p.published[site] = append(p.published[site], item)
	return nil
}

func (p *recordingPublisher) TrimStreams() error { p.trims++; return nil }

func (p *recordingPublisher) Close() error { return nil }

// recordingNotifier records every summary sent
type recordingNotifier struct {
	summaries [][]catalog.Item
	sendErr   error
}

func (n *recordingNotifier) SendNewItemsSummary(items []catalog.Item) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.summaries = append(n.summaries, items)
	return nil
}

func (n *recordingNotifier) SendTest(string) error { return nil }

var errBoom = errors.New("boom")
