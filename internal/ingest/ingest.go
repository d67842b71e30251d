// Package ingest decides whether a scraped item is genuinely new or a
// refresh of an existing catalog record, and applies the upsert.
package ingest

import (
	"fmt"
	"time"

	"gachahub/internal/catalog"
	"gachahub/logger"
)

// CatalogStore is the slice of the catalog persistence the ingestion
// pipeline needs.
type CatalogStore interface {
	Insert(item *catalog.Item) error
	Update(item *catalog.Item) error
	FindByNameContains(text string) ([]catalog.Item, error)
	FindNewTrue() ([]catalog.Item, error)
	SetIsNew(id int64, isNew bool) error
}

// Service resolves raw item identity against the catalog and applies the
// dedup/upsert policy.
type Service struct {
	store CatalogStore

	// now is injectable for tests
	now func() time.Time
}

// NewService creates an ingestion service over the given store
func NewService(store CatalogStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Ingest upserts one raw item. A matched existing record has all mutable
// fields rewritten and is never re-flagged as new; an unmatched item is
// inserted with the new flag set.
//
// Identity resolution matches the stored policy: candidates are items whose
// name contains the raw name (a substring match, kept as the documented
// policy despite its known false-positive risk), refined by exact
// manufacturer and, when the raw item carries a source URL, by source URL
// equality or absence.
func (s *Service) Ingest(raw catalog.RawItem) (catalog.Item, bool, error) {
	if raw.Name == "" {
		return catalog.Item{}, false, fmt.Errorf("raw item has no name")
	}

	existing, err := s.findExisting(raw)
	if err != nil {
		return catalog.Item{}, false, fmt.Errorf("resolve identity of %q: %w", raw.Name, err)
	}

	if existing == nil {
		item := catalog.Item{
			ProductName:  raw.Name,
			Manufacturer: raw.Manufacturer,
			ImageURL:     raw.ImageURL,
			ReleaseDate:  raw.ReleaseDate,
			Price:        raw.Price,
			Description:  raw.Description,
			LineupInfo:   raw.LineupInfo,
			SourceURL:    raw.SourceURL,
			IsNew:        true,
		}
		if err := s.store.Insert(&item); err != nil {
			return catalog.Item{}, false, fmt.Errorf("insert %q: %w", raw.Name, err)
		}
		return item, true, nil
	}

	// Last-write-wins refresh of every mutable field. A refresh never
	// counts as new, even if the stored row still carried the flag.
	existing.ProductName = raw.Name
	existing.ImageURL = raw.ImageURL
	existing.ReleaseDate = raw.ReleaseDate
	existing.Price = raw.Price
	existing.Description = raw.Description
	existing.LineupInfo = raw.LineupInfo
	existing.SourceURL = raw.SourceURL
	existing.IsNew = false

	if err := s.store.Update(existing); err != nil {
		return catalog.Item{}, false, fmt.Errorf("update %q: %w", raw.Name, err)
	}
	return *existing, false, nil
}

// findExisting returns the most recent catalog match for the raw item
func (s *Service) findExisting(raw catalog.RawItem) (*catalog.Item, error) {
	candidates, err := s.store.FindByNameContains(raw.Name)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		if c.Manufacturer != raw.Manufacturer {
			continue
		}
		if raw.SourceURL != "" && c.SourceURL != "" && c.SourceURL != raw.SourceURL {
			continue
		}
		return c, nil
	}
	return nil, nil
}

// AgeOff clears the new flag on items created more than thresholdDays ago,
// one by one, and returns how many were cleared.
func (s *Service) AgeOff(thresholdDays int) (int, error) {
	items, err := s.store.FindNewTrue()
	if err != nil {
		return 0, fmt.Errorf("load new items: %w", err)
	}

	threshold := s.now().AddDate(0, 0, -thresholdDays)
	cleared := 0
	for _, item := range items {
		if !item.CreatedAt.Before(threshold) {
			continue
		}
		if err := s.store.SetIsNew(item.ID, false); err != nil {
			logger.Error("aging sweep: clearing flag on item %d: %v", item.ID, err)
			continue
		}
		cleared++
	}
	return cleared, nil
}
