package ingest

import (
	"errors"
	"strings"
	"time"

	"gachahub/internal/catalog"
)

// mockStore implements CatalogStore in memory for testing
type mockStore struct {
	items   map[int64]*catalog.Item
	nextID  int64
	now     func() time.Time
	inserts int
	updates int
	failAll bool
}

func newMockStore() *mockStore {
	return &mockStore{
		items:  make(map[int64]*catalog.Item),
		nextID: 1,
		now:    time.Now,
	}
}

func (m *mockStore) Insert(item *catalog.Item) error {
	if m.failAll {
		return errors.New("store unavailable")
	}
	item.ID = m.nextID
	m.nextID++
	item.CreatedAt = m.now()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	m.items[item.ID] = &copied
	m.inserts++
	return nil
}

func (m *mockStore) Update(item *catalog.Item) error {
	if m.failAll {
		return errors.New("store unavailable")
	}
	item.UpdatedAt = m.now()
	copied := *item
	m.items[item.ID] = &copied
	m.updates++
	return nil
}

func (m *mockStore) FindByNameContains(text string) ([]catalog.Item, error) {
	if m.failAll {
		return nil, errors.New("store unavailable")
	}
	var out []catalog.Item
	for _, item := range m.items {
		if strings.Contains(item.ProductName, text) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockStore) FindNewTrue() ([]catalog.Item, error) {
	if m.failAll {
		return nil, errors.New("store unavailable")
	}
	var out []catalog.Item
	for _, item := range m.items {
		if item.IsNew {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockStore) SetIsNew(id int64, isNew bool) error {
	if m.failAll {
		return errors.New("store unavailable")
	}
	if item, ok := m.items[id]; ok {
		item.IsNew = isNew
	}
	return nil
}
