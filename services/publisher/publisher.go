package publisher

import "gachahub/internal/catalog"

// Publisher pushes newly ingested catalog items to downstream consumers so
// they don't have to poll the catalog.
type Publisher interface {
	// PublishNewItem publishes one newly ingested item under its site name
	PublishNewItem(site string, item catalog.Item) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
