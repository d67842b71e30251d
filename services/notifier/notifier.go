package notifier

import "gachahub/internal/catalog"

// Notifier delivers run summaries to the configured recipients.
type Notifier interface {
	// SendNewItemsSummary sends one summary mail for a completed scrape
	// round. Called even when items is empty.
	SendNewItemsSummary(items []catalog.Item) error

	// SendTest sends a short test mail to a single address
	SendTest(addr string) error
}

// Noop is used when notification is disabled. Every send succeeds
// without doing anything.
type Noop struct{}

func (Noop) SendNewItemsSummary([]catalog.Item) error { return nil }

func (Noop) SendTest(string) error { return nil }
