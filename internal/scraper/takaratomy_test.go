package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gachahub/internal/catalog"
	errs "gachahub/pkg/errors"
)

const ttBase = "https://www.takaratomy-arts.co.jp"

func takaraTomyExtractorAt(t time.Time, limits Limits) *TakaraTomyExtractor {
	e := NewTakaraTomyExtractor(ttBase, limits)
	e.now = func() time.Time { return t }
	return e
}

func takaraTomyPages() map[string]string {
	detail := `<html><body>
		<h2>商品情報</h2>
		<h2>カプセルプラレール新幹線</h2>
		<img src="/upfiles/products/01/100_b.jpg">
		<p>■価格:400円(税込)</p>
		<p>■発売時期:2026年3月</p>
		<p>全8種</p>
	</body></html>`

	return map[string]string{
		ttBase + "/items/gacha/calendar/?ym=202602": `<html><body>
			<a href="../../item.html?n=100">this month</a>
			<a href="/items/gacha/calendar/?ym=202601">previous</a>
		</body></html>`,
		ttBase + "/items/gacha/calendar/?ym=202603": `<html><body>
			<a href="../../item.html?n=100">same item</a>
			<a href="../../item.html?n=200">next month item</a>
		</body></html>`,
		ttBase + "/items/item.html?n=100": detail,
		ttBase + "/items/item.html?n=200": `<html><body>
			<h2>ミニチュア食品サンプル</h2>
			<p>発売日は近日公開</p>
		</body></html>`,
	}
}

func TestTakaraTomyExtractTwoMonths(t *testing.T) {
	session := newFakeSession(takaraTomyPages())
	extractor := takaraTomyExtractorAt(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), Limits{MaxItems: 50})

	items, err := extractor.Extract(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, items, 2, "duplicate across calendar pages must be visited once")

	first := items[0]
	assert.Equal(t, "カプセルプラレール新幹線", first.Name, "info-block label must not be taken as the name")
	assert.Equal(t, catalog.ManufacturerTakaraTomy, first.Manufacturer)
	assert.Equal(t, ttBase+"/upfiles/products/01/100_b.jpg", first.ImageURL)
	require.NotNil(t, first.Price)
	assert.Equal(t, 400, *first.Price)
	require.NotNil(t, first.ReleaseDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *first.ReleaseDate)
	assert.Equal(t, "タカラトミーアーツ公式サイトより - 全8種", first.Description)
	assert.Equal(t, ttBase+"/items/item.html?n=100", first.SourceURL)

	second := items[1]
	assert.Equal(t, "ミニチュア食品サンプル", second.Name)
	assert.Nil(t, second.Price)
	assert.Nil(t, second.ReleaseDate)

	// Both calendar months were fetched
	assert.Contains(t, session.navigations, ttBase+"/items/gacha/calendar/?ym=202602")
	assert.Contains(t, session.navigations, ttBase+"/items/gacha/calendar/?ym=202603")
}

func TestTakaraTomyYearRollover(t *testing.T) {
	extractor := takaraTomyExtractorAt(time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC), Limits{MaxItems: 50})
	assert.Equal(t, ttBase+"/items/gacha/calendar/?ym=202612", extractor.calendarURL(extractor.now()))
	assert.Equal(t, ttBase+"/items/gacha/calendar/?ym=202701", extractor.calendarURL(extractor.now().AddDate(0, 1, 0)))
}

func TestTakaraTomyNormalizeURL(t *testing.T) {
	extractor := NewTakaraTomyExtractor(ttBase, Limits{MaxItems: 50})
	assert.Equal(t, "https://example.com/x", extractor.normalizeURL("https://example.com/x"))
	assert.Equal(t, ttBase+"/items/item.html?n=42", extractor.normalizeURL("../../item.html?n=42"))
	assert.Equal(t, ttBase+"/items/item.html?n=7", extractor.normalizeURL("/items/item.html?n=7"))
	assert.Equal(t, ttBase+"/item.html?n=9", extractor.normalizeURL("item.html?n=9"))
}

func TestTakaraTomyFirstCalendarFailureAbortsRun(t *testing.T) {
	session := newFakeSession(takaraTomyPages())
	session.failing[ttBase+"/items/gacha/calendar/?ym=202602"] = true
	extractor := takaraTomyExtractorAt(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), Limits{MaxItems: 50})

	items, err := extractor.Extract(context.Background(), session)
	assert.Nil(t, items)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeRun))
}

func TestTakaraTomySecondCalendarFailureKeepsFirstMonth(t *testing.T) {
	session := newFakeSession(takaraTomyPages())
	session.failing[ttBase+"/items/gacha/calendar/?ym=202603"] = true
	extractor := takaraTomyExtractorAt(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), Limits{MaxItems: 50})

	items, err := extractor.Extract(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRegistry(t *testing.T) {
	bandai := NewBandaiExtractor(bandaiListingURL, Limits{MaxItems: 50})
	takara := NewTakaraTomyExtractor(ttBase, Limits{MaxItems: 50})
	registry := NewRegistry(bandai, takara)

	e, ok := registry.Lookup(catalog.SiteBandai)
	assert.True(t, ok)
	assert.Equal(t, bandai, e)

	_, ok = registry.Lookup("UNKNOWN_SITE")
	assert.False(t, ok)

	assert.Equal(t, []string{catalog.SiteBandai, catalog.SiteTakaraTomy}, registry.Sites())
}
