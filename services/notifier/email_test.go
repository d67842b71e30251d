package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gachahub/internal/catalog"
)

func TestRenderSummary(t *testing.T) {
	price := 300
	release := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	items := []catalog.Item{
		{
			ProductName:  "ドラゴンフィギュア 全5種",
			Manufacturer: catalog.ManufacturerBandai,
			Price:        &price,
			ReleaseDate:  &release,
			SourceURL:    "https://gashapon.jp/products/detail.php?jan_code=1",
		},
		{
			ProductName:  "アニマルマスコット",
			Manufacturer: catalog.ManufacturerTakaraTomy,
		},
	}

	body, err := renderSummary(items, time.Date(2026, 2, 15, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, body, "新商品情報 (2026-02-15)")
	assert.Contains(t, body, "本日の新着: 2件")
	assert.Contains(t, body, "ドラゴンフィギュア 全5種")
	assert.Contains(t, body, "バンダイ")
	assert.Contains(t, body, "タカラトミーアーツ")
	assert.Contains(t, body, "300円")
	assert.Contains(t, body, "2026-02-08")
	assert.Contains(t, body, "https://gashapon.jp/products/detail.php?jan_code=1")

	// Missing price and date get placeholders
	assert.Contains(t, body, "-")
	assert.Contains(t, body, "未定")
}

func TestRenderSummaryEmpty(t *testing.T) {
	body, err := renderSummary(nil, time.Date(2026, 2, 15, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, body, "本日の新着商品はありませんでした。")
	assert.NotContains(t, body, "<table")
}

func TestRenderSummaryEscapesHTML(t *testing.T) {
	items := []catalog.Item{
		{ProductName: `<script>alert("x")</script>`, Manufacturer: "ACME"},
	}

	body, err := renderSummary(items, time.Now())
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.SendNewItemsSummary(nil))
	assert.NoError(t, n.SendTest("someone@example.com"))
}
