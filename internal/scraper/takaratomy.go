package scraper

import (
	"context"
	"strings"
	"time"

	"gachahub/internal/catalog"
	"gachahub/internal/fetch"
	"gachahub/logger"
	errs "gachahub/pkg/errors"
)

const (
	takaraTomyAttribution = "タカラトミーアーツ公式サイトより"

	// h2 label the detail pages use for their info block, never a name
	takaraTomyInfoLabel = "商品情報"
)

// TakaraTomyExtractor scrapes the Takara Tomy Arts release calendar for the
// current and the next month. Detail URLs are deduplicated across both
// calendar pages, and the per-run cap spans the whole run.
type TakaraTomyExtractor struct {
	BaseURL string
	Limits  Limits

	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewTakaraTomyExtractor creates the Takara Tomy Arts extractor
func NewTakaraTomyExtractor(baseURL string, limits Limits) *TakaraTomyExtractor {
	return &TakaraTomyExtractor{BaseURL: strings.TrimRight(baseURL, "/"), Limits: limits, now: time.Now}
}

func (e *TakaraTomyExtractor) Site() string {
	return catalog.SiteTakaraTomy
}

func (e *TakaraTomyExtractor) Manufacturer() string {
	return catalog.ManufacturerTakaraTomy
}

// calendarURL builds the monthly calendar URL, e.g. ?ym=202602
func (e *TakaraTomyExtractor) calendarURL(t time.Time) string {
	return e.BaseURL + "/items/gacha/calendar/?ym=" + t.Format("200601")
}

// Extract walks this month's and next month's calendars. A failed fetch of
// the first calendar aborts the run; a failed second calendar only loses
// that month.
func (e *TakaraTomyExtractor) Extract(ctx context.Context, session fetch.Session) ([]catalog.RawItem, error) {
	now := e.now()
	pages := []string{
		e.calendarURL(now),
		e.calendarURL(now.AddDate(0, 1, 0)),
	}

	seen := make(map[string]bool)
	var items []catalog.RawItem

	for i, pageURL := range pages {
		if len(items) >= e.Limits.MaxItems || ctx.Err() != nil {
			break
		}

		if err := session.Navigate(ctx, pageURL); err != nil {
			if i == 0 {
				return nil, errs.NewRun(e.Site(), "calendar fetch failed", err)
			}
			logger.Warn("%s: skipping calendar page %s: %v", e.Site(), pageURL, err)
			continue
		}

		urls := collectLinks(session, "item.html?n=", seen, e.normalizeURL)
		logger.Info("%s: found %d unique product links on %s", e.Site(), len(urls), pageURL)

		for _, detailURL := range urls {
			if len(items) >= e.Limits.MaxItems {
				logger.Info("%s: reached max item limit (%d), stopping", e.Site(), e.Limits.MaxItems)
				break
			}
			if ctx.Err() != nil {
				break
			}

			if len(items) > 0 {
				e.Limits.politenessDelay(ctx)
			}

			item, err := e.scrapeDetail(ctx, session, detailURL)
			if err != nil {
				logger.Warn("%s: skipping candidate %s: %v", e.Site(), detailURL, err)
				continue
			}
			items = append(items, *item)

			if len(items)%10 == 0 {
				logger.Info("%s: progress, %d items scraped", e.Site(), len(items))
			}
		}
	}

	return items, nil
}

// normalizeURL resolves the calendar's relative detail links.
// "../../item.html?n=XXX" is relative to /items/gacha/calendar/.
func (e *TakaraTomyExtractor) normalizeURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if idx := strings.Index(href, "../../item.html"); idx >= 0 {
		if q := strings.Index(href, "?"); q >= 0 {
			return e.BaseURL + "/items/item.html" + href[q:]
		}
	}
	if strings.HasPrefix(href, "/") {
		return e.BaseURL + href
	}
	return e.BaseURL + "/" + href
}

func (e *TakaraTomyExtractor) scrapeDetail(ctx context.Context, session fetch.Session, detailURL string) (*catalog.RawItem, error) {
	if err := session.Navigate(ctx, detailURL); err != nil {
		return nil, errs.NewExtraction(e.Site(), "detail fetch failed", err)
	}

	// Product name is the first h2 that is not the info-block label
	name := ParseName(elementTexts(session, "h2"), takaraTomyInfoLabel)
	if name == "" {
		return nil, errs.NewExtraction(e.Site(), "product name not found", nil)
	}

	imageURL := firstImageSrc(session, "/upfiles/products/", "_b.jpg")
	if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
		imageURL = e.BaseURL + imageURL
	}

	body := session.BodyText()
	lineup := ParseLineup(body)

	return &catalog.RawItem{
		Name:         name,
		Manufacturer: e.Manufacturer(),
		ImageURL:     imageURL,
		Price:        ParsePrice(body),
		ReleaseDate:  ParseReleaseDate(body),
		Description:  BuildDescription(takaraTomyAttribution, lineup),
		LineupInfo:   lineup,
		SourceURL:    detailURL,
	}, nil
}
