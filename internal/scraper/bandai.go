package scraper

import (
	"context"

	"gachahub/internal/catalog"
	"gachahub/internal/fetch"
	"gachahub/logger"
	errs "gachahub/pkg/errors"
)

const bandaiAttribution = "バンダイガシャポン公式サイトより"

// BandaiExtractor scrapes the Bandai Gashapon product listing. The listing
// page only carries links; every field comes from the per-product detail
// page, so the run is bounded by Limits and paced by the politeness delay.
type BandaiExtractor struct {
	URL    string
	Limits Limits
}

// NewBandaiExtractor creates the Bandai site extractor
func NewBandaiExtractor(url string, limits Limits) *BandaiExtractor {
	return &BandaiExtractor{URL: url, Limits: limits}
}

func (e *BandaiExtractor) Site() string {
	return catalog.SiteBandai
}

func (e *BandaiExtractor) Manufacturer() string {
	return catalog.ManufacturerBandai
}

// Extract fetches the listing, then visits each unique detail link up to
// the per-run cap. A malformed or unfetchable candidate is skipped; only a
// failed listing fetch aborts the run.
func (e *BandaiExtractor) Extract(ctx context.Context, session fetch.Session) ([]catalog.RawItem, error) {
	if err := session.Navigate(ctx, e.URL); err != nil {
		return nil, errs.NewRun(e.Site(), "listing fetch failed", err)
	}

	seen := make(map[string]bool)
	urls := collectLinks(session, "detail.php?jan_code=", seen, nil)
	logger.Info("%s: found %d unique product links", e.Site(), len(urls))

	var items []catalog.RawItem
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

	return items, nil
}

func (e *BandaiExtractor) scrapeDetail(ctx context.Context, session fetch.Session, detailURL string) (*catalog.RawItem, error) {
	if err := session.Navigate(ctx, detailURL); err != nil {
		return nil, errs.NewExtraction(e.Site(), "detail fetch failed", err)
	}

	// Product name comes from the first non-empty h1
	name := ParseName(elementTexts(session, "h1"))
	if name == "" {
		return nil, errs.NewExtraction(e.Site(), "product name not found", nil)
	}

	// Product shots are served from the Bandai CDN
	imageURL := firstImageSrc(session, "bandai-a.akamaihd.net", "/model/")

	body := session.BodyText()
	lineup := ParseLineup(body)

	return &catalog.RawItem{
		Name:         name,
		Manufacturer: e.Manufacturer(),
		ImageURL:     imageURL,
		Price:        ParsePrice(body),
		ReleaseDate:  ParseReleaseDate(body),
		Description:  BuildDescription(bandaiAttribution, lineup),
		LineupInfo:   lineup,
		SourceURL:    detailURL,
	}, nil
}
