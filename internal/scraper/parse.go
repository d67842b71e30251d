package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field parsers are pure functions over extracted page text. They return
// the zero value on no match and never fail.

var (
	// "300円（税込）" with full-width or ASCII parentheses
	priceTaxIncludedRe = regexp.MustCompile(`(\d+)円[（(]税込[）)]`)
	// looser fallback: "300円"
	priceBareRe = regexp.MustCompile(`(\d+)円`)
	// a line that is only a price, used to reject price strings as names
	priceOnlyRe = regexp.MustCompile(`^[■]?(価格)?[：:]?\d+円[（(]?税込?[）)]?$`)

	// "2026年2月 第2週"
	releaseWeekRe = regexp.MustCompile(`(\d{4})年(\d{1,2})月\s*第(\d)週`)
	// "2026年5月", optionally trailed by 未定
	releaseMonthRe = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)

	// "全12種" lineup marker
	lineupRe = regexp.MustCompile(`全(\d+)種`)
)

// ParsePrice extracts a tax-included price from page text. It tries the
// "N円（税込）" form first and falls back to a bare "N円"; nil when neither
// matches.
func ParsePrice(text string) *int {
	if m := priceTaxIncludedRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	if m := priceBareRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	return nil
}

// ParseReleaseDate resolves release-period text to a calendar date.
//
// Tier 1: "2026年2月 第2週" resolves to the first Sunday inside the week's
// 7-day window (week 1 = days 1-7, week 2 = days 8-14, ...).
// Tier 2: "2026年5月" or "2026年5月未定" resolves to the first of the month.
// No match resolves to nil.
func ParseReleaseDate(text string) *time.Time {
	if m := releaseWeekRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		week, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && week >= 1 {
			d := firstSundayOfWeek(year, month, week)
			return &d
		}
	}
	if m := releaseMonthRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			d := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// firstSundayOfWeek returns the first Sunday within the week's window,
// where week N starts at day (N-1)*7+1. Every 7-day window contains one of
// each weekday, but if the scan somehow misses, the window start is
// returned.
func firstSundayOfWeek(year, month, week int) time.Time {
	start := time.Date(year, time.Month(month), (week-1)*7+1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		if d.Weekday() == time.Sunday {
			return d
		}
	}
	return start
}

// ParseName picks the first trimmed non-empty candidate that is neither a
// price string nor one of the known boilerplate labels.
func ParseName(candidates []string, boilerplate ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || priceOnlyRe.MatchString(c) {
			continue
		}
		skip := false
		for _, b := range boilerplate {
			if c == b {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		return c
	}
	return ""
}

// ParseLineup returns the "全N種" lineup marker found in the text, or ""
func ParseLineup(text string) string {
	if m := lineupRe.FindStringSubmatch(text); m != nil {
		return "全" + m[1] + "種"
	}
	return ""
}

// BuildDescription combines the site attribution phrase with an optional
// lineup suffix, e.g. "…公式サイトより - 全12種".
func BuildDescription(attribution, lineup string) string {
	if lineup == "" {
		return attribution
	}
	return attribution + " - " + lineup
}
