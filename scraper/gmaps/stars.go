package gmaps

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/AhmedRagabRG/scraper/browser"
	"github.com/AhmedRagabRG/scraper/models"
)

var (
	labeledRowPattern = regexp.MustCompile(`(?i)(\d)\s*stars?\D*?([\d,]+)\s*reviews?`)
	loneStarPattern   = regexp.MustCompile(`^([1-5])$`)
	loneCountPattern  = regexp.MustCompile(`^([\d,]+)$`)
)

// ExtractStarBreakdown reads the per-star review histogram. Google renders it
// three different ways depending on viewport and experiment bucket, so this
// is a nested fallback chain: labeled rows, then tabular row pairing, then a
// free-text two-pass scan. Whatever tier yields at least one pair wins.
func (e *Engine) ExtractStarBreakdown(ctx context.Context) map[int]int {
	if data := e.starsFromLabeledRows(ctx); len(data) > 0 {
		return data
	}
	if data := e.starsFromTableRows(ctx); len(data) > 0 {
		return data
	}
	return e.starsFromText(ctx)
}

func (e *Engine) starsFromLabeledRows(ctx context.Context) map[int]int {
	refs, err := e.q.FindAll(ctx, `tr[aria-label]`)
	if err != nil {
		return nil
	}

	data := make(map[int]int)
	for _, ref := range refs {
		label, err := e.q.ReadAttribute(ctx, ref, "", "aria-label")
		if err != nil {
			continue
		}
		match := labeledRowPattern.FindStringSubmatch(label)
		if match == nil {
			continue
		}
		stars, _ := strconv.Atoi(match[1])
		count, err := strconv.Atoi(strings.ReplaceAll(match[2], ",", ""))
		if err != nil || stars < 1 || stars > 5 {
			continue
		}
		data[stars] = count
	}
	return data
}

func (e *Engine) starsFromTableRows(ctx context.Context) map[int]int {
	refs, err := e.q.FindAll(ctx, `tr`)
	if err != nil {
		return nil
	}

	data := make(map[int]int)
	for _, ref := range refs {
		first, err := e.q.ReadText(ctx, ref, `td:first-child`)
		if err != nil {
			continue
		}
		last, err := e.q.ReadText(ctx, ref, `td:last-child`)
		if err != nil {
			continue
		}

		starMatch := loneStarPattern.FindStringSubmatch(strings.TrimSpace(first))
		countMatch := loneCountPattern.FindStringSubmatch(strings.TrimSpace(last))
		if starMatch == nil || countMatch == nil {
			continue
		}
		stars, _ := strconv.Atoi(starMatch[1])
		count, err := strconv.Atoi(strings.ReplaceAll(countMatch[1], ",", ""))
		if err != nil || count == 0 {
			continue
		}
		data[stars] = count
	}
	return data
}

// starsFromText pairs a lone digit 1–5 with the nearest following bare
// integer within the next few lines of the page's rendered text.
func (e *Engine) starsFromText(ctx context.Context) map[int]int {
	body, err := e.q.ReadText(ctx, browser.NodeRef{Selector: "body"}, "")
	if err != nil {
		return nil
	}
	return ScanStarPairs(body)
}

// ScanStarPairs is the free-text tier of the star-breakdown chain, split out
// so it can be exercised without a live document.
func ScanStarPairs(text string) map[int]int {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	data := make(map[int]int)
	for i, line := range lines {
		starMatch := loneStarPattern.FindStringSubmatch(line)
		if starMatch == nil {
			continue
		}
		stars, _ := strconv.Atoi(starMatch[1])
		if _, taken := data[stars]; taken {
			continue
		}

		limit := i + 3
		if limit > len(lines) {
			limit = len(lines)
		}
		for j := i + 1; j < limit; j++ {
			countMatch := loneCountPattern.FindStringSubmatch(lines[j])
			if countMatch == nil {
				continue
			}
			count, err := strconv.Atoi(strings.ReplaceAll(countMatch[1], ",", ""))
			if err != nil || count == 0 {
				continue
			}
			data[stars] = count
			break
		}
	}
	return data
}

// applyStarBreakdown copies the histogram onto the record; absent buckets
// stay nil.
func applyStarBreakdown(rec *models.BusinessRecord, data map[int]int) {
	set := func(dst **int, stars int) {
		if count, ok := data[stars]; ok {
			c := count
			*dst = &c
		}
	}
	set(&rec.FiveStar, 5)
	set(&rec.FourStar, 4)
	set(&rec.ThreeStar, 3)
	set(&rec.TwoStar, 2)
	set(&rec.OneStar, 1)
}
