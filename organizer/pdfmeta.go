package organizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vanorg/vanorg/pdftext"
)

var (
	headerRe   = regexp.MustCompile(`\b(DDF\d+)\s*·\s*([A-Z]{3},\s*[A-Z]{3}\s+\d{1,2},\s+\d{4})\b`)
	dateOnlyRe = regexp.MustCompile(`\b([A-Z]{3},\s*[A-Z]{3}\s+\d{1,2},\s+\d{4})\b`)
	fileDateRe = regexp.MustCompile(`(\d{2})_(\d{2})_(\d{4})`)

	rowFullRe  = regexp.MustCompile(`^\s*(\d+)\s+([A-Z]-\d+(?:\.\d+)?[A-Z]?)\s+([A-Za-z]+)\s+([0-9A-Za-z]+)\s+(\d+)(?:\s+|$)`)
	rowNoSZRe  = regexp.MustCompile(`^\s*(\d+)\s+([A-Za-z]+)\s+([0-9A-Za-z]+)\s+(\d+)(?:\s+|$)`)
	waveTimeRe = regexp.MustCompile(`\b(\d{1,2}:\d{2}\s*[AP]M)\b`)
)

// defaultRouteCode is used when the PDF header carries no station code.
const defaultRouteCode = "DDF5"

// BagMeta is the sort zone and package count for one printed bag index.
type BagMeta struct {
	SortZone string `json:"sort_zone"`
	Pkgs     int    `json:"pkgs"`
}

// PDFMeta is everything the organizer pulls from the route-sheets PDF.
type PDFMeta struct {
	HeaderTitle string                     `json:"header_title"`
	RouteCode   string                     `json:"route_code"`
	Meta        map[string]map[int]BagMeta `json:"pdf_meta"`   // by route short, then printed index
	Times       map[string]string          `json:"route_time"` // "H.7" -> "11:20 AM"
}

// ParsePDFMeta extracts the header title, per-bag sort zones and wave
// times from the PDF. The result is cached next to the PDF and reused
// while the file's size and mtime are unchanged.
func ParsePDFMeta(pdfPath string, useCache bool) (*PDFMeta, error) {
	if useCache {
		if m := loadPDFCache(pdfPath); m != nil {
			return m, nil
		}
	}

	texts, err := pdftext.PageTexts(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pdfPath, err)
	}

	m := &PDFMeta{
		RouteCode: defaultRouteCode,
		Meta:      map[string]map[int]BagMeta{},
		Times:     map[string]string{},
	}

	dateStr := ""
	if len(texts) > 0 {
		if hm := headerRe.FindStringSubmatch(texts[0]); hm != nil {
			m.RouteCode = hm[1]
			dateStr = strings.ToUpper(hm[2])
		} else if dm := dateOnlyRe.FindStringSubmatch(texts[0]); dm != nil {
			dateStr = strings.ToUpper(dm[1])
		}
	}
	if dateStr == "" {
		dateStr = dateFromFilename(pdfPath)
	}
	m.HeaderTitle = strings.Trim(m.RouteCode+" • "+dateStr, " •")

	for _, text := range texts {
		if !strings.Contains(text, "Sort Zone") || !strings.Contains(text, "Pkgs") {
			continue
		}

		short := routeShortOf(text)
		if short == "" {
			continue
		}

		if _, ok := m.Times[short]; !ok {
			if tm := waveTimeRe.FindStringSubmatch(text); tm != nil {
				m.Times[short] = strings.ToUpper(tm[1])
			}
		}

		byIdx := m.Meta[short]
		if byIdx == nil {
			byIdx = map[int]BagMeta{}
			m.Meta[short] = byIdx
		}

		for _, ln := range strings.Split(text, "\n") {
			if fm := rowFullRe.FindStringSubmatch(ln); fm != nil {
				idx, _ := strconv.Atoi(fm[1])
				pkgs, _ := strconv.Atoi(fm[5])
				byIdx[idx] = BagMeta{SortZone: fm[2], Pkgs: pkgs}
				continue
			}
			if nm := rowNoSZRe.FindStringSubmatch(ln); nm != nil {
				idx, _ := strconv.Atoi(nm[1])
				if _, ok := byIdx[idx]; !ok {
					pkgs, _ := strconv.Atoi(nm[4])
					byIdx[idx] = BagMeta{Pkgs: pkgs}
				}
			}
		}
	}

	if useCache && len(m.Meta) > 0 {
		savePDFCache(pdfPath, m)
	}
	return m, nil
}

// routeShortOf finds the "STG.H.7" marker and strips the prefix. It
// first checks whole lines near the top, then falls back to any token
// on the page.
func routeShortOf(text string) string {
	lines := strings.Split(text, "\n")
	limit := len(lines)
	if limit > 20 {
		limit = 20
	}
	for _, ln := range lines[:limit] {
		if s := strings.TrimSpace(ln); strings.HasPrefix(s, "STG.") {
			return strings.TrimSpace(strings.TrimPrefix(s, "STG."))
		}
	}
	for _, tok := range strings.Fields(text) {
		if strings.HasPrefix(tok, "STG.") {
			return strings.TrimPrefix(tok, "STG.")
		}
	}
	return ""
}

// dateFromFilename recovers the sheet date from an MM_DD_YYYY pattern
// in the file name.
func dateFromFilename(path string) string {
	fm := fileDateRe.FindStringSubmatch(path)
	if fm == nil {
		return ""
	}
	mm, _ := strconv.Atoi(fm[1])
	dd, _ := strconv.Atoi(fm[2])
	yyyy, _ := strconv.Atoi(fm[3])
	if mm < 1 || mm > 12 {
		return ""
	}
	d := time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	return strings.ToUpper(d.Format("Mon, Jan 02, 2006"))
}
