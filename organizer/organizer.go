// Package organizer builds the interactive van-organizer HTML from the
// bag/overflow workbook and the route-sheets PDF. The page is fully
// self-contained: route data is embedded as JSON into a single HTML
// document.
package organizer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed template.html
var htmlTemplate string

// BagDetail is one bag of a route, merged from the workbook row and
// the PDF sort table (matched by printed index).
type BagDetail struct {
	Idx      int    `json:"idx"`
	Bag      string `json:"bag"`
	BagID    string `json:"bag_id"`
	SortZone string `json:"sort_zone"`
	Pkgs     *int   `json:"pkgs"` // nil when the PDF had no matching row
}

// ZoneCount is an overflow zone with its package count.
type ZoneCount struct {
	Zone  string `json:"zone"`
	Count int    `json:"count"`
}

// OverflowRef ties an overflow zone to the 1-based bag it was printed
// under.
type OverflowRef struct {
	Zone   string `json:"zone"`
	Count  int    `json:"count"`
	BagIdx int    `json:"bag_idx"`
}

// CombinedRow is one workbook row as displayed on the combined tab.
type CombinedRow struct {
	Bag   string `json:"bag"`
	Zones string `json:"zones"`
	Total string `json:"total"`
}

// Route is the embedded per-route payload the page renders from.
type Route struct {
	RouteShort    string        `json:"route_short"`
	CX            string        `json:"cx"`
	WaveTime      string        `json:"wave_time"`
	BagsCount     int           `json:"bags_count"`
	OverflowTotal int           `json:"overflow_total"`
	BagsDetail    []BagDetail   `json:"bags_detail"`
	OverflowAgg   []ZoneCount   `json:"overflow_agg"`
	OverflowSeq   []OverflowRef `json:"overflow_seq"`
	Combined      []CombinedRow `json:"combined"`
}

// Title is the display name, "H.7 (CX92)".
func (r *Route) Title() string {
	if r.CX == "" {
		return r.RouteShort
	}
	return r.RouteShort + " (" + r.CX + ")"
}

// Build parses the PDF and workbook and writes the organizer HTML.
// With useCache set, both parse steps keep sidecar JSON caches keyed
// on file size and mtime.
func Build(pdfPath, xlsxPath, outHTML string, useCache bool) error {
	meta, err := ParsePDFMeta(pdfPath, useCache)
	if err != nil {
		return err
	}

	var routes []Route
	var waves map[string]string
	if useCache {
		if c := loadRoutesCache(pdfPath, xlsxPath); c != nil {
			routes, waves = c.Routes, c.WaveMap
		}
	}
	if routes == nil {
		routes, err = ParseWorkbookRoutes(xlsxPath, meta)
		if err != nil {
			return err
		}
		waves = WaveLabels(routes)
		if useCache {
			saveRoutesCache(pdfPath, xlsxPath, &routesCacheData{Routes: routes, WaveMap: waves})
		}
	}

	html, err := RenderHTML(meta.HeaderTitle, routes, waves)
	if err != nil {
		return err
	}
	return os.WriteFile(outHTML, []byte(html), 0o644)
}

// RenderHTML fills the embedded page template with the route payload.
func RenderHTML(headerTitle string, routes []Route, waves map[string]string) (string, error) {
	if routes == nil {
		routes = []Route{}
	}
	if waves == nil {
		waves = map[string]string{}
	}

	routesJSON, err := json.Marshal(routes)
	if err != nil {
		return "", fmt.Errorf("marshal routes: %w", err)
	}
	waveJSON, err := json.Marshal(waves)
	if err != nil {
		return "", fmt.Errorf("marshal waves: %w", err)
	}

	return strings.NewReplacer(
		"__HEADER_TITLE__", headerTitle,
		"__ROUTES_JSON__", string(routesJSON),
		"__WAVE_JSON__", string(waveJSON),
	).Replace(htmlTemplate), nil
}
