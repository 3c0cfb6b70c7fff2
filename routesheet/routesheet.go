// Package routesheet parses the text of route-sheet PDF pages into
// bags, overflow zones and per-route package counts, and assigns
// overflow zones to bags.
package routesheet

import "regexp"

// Bag is one bag row from the sort table, ordered by printed index.
type Bag struct {
	Index    int
	SortZone string // empty when the row carries no sort zone
	Label    string // e.g. "Yellow 0123", leading zeros preserved
	Pkgs     int
}

// Overflow is one overflow row from the sort table.
type Overflow struct {
	Zone string
	Pkgs int
}

// Route is the parsed content of one route (one page group).
//
// Declared and summary counts are -1 when the sheet does not state them.
type Route struct {
	Short     string // "H.7"
	Vehicle   string // "CX92"
	Style     string
	TimeLabel string // "11:20 AM"

	Bags      []Bag
	Overflows []Overflow

	DeclaredBags     int
	DeclaredOverflow int
	CommercialPkgs   int
	TotalPkgs        int

	// Warnings collects rows that looked like data but did not parse.
	Warnings []string
}

// Title is the display name used in banners, TOC and summaries.
func (r *Route) Title() string {
	switch {
	case r.Short != "" && r.Vehicle != "":
		return r.Short + " (" + r.Vehicle + ")"
	case r.Short != "":
		return r.Short
	default:
		return r.Vehicle
	}
}

// BagColors is the set of color words that identify a bag row.
var BagColors = map[string]bool{
	"Yellow": true, "Green": true, "Orange": true, "Black": true, "Navy": true,
	"Blue": true, "Brown": true, "Grey": true, "Gray": true, "Purple": true,
}

var (
	zoneRe  = regexp.MustCompile(`^(?:[A-Z]-[0-9.]*[A-Z]+|99\.[A-Z0-9]+)$`)
	splitRe = regexp.MustCompile(`^([0-9.]*)([A-Z]+)$`)
	timeRe  = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:AM|PM)\b`)
	stgRe   = regexp.MustCompile(`STG\.([A-Z]+\.\d+)`)
	cxRe    = regexp.MustCompile(`(?:CX|TX)\d{1,3}`)
	dateRe  = regexp.MustCompile(`\b(?:MON|TUE|WED|THU|FRI|SAT|SUN),\s+[A-Z]{3}\s+\d{1,2},\s+\d{4}\b`)

	declaredRe   = regexp.MustCompile(`(\d+)\s+bags?\s+(\d+)\s+over`)
	digitsOnlyRe = regexp.MustCompile(`[^\d]`)
)

// IsZone reports whether token looks like a sort or overflow zone.
func IsZone(token string) bool {
	return zoneRe.MatchString(token)
}

// DateLabel scans the first pages for an uppercase "DOW, MON D, YYYY"
// date. It returns "DATE UNKNOWN" when none is found.
func DateLabel(pageTexts []string) string {
	limit := len(pageTexts)
	if limit > 4 {
		limit = 4
	}
	for _, t := range pageTexts[:limit] {
		if m := dateRe.FindString(toUpper(t)); m != "" {
			return m
		}
	}
	return "DATE UNKNOWN"
}
