// Package stacker renders the stacked route-sheet PDF: a cover page
// with a linked table of contents, one page per route (bag/overflow
// table above a tote grid) and linked summary pages at the back.
package stacker

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/vanorg/vanorg/routesheet"
)

// ErrNoRoutes reports an input in which no header pages were found.
var ErrNoRoutes = errors.New("no header pages detected (no STG.* + CX*)")

// Progress reports route-level rendering progress. done stays below
// total until every route page is on the canvas.
type Progress func(total, done, current int, stage, detail string)

// Mismatch flags a route whose declared counts disagree with the sums
// computed from its rows.
type Mismatch struct {
	Title            string `json:"title"`
	DeclaredOverflow int    `json:"declared_overflow"`
	ComputedOverflow int    `json:"computed_overflow"`
	DeclaredTotal    int    `json:"declared_total"`
	ComputedTotal    int    `json:"computed_total"`
	OverflowMismatch bool   `json:"overflow_mismatch"`
	TotalMismatch    bool   `json:"total_mismatch"`
	OutputPage       int    `json:"output_page"`
}

// Ranked is a route listed in a summary section with the value it was
// ranked by.
type Ranked struct {
	Value int    `json:"value"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Combined is a route whose sheet spanned several input pages.
type Combined struct {
	Title    string `json:"title"`
	Pages    []int  `json:"pages"` // 1-based input pages
	BagCount int    `json:"bag_count"`
}

// TOCEntry is one cover-page row.
type TOCEntry struct {
	Title     string `json:"title"`
	Page      int    `json:"output_page"`
	TimeLabel string `json:"time_label"`
}

// Result summarizes a finished build.
type Result struct {
	OutputPDF            string     `json:"output_pdf"`
	GroupCount           int        `json:"group_count"`
	Mismatches           []Mismatch `json:"mismatches"`
	RoutesOver30         []Ranked   `json:"routes_over_30"`
	RoutesOver50Overflow []Ranked   `json:"routes_over_50_overflow"`
	Top10HeavyTotals     []Ranked   `json:"top10_heavy_totals"`
	Top10Commercial      []Ranked   `json:"top10_commercial"`
	CombinedRoutes       []Combined `json:"combined_routes"`
	TOCEntries           []TOCEntry `json:"toc_entries"`
	DateLabel            string     `json:"date_label"`
}

// builtRoute carries a parsed route plus everything the renderer and
// the summaries derive from it.
type builtRoute struct {
	route      *routesheet.Route
	rows       []routesheet.Row
	title      string
	inputPages []int
	outputPage int

	bagCount         int // declared, falling back to counted
	declaredOverflow int // declared, falling back to summed
	computedOverflow int
	totalPkgsValue   int
}

// Build parses pageTexts, renders the stacked PDF to outputPDF and
// returns the build summary. dateLabel goes on the cover and every
// route banner.
func Build(pageTexts []string, outputPDF, dateLabel string, progress Progress) (*Result, error) {
	cb := func(total, done, current int, stage, detail string) {
		if progress != nil {
			progress(total, done, current, stage, detail)
		}
	}

	cb(0, 0, 0, "Reading", "Extracting text…")

	groups := routesheet.GroupPages(pageTexts)
	if len(groups) == 0 {
		return nil, ErrNoRoutes
	}

	total := len(groups)
	cb(total, 0, 0, "Processing", fmt.Sprintf("Found %d routes…", total))

	res := &Result{
		OutputPDF:  outputPDF,
		GroupCount: total,
		DateLabel:  dateLabel,
	}

	// Parse every group up front so page numbers are final before the
	// cover renders (link targets need them).
	var built []*builtRoute
	done := 0
	for gi, g := range groups {
		var parts []string
		for _, p := range g {
			parts = append(parts, pageTexts[p])
		}
		combined := strings.TrimSpace(strings.Join(parts, "\n\n"))

		var route *routesheet.Route
		if combined != "" {
			route = routesheet.Parse(combined)
		}
		if route == nil {
			done++
			cb(total, done, gi+1, "Processing", fmt.Sprintf("Skipped unreadable route %d/%d", gi+1, total))
			continue
		}

		b := deriveRoute(route, g)
		b.outputPage = len(built) + 2 // cover is page 1
		built = append(built, b)
	}

	collectSummaries(res, built)

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(marginPt, marginPt, marginPt)

	r := &renderer{pdf: pdf}

	r.renderTOC(dateLabel, res.TOCEntries)

	for i, b := range built {
		cb(total, done, i+1, "Processing", fmt.Sprintf("Route %d/%d…", i+1, total))
		r.renderRoutePage(b, dateLabel)
		done++
		cb(total, done, i+1, "Processing", "Done: "+b.title)
	}

	cb(total, done, done, "Summary", "Building summary & TOC…")
	r.renderSummaryPages(res)

	cb(total, done, done, "Saving", "Writing PDF…")
	if err := pdf.OutputFileAndClose(outputPDF); err != nil {
		return nil, fmt.Errorf("write %s: %w", outputPDF, err)
	}

	cb(total, done, done, "Done", "Complete.")
	return res, nil
}

// deriveRoute assigns overflows and computes the counts the page and
// the summaries need.
func deriveRoute(route *routesheet.Route, group []int) *builtRoute {
	texts, totals := routesheet.AssignOverflows(route.Bags, route.Overflows)
	rows := routesheet.Rows(route.Bags, texts, totals)

	b := &builtRoute{
		route: route,
		rows:  rows,
		title: route.Title(),
	}
	for _, p := range group {
		b.inputPages = append(b.inputPages, p+1)
	}

	b.bagCount = route.DeclaredBags
	if b.bagCount < 0 {
		b.bagCount = len(route.Bags)
	}

	summedOverflow := 0
	for _, o := range route.Overflows {
		summedOverflow += o.Pkgs
	}
	b.declaredOverflow = route.DeclaredOverflow
	if b.declaredOverflow < 0 {
		b.declaredOverflow = summedOverflow
	}

	for _, t := range totals {
		b.computedOverflow += t
	}

	bagPkgs := 0
	for _, bag := range route.Bags {
		bagPkgs += bag.Pkgs
	}
	if route.TotalPkgs >= 0 {
		b.totalPkgsValue = route.TotalPkgs
	} else {
		b.totalPkgsValue = bagPkgs + b.declaredOverflow
	}

	return b
}

// collectSummaries fills the result's TOC entries, mismatch list and
// ranked sections from the built routes.
func collectSummaries(res *Result, built []*builtRoute) {
	var totalsRank, commRank []Ranked

	for _, b := range built {
		route := b.route

		res.TOCEntries = append(res.TOCEntries, TOCEntry{
			Title:     b.title,
			Page:      b.outputPage,
			TimeLabel: route.TimeLabel,
		})

		bagPkgs := 0
		for _, bag := range route.Bags {
			bagPkgs += bag.Pkgs
		}
		sumPlusOverflow := bagPkgs + b.computedOverflow

		overflowMismatch := route.DeclaredOverflow >= 0 && route.DeclaredOverflow != b.computedOverflow
		totalMismatch := route.TotalPkgs >= 0 && route.TotalPkgs != sumPlusOverflow
		if overflowMismatch || totalMismatch {
			res.Mismatches = append(res.Mismatches, Mismatch{
				Title:            b.title,
				DeclaredOverflow: route.DeclaredOverflow,
				ComputedOverflow: b.computedOverflow,
				DeclaredTotal:    route.TotalPkgs,
				ComputedTotal:    sumPlusOverflow,
				OverflowMismatch: overflowMismatch,
				TotalMismatch:    totalMismatch,
				OutputPage:       b.outputPage,
			})
		}

		if len(b.inputPages) > 1 {
			res.CombinedRoutes = append(res.CombinedRoutes, Combined{
				Title:    b.title,
				Pages:    b.inputPages,
				BagCount: b.bagCount,
			})
		}

		if b.bagCount >= 30 {
			res.RoutesOver30 = append(res.RoutesOver30, Ranked{b.bagCount, b.title, b.outputPage})
		}
		if b.declaredOverflow >= 50 {
			res.RoutesOver50Overflow = append(res.RoutesOver50Overflow, Ranked{b.declaredOverflow, b.title, b.outputPage})
		}

		comm := route.CommercialPkgs
		if comm < 0 {
			comm = 0
		}
		totalsRank = append(totalsRank, Ranked{b.totalPkgsValue, b.title, b.outputPage})
		commRank = append(commRank, Ranked{comm, b.title, b.outputPage})
	}

	byValueDesc := func(s []Ranked) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Value != s[j].Value {
				return s[i].Value > s[j].Value
			}
			return s[i].Title < s[j].Title
		}
	}
	sort.Slice(res.RoutesOver30, byValueDesc(res.RoutesOver30))
	sort.Slice(res.RoutesOver50Overflow, byValueDesc(res.RoutesOver50Overflow))
	sort.Slice(totalsRank, byValueDesc(totalsRank))
	sort.Slice(commRank, byValueDesc(commRank))
	sort.Slice(res.CombinedRoutes, func(i, j int) bool {
		return res.CombinedRoutes[i].Pages[0] < res.CombinedRoutes[j].Pages[0]
	})

	if len(totalsRank) > 10 {
		totalsRank = totalsRank[:10]
	}
	if len(commRank) > 10 {
		commRank = commRank[:10]
	}
	res.Top10HeavyTotals = totalsRank
	res.Top10Commercial = commRank
}
