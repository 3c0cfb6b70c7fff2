package stacker

import (
	"fmt"
	"strings"
)

// summaryWriter paginates the back-of-book sections, repeating the
// current section header when a section spills onto a new page.
type summaryWriter struct {
	r       *renderer
	y       float64
	section string
}

var (
	sumXLeft  = marginPt
	sumXMid   = marginPt + contentW*0.62
	sumXRight = pageW - marginPt

	sumBodySize  = px(24)
	sumLabelSize = px(18)
	sumRowStep   = px(26)
	sumHeadStep  = px(44)
	sumGuard     = px(80)
)

func (w *summaryWriter) startPage() {
	w.r.pdf.AddPage()
	w.r.textRA(sumXRight, px(46), "Pg", sumLabelSize, rgb{90, 90, 90})
	w.y = px(70)
}

func (w *summaryWriter) ensure(needed float64, repeatSection bool) {
	if w.y+needed > pageH-sumGuard {
		w.startPage()
		if repeatSection && w.section != "" {
			w.r.textLA(sumXLeft, w.y, w.section, fsBanner, colBlack)
			w.y += sumHeadStep
		}
	}
}

func (w *summaryWriter) header(title string) {
	w.ensure(sumHeadStep+px(12), false)
	w.section = title
	w.r.textLA(sumXLeft, w.y, title, fsBanner, colBlack)
	w.y += sumHeadStep + px(6)
}

func (w *summaryWriter) row(route, metric string, page int, c rgb) {
	w.ensure(sumRowStep, true)
	w.r.linkedText(sumXLeft, w.y, route, sumBodySize, page)
	w.r.textLA(sumXMid, w.y, metric, sumBodySize, c)
	w.r.textRA(sumXRight, w.y, fmt.Sprintf("%d", page), sumBodySize, c)
	w.y += sumRowStep
}

// mismatchMetric is the declared-vs-computed label on the verification
// page. ASCII only: the core fonts are cp1252, so U+2192 and friends
// would come out as mojibake.
func mismatchMetric(m Mismatch) string {
	var parts []string
	if m.OverflowMismatch {
		parts = append(parts, fmt.Sprintf("Overflow %d->%d", m.DeclaredOverflow, m.ComputedOverflow))
	}
	if m.TotalMismatch {
		parts = append(parts, fmt.Sprintf("Total %d->%d", m.DeclaredTotal, m.ComputedTotal))
	}
	if len(parts) == 0 {
		return "Mismatch"
	}
	return strings.Join(parts, " | ")
}

// renderSummaryPages appends the verification and ranked-route
// sections. Every route name links back to its page.
func (r *renderer) renderSummaryPages(res *Result) {
	w := &summaryWriter{r: r}
	w.startPage()

	w.header("Verification")
	if len(res.Mismatches) > 0 {
		for _, m := range res.Mismatches {
			w.row(m.Title, mismatchMetric(m), m.OutputPage, colMismatch)
		}
		w.y += px(12)
	} else {
		w.ensure(sumHeadStep, false)
		r.textLA(sumXLeft, w.y, "OK (NO MISMATCHES)", sumBodySize, colOK)
		w.y += sumHeadStep
	}

	w.header("Routes with 30+ Bags")
	for _, e := range res.RoutesOver30 {
		w.row(e.Title, fmt.Sprintf("%d bags", e.Value), e.Page, colBlack)
	}
	w.y += px(12)

	w.header("Routes with 50+ Overflow")
	for _, e := range res.RoutesOver50Overflow {
		w.row(e.Title, fmt.Sprintf("%d overflow", e.Value), e.Page, colBlack)
	}
	w.y += px(12)

	w.header("Routes with Heaviest Package Counts")
	for _, e := range res.Top10HeavyTotals {
		w.row(e.Title, fmt.Sprintf("%d total", e.Value), e.Page, colBlack)
	}
	w.y += px(12)

	w.header("Routes with Heaviest Commercial")
	for _, e := range res.Top10Commercial {
		w.row(e.Title, fmt.Sprintf("%d commercial", e.Value), e.Page, colBlack)
	}
}
