package stacker

import (
	"fmt"
	"strings"

	"github.com/vanorg/vanorg/routesheet"
)

// zoneTail strips the warehouse prefix: "B-12.4B" → "12.4B".
func zoneTail(zone string) string {
	if _, tail, found := strings.Cut(zone, "-"); found {
		return tail
	}
	return zone
}

// zoneDisplays returns the zone label shown for each bag. Bags without
// a sort zone inherit the previous bag's zone.
func zoneDisplays(bags []routesheet.Bag) []string {
	out := make([]string, len(bags))
	last := ""
	for i, b := range bags {
		if b.SortZone != "" {
			last = b.SortZone
		}
		if last != "" {
			out[i] = zoneTail(last)
		}
	}
	return out
}

// renderRoutePage draws one route: the bag/overflow table with its
// banner, then the tote grid underneath. Content too tall for the page
// is scaled down to fit rather than split.
func (r *renderer) renderRoutePage(b *builtRoute, dateLabel string) {
	tableH := bannerH + float64(len(b.rows)+2)*cellH + 2*tableMargin

	plan := planTote(r, b.rows, b.route.Bags)

	r.pdf.AddPage()

	availH := pageH - 2*marginPt
	neededH := tableH + gapPt + plan.height
	scale := 1.0
	if neededH > availH && neededH > 0 {
		scale = availH / neededH
	}
	if scale < 1 {
		r.pdf.TransformBegin()
		r.pdf.TransformScale(scale*100, scale*100, pageW/2, marginPt)
	}

	r.renderTable(b, dateLabel, marginPt, marginPt)
	r.renderTote(plan, b, marginPt, marginPt+tableH+gapPt)

	if scale < 1 {
		r.pdf.TransformEnd()
	}
}

// tableCols sizes the three columns. The side columns grow with their
// widest content up to a cap, the middle takes the rest but never less
// than a minimum.
func (r *renderer) tableCols(b *builtRoute) [3]float64 {
	x := marginPt + tableMargin
	right := marginPt + contentW - tableMargin

	padLR := px(10)
	zoneGap := px(6)
	pkgGap := px(6)
	minMid := px(520)
	minSide := px(240)
	targetMid := px(120)
	maxSide := (right - x - minMid) / 2
	if maxSide < 0 {
		maxSide = 0
	}

	zones := zoneDisplays(b.route.Bags)

	maxW := 0.0
	for i, row := range b.rows {
		w := r.width(row.Bag, fsTable)
		if i < len(zones) && zones[i] != "" {
			w += r.width(zones[i], fsZone) + zoneGap
		}
		if i < len(b.route.Bags) && b.route.Bags[i].SortZone != "" {
			w += r.width(fmt.Sprintf(" (%d)", b.route.Bags[i].Pkgs), fsTotePkgs) + pkgGap
		}
		w += padLR * 2
		if w > maxW {
			maxW = w
		}
		if maxW >= maxSide {
			maxW = maxSide
			break
		}
	}

	side := maxW
	if side > maxSide {
		side = maxSide
	}
	if (right-x)-2*minSide >= targetMid && side < minSide {
		side = minSide
	}
	mid := (right - x) - 2*side

	if mid < targetMid {
		maxSideForTarget := ((right - x) - targetMid) / 2
		if maxSideForTarget < 0 {
			maxSideForTarget = 0
		}
		if side > maxSideForTarget {
			side = maxSideForTarget
		}
		if (right-x)-2*minSide >= targetMid && side < minSide {
			side = minSide
		}
		mid = (right - x) - 2*side
	}

	return [3]float64{side, mid, side}
}

func (r *renderer) renderTable(b *builtRoute, dateLabel string, ox, oy float64) {
	route := b.route

	// Banner.
	r.fill(colBannerBg)
	r.pdf.Rect(ox, oy, contentW, bannerH, "F")

	left := ""
	switch {
	case dateLabel != "" && route.TimeLabel != "":
		left = fmt.Sprintf("%s [%s]", dateLabel, route.TimeLabel)
	case dateLabel != "":
		left = dateLabel
	}
	if left != "" {
		r.textLM(ox+px(12), oy+bannerH/2, left, fsDate, colMetaGrey)
	}
	r.textMM(ox+contentW/2, oy+bannerH/2, b.title, fsBanner, colBlack)
	if route.Style != "" {
		r.textRM(ox+contentW-px(12), oy+bannerH/2, strings.ToUpper(route.Style), fsStyleTag, colMetaGrey)
	}

	x := ox + tableMargin
	right := ox + contentW - tableMargin
	y0 := oy + bannerH + tableMargin
	cols := r.tableCols(b)

	r.stroke(colBlack)
	r.pdf.SetLineWidth(px(2))

	// Top summary row.
	top, bot := y0, y0+cellH
	r.pdf.Rect(x, top, right-x, cellH, "D")
	r.textLM(x+px(10), (top+bot)/2, fmt.Sprintf("%d bags", b.bagCount), fsSummary, colRoyalBlue)
	r.textRM(right-px(10), (top+bot)/2, fmt.Sprintf("%d overflow", b.declaredOverflow), fsSummary, colRoyalBlue)
	r.stroke(colRoyalBlue)
	r.pdf.SetLineWidth(px(5))
	r.pdf.Line(x, bot, right, bot)

	zones := zoneDisplays(route.Bags)

	for i, row := range b.rows {
		top = y0 + float64(i+1)*cellH
		bot = top + cellH

		// Three teal rows, three white rows, repeating.
		tealBlock := (i/3)%2 == 0

		if tealBlock {
			r.fill(colRowFillTeal)
		} else {
			r.fill(colWhite)
		}
		r.stroke(colBlack)
		r.pdf.SetLineWidth(px(2))
		r.pdf.Rect(x, top, right-x, cellH, "FD")

		// Divider under each 3-row block.
		if (i+1)%3 == 0 {
			div := colDividerGrey
			if tealBlock {
				div = colDividerTeal
			}
			r.fill(div)
			r.pdf.Rect(x+px(2), bot-rowDividerH, right-x-2*px(2), rowDividerH, "F")
		}

		ym := (top + bot) / 2

		// Bag column: inherited zone tag, label, red package count.
		startX := x + px(10)
		if i < len(zones) && zones[i] != "" {
			r.textLM(startX, ym, zones[i], fsZone, colMetaGrey)
			startX += r.width(zones[i], fsZone) + px(6)
		}
		r.textLM(startX, ym, row.Bag, fsTable, colBlack)
		if i < len(route.Bags) && route.Bags[i].SortZone != "" {
			pkgTxt := fmt.Sprintf(" (%d)", route.Bags[i].Pkgs)
			r.textLM(startX+r.width(row.Bag, fsTable)+px(6), ym, pkgTxt, fsTotePkgs, colBrightRed)
		}

		// Overflow zones column, centered, 99.* tags in purple.
		if row.Zones != "" {
			toks := splitZoneList(row.Zones)
			type seg struct {
				text string
				c    rgb
			}
			var segs []seg
			totalW := 0.0
			for ti, tok := range toks {
				text := tok
				if ti > 0 {
					text = "; " + tok
				}
				c := colBlack
				if routesheet.Is99Tag(tok) {
					c = colPurple
				}
				segs = append(segs, seg{text, c})
				totalW += r.width(text, fsTable)
			}
			sx := x + cols[0] + (cols[1]-totalW)/2
			if sx < x+cols[0]+px(4) {
				sx = x + cols[0] + px(4)
			}
			for _, s := range segs {
				r.textLM(sx, ym, s.text, fsTable, s.c)
				sx += r.width(s.text, fsTable)
			}
		}

		// Overflow total column, right-aligned.
		if row.Total != "" {
			r.textRM(x+cols[0]+cols[1]+cols[2]-px(10), ym, row.Total, fsTable, colBlack)
		}
	}

	// Bottom totals row.
	brTop := y0 + float64(len(b.rows)+1)*cellH
	r.stroke(colBlack)
	r.pdf.SetLineWidth(px(4))
	r.pdf.Rect(x, brTop, right-x, cellH, "D")
	if route.CommercialPkgs >= 0 {
		r.textLM(x+px(10), brTop+cellH/2, fmt.Sprintf("%d Commercial", route.CommercialPkgs), fsTable, colBrightRed)
	}
	if route.TotalPkgs >= 0 {
		r.textRM(right-px(10), brTop+cellH/2, fmt.Sprintf("%d Total", route.TotalPkgs), fsTable, colBrightRed)
	}

	// Outer border.
	r.pdf.SetLineWidth(px(2))
	r.pdf.Rect(x, y0, right-x, float64(len(b.rows)+2)*cellH, "D")
}

// splitZoneList splits a joined overflow label list on ";" and "|".
func splitZoneList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' }) {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
