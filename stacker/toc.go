package stacker

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var hhmmRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// waveLabel normalizes a route's time label into its wave header,
// e.g. "11:20 AM" → "Wave: 11:20".
func waveLabel(timeLabel string) string {
	m := hhmmRe.FindStringSubmatch(timeLabel)
	if m == nil {
		return "Wave: ??:??"
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("Wave: %02d:%02d", hh, mm)
}

// waveSortKey orders entries by wave time, unknown times last.
func waveSortKey(e TOCEntry) (int, int, string) {
	m := hhmmRe.FindStringSubmatch(e.TimeLabel)
	if m == nil {
		return 999, 99, e.Title
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return hh, mm, e.Title
}

var naturalRe = regexp.MustCompile(`\d+|\D+`)

// naturalLess compares strings with embedded numbers compared
// numerically, so "H.9" sorts before "H.10".
func naturalLess(a, b string) bool {
	pa := naturalRe.FindAllString(a, -1)
	pb := naturalRe.FindAllString(b, -1)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, aIsNum := atoiAll(pa[i])
		nb, bIsNum := atoiAll(pb[i])
		switch {
		case aIsNum && bIsNum:
			if na != nb {
				return na < nb
			}
		case aIsNum != bIsNum:
			// Non-numeric chunks sort before numeric ones.
			return bIsNum
		default:
			la, lb := strings.ToLower(pa[i]), strings.ToLower(pb[i])
			if la != lb {
				return la < lb
			}
		}
	}
	return len(pa) < len(pb)
}

func atoiAll(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// tocItemLess orders routes inside a wave section: titles starting
// with a letter first, then natural order.
func tocItemLess(a, b TOCEntry) bool {
	aAlpha := startsAlpha(a.Title)
	bAlpha := startsAlpha(b.Title)
	if aAlpha != bAlpha {
		return aAlpha
	}
	return naturalLess(a.Title, b.Title)
}

func startsAlpha(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

type waveBlock struct {
	label string
	items []TOCEntry
}

// groupWaves sorts entries by wave and groups them, keeping waves in
// first-appearance order after the time sort.
func groupWaves(entries []TOCEntry) []waveBlock {
	sorted := make([]TOCEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		hi, mi, ti := waveSortKey(sorted[i])
		hj, mj, tj := waveSortKey(sorted[j])
		if hi != hj {
			return hi < hj
		}
		if mi != mj {
			return mi < mj
		}
		return ti < tj
	})

	var blocks []waveBlock
	index := map[string]int{}
	for _, e := range sorted {
		label := waveLabel(e.TimeLabel)
		i, ok := index[label]
		if !ok {
			i = len(blocks)
			index[label] = i
			blocks = append(blocks, waveBlock{label: label})
		}
		blocks[i].items = append(blocks[i].items, e)
	}
	for i := range blocks {
		items := blocks[i].items
		sort.SliceStable(items, func(a, b int) bool { return tocItemLess(items[a], items[b]) })
	}
	return blocks
}

// tocLayout is the grid sizing picked for the cover page.
type tocLayout struct {
	rowSize  float64
	waveSize float64
	lineStep float64
	headStep float64
	padTop   float64
	rowH     []float64
	rows     int
	gridH    float64
}

const tocCols = 3

// fitTOC shrinks the row font until every wave block fits its column
// and the grid fits the available height.
func (r *renderer) fitTOC(blocks []waveBlock, colW, availH float64) tocLayout {
	gapY := px(22)

	measure := func(rowSize float64) (tocLayout, bool) {
		waveSize := rowSize * 1.22
		if floor := px(24); waveSize < floor {
			waveSize = floor
		}
		l := tocLayout{
			rowSize:  rowSize,
			waveSize: waveSize,
			lineStep: lineH(rowSize) + px(6),
			headStep: lineH(waveSize) + px(8),
			padTop:   px(6),
		}

		heights := make([]float64, len(blocks))
		for i, b := range blocks {
			n := len(b.items)
			if n < 1 {
				n = 1
			}
			heights[i] = l.padTop + l.headStep + float64(n)*l.lineStep + px(4)
		}

		l.rows = (len(blocks) + tocCols - 1) / tocCols
		l.rowH = make([]float64, l.rows)
		for row := 0; row < l.rows; row++ {
			for c := 0; c < tocCols; c++ {
				i := row*tocCols + c
				if i < len(heights) && heights[i] > l.rowH[row] {
					l.rowH[row] = heights[i]
				}
			}
		}
		l.gridH = gapY * float64(l.rows-1)
		for _, h := range l.rowH {
			l.gridH += h
		}
		if l.gridH > availH {
			return l, false
		}

		for c := 0; c < tocCols; c++ {
			maxW := 0.0
			for i, b := range blocks {
				if i%tocCols != c {
					continue
				}
				if w := r.width(b.label, waveSize); w > maxW {
					maxW = w
				}
				for _, e := range b.items {
					if w := r.width(e.Title, rowSize); w > maxW {
						maxW = w
					}
				}
			}
			if maxW > colW {
				return l, false
			}
		}
		return l, true
	}

	for rowSize := px(34); rowSize > px(16); rowSize -= px(1) {
		if l, ok := measure(rowSize); ok {
			return l
		}
	}
	l, _ := measure(px(22))
	if l.gridH > availH {
		l.gridH = availH
	}
	return l
}

// renderTOC draws the cover: title block, then wave sections in three
// centered columns with linked route titles.
func (r *renderer) renderTOC(dateLabel string, entries []TOCEntry) {
	r.pdf.AddPage()

	xc := pageW / 2
	y := px(120)

	r.textMA(xc, y, "Route Sheets", px(72), colBlack)
	y += px(82)
	r.textMA(xc, y, dateLabel, px(34), colBlack)
	y += px(46)
	r.textMA(xc, y, fmt.Sprintf("(%d Routes)", len(entries)), px(28), rgb{60, 60, 60})
	y += px(40)

	r.stroke(colBlack)
	r.pdf.SetLineWidth(px(3))
	r.pdf.Line(marginPt, y, pageW-marginPt, y)
	y += px(22)

	blocks := groupWaves(entries)
	if len(blocks) == 0 {
		return
	}

	gapX := px(36)
	gapY := px(22)
	colW := (contentW - gapX*(tocCols-1)) / tocCols
	bottomLimit := pageH - px(110)
	availH := bottomLimit - y
	if availH < px(10) {
		availH = px(10)
	}

	l := r.fitTOC(blocks, colW, availH)

	extra := availH - l.gridH
	if extra < 0 {
		extra = 0
	}
	curY := y + extra*0.5

	idx := 0
	for row := 0; row < l.rows; row++ {
		if curY+l.rowH[row] > bottomLimit {
			break
		}
		for c := 0; c < tocCols && idx < len(blocks); c++ {
			b := blocks[idx]
			idx++

			xm := marginPt + float64(c)*(colW+gapX) + colW/2
			yy := curY + l.padTop

			r.textMA(xm, yy, b.label, l.waveSize, colBlack)
			yy += l.headStep

			for _, e := range b.items {
				w := r.width(e.Title, l.rowSize)
				r.linkedText(xm-w/2, yy, e.Title, l.rowSize, e.Page)
				yy += l.lineStep
			}
		}
		curY += l.rowH[row] + gapY
	}
}
