package stacker

import (
	"math"
	"strconv"
	"strings"

	"github.com/vanorg/vanorg/routesheet"
)

// chip is one overflow tag rendered inside a tote tile.
type chip struct {
	text string
	size float64 // font size after shrinking to fit
	h    float64
	is99 bool
}

// totePlan is the measured tote grid layout. Tiles fill right to left,
// three rows per column, so the grid reads in pick order.
type totePlan struct {
	n      int
	cols   int
	tileW  float64
	baseH  float64
	colX   []float64
	pos    [][2]int // tile index -> (col, row)
	rowH   [toteRows]float64
	rowY   [toteRows]float64
	chips  [][]chip
	zones  []string
	height float64
}

// measureChip shrinks the tag font until the text fits the tile width.
func measureChip(r *renderer, text string, maxW float64) chip {
	c := chip{text: strings.TrimSpace(text), is99: routesheet.Is99Tag(text)}
	size := fsToteTag
	for size >= fsToteTagMin {
		if r.width(c.text, size)+px(12) <= maxW {
			break
		}
		size -= px(1)
	}
	if size < fsToteTagMin {
		size = fsToteTagMin
	}
	c.size = size
	c.h = capH(size) + px(8)
	return c
}

func planTote(r *renderer, rows []routesheet.Row, bags []routesheet.Bag) *totePlan {
	p := &totePlan{n: len(rows), zones: zoneDisplays(bags)}
	if p.n == 0 {
		p.height = px(10)
		return p
	}

	padX, padY := px(6), px(8)
	p.cols = int(math.Ceil(float64(p.n) / toteRows))
	innerW := contentW - float64(p.cols-1)*padX
	p.tileW = innerW / float64(p.cols)
	p.baseH = p.tileW * 0.55

	p.colX = make([]float64, p.cols)
	for i := range p.colX {
		p.colX[i] = float64(i) * (p.tileW + padX)
	}

	maxChipW := p.tileW - 2*px(6)
	heights := make([]float64, p.n)
	p.chips = make([][]chip, p.n)
	for i, row := range rows {
		var chips []chip
		stackH := 0.0
		for _, tok := range splitZoneList(row.Zones) {
			c := measureChip(r, tok, maxChipW)
			chips = append(chips, c)
			stackH += c.h
		}
		if len(chips) > 0 {
			stackH += px(4) * float64(len(chips)-1)
		}
		h := p.baseH + stackH + px(10)
		if len(chips) > 0 {
			h += px(4)
		}
		heights[i] = h
		p.chips[i] = chips
	}

	for col := p.cols - 1; col >= 0; col-- {
		for row := 0; row < toteRows; row++ {
			p.pos = append(p.pos, [2]int{col, row})
		}
	}

	for i, h := range heights {
		if i >= len(p.pos) {
			break
		}
		row := p.pos[i][1]
		if h > p.rowH[row] {
			p.rowH[row] = h
		}
	}

	for row := 1; row < toteRows; row++ {
		p.rowY[row] = p.rowY[row-1] + p.rowH[row-1] + padY
	}
	p.height = p.rowH[0] + p.rowH[1] + p.rowH[2] + padY*(toteRows-1)
	return p
}

func tileColor(label string) rgb {
	base := ""
	if f := strings.Fields(label); len(f) > 0 {
		base = strings.ToLower(f[0])
	}
	if c, ok := bagColors[base]; ok {
		return c
	}
	return colTileFallback
}

func (r *renderer) renderTote(p *totePlan, b *builtRoute, ox, oy float64) {
	for i := 0; i < p.n; i++ {
		col, row := p.pos[i][0], p.pos[i][1]
		x0 := ox + p.colX[col]
		y0 := oy + p.rowY[row]
		tileH := p.rowH[row]

		bg := tileColor(b.rows[i].Bag)
		r.fill(bg)
		r.stroke(colBlack)
		r.pdf.SetLineWidth(px(2))
		r.pdf.Rect(x0, y0, p.tileW, tileH, "FD")

		// Big bag number, centered, with a halo for contrast.
		num := b.rows[i].Bag
		if f := strings.Fields(num); len(f) > 0 {
			num = f[len(f)-1]
		}
		numFill, haloFill := colBlack, colWhite
		if luminance(bg) < 140 {
			numFill, haloFill = colWhite, colBlack
		}
		numX := x0 + p.tileW/2
		numY := y0 + p.baseH/2 + px(14)
		nw := r.width(num, fsToteNum)
		nh := capH(fsToteNum)
		r.halo(numX-nw/2, numY-nh/2, nw, nh, px(3), haloFill)
		r.textMM(numX, numY, num, fsToteNum, numFill)

		// Top-left inherited zone.
		if i < len(p.zones) && p.zones[i] != "" {
			z := p.zones[i]
			zw := r.width(z, fsTotePkgs)
			r.halo(x0+px(6), y0+px(4), zw, capH(fsTotePkgs), px(1), colWhite)
			r.textLA(x0+px(6), y0+px(4), z, fsTotePkgs, rgb{70, 70, 70})
		}

		// Top-right package count, only for rows with their own zone.
		if i < len(b.route.Bags) && b.route.Bags[i].SortZone != "" {
			pkTxt := strconv.Itoa(b.route.Bags[i].Pkgs)
			pw := r.width(pkTxt, fsTotePkgs)
			r.halo(x0+p.tileW-px(6)-pw, y0+px(4), pw, capH(fsTotePkgs), px(1), colWhite)
			r.textRA(x0+p.tileW-px(6), y0+px(4), pkTxt, fsTotePkgs, colBrightRed)
		}

		// Overflow chips, bottom-aligned but never rising into the
		// number zone.
		chips := p.chips[i]
		if len(chips) == 0 {
			continue
		}
		stackH := px(4) * float64(len(chips)-1)
		for _, c := range chips {
			stackH += c.h
		}
		cy := y0 + tileH - px(10) - stackH
		if floor := y0 + p.baseH + px(8); cy < floor {
			cy = floor
		}
		chipW := p.tileW - 2*px(6)
		for _, c := range chips {
			bg, fg := colChipGrey, colBlack
			if c.is99 {
				bg, fg = colLavender, colPurple
			}
			r.fill(bg)
			r.pdf.RoundedRect(x0+px(6), cy, chipW, c.h, px(6), "1234", "F")
			r.textMM(x0+px(6)+chipW/2, cy+c.h/2, c.text, c.size, fg)
			cy += c.h + px(4)
		}
	}
}
