package stacker

import "github.com/go-pdf/fpdf"

// renderer wraps the document with small anchored-text helpers. The
// core font carries no stroke support, so halos are drawn as padded
// background rectangles behind the text.
type renderer struct {
	pdf *fpdf.Fpdf

	// links caches one internal link id per target page.
	links map[int]int
}

func (r *renderer) fill(c rgb)   { r.pdf.SetFillColor(c.r, c.g, c.b) }
func (r *renderer) stroke(c rgb) { r.pdf.SetDrawColor(c.r, c.g, c.b) }
func (r *renderer) color(c rgb)  { r.pdf.SetTextColor(c.r, c.g, c.b) }

func (r *renderer) font(size float64) {
	r.pdf.SetFont("Helvetica", "B", size)
}

func (r *renderer) width(s string, size float64) float64 {
	r.font(size)
	return r.pdf.GetStringWidth(s)
}

// Approximate cap height and full line height of the core font.
func capH(size float64) float64  { return size * 0.72 }
func lineH(size float64) float64 { return size * 0.95 }

// textLM draws s left-aligned, vertically centered on ym.
func (r *renderer) textLM(x, ym float64, s string, size float64, c rgb) {
	r.font(size)
	r.color(c)
	r.pdf.Text(x, ym+capH(size)/2, s)
}

// textRM draws s right-aligned against x, vertically centered on ym.
func (r *renderer) textRM(x, ym float64, s string, size float64, c rgb) {
	r.textLM(x-r.width(s, size), ym, s, size, c)
}

// textMM draws s centered on (xc, ym).
func (r *renderer) textMM(xc, ym float64, s string, size float64, c rgb) {
	r.textLM(xc-r.width(s, size)/2, ym, s, size, c)
}

// textLA draws s left-aligned with its top edge at y.
func (r *renderer) textLA(x, y float64, s string, size float64, c rgb) {
	r.font(size)
	r.color(c)
	r.pdf.Text(x, y+capH(size), s)
}

// textRA draws s right-aligned against x with its top edge at y.
func (r *renderer) textRA(x, y float64, s string, size float64, c rgb) {
	r.textLA(x-r.width(s, size), y, s, size, c)
}

// textMA draws s centered on xc with its top edge at y.
func (r *renderer) textMA(xc, y float64, s string, size float64, c rgb) {
	r.textLA(xc-r.width(s, size)/2, y, s, size, c)
}

// halo paints a padded background rectangle so the text above it stays
// readable on colored tiles.
func (r *renderer) halo(x, y, w, h, pad float64, c rgb) {
	r.fill(c)
	r.pdf.Rect(x-pad, y-pad, w+2*pad, h+2*pad, "F")
}

// linkTo returns the internal link id for a 1-based target page,
// creating and resolving it on first use. Targets may not exist yet;
// they are resolved when the document is written.
func (r *renderer) linkTo(page int) int {
	if r.links == nil {
		r.links = make(map[int]int)
	}
	if id, ok := r.links[page]; ok {
		return id
	}
	id := r.pdf.AddLink()
	r.pdf.SetLink(id, 0, page)
	r.links[page] = id
	return id
}

// linkedText draws s in link blue with an underline and attaches an
// internal link. Anchored like textLA.
func (r *renderer) linkedText(x, y float64, s string, size float64, page int) {
	r.textLA(x, y, s, size, colLink)
	w := r.width(s, size)
	uy := y + lineH(size) + px(1)
	r.stroke(colLink)
	r.pdf.SetLineWidth(px(2))
	r.pdf.Line(x, uy, x+w, uy)
	r.pdf.Link(x, y-px(2), w+px(6), lineH(size)+px(4), r.linkTo(page))
}
