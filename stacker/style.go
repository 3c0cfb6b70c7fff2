package stacker

// The layout grid was designed on a 200-DPI letter canvas. All
// dimensions below are kept in those design pixels and converted to
// points at draw time so the rhythm of the page survives the move to
// vector output.
const designDPI = 200.0

// px converts design pixels to PDF points.
func px(v float64) float64 {
	return v * 72.0 / designDPI
}

const (
	pageW    = 612.0 // letter, points
	pageH    = 792.0
	marginPt = 36.0 // 0.5in
	contentW = pageW - 2*marginPt
	gapPt    = 0.07 * 72.0 // between table and tote grid
)

// toteRows is the number of rows in the tote grid.
const toteRows = 3

type rgb struct{ r, g, b int }

var (
	colBannerBg    = rgb{211, 211, 211}
	colMetaGrey    = rgb{85, 85, 85}
	colRoyalBlue   = rgb{0, 32, 194}
	colPurple      = rgb{75, 0, 130}
	colLavender    = rgb{236, 232, 255}
	colBrightRed   = rgb{210, 40, 40}
	colRowFillTeal = rgb{238, 247, 247}
	colDividerTeal = rgb{0, 140, 140}
	colDividerGrey = rgb{170, 170, 170}
	colLink        = rgb{0, 0, 238}
	colChipGrey    = rgb{245, 245, 245}
	colBlack       = rgb{0, 0, 0}
	colWhite       = rgb{255, 255, 255}
	colMismatch    = rgb{220, 0, 0}
	colOK          = rgb{0, 140, 0}
)

// bagColors maps the leading word of a bag label to its tile color.
var bagColors = map[string]rgb{
	"yellow": {246, 217, 74},
	"green":  {83, 182, 53},
	"orange": {234, 99, 43},
	"black":  {12, 10, 11},
	"navy":   {57, 128, 240},
}

var colTileFallback = rgb{200, 200, 200}

// Design-pixel dimensions of the route table.
var (
	cellH       = px(64)
	bannerH     = px(54)
	tableMargin = px(22)
	rowDividerH = px(2)
)

// Font sizes, design pixels.
var (
	fsBanner     = px(40)
	fsTable      = px(32)
	fsSummary    = px(32)
	fsToteNum    = px(40)
	fsToteTag    = px(22)
	fsToteTagMin = px(14)
	fsTotePkgs   = px(22)
	fsStyleTag   = px(22)
	fsDate       = px(22)
	fsZone       = px(16)
)

// luminance returns perceived brightness, used to pick a readable
// number color on colored tote tiles.
func luminance(c rgb) float64 {
	return float64(c.r)*0.299 + float64(c.g)*0.587 + float64(c.b)*0.114
}
