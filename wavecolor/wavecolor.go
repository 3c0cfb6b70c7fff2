// Package wavecolor maps wave start times to the banner colors printed
// on the staging wall photos, by detecting horizontal color bands along
// the image margins.
package wavecolor

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/image/draw"
)

// Band is one detected horizontal color band.
type Band struct {
	YStart int
	YEnd   int
	RGB    [3]float64
	Name   string
}

const (
	// marginFrac is the slice of each horizontal edge sampled for color.
	marginFrac = 0.12
	// segmentThreshold is the per-row color distance starting a new band.
	segmentThreshold = 20.0
	// workWidth caps the detection working width.
	workWidth = 300
)

var timePartRe = regexp.MustCompile(`(\d{1,2})\s*[:.]\s*(\d{2})\s*([AaPp])?\s*([Mm])?`)

// NormalizeTime turns a free-form time label into a 24h "HH:MM" key.
// It returns "" when no time can be read.
func NormalizeTime(label string) string {
	m := timePartRe.FindStringSubmatch(label)
	if m == nil {
		return ""
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])

	ampm := ""
	if m[3] != "" && m[4] != "" {
		ampm = string([]byte{m[3][0] &^ 0x20, 'M'})
	}
	if ampm == "PM" && hh != 12 {
		hh += 12
	}
	if ampm == "AM" && hh == 12 {
		hh = 0
	}
	return fmt.Sprintf("%02d:%02d", hh, mm)
}

// TimeSortKey orders time labels chronologically; unreadable labels
// sort first.
func TimeSortKey(label string) int {
	key := NormalizeTime(label)
	if key == "" {
		return 0
	}
	hh, _ := strconv.Atoi(key[:2])
	mm, _ := strconv.Atoi(key[3:])
	return hh*60 + mm
}

// Classify names a color by HSV hue.
func Classify(rgb [3]float64) string {
	r, g, b := rgb[0]/255, rgb[1]/255, rgb[2]/255
	h, s, v := rgbToHSV(r, g, b)

	if v >= 0.9 && s <= 0.12 {
		return "white"
	}

	hue := h * 360
	switch {
	case hue >= 250 && hue < 310:
		return "purple"
	case hue >= 210 && hue < 250:
		return "blue"
	case hue >= 120 && hue < 180:
		return "green"
	case hue >= 40 && hue < 70:
		return "yellow"
	case hue < 20 || hue >= 330:
		return "red"
	default:
		return "unknown"
	}
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	d := max - min
	if max > 0 {
		s = d / max
	}
	if d == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, v
}

func hexColor(rgb [3]float64) string {
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(rgb[0])), int(math.Round(rgb[1])), int(math.Round(rgb[2])))
}

// marginColors returns, for every row, the pixel colors of the left and
// right margins.
func marginColors(img image.Image) [][][3]float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	margin := int(float64(w) * marginFrac)
	if margin < 1 {
		margin = 1
	}

	rows := make([][][3]float64, h)
	for y := 0; y < h; y++ {
		row := make([][3]float64, 0, margin*2)
		for x := 0; x < margin; x++ {
			row = append(row, pixel(img, b.Min.X+x, b.Min.Y+y))
		}
		for x := w - margin; x < w; x++ {
			if x < 0 {
				continue
			}
			row = append(row, pixel(img, b.Min.X+x, b.Min.Y+y))
		}
		rows[y] = row
	}
	return rows
}

func pixel(img image.Image, x, y int) [3]float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
}

// medianColor takes the per-channel median over a set of pixels.
func medianColor(px [][3]float64) [3]float64 {
	if len(px) == 0 {
		return [3]float64{}
	}
	var out [3]float64
	ch := make([]float64, len(px))
	for c := 0; c < 3; c++ {
		for i, p := range px {
			ch[i] = p[c]
		}
		sort.Float64s(ch)
		n := len(ch)
		if n%2 == 1 {
			out[c] = ch[n/2]
		} else {
			out[c] = (ch[n/2-1] + ch[n/2]) / 2
		}
	}
	return out
}

func colorDist(a, b [3]float64) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// DetectBands finds horizontal color bands in a single image.
func DetectBands(img image.Image) []Band {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil
	}

	work := img
	if b.Dx() > workWidth {
		scaled := image.NewRGBA(image.Rect(0, 0, workWidth, b.Dy()))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		work = scaled
	}

	workRows := marginColors(work)
	rowColors := make([][3]float64, len(workRows))
	for y, row := range workRows {
		rowColors[y] = medianColor(row)
	}

	type span struct{ start, end int }

	var segments []span
	start := 0
	current := rowColors[0]
	for i := 1; i < len(rowColors); i++ {
		if colorDist(rowColors[i], current) > segmentThreshold {
			segments = append(segments, span{start, i - 1})
			start = i
			current = rowColors[i]
		}
	}
	segments = append(segments, span{start, len(rowColors) - 1})

	// Merge runs the threshold split too eagerly.
	var merged []span
	var prevColor [3]float64
	havePrev := false
	for _, seg := range segments {
		segColor := medianColor(rowColors[seg.start : seg.end+1])
		if havePrev && colorDist(segColor, prevColor) < segmentThreshold {
			last := &merged[len(merged)-1]
			last.end = seg.end
			prevColor = medianColor(rowColors[last.start : last.end+1])
			continue
		}
		merged = append(merged, seg)
		prevColor = segColor
		havePrev = true
	}

	minHeight := len(rowColors) / 100
	if minHeight < 6 {
		minHeight = 6
	}

	origRows := marginColors(img)

	var bands []Band
	for _, seg := range merged {
		height := seg.end - seg.start + 1
		if height < minHeight {
			continue
		}
		// Sample the calm middle of the band, away from its edges.
		y0 := seg.start + int(float64(height)*0.3)
		y1 := seg.start + int(float64(height)*0.7)
		if y1 <= y0 {
			y1 = y0 + 1
		}
		if y1 > seg.end+1 {
			y1 = seg.end + 1
		}
		var patch [][3]float64
		for y := y0; y < y1 && y < len(origRows); y++ {
			patch = append(patch, origRows[y]...)
		}
		if len(patch) == 0 {
			continue
		}
		rgb := medianColor(patch)
		bands = append(bands, Band{
			YStart: seg.start,
			YEnd:   seg.end,
			RGB:    rgb,
			Name:   Classify(rgb),
		})
	}
	return bands
}

// Map pairs sorted unique time labels with bands detected across the
// given images, in order, and returns timeKey -> "#rrggbb".
func Map(images []image.Image, timeLabels []string) map[string]string {
	if len(images) == 0 || len(timeLabels) == 0 {
		return nil
	}

	type item struct {
		key  string
		sort int
	}
	var items []item
	seen := map[string]bool{}
	for _, raw := range timeLabels {
		key := NormalizeTime(raw)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item{key: key, sort: TimeSortKey(raw)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].sort < items[j].sort })

	var bands []Band
	for _, img := range images {
		detected := DetectBands(img)
		sort.SliceStable(detected, func(i, j int) bool { return detected[i].YStart < detected[j].YStart })
		bands = append(bands, detected...)
	}
	if len(bands) == 0 || len(items) == 0 {
		return nil
	}

	count := len(items)
	if len(bands) < count {
		count = len(bands)
	}

	out := make(map[string]string, count)
	for i := 0; i < count; i++ {
		out[items[i].key] = hexColor(bands[i].RGB)
	}
	return out
}

// MapFiles is Map over image files sorted by name. Files that fail to
// decode are skipped.
func MapFiles(paths []string, timeLabels []string) map[string]string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var images []image.Image
	for _, p := range sorted {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		_ = f.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return Map(images, timeLabels)
}
