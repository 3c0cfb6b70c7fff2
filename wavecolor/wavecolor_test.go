package wavecolor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11:20 AM", "11:20"},
		{"1:05 PM", "13:05"},
		{"12:00 PM", "12:00"},
		{"12:30 AM", "00:30"},
		{"7.45 pm", "19:45"},
		{"09:10", "09:10"},
		{"no time here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTime(tt.in))
		})
	}
}

func TestTimeSortKey(t *testing.T) {
	assert.Equal(t, 11*60+20, TimeSortKey("11:20 AM"))
	assert.Equal(t, 13*60+5, TimeSortKey("1:05 PM"))
	assert.Equal(t, 0, TimeSortKey("garbage"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		rgb  [3]float64
	}{
		{"white", [3]float64{250, 250, 250}},
		{"red", [3]float64{210, 40, 40}},
		{"green", [3]float64{40, 200, 90}},
		{"blue", [3]float64{50, 90, 230}},
		{"yellow", [3]float64{240, 220, 40}},
		{"purple", [3]float64{150, 40, 230}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, Classify(tt.rgb))
		})
	}
}

// banded returns an image of solid horizontal bands of equal height.
func banded(w, h int, colors []color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bandH := h / len(colors)
	for y := 0; y < h; y++ {
		ci := y / bandH
		if ci >= len(colors) {
			ci = len(colors) - 1
		}
		for x := 0; x < w; x++ {
			img.Set(x, y, colors[ci])
		}
	}
	return img
}

func TestDetectBands(t *testing.T) {
	img := banded(100, 300, []color.RGBA{
		{210, 40, 40, 255}, // red
		{40, 200, 90, 255}, // green
		{50, 90, 230, 255}, // blue
	})

	bands := DetectBands(img)
	require.Len(t, bands, 3)
	assert.Equal(t, "red", bands[0].Name)
	assert.Equal(t, "green", bands[1].Name)
	assert.Equal(t, "blue", bands[2].Name)
	assert.Less(t, bands[0].YStart, bands[1].YStart)
	assert.Less(t, bands[1].YStart, bands[2].YStart)
}

func TestDetectBandsTinyImage(t *testing.T) {
	assert.Nil(t, DetectBands(image.NewRGBA(image.Rect(0, 0, 1, 1))))
}

func TestMap(t *testing.T) {
	img := banded(100, 300, []color.RGBA{
		{210, 40, 40, 255},
		{40, 200, 90, 255},
	})

	got := Map([]image.Image{img}, []string{"1:05 PM", "11:20 AM", "11:20 AM"})
	require.Len(t, got, 2)
	// Earliest wave gets the topmost band.
	assert.Equal(t, "#d22828", got["11:20"])
	assert.Equal(t, "#28c85a", got["13:05"])
}

func TestMapEmpty(t *testing.T) {
	assert.Nil(t, Map(nil, []string{"11:20 AM"}))
	assert.Nil(t, Map([]image.Image{image.NewRGBA(image.Rect(0, 0, 50, 50))}, nil))
}
