package stacker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanorg/vanorg/routesheet"
)

const routePageH7 = `FRI, AUG 28, 2026 STG.H.7 11:20 AM
CX92 Standard
2 bags 7 over
Sort Zone Bag Pkgs
1 B-3.2B Yellow 0123 10
2 C-4.1C Green 0456 5
3 B-3.2U 7
Commercial Packages 2
Total Packages 22
`

const routePageA2 = `FRI, AUG 28, 2026 STG.A.2 12:40 PM
CX15 Standard
1 bags 0 over
Sort Zone Bag Pkgs
1 A-1.1A Navy 0009 4
Total Packages 4
`

func TestWaveLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11:20 AM", "Wave: 11:20"},
		{"1:05 PM", "Wave: 01:05"},
		{"", "Wave: ??:??"},
		{"noon", "Wave: ??:??"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, waveLabel(tt.in), tt.in)
	}
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("H.9 (CX2)", "H.10 (CX1)"))
	assert.True(t, naturalLess("A.1", "B.1"))
	assert.False(t, naturalLess("H.10", "H.9"))
	assert.True(t, naturalLess("H.9", "H.9 (CX2)"))
}

func TestTocItemLess(t *testing.T) {
	alpha := TOCEntry{Title: "B.1 (CX3)"}
	numeric := TOCEntry{Title: "99.A (CX1)"}
	assert.True(t, tocItemLess(alpha, numeric))
	assert.False(t, tocItemLess(numeric, alpha))
}

func TestGroupWaves(t *testing.T) {
	entries := []TOCEntry{
		{Title: "H.10 (CX2)", Page: 3, TimeLabel: "11:20 AM"},
		{Title: "H.9 (CX1)", Page: 2, TimeLabel: "11:20 AM"},
		{Title: "A.2 (CX15)", Page: 4, TimeLabel: "9:05 AM"},
	}
	blocks := groupWaves(entries)
	require.Len(t, blocks, 2)
	assert.Equal(t, "Wave: 09:05", blocks[0].label)
	assert.Equal(t, "Wave: 11:20", blocks[1].label)
	require.Len(t, blocks[1].items, 2)
	assert.Equal(t, "H.9 (CX1)", blocks[1].items[0].Title)
	assert.Equal(t, "H.10 (CX2)", blocks[1].items[1].Title)
}

func TestZoneDisplays(t *testing.T) {
	bags := []routesheet.Bag{
		{SortZone: "B-3.2B"},
		{SortZone: ""},
		{SortZone: "C-4.1C"},
	}
	assert.Equal(t, []string{"3.2B", "3.2B", "4.1C"}, zoneDisplays(bags))
}

func TestSplitZoneList(t *testing.T) {
	assert.Equal(t, []string{"3.2U (7)", "99.OV (3)"}, splitZoneList("3.2U (7); 99.OV (3)"))
	assert.Empty(t, splitZoneList(""))
}

func TestTileColor(t *testing.T) {
	assert.Equal(t, bagColors["yellow"], tileColor("Yellow 0123"))
	assert.Equal(t, colTileFallback, tileColor("Pink 1"))
}

func TestDeriveRouteFallbacks(t *testing.T) {
	route := routesheet.Parse(routePageH7)
	require.NotNil(t, route)

	b := deriveRoute(route, []int{0})
	assert.Equal(t, "H.7 (CX92)", b.title)
	assert.Equal(t, 2, b.bagCount)
	assert.Equal(t, 7, b.declaredOverflow)
	assert.Equal(t, 7, b.computedOverflow)
	assert.Equal(t, 22, b.totalPkgsValue)
	assert.Equal(t, []int{1}, b.inputPages)

	// Without declared counts the derived values fall back to sums.
	route.DeclaredBags = -1
	route.DeclaredOverflow = -1
	route.TotalPkgs = -1
	b = deriveRoute(route, []int{0})
	assert.Equal(t, 2, b.bagCount)
	assert.Equal(t, 7, b.declaredOverflow)
	assert.Equal(t, 22, b.totalPkgsValue) // 15 bag pkgs + 7 overflow
}

func TestBuildNoRoutes(t *testing.T) {
	_, err := Build([]string{"nothing here"}, filepath.Join(t.TempDir(), "out.pdf"), "DATE UNKNOWN", nil)
	assert.ErrorIs(t, err, ErrNoRoutes)
}

func TestBuild(t *testing.T) {
	out := filepath.Join(t.TempDir(), "STACKED.pdf")

	var stages []string
	progress := func(total, done, current int, stage, detail string) {
		stages = append(stages, stage)
	}

	res, err := Build([]string{routePageH7, routePageA2}, out, "FRI, AUG 28, 2026", progress)
	require.NoError(t, err)

	assert.Equal(t, 2, res.GroupCount)
	assert.Equal(t, "FRI, AUG 28, 2026", res.DateLabel)
	assert.Empty(t, res.Mismatches)
	assert.Empty(t, res.RoutesOver30)
	assert.Empty(t, res.RoutesOver50Overflow)
	assert.Empty(t, res.CombinedRoutes)

	require.Len(t, res.TOCEntries, 2)
	assert.Equal(t, "H.7 (CX92)", res.TOCEntries[0].Title)
	assert.Equal(t, 2, res.TOCEntries[0].Page) // cover is page 1
	assert.Equal(t, 3, res.TOCEntries[1].Page)

	require.Len(t, res.Top10HeavyTotals, 2)
	assert.Equal(t, Ranked{22, "H.7 (CX92)", 2}, res.Top10HeavyTotals[0])
	require.Len(t, res.Top10Commercial, 2)
	assert.Equal(t, 2, res.Top10Commercial[0].Value)

	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))

	assert.Contains(t, stages, "Processing")
	assert.Equal(t, "Done", stages[len(stages)-1])
}

func TestBuildMismatch(t *testing.T) {
	// Declared overflow disagrees with the summed overflow rows.
	page := `FRI, AUG 28, 2026 STG.H.7 11:20 AM
CX92 Standard
2 bags 9 over
Sort Zone Bag Pkgs
1 B-3.2B Yellow 0123 10
2 B-3.2U 7
`
	res, err := Build([]string{page}, filepath.Join(t.TempDir(), "out.pdf"), "DATE UNKNOWN", nil)
	require.NoError(t, err)
	require.Len(t, res.Mismatches, 1)
	m := res.Mismatches[0]
	assert.True(t, m.OverflowMismatch)
	assert.False(t, m.TotalMismatch)
	assert.Equal(t, 9, m.DeclaredOverflow)
	assert.Equal(t, 7, m.ComputedOverflow)
	assert.Equal(t, 2, m.OutputPage)
}

func TestMismatchMetric(t *testing.T) {
	m := Mismatch{
		OverflowMismatch: true,
		DeclaredOverflow: 9,
		ComputedOverflow: 7,
	}
	assert.Equal(t, "Overflow 9->7", mismatchMetric(m))

	m.TotalMismatch = true
	m.DeclaredTotal = 22
	m.ComputedTotal = 20
	assert.Equal(t, "Overflow 9->7 | Total 22->20", mismatchMetric(m))

	assert.Equal(t, "Mismatch", mismatchMetric(Mismatch{}))

	// The page renders with cp1252 core fonts.
	for _, r := range mismatchMetric(m) {
		assert.Less(t, r, rune(128))
	}
}
