package routesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitZone(t *testing.T) {
	tests := []struct {
		zone   string
		core   string
		letter string
	}{
		{"B-12.4A", "B-12.4", "A"},
		{"B-12.4T", "B-12.4", "T"},
		{"A-3B", "A-3", "B"},
		{"C-D", "C", "D"},
		{"99.RT1", "99.RT", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			core, letter := SplitZone(tt.zone)
			assert.Equal(t, tt.core, core)
			assert.Equal(t, tt.letter, letter)
		})
	}
}

func TestIs99Tag(t *testing.T) {
	assert.True(t, Is99Tag("99.RT1"))
	assert.True(t, Is99Tag("  99.X (4)"))
	assert.False(t, Is99Tag("12.4T (12)"))
	assert.False(t, Is99Tag(""))
}

func TestAssignOverflowsPairing(t *testing.T) {
	bags := []Bag{
		{Index: 1, SortZone: "B-12.4A", Label: "Yellow 1", Pkgs: 10},
		{Index: 2, SortZone: "B-12.4B", Label: "Green 2", Pkgs: 10},
	}
	overs := []Overflow{
		{Zone: "B-12.4T", Pkgs: 12}, // T pairs with A -> bag 0
		{Zone: "B-12.4U", Pkgs: 5},  // U pairs with B -> bag 1
	}

	texts, totals := AssignOverflows(bags, overs)
	require.Len(t, texts, 2)
	assert.Equal(t, []string{"12.4T (12)"}, texts[0])
	assert.Equal(t, []string{"12.4U (5)"}, texts[1])
	assert.Equal(t, []int{12, 5}, totals)
}

func TestAssignOverflowsSameLetterFallback(t *testing.T) {
	bags := []Bag{{Index: 1, SortZone: "B-12.4T", Label: "Yellow 1", Pkgs: 1}}
	overs := []Overflow{{Zone: "B-12.4T", Pkgs: 3}}

	texts, totals := AssignOverflows(bags, overs)
	assert.Equal(t, []string{"12.4T (3)"}, texts[0])
	assert.Equal(t, 3, totals[0])
}

func TestAssignOverflows99Rules(t *testing.T) {
	bags := []Bag{
		{Index: 1, SortZone: "B-12.4A", Label: "Yellow 1", Pkgs: 1},
		{Index: 2, SortZone: "B-12.4B", Label: "Green 2", Pkgs: 1},
	}

	t.Run("first overflow row goes to bag one", func(t *testing.T) {
		texts, totals := AssignOverflows(bags, []Overflow{{Zone: "99.RT1", Pkgs: 6}})
		assert.Equal(t, []string{"99.RT1 (6)"}, texts[0])
		assert.Equal(t, 6, totals[0])
	})

	t.Run("sticks with last assigned bag", func(t *testing.T) {
		overs := []Overflow{
			{Zone: "B-12.4U", Pkgs: 5}, // -> bag 1
			{Zone: "99.RT1", Pkgs: 6},  // follows -> bag 1
		}
		texts, totals := AssignOverflows(bags, overs)
		assert.Empty(t, texts[0])
		assert.Equal(t, []string{"12.4U (5)", "99.RT1 (6)"}, texts[1])
		assert.Equal(t, 11, totals[1])
	})
}

func TestAssignOverflowsUnmatchedContinuity(t *testing.T) {
	bags := []Bag{
		{Index: 1, SortZone: "B-12.4A", Label: "Yellow 1", Pkgs: 1},
		{Index: 2, SortZone: "B-12.4B", Label: "Green 2", Pkgs: 1},
	}
	overs := []Overflow{
		{Zone: "B-12.4U", Pkgs: 5}, // -> bag 1
		{Zone: "Q-5.5Q", Pkgs: 2}, // no match, keeps continuity -> bag 1
	}
	texts, totals := AssignOverflows(bags, overs)
	assert.Equal(t, []string{"12.4U (5)", "5.5Q (2)"}, texts[1])
	assert.Equal(t, 7, totals[1])
}

func TestAssignOverflowsUnmatchedFirstGoesToBagOne(t *testing.T) {
	bags := []Bag{{Index: 1, SortZone: "B-12.4A", Label: "Yellow 1", Pkgs: 1}}
	texts, totals := AssignOverflows(bags, []Overflow{{Zone: "Q-1.1Q", Pkgs: 4}})
	assert.Equal(t, []string{"1.1Q (4)"}, texts[0])
	assert.Equal(t, 4, totals[0])
}

func TestRows(t *testing.T) {
	bags := []Bag{
		{Index: 1, SortZone: "B-12.4A", Label: "Yellow 1", Pkgs: 1},
		{Index: 2, SortZone: "B-12.4B", Label: "Green 2", Pkgs: 1},
	}
	texts := [][]string{{"12.4T (12)", "99.RT1 (6)"}, nil}
	totals := []int{18, 0}

	rows := Rows(bags, texts, totals)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Bag: "Yellow 1", Zones: "12.4T (12); 99.RT1 (6)", Total: "18"}, rows[0])
	// No overflow means a blank total, not a zero.
	assert.Equal(t, Row{Bag: "Green 2", Zones: "", Total: ""}, rows[1])
}
