package routesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupPages(t *testing.T) {
	pages := []string{
		"cover page, nothing useful",
		"STG.H.7 CX92\n27 bags 41 over\nSort Zone Bag Pkgs\n...",
		"Sort Zone Bag continued rows",
		"",
		"STG.K.2 TX7\n12 bags 3 over",
		"unrelated trailer page",
	}

	groups := GroupPages(pages)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{1, 2, 3}, groups[0])
	assert.Equal(t, []int{4}, groups[1])
}

func TestGroupPagesNoHeaders(t *testing.T) {
	assert.Empty(t, GroupPages([]string{"a", "b"}))
	assert.Empty(t, GroupPages(nil))
}

func TestGroupPagesHeaderStopsGroup(t *testing.T) {
	pages := []string{
		"STG.A.1 CX1\nSort Zone Bag Pkgs",
		"STG.A.2 CX2\nSort Zone Bag Pkgs",
	}
	groups := GroupPages(pages)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{0}, groups[0])
	assert.Equal(t, []int{1}, groups[1])
}
