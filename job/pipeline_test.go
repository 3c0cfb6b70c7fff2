package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanorg/vanorg/bags"
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

func TestParseSheets(t *testing.T) {
	sheets, err := parseSheets([]string{routePageH7, routePageA2})
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "H.7_CX92", sheets[0].Name)
	assert.Equal(t, "A.2_CX15", sheets[1].Name)
	assert.NotEmpty(t, sheets[0].Rows)
}

func TestParseSheetsSkipsPartialRoutes(t *testing.T) {
	// Lowercase identifiers group as a header page but yield no route
	// short or vehicle, so no sheet should be produced for them.
	const partialPage = `FRI, AUG 28, 2026 stg.h.9 10:05 AM
cx44 Standard
1 bags 0 over
Sort Zone Bag Pkgs
1 D-2.1A Red 0042 3
Total Packages 3
`
	sheets, err := parseSheets([]string{routePageH7, partialPage})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "H.7_CX92", sheets[0].Name)
}

func TestParseSheetsNoRoutes(t *testing.T) {
	_, err := parseSheets([]string{"no header pages here"})
	assert.ErrorIs(t, err, bags.ErrNoRoutes)
}

func TestProcessMissingUpload(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.Create()
	require.NoError(t, err)

	// No routesheets.pdf was ever written to the job directory.
	err = Process(s, rec.JID)
	require.Error(t, err)

	got, err := s.Get(rec.JID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.Status)
	assert.NotEmpty(t, got.Error)
	assert.Equal(t, "error", got.Stage())
}

func TestWaveColorMapNoImages(t *testing.T) {
	assert.Empty(t, waveColorMap(t.TempDir(), nil))
}
