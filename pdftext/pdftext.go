// Package pdftext extracts row-grouped page text from PDFs.
package pdftext

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

var spacesRe = regexp.MustCompile(`\s+`)

// PageTexts extracts the text of every page, one string per page, with
// table rows kept together on single lines. Pages that fail to decode
// come back empty rather than failing the whole document.
func PageTexts(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := r.NumPage()
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, pageText(p))
	}
	return texts, nil
}

func pageText(p pdf.Page) string {
	rows, err := p.GetTextByRow()
	if err != nil {
		return ""
	}

	// Top of the page first. PDF y grows upward.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := lineOf(row.Content); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func lineOf(texts []pdf.Text) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := strings.TrimSpace(t.S); s != "" {
			parts = append(parts, s)
		}
	}
	return spacesRe.ReplaceAllString(strings.Join(parts, " "), " ")
}
