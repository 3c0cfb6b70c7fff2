package pdftext

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func TestLineOf(t *testing.T) {
	texts := []pdf.Text{
		{S: "1 "},
		{S: " B-12.4A"},
		{S: "Yellow"},
		{S: "  "},
		{S: "0123"},
		{S: "14"},
	}
	assert.Equal(t, "1 B-12.4A Yellow 0123 14", lineOf(texts))
	assert.Equal(t, "", lineOf(nil))
	assert.Equal(t, "", lineOf([]pdf.Text{{S: "   "}}))
}
