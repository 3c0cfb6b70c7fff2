package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanorg/vanorg/bags"
	"github.com/vanorg/vanorg/pdftext"
	"github.com/vanorg/vanorg/routesheet"
)

var (
	workbookPDF string
	workbookOut string

	workbookCmd = &cobra.Command{
		Use:   "workbook",
		Short: "Build the bag/overflow workbook from a route-sheet PDF",
		RunE:  runWorkbook,
	}
)

func init() {
	workbookCmd.Flags().StringVar(&workbookPDF, "pdf", "", "route-sheet PDF (required)")
	workbookCmd.Flags().StringVar(&workbookOut, "out", "Bags_with_Overflow.xlsx", "output workbook")
	_ = workbookCmd.MarkFlagRequired("pdf")
}

func runWorkbook(cmd *cobra.Command, _ []string) error {
	pageTexts, err := pdftext.PageTexts(workbookPDF)
	if err != nil {
		return fmt.Errorf("read %s: %w", workbookPDF, err)
	}

	var sheets []bags.Sheet
	for _, g := range routesheet.GroupPages(pageTexts) {
		var parts []string
		for _, p := range g {
			parts = append(parts, pageTexts[p])
		}
		route := routesheet.Parse(strings.TrimSpace(strings.Join(parts, "\n\n")))
		if route == nil || route.Short == "" || route.Vehicle == "" {
			continue
		}
		sheets = append(sheets, bags.SheetFor(route))
	}

	if err := bags.Write(workbookOut, sheets); err != nil {
		return err
	}
	cmd.Printf("%s: %d routes\n", workbookOut, len(sheets))
	return nil
}
