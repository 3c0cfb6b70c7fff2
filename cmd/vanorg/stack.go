package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanorg/vanorg/pdftext"
	"github.com/vanorg/vanorg/routesheet"
	"github.com/vanorg/vanorg/stacker"
)

var (
	stackPDF  string
	stackOut  string
	stackDate string

	stackCmd = &cobra.Command{
		Use:   "stack",
		Short: "Build the stacked PDF from a route-sheet PDF",
		RunE:  runStack,
	}
)

func init() {
	stackCmd.Flags().StringVar(&stackPDF, "pdf", "", "route-sheet PDF (required)")
	stackCmd.Flags().StringVar(&stackOut, "out", "STACKED.pdf", "output PDF")
	stackCmd.Flags().StringVar(&stackDate, "date", "", "cover date label (default: detected from the PDF)")
	_ = stackCmd.MarkFlagRequired("pdf")
}

func runStack(cmd *cobra.Command, _ []string) error {
	pageTexts, err := pdftext.PageTexts(stackPDF)
	if err != nil {
		return fmt.Errorf("read %s: %w", stackPDF, err)
	}

	dateLabel := stackDate
	if dateLabel == "" {
		dateLabel = routesheet.DateLabel(pageTexts)
	}

	progress := func(total, done, current int, stage, detail string) {
		cmd.Printf("[%s] %d/%d %s\n", stage, done, total, detail)
	}
	res, err := stacker.Build(pageTexts, stackOut, dateLabel, progress)
	if err != nil {
		return err
	}

	cmd.Printf("%s: %d routes, %d mismatches\n", res.OutputPDF, res.GroupCount, len(res.Mismatches))
	return nil
}
