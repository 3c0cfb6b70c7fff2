package main

import (
	"github.com/spf13/cobra"

	"github.com/vanorg/vanorg/organizer"
)

var (
	organizerPDF     string
	organizerXLSX    string
	organizerOut     string
	organizerNoCache bool

	organizerCmd = &cobra.Command{
		Use:   "organizer",
		Short: "Build the mobile organizer page from a PDF + workbook pair",
		RunE:  runOrganizer,
	}
)

func init() {
	organizerCmd.Flags().StringVar(&organizerPDF, "pdf", "", "route-sheet PDF (required)")
	organizerCmd.Flags().StringVar(&organizerXLSX, "xlsx", "", "bag workbook (required)")
	organizerCmd.Flags().StringVar(&organizerOut, "out", "van_organizer.html", "output page")
	organizerCmd.Flags().BoolVar(&organizerNoCache, "no-cache", false, "ignore sidecar caches")
	_ = organizerCmd.MarkFlagRequired("pdf")
	_ = organizerCmd.MarkFlagRequired("xlsx")
}

func runOrganizer(cmd *cobra.Command, _ []string) error {
	if err := organizer.Build(organizerPDF, organizerXLSX, organizerOut, !organizerNoCache); err != nil {
		return err
	}
	cmd.Printf("%s\n", organizerOut)
	return nil
}
