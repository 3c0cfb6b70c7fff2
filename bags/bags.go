// Package bags writes the bag/overflow mapping workbook, one worksheet
// per route plus an index sheet.
package bags

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/vanorg/vanorg/routesheet"
)

// IndexSheet lists every route sheet name in the workbook.
const IndexSheet = "INDEX"

// maxSheetName is the worksheet name limit imposed by the xlsx format.
const maxSheetName = 31

// ErrNoRoutes reports an input PDF from which nothing could be parsed.
var ErrNoRoutes = errors.New("no routes were parsed from the uploaded PDF")

// Sheet is one route's worksheet.
type Sheet struct {
	Name string // "<RS>_<CX>", e.g. "H.7_CX92"
	Rows []routesheet.Row
}

// SheetFor assigns a route's overflows and shapes it as a worksheet.
func SheetFor(r *routesheet.Route) Sheet {
	texts, totals := routesheet.AssignOverflows(r.Bags, r.Overflows)
	return Sheet{
		Name: r.Short + "_" + r.Vehicle,
		Rows: routesheet.Rows(r.Bags, texts, totals),
	}
}

// Write writes the workbook. Route sheets carry no header row: the
// columns are Bag | Overflow Zone(s) | Overflow Pkgs (total), with the
// total cell left blank for bags without overflow.
func Write(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return ErrNoRoutes
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for _, s := range sheets {
		name := s.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}

		for i, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			vals := []interface{}{row.Bag, row.Zones}
			if row.Total != "" {
				if total, err := strconv.Atoi(row.Total); err == nil {
					vals = append(vals, total)
				}
			}
			if err := f.SetSheetRow(name, cell, &vals); err != nil {
				return fmt.Errorf("sheet %q row %d: %w", name, i+1, err)
			}
		}
	}

	if _, err := f.NewSheet(IndexSheet); err != nil {
		return err
	}
	if err := f.SetCellValue(IndexSheet, "A1", "Sheets"); err != nil {
		return err
	}
	for i, s := range sheets {
		// The index keeps the full name even when the worksheet
		// itself had to be truncated.
		if err := f.SetCellValue(IndexSheet, fmt.Sprintf("A%d", i+2), s.Name); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	return f.SaveAs(path)
}
