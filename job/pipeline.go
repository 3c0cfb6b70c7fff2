package job

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vanorg/vanorg/bags"
	"github.com/vanorg/vanorg/organizer"
	"github.com/vanorg/vanorg/pdftext"
	"github.com/vanorg/vanorg/routesheet"
	"github.com/vanorg/vanorg/stacker"
	"github.com/vanorg/vanorg/wavecolor"
)

// Process runs the full pipeline on one uploaded PDF: extract page
// texts, write the bag workbook, build the organizer page, then render
// the stacked PDF and record the results on the job.
func Process(store *Store, jid string) error {
	dir := store.Dir(jid)
	pdfPath := filepath.Join(dir, InputPDF)
	xlsxPath := filepath.Join(dir, OutputXLSX)
	htmlPath := filepath.Join(dir, OutputHTML)
	stackedPath := filepath.Join(dir, OutputStacked)

	if err := store.Update(jid, func(r *Record) { r.Status = StatusRunning }); err != nil {
		return err
	}

	fail := func(err error) error {
		_ = store.Update(jid, func(r *Record) {
			r.Status = StatusError
			r.Error = err.Error()
			if r.Progress == nil {
				r.Progress = map[string]interface{}{}
			}
			r.Progress["stage"] = "error"
		})
		return err
	}

	if err := store.SetProgress(jid, map[string]interface{}{"stage": StageParsePDF, "msg": StageText[StageParsePDF]}); err != nil {
		return err
	}
	pageTexts, err := pdftext.PageTexts(pdfPath)
	if err != nil {
		return fail(fmt.Errorf("read uploaded pdf: %w", err))
	}
	sheets, err := parseSheets(pageTexts)
	if err != nil {
		return fail(err)
	}

	if err := store.SetProgress(jid, map[string]interface{}{"stage": StageExcel, "msg": StageText[StageExcel]}); err != nil {
		return err
	}
	if err := bags.Write(xlsxPath, sheets); err != nil {
		return fail(fmt.Errorf("write workbook: %w", err))
	}

	if err := store.SetProgress(jid, map[string]interface{}{"stage": StageBuildHTML, "msg": StageText[StageBuildHTML]}); err != nil {
		return err
	}
	// The workbook was written a moment ago, so any stale sidecar cache
	// must not short-circuit the parse.
	if err := organizer.Build(pdfPath, xlsxPath, htmlPath, false); err != nil {
		return fail(fmt.Errorf("build organizer: %w", err))
	}

	dateLabel := routesheet.DateLabel(pageTexts)
	progress := func(total, done, current int, _, detail string) {
		_ = store.SetProgress(jid, map[string]interface{}{
			"stage":        StageBuildHTML,
			"msg":          detail,
			"pages_total":  total,
			"pages_done":   done,
			"current_page": current,
		})
	}
	res, err := stacker.Build(pageTexts, stackedPath, dateLabel, progress)
	if err != nil {
		return fail(fmt.Errorf("build stacked pdf: %w", err))
	}

	waveColors := waveColorMap(dir, res.TOCEntries)

	if err := store.CompleteCurrentStage(jid); err != nil {
		return err
	}
	return store.Update(jid, func(r *Record) {
		r.Status = StatusDone
		r.Progress = map[string]interface{}{"pct": 100, "stage": "done", "msg": "Done"}
		r.Outputs = map[string]string{
			"xlsx":    OutputXLSX,
			"html":    OutputHTML,
			"stacked": OutputStacked,
		}
		r.TOC = &TOC{
			DateLabel:     res.DateLabel,
			Routes:        res.TOCEntries,
			WaveColors:    waveColors,
			MismatchCount: len(res.Mismatches),
		}
		r.Summary = &Summary{
			Mismatches:           res.Mismatches,
			RoutesOver30:         res.RoutesOver30,
			RoutesOver50Overflow: res.RoutesOver50Overflow,
			Top10HeavyTotals:     res.Top10HeavyTotals,
			Top10Commercial:      res.Top10Commercial,
		}
	})
}

// parseSheets turns the extracted page texts into one workbook sheet
// per route.
func parseSheets(pageTexts []string) ([]bags.Sheet, error) {
	groups := routesheet.GroupPages(pageTexts)
	var sheets []bags.Sheet
	for _, g := range groups {
		var parts []string
		for _, p := range g {
			parts = append(parts, pageTexts[p])
		}
		combined := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if combined == "" {
			continue
		}
		route := routesheet.Parse(combined)
		if route == nil || route.Short == "" || route.Vehicle == "" {
			continue
		}
		sheets = append(sheets, bags.SheetFor(route))
	}
	if len(sheets) == 0 {
		return nil, bags.ErrNoRoutes
	}
	return sheets, nil
}

// waveColorMap pairs wave strip images dropped in the job directory
// with the wave times on the cover. Missing strips just mean no colors.
func waveColorMap(dir string, entries []stacker.TOCEntry) map[string]string {
	paths, err := filepath.Glob(filepath.Join(dir, "wave_image_*"))
	if err != nil || len(paths) == 0 {
		return map[string]string{}
	}
	var timeLabels []string
	for _, e := range entries {
		timeLabels = append(timeLabels, e.TimeLabel)
	}
	return wavecolor.MapFiles(paths, timeLabels)
}
