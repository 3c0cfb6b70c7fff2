package organizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// IndexSheetName is the workbook's index sheet, skipped when reading.
const IndexSheetName = "INDEX"

var (
	sheetRe      = regexp.MustCompile(`^([A-Z]\.\d+)_?(CX\d+)$`)
	routeShortRe = regexp.MustCompile(`^([A-Z]+)\.(\d+)$`)
	zoneCountRe  = regexp.MustCompile(`^([0-9]+\.[0-9]+[A-Z])\s*\((\d+)\)\s*$`)
	zoneOnlyRe   = regexp.MustCompile(`^([0-9]+\.[0-9]+[A-Z])`)
	clockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AP]M)$`)
)

// timeToMinutes parses "11:20 AM" into minutes since midnight. Returns
// -1 for anything unparseable.
func timeToMinutes(t string) int {
	m := clockRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(t)))
	if m == nil {
		return -1
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if m[3] == "AM" {
		if hh == 12 {
			hh = 0
		}
	} else if hh != 12 {
		hh += 12
	}
	return hh*60 + mm
}

// shortSortKey splits "H.7" for sorting: letters first, then number.
func shortSortKey(short string) (string, int) {
	m := routeShortRe.FindStringSubmatch(short)
	if m == nil {
		return short, 0
	}
	n, _ := strconv.Atoi(m[2])
	return m[1], n
}

// parseZoneCounts splits a "3.2U (7); 16.3X" cell into zone/count
// pairs. Zones without a count get zero.
func parseZoneCounts(zones string) []ZoneCount {
	var out []ZoneCount
	for _, part := range strings.Split(zones, ";") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if m := zoneCountRe.FindStringSubmatch(p); m != nil {
			n, _ := strconv.Atoi(m[2])
			out = append(out, ZoneCount{Zone: m[1], Count: n})
			continue
		}
		if m := zoneOnlyRe.FindStringSubmatch(p); m != nil {
			out = append(out, ZoneCount{Zone: m[1]})
		}
	}
	return out
}

// ParseWorkbookRoutes reads every "<RS>_<CX>" sheet of the workbook and
// merges each bag with the PDF metadata by printed index. Routes come
// back sorted by wave time, then route short.
func ParseWorkbookRoutes(xlsxPath string, meta *PDFMeta) ([]Route, error) {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", xlsxPath, err)
	}
	defer func() { _ = f.Close() }()

	routes := []Route{}
	for _, sheet := range f.GetSheetList() {
		if sheet == IndexSheetName {
			continue
		}
		sm := sheetRe.FindStringSubmatch(sheet)
		if sm == nil {
			continue
		}
		rs, cx := sm[1], sm[2]

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}

		r := Route{
			RouteShort:  rs,
			CX:          cx,
			WaveTime:    meta.Times[rs],
			BagsDetail:  []BagDetail{},
			OverflowAgg: []ZoneCount{},
			OverflowSeq: []OverflowRef{},
			Combined:    []CombinedRow{},
		}

		agg := map[string]int{}
		var bagLabels []string
		for _, row := range rows {
			bag := cell(row, 0)
			if bag == "" {
				continue
			}
			zones := cell(row, 1)

			total := ""
			if tc := cell(row, 2); tc != "" {
				// The writer stores ints but a hand-edited workbook
				// may hold floats.
				if v, err := strconv.ParseFloat(tc, 64); err == nil {
					total = strconv.Itoa(int(v))
					r.OverflowTotal += int(v)
				}
			}

			r.Combined = append(r.Combined, CombinedRow{Bag: bag, Zones: zones, Total: total})
			bagLabels = append(bagLabels, bag)

			for _, zc := range parseZoneCounts(zones) {
				r.OverflowSeq = append(r.OverflowSeq, OverflowRef{
					Zone: zc.Zone, Count: zc.Count, BagIdx: len(bagLabels),
				})
				agg[zc.Zone] += zc.Count
			}
		}

		zoneKeys := make([]string, 0, len(agg))
		for z := range agg {
			zoneKeys = append(zoneKeys, z)
		}
		sort.Strings(zoneKeys)
		for _, z := range zoneKeys {
			r.OverflowAgg = append(r.OverflowAgg, ZoneCount{Zone: z, Count: agg[z]})
		}

		byIdx := meta.Meta[rs]
		for i, bag := range bagLabels {
			idx := i + 1
			bagID := bag
			if _, after, found := strings.Cut(bag, " "); found {
				bagID = after
			}
			d := BagDetail{Idx: idx, Bag: bag, BagID: bagID}
			if bm, ok := byIdx[idx]; ok {
				pkgs := bm.Pkgs
				d.SortZone = bm.SortZone
				d.Pkgs = &pkgs
			}
			r.BagsDetail = append(r.BagsDetail, d)
		}
		r.BagsCount = len(bagLabels)

		routes = append(routes, r)
	}

	sortRoutes(routes)
	return routes, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// waveRanks orders the distinct wave times of the set.
func waveRanks(routes []Route) map[string]int {
	seen := map[string]bool{}
	var times []string
	for _, r := range routes {
		if r.WaveTime != "" && !seen[r.WaveTime] {
			seen[r.WaveTime] = true
			times = append(times, r.WaveTime)
		}
	}
	sort.Slice(times, func(i, j int) bool {
		mi, mj := timeToMinutes(times[i]), timeToMinutes(times[j])
		if mi < 0 {
			mi = 1 << 30
		}
		if mj < 0 {
			mj = 1 << 30
		}
		return mi < mj
	})
	ranks := make(map[string]int, len(times))
	for i, t := range times {
		ranks[t] = i + 1
	}
	return ranks
}

// sortRoutes orders by wave rank, then route letters, then number.
func sortRoutes(routes []Route) {
	ranks := waveRanks(routes)
	rank := func(r Route) int {
		if n, ok := ranks[r.WaveTime]; ok {
			return n
		}
		return 999
	}
	sort.SliceStable(routes, func(i, j int) bool {
		ri, rj := rank(routes[i]), rank(routes[j])
		if ri != rj {
			return ri < rj
		}
		li, ni := shortSortKey(routes[i].RouteShort)
		lj, nj := shortSortKey(routes[j].RouteShort)
		if li != lj {
			return li < lj
		}
		return ni < nj
	})
}

// WaveLabels names each distinct wave time in departure order:
// "1st wave", "2nd wave", ...
func WaveLabels(routes []Route) map[string]string {
	ranks := waveRanks(routes)
	out := make(map[string]string, len(ranks))
	for t, n := range ranks {
		out[t] = fmt.Sprintf("%s wave", ordinal(n))
	}
	return out
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
