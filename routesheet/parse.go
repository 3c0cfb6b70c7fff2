package routesheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const tableHeader = "Sort Zone Bag Pkgs"

func toUpper(s string) string { return strings.ToUpper(s) }

// Parse parses the concatenated text of one route's pages. It returns
// nil when the text holds no recognizable sort table.
func Parse(text string) *Route {
	r := &Route{
		DeclaredBags:     -1,
		DeclaredOverflow: -1,
		CommercialPkgs:   -1,
		TotalPkgs:        -1,
	}

	if m := stgRe.FindStringSubmatch(text); m != nil {
		r.Short = m[1]
	}
	r.Vehicle = cxRe.FindString(text)

	lines := strings.Split(text, "\n")
	r.DeclaredBags, r.DeclaredOverflow = declaredCounts(lines)
	r.CommercialPkgs, r.TotalPkgs = packageSummaries(lines)

	headerIdx := -1
	for i, l := range lines {
		if strings.Contains(l, tableHeader) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	for _, raw := range lines[headerIdx+1:] {
		ln := strings.TrimSpace(raw)
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, "Total Packages") || strings.HasPrefix(ln, "Commercial Packages") {
			continue
		}
		r.scanLine(ln)
	}

	if len(r.Bags) == 0 {
		return nil
	}

	sort.SliceStable(r.Bags, func(i, j int) bool {
		return r.Bags[i].Index < r.Bags[j].Index
	})

	r.Style = styleLabel(text, r.Short)
	r.TimeLabel = timeLabel(text)

	return r
}

// scanLine walks a data line token by token. Extracted text sometimes
// concatenates several table rows onto one line, so the scan restarts
// row matching after every hit.
func (r *Route) scanLine(ln string) {
	toks := strings.Fields(ln)

	ptr := 0
	for ptr < len(toks) {
		// Bag row with sort zone: idx zone color bag pkgs
		if ptr+4 < len(toks) && isDigits(toks[ptr]) && IsZone(toks[ptr+1]) && BagColors[toks[ptr+2]] {
			r.addBag(toks[ptr], toks[ptr+1], toks[ptr+2], toks[ptr+3], toks[ptr+4])
			ptr += 5
			continue
		}

		// Bag row without sort zone: idx color bag pkgs
		if ptr+3 < len(toks) && isDigits(toks[ptr]) && BagColors[toks[ptr+1]] {
			r.addBag(toks[ptr], "", toks[ptr+1], toks[ptr+2], toks[ptr+3])
			ptr += 4
			continue
		}

		// Overflow row: idx zone pkgs
		if ptr+2 < len(toks) && isDigits(toks[ptr]) && IsZone(toks[ptr+1]) {
			if pk, ok := r.intToken(toks[ptr+2], "overflow pkgs"); ok {
				r.Overflows = append(r.Overflows, Overflow{Zone: toks[ptr+1], Pkgs: pk})
			}
			ptr += 3
			continue
		}

		ptr++
	}
}

func (r *Route) addBag(idxTok, zone, color, bagTok, pkgsTok string) {
	idx, ok := r.intToken(idxTok, "bag index")
	if !ok {
		return
	}
	num := digitsOnlyRe.ReplaceAllString(bagTok, "")
	if num == "" {
		r.warnToken(bagTok, "bag number")
		return
	}
	pk, ok := r.intToken(pkgsTok, "bag pkgs")
	if !ok {
		return
	}
	r.Bags = append(r.Bags, Bag{
		Index:    idx,
		SortZone: zone,
		Label:    color + " " + num,
		Pkgs:     pk,
	})
}

func (r *Route) intToken(tok, context string) (int, bool) {
	cleaned := digitsOnlyRe.ReplaceAllString(tok, "")
	if cleaned == "" {
		r.warnToken(tok, context)
		return 0, false
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		r.warnToken(tok, context)
		return 0, false
	}
	return v, true
}

func (r *Route) warnToken(tok, context string) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("failed to parse %s from %q [%s]", context, tok, r.Title()))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// declaredCounts finds "N bags M over" above the sort table.
func declaredCounts(lines []string) (bags, overflow int) {
	bags, overflow = -1, -1
	for _, l := range lines {
		if strings.Contains(l, tableHeader) {
			break
		}
		m := declaredRe.FindStringSubmatch(strings.ToLower(l))
		if m != nil {
			bags, _ = strconv.Atoi(m[1])
			overflow, _ = strconv.Atoi(m[2])
			break
		}
	}
	return bags, overflow
}

// packageSummaries finds the trailing "Commercial Packages N" and
// "Total Packages N" lines. The count is the last numeric token.
func packageSummaries(lines []string) (commercial, total int) {
	commercial, total = -1, -1
	for _, l := range lines {
		s := strings.ToLower(strings.TrimSpace(l))
		if strings.HasPrefix(s, "commercial packages") {
			if v, ok := lastInt(l); ok {
				commercial = v
			}
		}
		if strings.HasPrefix(s, "total packages") {
			if v, ok := lastInt(l); ok {
				total = v
			}
		}
	}
	return commercial, total
}

func lastInt(l string) (int, bool) {
	toks := strings.Fields(l)
	for i := len(toks) - 1; i >= 0; i-- {
		cleaned := digitsOnlyRe.ReplaceAllString(toks[i], "")
		if cleaned == "" {
			continue
		}
		if v, err := strconv.Atoi(cleaned); err == nil {
			return v, true
		}
	}
	return 0, false
}

// styleLabel classifies the route from free text on the sheet. Routes
// staged as K.7 are always on-road experience routes.
func styleLabel(text, short string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "on-road experience") || strings.Contains(t, "on road experience"):
		return "Standard: On-Road Experience (Driver)"
	case strings.HasPrefix(strings.ToUpper(short), "K.7"):
		return "Standard: On-Road Experience (Driver)"
	case strings.Contains(t, "nursery route level 3") || strings.Contains(t, "nursery lvl 3"):
		return "Nursery LVL 3"
	case strings.Contains(t, "nursery route level 2") || strings.Contains(t, "nursery lvl 2"):
		return "Nursery LVL 2"
	case strings.Contains(t, "nursery route level 1") || strings.Contains(t, "nursery lvl 1"):
		return "Nursery LVL 1"
	case strings.Contains(t, "nursery route"):
		return "Nursery"
	default:
		return "Standard"
	}
}

// timeLabel finds the wave time in the first lines of the sheet.
func timeLabel(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	head := strings.Join(lines, "\n")
	m := timeRe.FindString(head)
	if m == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToUpper(m), "  ", " ")
}
