package routesheet

import (
	"fmt"
	"strings"
)

// pairMap pairs each bag-side zone letter with its overflow-side twin.
var pairMap = map[string]string{"A": "T", "B": "U", "C": "W", "D": "X", "E": "Y", "G": "Z"}

var inversePair = func() map[string]string {
	m := make(map[string]string, len(pairMap))
	for k, v := range pairMap {
		m[v] = k
	}
	return m
}()

// SplitZone splits a zone into its core and trailing letter for
// pairing, e.g. "B-12.4T" → ("B-12.4", "T").
func SplitZone(z string) (core, letter string) {
	if !strings.Contains(z, "-") {
		return z[:len(z)-1], z[len(z)-1:]
	}
	prefix, tail, _ := strings.Cut(z, "-")
	if m := splitRe.FindStringSubmatch(tail); m != nil {
		num, letters := m[1], m[2]
		core = prefix
		if num != "" {
			core = prefix + "-" + num
		}
		return core, letters[len(letters)-1:]
	}
	return z[:len(z)-1], z[len(z)-1:]
}

// Is99Tag reports whether a zone label is a 99.* special zone.
func Is99Tag(label string) bool {
	clean := strings.TrimSpace(label)
	first := ""
	if f := strings.Fields(clean); len(f) > 0 {
		first = f[0]
	}
	return strings.HasPrefix(first, "99.")
}

// AssignOverflows maps every overflow row onto a bag. Regular zones
// attach to the bag holding the paired sort zone (then same-letter
// zone); 99.* zones stick with the last assigned bag, or bag one when
// they come first. Anything unmatched keeps continuity, else bag one.
//
// texts[i] holds the "ZONE (count)" labels for bag i and totals[i]
// their summed package count.
func AssignOverflows(bags []Bag, overs []Overflow) (texts [][]string, totals []int) {
	bagIdx := map[[2]string][]int{}
	for i, b := range bags {
		if b.SortZone == "" {
			continue
		}
		core, letter := SplitZone(b.SortZone)
		key := [2]string{core, letter}
		bagIdx[key] = append(bagIdx[key], i)
	}

	texts = make([][]string, len(bags))
	totals = make([]int, len(bags))
	lastAssigned := -1

	for _, over := range overs {
		core, letter := SplitZone(over.Zone)
		labelCore := over.Zone
		if _, tail, found := strings.Cut(over.Zone, "-"); found {
			labelCore = tail
		}

		bi := -1
		if Is99Tag(labelCore) {
			if lastAssigned < 0 {
				if len(bags) > 0 {
					bi = 0
				}
			} else {
				bi = lastAssigned
			}
		} else {
			if need, ok := inversePair[letter]; ok {
				if idxs := bagIdx[[2]string{core, need}]; len(idxs) > 0 {
					bi = idxs[0]
				}
			}
			if bi < 0 {
				if idxs := bagIdx[[2]string{core, letter}]; len(idxs) > 0 {
					bi = idxs[0]
				}
			}
		}

		if bi < 0 {
			if lastAssigned >= 0 {
				bi = lastAssigned
			} else if len(bags) > 0 {
				bi = 0
			}
		}

		if bi >= 0 {
			texts[bi] = append(texts[bi], fmt.Sprintf("%s (%d)", labelCore, over.Pkgs))
			totals[bi] += over.Pkgs
			lastAssigned = bi
		}
	}

	return texts, totals
}

// Row is one line of the bag/overflow mapping as it appears in the
// workbook and the stacked table.
type Row struct {
	Bag   string
	Zones string // "Z (n); ..." joined labels
	Total string // blank when the bag has no overflow
}

// Rows combines bags with their assigned overflows.
func Rows(bags []Bag, texts [][]string, totals []int) []Row {
	rows := make([]Row, len(bags))
	for i, b := range bags {
		mid := strings.Join(texts[i], "; ")
		total := ""
		if mid != "" && totals[i] != 0 {
			total = fmt.Sprintf("%d", totals[i])
		}
		rows[i] = Row{Bag: b.Label, Zones: mid, Total: total}
	}
	return rows
}
