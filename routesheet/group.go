package routesheet

import (
	"regexp"
	"strings"
)

var (
	headerSTGRe = regexp.MustCompile(`(?i)\bSTG\.[A-Z]\.\d+\b`)
	headerCXRe  = regexp.MustCompile(`(?i)\b(?:CX|TX)\d+\b`)
	bagsCountRe = regexp.MustCompile(`(?i)\b(\d+)\s+bags\b`)
)

func isHeaderPage(t string) bool {
	return headerSTGRe.MatchString(t) && headerCXRe.MatchString(t)
}

func isTableishPage(t string) bool {
	return strings.Contains(t, "Sort Zone Bag") ||
		strings.Contains(t, "Sort Zone Pkgs") ||
		bagsCountRe.MatchString(t)
}

// GroupPages splits a document's page texts into routes. A route starts
// at a header page (staging code + vehicle) and absorbs following pages
// while they continue the sort table or are blank.
func GroupPages(pageTexts []string) [][]int {
	var groups [][]int
	i, n := 0, len(pageTexts)
	for i < n {
		if !isHeaderPage(pageTexts[i]) {
			i++
			continue
		}
		g := []int{i}
		i++
		for i < n && !isHeaderPage(pageTexts[i]) &&
			(isTableishPage(pageTexts[i]) || strings.TrimSpace(pageTexts[i]) == "") {
			g = append(g, i)
			i++
		}
		groups = append(groups, g)
	}
	return groups
}
