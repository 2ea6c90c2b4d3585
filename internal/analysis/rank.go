package analysis

import "sort"

// RankByDepth sorts summaries descending by Depth, keeping body order on ties.
func RankByDepth(summaries []TransitSummary) []TransitSummary {
	out := append([]TransitSummary(nil), summaries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth > out[j].Depth
	})
	return out
}

// Named attaches display names to summaries by body index.
func Named(summaries []TransitSummary, names []string) []TransitSummary {
	for i := range summaries {
		if b := summaries[i].Body; b < len(names) {
			summaries[i].Name = names[b]
		}
	}
	return summaries
}
