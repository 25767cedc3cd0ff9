package metrics

import (
	"sort"
	"strconv"
)

// BreakdownRow is one line of an error or status breakdown with its share of
// the chosen denominator.
type BreakdownRow struct {
	Key     string
	Count   int
	Percent float64
}

// FlattenErrorBreakdown converts an error breakdown into rows whose percentages
// are relative to failed. Rows are sorted by descending count, then by kind
// priority for stability.
func FlattenErrorBreakdown(breakdown map[ErrorKind]int, failed int) []BreakdownRow {
	if len(breakdown) == 0 {
		return nil
	}
	kinds := make([]ErrorKind, 0, len(breakdown))
	for kind := range breakdown {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ci, cj := breakdown[kinds[i]], breakdown[kinds[j]]
		if ci == cj {
			if kindRank(kinds[i]) == kindRank(kinds[j]) {
				return kinds[i] < kinds[j]
			}
			return kindRank(kinds[i]) < kindRank(kinds[j])
		}
		return ci > cj
	})
	rows := make([]BreakdownRow, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, BreakdownRow{
			Key:     string(kind),
			Count:   breakdown[kind],
			Percent: share(breakdown[kind], failed),
		})
	}
	return rows
}

// FlattenStatusBreakdown converts a status-code breakdown into rows whose
// percentages are relative to total. Rows are sorted by descending count, then
// by ascending code.
func FlattenStatusBreakdown(breakdown map[int]int, total int) []BreakdownRow {
	if len(breakdown) == 0 {
		return nil
	}
	codes := make([]int, 0, len(breakdown))
	for code := range breakdown {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		ci, cj := breakdown[codes[i]], breakdown[codes[j]]
		if ci == cj {
			return codes[i] < codes[j]
		}
		return ci > cj
	})
	rows := make([]BreakdownRow, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, BreakdownRow{
			Key:     strconv.Itoa(code),
			Count:   breakdown[code],
			Percent: share(breakdown[code], total),
		})
	}
	return rows
}

func share(count, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return float64(count) * 100 / float64(denominator)
}
