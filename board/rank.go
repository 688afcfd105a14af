package board

import (
	"sort"

	solari "github.com/skypies/solari1090"
)

// Arrivals: nearest first, lowest first among equals (closest to touching down).
type arrivalOrder []solari.Row

func (a arrivalOrder) Len() int      { return len(a) }
func (a arrivalOrder) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a arrivalOrder) Less(i, j int) bool {
	if a[i].DistKM != a[j].DistKM {
		return a[i].DistKM < a[j].DistKM
	}
	return a[i].AltitudeFt < a[j].AltitudeFt
}

// Departures: nearest first, highest first among equals.
type departureOrder []solari.Row

func (a departureOrder) Len() int      { return len(a) }
func (a departureOrder) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a departureOrder) Less(i, j int) bool {
	if a[i].DistKM != a[j].DistKM {
		return a[i].DistKM < a[j].DistKM
	}
	return a[i].AltitudeFt > a[j].AltitudeFt
}

// Rank sorts the rows in place. Rows are compared on their rounded distance, so two
// aircraft a few metres apart tie and fall through to altitude; full ties keep feed order.
func Rank(rows []solari.Row, b Bucket) {
	if b == ArrivalsBucket {
		sort.Stable(arrivalOrder(rows))
	} else {
		sort.Stable(departureOrder(rows))
	}
}

// Truncate returns at most n rows; n <= 0 means none.
func Truncate(rows []solari.Row, n int) []solari.Row {
	if n <= 0 {
		return []solari.Row{}
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
