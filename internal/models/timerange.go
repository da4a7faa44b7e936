package models

import "time"

// ValidRange reports whether [start, end) is a well-formed, non-empty window.
// Strict: a zero-length window is invalid. Timestamps are compared as absolute
// instants; no timezone normalization happens here.
func ValidRange(start, end time.Time) bool {
	return !start.IsZero() && !end.IsZero() && start.Before(end)
}

// Overlaps is the half-open interval test: [aStart, aEnd) and [bStart, bEnd)
// intersect iff aStart < bEnd && bStart < aEnd. A rental ending at 10:00 and
// another starting at 10:00 do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
