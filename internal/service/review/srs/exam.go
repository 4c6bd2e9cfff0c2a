package srs

import (
	"math"
	"time"
)

// CompressForExam shortens interval so that the next review lands no later
// than examDate, never below one day. A nil or already passed exam date
// leaves the interval unchanged. Only newly computed intervals are affected;
// reviews scheduled before the exam date was set keep their due dates.
func CompressForExam(interval int, examDate *time.Time, now time.Time) int {
	if examDate == nil || examDate.Before(now) {
		return interval
	}
	limit := int(math.Floor(examDate.Sub(now).Hours() / 24))
	if limit < 1 {
		limit = 1
	}
	if interval > limit {
		return limit
	}
	return interval
}
