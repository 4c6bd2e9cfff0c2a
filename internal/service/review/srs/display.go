package srs

import (
	"strconv"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// DisplayRange is the day range shown to a user before grading.
// It is presentation only and never persisted.
type DisplayRange struct {
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`
}

// RangeFor widens days by the grade's display spread:
// AGAIN is exact, HARD spans one extra day, GOOD and EASY two.
func RangeFor(grade domain.ReviewGrade, days int) DisplayRange {
	switch grade {
	case domain.ReviewGradeHard:
		return DisplayRange{MinDays: days, MaxDays: days + 1}
	case domain.ReviewGradeGood, domain.ReviewGradeEasy:
		return DisplayRange{MinDays: days, MaxDays: days + 2}
	default:
		return DisplayRange{MinDays: days, MaxDays: days}
	}
}

func (r DisplayRange) String() string {
	if r.MinDays == r.MaxDays {
		if r.MinDays == 1 {
			return "1 day"
		}
		return strconv.Itoa(r.MinDays) + " days"
	}
	return strconv.Itoa(r.MinDays) + "-" + strconv.Itoa(r.MaxDays) + " days"
}
