package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// DefaultSeedIntervals are the first-review interval floors per grade, indexed by grade.
var DefaultSeedIntervals = [4]int{1, 2, 3, 5}

// hardGrowth caps the HARD interval at this multiple of the previous interval.
const hardGrowth = 1.5

// Parameters configures the grading policy.
type Parameters struct {
	W             [19]float64
	SeedIntervals [4]int
}

// DefaultParameters returns the FSRS-5 default weights and the stock seed intervals.
func DefaultParameters() Parameters {
	return Parameters{
		W:             DefaultWeights,
		SeedIntervals: DefaultSeedIntervals,
	}
}

// Validate checks weights and seed intervals.
func (p Parameters) Validate() error {
	if err := ValidateWeights(p.W); err != nil {
		return err
	}
	for i, s := range p.SeedIntervals {
		if s < 1 {
			return fmt.Errorf("seed interval for %s must be >= 1, got %d", domain.ReviewGrade(i), s)
		}
	}
	return nil
}

// Delta is the scheduling outcome of one grade applied to one state.
type Delta struct {
	NewStability    float64
	NewDifficulty   float64
	RawIntervalDays int
}

// Policy maps a grade and the current state to scheduling deltas.
// It is the single place where grade semantics live.
type Policy struct {
	params Parameters
}

// NewPolicy validates params and returns a Policy.
func NewPolicy(params Parameters) (*Policy, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("srs policy: %w", err)
	}
	return &Policy{params: params}, nil
}

// MustPolicy is NewPolicy that panics on invalid parameters.
func MustPolicy(params Parameters) *Policy {
	p, err := NewPolicy(params)
	if err != nil {
		panic(err)
	}
	return p
}

// Delta computes the new stability, difficulty and interval for grade.
// current is nil for a first review. The interval is clamped to
// [1, cfg.MaxIntervalDays(now)] and compressed toward the exam date.
func (p *Policy) Delta(grade domain.ReviewGrade, current *domain.ReviewState, cfg domain.StudyModeConfig, now time.Time) Delta {
	// Grades are validated at the service boundary; anything else is treated as GOOD.
	if !grade.IsValid() {
		grade = domain.ReviewGradeGood
	}
	maxDays := cfg.MaxIntervalDays(now)
	retention := cfg.TargetRetention(now)

	var d Delta
	if current == nil {
		d = p.first(grade, retention, maxDays)
	} else {
		d = p.next(grade, current, retention, maxDays, now)
	}

	d.RawIntervalDays = CompressForExam(d.RawIntervalDays, cfg.ExamDate, now)
	return d
}

// first seeds stability and difficulty from the grade alone.
func (p *Policy) first(grade domain.ReviewGrade, retention float64, maxDays int) Delta {
	s := InitialStability(p.params.W, grade)
	d := InitialDifficulty(p.params.W, grade)

	interval := p.params.SeedIntervals[grade]
	if grade != domain.ReviewGradeAgain {
		interval = max(interval, IntervalForRetention(s, retention))
	}

	return Delta{
		NewStability:    s,
		NewDifficulty:   d,
		RawIntervalDays: clampInterval(interval, maxDays),
	}
}

// next applies grade to an existing state. All three recall outcomes are
// computed together so that HARD <= GOOD < EASY holds below the ceiling.
func (p *Policy) next(grade domain.ReviewGrade, cur *domain.ReviewState, retention float64, maxDays int, now time.Time) Delta {
	w := p.params.W
	prev := max(1, cur.ScheduledIntervalDays)
	stability := math.Max(MinStability, cur.Stability)
	preD := cur.Difficulty
	if preD < 1 {
		preD = InitialDifficulty(w, domain.ReviewGradeGood)
	}

	elapsed := 0.0
	if !cur.LastReviewedAt.IsZero() {
		elapsed = math.Max(0, now.Sub(cur.LastReviewedAt).Hours()/24)
	}

	newD := NextDifficulty(w, preD, grade)

	if grade == domain.ReviewGradeAgain {
		r := Retrievability(elapsed, stability)
		return Delta{
			NewStability:    StabilityAfterLapse(w, stability, preD, r),
			NewDifficulty:   newD,
			RawIntervalDays: 1,
		}
	}

	// Early reviews are not penalized: recall is evaluated at no less than
	// the interval that was scheduled.
	r := Retrievability(math.Max(elapsed, float64(prev)), stability)

	hardS := StabilityAfterRecall(w, stability, preD, r, domain.ReviewGradeHard)
	goodS := StabilityAfterRecall(w, stability, preD, r, domain.ReviewGradeGood)
	easyS := StabilityAfterRecall(w, stability, preD, r, domain.ReviewGradeEasy)

	hardIvl := IntervalForRetention(hardS, retention)
	hardIvl = min(max(hardIvl, prev+1), max(prev+1, int(math.Ceil(float64(prev)*hardGrowth))))
	goodIvl := max(IntervalForRetention(goodS, retention), hardIvl+1)
	easyIvl := max(IntervalForRetention(easyS, retention), goodIvl+1)

	switch grade {
	case domain.ReviewGradeHard:
		return Delta{NewStability: hardS, NewDifficulty: newD, RawIntervalDays: clampInterval(hardIvl, maxDays)}
	case domain.ReviewGradeEasy:
		return Delta{NewStability: easyS, NewDifficulty: newD, RawIntervalDays: clampInterval(easyIvl, maxDays)}
	default:
		return Delta{NewStability: goodS, NewDifficulty: newD, RawIntervalDays: clampInterval(goodIvl, maxDays)}
	}
}

// clampInterval constrains an interval to [1, maxDays].
func clampInterval(interval, maxDays int) int {
	if maxDays < 1 {
		maxDays = 1
	}
	if interval < 1 {
		return 1
	}
	if interval > maxDays {
		return maxDays
	}
	return interval
}
