// Package srs holds the grading policy and schedule calculator of the review
// engine. Everything here is pure: no I/O, no clocks, no randomness.
//
// Memory model formulas follow FSRS-5; intervals are whole days.
package srs

import (
	"fmt"
	"math"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

// MinStability is the floor for stability values.
const MinStability = 0.1

// DefaultWeights are the FSRS-5 model weights (w[0]..w[18]).
var DefaultWeights = [19]float64{
	0.4072,  // w0  - initial stability for Again
	1.1829,  // w1  - initial stability for Hard
	3.1262,  // w2  - initial stability for Good
	15.4722, // w3  - initial stability for Easy
	7.2102,  // w4  - initial difficulty mean reversion
	0.5316,  // w5  - initial difficulty slope
	1.0651,  // w6  - difficulty update: D - w6*(G-3)
	0.0046,  // w7  - difficulty mean reversion weight
	1.5418,  // w8  - recall stability: exp(w8)
	0.1594,  // w9  - recall stability: S^(-w9)
	1.01,    // w10 - recall stability: exp(w10*(1-R)) - 1
	2.1791,  // w11 - forget stability: multiplier
	0.0292,  // w12 - forget stability: D^(-w12)
	0.2788,  // w13 - forget stability: (S+1)^w13 - 1
	0.2229,  // w14 - forget stability: exp(w14*(1-R))
	0.2604,  // w15 - recall stability: hard penalty
	3.3928,  // w16 - recall stability: easy bonus
	0.2223,  // w17 - forget stability cap
	0.6744,  // w18 - forget stability cap
}

// rating converts a grade to the 1-based rating the formulas are written in.
func rating(g domain.ReviewGrade) float64 {
	return float64(g) + 1
}

// Retrievability is the probability of recall after elapsedDays.
//
//	R(t, S) = (1 + t/(9*S))^(-1)
func Retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+math.Max(0, elapsedDays)/(9*stability), -1)
}

// IntervalForRetention converts stability and a retention target into days.
//
//	I(S, r) = round(9 * S * (1/r - 1)), at least 1
func IntervalForRetention(stability, retention float64) int {
	if retention <= 0 || retention >= 1 {
		return 1
	}
	interval := 9 * stability * (1/retention - 1)
	return max(1, int(math.Round(interval)))
}

// InitialStability returns the seed stability for a first review.
//
//	S0(G) = w[G-1]
func InitialStability(w [19]float64, g domain.ReviewGrade) float64 {
	if !g.IsValid() {
		g = domain.ReviewGradeGood
	}
	return math.Max(MinStability, w[g])
}

// InitialDifficulty returns the seed difficulty for a first review.
//
//	D0(G) = w4 - exp(w5 * (G - 1)) + 1, clamped to [1, 10]
func InitialDifficulty(w [19]float64, g domain.ReviewGrade) float64 {
	return clampDifficulty(w[4] - math.Exp(w[5]*(rating(g)-1)) + 1)
}

// NextDifficulty moves difficulty by the grade with mean reversion toward D0(Easy).
// EASY lowers difficulty, which is how an item's ease grows.
//
//	D'(D, G) = w7 * D0(4) + (1 - w7) * (D - w6 * (G - 3))
func NextDifficulty(w [19]float64, d float64, g domain.ReviewGrade) float64 {
	d0Easy := InitialDifficulty(w, domain.ReviewGradeEasy)
	return clampDifficulty(w[7]*d0Easy + (1-w[7])*(d-w[6]*(rating(g)-3)))
}

// StabilityAfterRecall is the stability after a HARD, GOOD or EASY grade.
//
//	S'r = S * (e^w8 * (11-D) * S^(-w9) * (e^(w10*(1-R)) - 1) * hardPenalty * easyBonus + 1)
func StabilityAfterRecall(w [19]float64, s, d, r float64, g domain.ReviewGrade) float64 {
	hardPenalty := 1.0
	if g == domain.ReviewGradeHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if g == domain.ReviewGradeEasy {
		easyBonus = w[16]
	}

	newS := s * (math.Exp(w[8])*
		(11-d)*
		math.Pow(s, -w[9])*
		(math.Exp(w[10]*(1-r))-1)*
		hardPenalty*
		easyBonus + 1)

	return math.Max(MinStability, newS)
}

// StabilityAfterLapse is the stability after AGAIN, capped so a lapse never
// leaves the item more stable than before.
//
//	S'f = min(S / e^(w17*w18), w11 * D^(-w12) * ((S+1)^w13 - 1) * e^(w14*(1-R)))
func StabilityAfterLapse(w [19]float64, s, d, r float64) float64 {
	forget := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(s+1, w[13]) - 1) *
		math.Exp(w[14]*(1-r))
	ceiling := s / math.Exp(w[17]*w[18])
	return math.Max(MinStability, math.Min(ceiling, forget))
}

// ValidateWeights checks that all weights are finite and the seed stabilities positive.
func ValidateWeights(w [19]float64) error {
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight w[%d] is invalid: %v", i, v)
		}
	}
	if w[0] <= 0 || w[1] <= 0 || w[2] <= 0 || w[3] <= 0 {
		return fmt.Errorf("initial stability weights w[0]-w[3] must be positive")
	}
	return nil
}

func clampDifficulty(d float64) float64 {
	return math.Max(1, math.Min(10, d))
}
