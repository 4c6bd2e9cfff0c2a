package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Auto-adjust thresholds in days until the exam.
const (
	crammingMaxDaysUntilExam  = 15
	intensiveMaxDaysUntilExam = 30
	balancedMaxDaysUntilExam  = 90
)

// StudyModeConfig holds per-user scheduling preferences.
type StudyModeConfig struct {
	UserID     uuid.UUID
	Mode       StudyMode
	ExamDate   *time.Time
	AutoAdjust bool
	// MaxIntervalOverride replaces the mode's maximum when set.
	MaxIntervalOverride *int
	// QUESTION review cannot be disabled.
	EnableFlashcards    bool
	EnableErrorNotebook bool
	UpdatedAt           time.Time
}

// DefaultStudyModeConfig returns the configuration used before a user saves preferences.
func DefaultStudyModeConfig(userID uuid.UUID, mode StudyMode) StudyModeConfig {
	if !mode.IsValid() {
		mode = StudyModeBalanced
	}
	return StudyModeConfig{
		UserID:              userID,
		Mode:                mode,
		EnableFlashcards:    true,
		EnableErrorNotebook: true,
	}
}

// EffectiveMode resolves the mode in force at now. With auto-adjust on and an
// upcoming exam the mode follows the time left; otherwise it is the chosen mode.
func (c StudyModeConfig) EffectiveMode(now time.Time) StudyMode {
	if !c.AutoAdjust || c.ExamDate == nil {
		if c.Mode.IsValid() {
			return c.Mode
		}
		return StudyModeBalanced
	}

	days := DaysUntil(now, *c.ExamDate)
	switch {
	case days <= crammingMaxDaysUntilExam:
		return StudyModeCramming
	case days <= intensiveMaxDaysUntilExam:
		return StudyModeIntensive
	case days <= balancedMaxDaysUntilExam:
		return StudyModeBalanced
	default:
		return StudyModeRelaxed
	}
}

// MaxIntervalDays returns the interval ceiling in force at now.
func (c StudyModeConfig) MaxIntervalDays(now time.Time) int {
	if c.MaxIntervalOverride != nil && *c.MaxIntervalOverride >= 1 {
		return *c.MaxIntervalOverride
	}
	return c.EffectiveMode(now).MaxIntervalDays()
}

// TargetRetention returns the retention target in force at now.
func (c StudyModeConfig) TargetRetention(now time.Time) float64 {
	return c.EffectiveMode(now).TargetRetention()
}

// IsTypeEnabled reports whether items of type t take part in review.
func (c StudyModeConfig) IsTypeEnabled(t ContentType) bool {
	switch t {
	case ContentTypeQuestion:
		return true
	case ContentTypeFlashcard:
		return c.EnableFlashcards
	case ContentTypeErrorNotebook:
		return c.EnableErrorNotebook
	}
	return false
}

// EnabledTypes returns the enabled content types in ContentTypes order.
func (c StudyModeConfig) EnabledTypes() []ContentType {
	var out []ContentType
	for _, t := range ContentTypes() {
		if c.IsTypeEnabled(t) {
			out = append(out, t)
		}
	}
	return out
}

// DaysUntil returns the number of days from now to date, rounded up.
// Past dates yield zero or a negative count.
func DaysUntil(now, date time.Time) int {
	return int(math.Ceil(date.Sub(now).Hours() / 24))
}
