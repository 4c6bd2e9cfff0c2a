package review

import (
	"time"

	"github.com/heartmarshall/reviewengine/internal/domain"
)

const maxDueLimit = 500

// RecordReviewInput holds the parameters for grading one item.
type RecordReviewInput struct {
	Ref   domain.ContentRef
	Grade domain.ReviewGrade
}

// Validate rejects an out-of-range grade first, then checks the reference.
func (i *RecordReviewInput) Validate() error {
	if !i.Grade.IsValid() {
		return domain.InvalidGradeError(i.Grade)
	}
	if errs := i.Ref.Validate(); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// RetireItemInput holds the parameters for removing an item from review.
type RetireItemInput struct {
	Ref domain.ContentRef
}

// Validate checks all fields and collects all errors.
func (i *RetireItemInput) Validate() error {
	if errs := i.Ref.Validate(); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GetDueItemsInput holds the parameters for listing due items.
type GetDueItemsInput struct {
	// Type restricts the listing to one content type; empty means every enabled type.
	Type domain.ContentType
	// AsOf defaults to now.
	AsOf  time.Time
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *GetDueItemsInput) Validate() error {
	var errs []domain.FieldError

	if i.Type != "" && !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "must be FLASHCARD, QUESTION or ERROR_NOTEBOOK"})
	}
	if i.Limit < 0 || i.Limit > maxDueLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 500"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// DueListInput holds the parameters for the prioritized and balanced listings.
type DueListInput struct {
	AsOf  time.Time
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *DueListInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 1 || i.Limit > maxDueLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 1 and 500"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AnalyzePerformanceInput holds the parameters for performance analysis.
type AnalyzePerformanceInput struct {
	Ref domain.ContentRef
}

// Validate checks all fields and collects all errors.
func (i *AnalyzePerformanceInput) Validate() error {
	if errs := i.Ref.Validate(); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
