package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentRef identifies one studyable unit in its owning content domain.
type ContentRef struct {
	Type ContentType
	ID   uuid.UUID
}

func (r ContentRef) String() string {
	return string(r.Type) + ":" + r.ID.String()
}

// Validate reports field errors for an unusable reference.
func (r ContentRef) Validate() []FieldError {
	var errs []FieldError
	if !r.Type.IsValid() {
		errs = append(errs, FieldError{Field: "content_type", Message: "must be FLASHCARD, QUESTION or ERROR_NOTEBOOK"})
	}
	if r.ID == uuid.Nil {
		errs = append(errs, FieldError{Field: "content_id", Message: "required"})
	}
	return errs
}

// ContentItem is one position of an ordered content sequence.
type ContentItem struct {
	Position int
	Ref      ContentRef
	Title    string
	Body     string
}

// Batch is one page of a content sequence as returned by the content source.
type Batch struct {
	Items []ContentItem
	Total int
}

// SessionProgress is the resumable cursor of a study session.
type SessionProgress struct {
	SessionID    uuid.UUID
	UserID       uuid.UUID
	SequenceID   uuid.UUID
	CurrentIndex int
	Answered     []uuid.UUID
	UpdatedAt    time.Time
}

// HasAnswered reports whether contentID was already answered in the session.
func (p *SessionProgress) HasAnswered(contentID uuid.UUID) bool {
	for _, id := range p.Answered {
		if id == contentID {
			return true
		}
	}
	return false
}
