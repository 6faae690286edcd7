package model

import (
	"time"

	"signdesk/internal/coords"
)

// SignatureStatus is the lifecycle state of a signature annotation.
type SignatureStatus string

const (
	StatusPending  SignatureStatus = "Pending"
	StatusSigned   SignatureStatus = "Signed"
	StatusRejected SignatureStatus = "Rejected"
)

// DefaultRejectionReason is stored when a signature is rejected without a reason.
const DefaultRejectionReason = "No reason provided"

// Valid reports whether s is a known status.
func (s SignatureStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSigned, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s SignatureStatus) Terminal() bool {
	return s == StatusSigned || s == StatusRejected
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Only Pending may move, and only to Signed or Rejected.
func (s SignatureStatus) CanTransitionTo(next SignatureStatus) bool {
	return s == StatusPending && next.Terminal()
}

// Signature is a single text annotation placed on a page of a document.
// The position is stored as fractions of the render size it was captured at.
type Signature struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id"`
	AuthorID        *string         `json:"author_id"`
	XFrac           float64         `json:"x_frac"`
	YFrac           float64         `json:"y_frac"`
	Page            int             `json:"page"`
	RenderWidth     float64         `json:"render_width"`
	RenderHeight    float64         `json:"render_height"`
	Status          SignatureStatus `json:"status"`
	RejectionReason string          `json:"rejection_reason"`
	Text            string          `json:"text"`
	FontSize        float64         `json:"font_size"`
	FontColor       string          `json:"font_color"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Placement returns the stored position for the coordinate mapper.
func (s *Signature) Placement() coords.Placement {
	return coords.Placement{
		X:            s.XFrac,
		Y:            s.YFrac,
		Page:         s.Page,
		RenderWidth:  s.RenderWidth,
		RenderHeight: s.RenderHeight,
		Fractional:   true,
	}
}
