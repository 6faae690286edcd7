package model

import "time"

// AuditRecord is an append-only trail entry for a document.
type AuditRecord struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"document_id"`
	Action       string    `json:"action"`
	Actor        string    `json:"actor"`
	ActorContact string    `json:"actor_contact"`
	SourceIP     string    `json:"source_ip"`
	CreatedAt    time.Time `json:"created_at"`
}

// Audit action labels.
const (
	ActionPublicSigned   = "Public Document Signed"
	ActionFinalGenerated = "Final PDF Generated"
	ActionLinkIssued     = "Signing Link Issued"
)

// Actor identifies who triggers an operation. ID is empty for public signers.
type Actor struct {
	ID       string
	Name     string
	Email    string
	SourceIP string
}

// Label returns the display name for audit records.
func (a Actor) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return "Unknown"
}

// Contact returns the contact for audit records.
func (a Actor) Contact() string {
	if a.Email != "" {
		return a.Email
	}
	return "-"
}
