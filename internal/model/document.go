package model

import "time"

// FileRef points at an uploaded artifact held by the file store.
// The workflow keeps only the reference, never the content.
type FileRef struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

// Document represents one submitted artifact for a farm and its review state.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID             string     `json:"id"`
	FarmID         string     `json:"farm_id"`
	DocumentTypeID int        `json:"document_type_id"`
	File           *FileRef   `json:"file,omitempty"`
	Status         Status     `json:"status"`
	// Note is the submitter's remark; Comment is the reviewer's.
	Note           string     `json:"note,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	ReviewerID     string     `json:"reviewer_id,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	// Seq is the store-assigned insertion order, used to break SubmittedAt ties.
	Seq int64 `json:"-"`
}

// NewerThan reports whether d was submitted after other, falling back to
// insertion order when both carry the same timestamp.
func (d Document) NewerThan(other Document) bool {
	if !d.SubmittedAt.Equal(other.SubmittedAt) {
		return d.SubmittedAt.After(other.SubmittedAt)
	}
	if d.Seq != other.Seq {
		return d.Seq > other.Seq
	}
	return d.ID > other.ID
}

// Decision is an administrator's verdict on a pending document.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Valid reports whether d is one of the known decisions.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Target returns the status a document moves to under this decision.
func (d Decision) Target() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}
