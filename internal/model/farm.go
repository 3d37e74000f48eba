package model

import "time"

// Farm is a registered flower producer.
type Farm struct {
	ID           string    `json:"id"`
	LegalName    string    `json:"legal_name"`
	Tag          string    `json:"tag"`
	TaxID        string    `json:"tax_id"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FarmPatch holds the optional fields of a partial farm update.
type FarmPatch struct {
	LegalName    *string `json:"legal_name,omitempty"`
	Tag          *string `json:"tag,omitempty"`
	TaxID        *string `json:"tax_id,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// Apply copies the set fields of p onto f.
func (p FarmPatch) Apply(f *Farm) {
	if p.LegalName != nil {
		f.LegalName = *p.LegalName
	}
	if p.Tag != nil {
		f.Tag = *p.Tag
	}
	if p.TaxID != nil {
		f.TaxID = *p.TaxID
	}
	if p.ContactName != nil {
		f.ContactName = *p.ContactName
	}
	if p.ContactEmail != nil {
		f.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		f.ContactPhone = *p.ContactPhone
	}
}
