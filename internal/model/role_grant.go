package model

import "time"

// Role identifies what a grant entitles a user to act as.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleFinca   Role = "FINCA"
	RoleCliente Role = "CLIENTE"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFinca, RoleCliente:
		return true
	}
	return false
}

// GrantMetadata carries the role-specific data of a grant.
// FarmID is required for FINCA grants and ignored otherwise.
type GrantMetadata struct {
	FarmID          string `json:"farm_id,omitempty"`
	ClientID        string `json:"client_id,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// RoleGrant is a request/decision record binding a user to a role.
type RoleGrant struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Role      Role          `json:"role"`
	Status    Status        `json:"status"`
	Metadata  GrantMetadata `json:"metadata"`
	DecidedBy string        `json:"decided_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// GrantDecision is the write applied when a pending grant is resolved.
type GrantDecision struct {
	Status    Status
	DecidedBy string
	Reason    string
	At        time.Time
}
