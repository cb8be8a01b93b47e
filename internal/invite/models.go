package invite

import "time"

// Invitation status.
const (
	StatusCreated  = "created"
	StatusRedacted = "redacted"
)

// Invitation records a provisioned account hand-off. TempPassword survives
// only until the first successful credential change or an explicit cleanup.
type Invitation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	OrganizationID  string    `json:"organizationId"`
	Role            string    `json:"role"`
	EmailIssuedTo   string    `json:"emailIssuedTo"`
	CreatedAt       time.Time `json:"createdAt"`
	Delivery        string    `json:"delivery"`
	Status          string    `json:"status"`
	HasTempPassword bool      `json:"hasTempPassword"`
	TempPassword    string    `json:"tempPassword,omitempty"`
}

// Entry is one person to provision.
type Entry struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Issued reports the outcome for one entry.
type Issued struct {
	InvitationID string `json:"invitationId"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	TempPassword string `json:"tempPassword,omitempty"`
	ExistingUser bool   `json:"existingUser"`
}
