package org

import "time"

// Organization groups educators and their learners under shared settings.
type Organization struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	LogoURL   string            `json:"logoUrl,omitempty"`
	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Member ties one user to one organization with a role inside it.
type Member struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	UserID         string    `json:"userId"`
	Role           string    `json:"role"`
	AddedAt        time.Time `json:"addedAt"`
}
