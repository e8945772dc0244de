// Package model contains domain entities shared across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Contact statuses.
const (
	StatusActive   = "active"
	StatusInvited  = "invited"
	StatusArchived = "archived"
)

// Company groups contacts.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contact is a person in the directory. Email and Phone are empty when unknown.
type Contact struct {
	ID        uuid.UUID     `json:"id"`
	CompanyID uuid.NullUUID `json:"company_id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Status    string        `json:"status"`
	// Company is only populated when the caller asked to include it.
	Company   *Company  `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
