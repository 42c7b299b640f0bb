// Package domain contains the core entities of the NicheHunt catalog.
package domain

import "time"

// Record holds the identity and timestamps shared by all stored entities.
// Embed it in entity structs; call InitTimestamps on create and Touch on update.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets CreatedAt and UpdatedAt to now if unset.
func (r *Record) InitTimestamps() {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
}

// Touch updates the UpdatedAt timestamp.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}
