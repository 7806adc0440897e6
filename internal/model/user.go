package model

import "time"

// User mirrors an account at the external identity provider.
// ID is the provider's identifier, not a locally generated one; records are
// created by the identity webhook or by first-sign-in sync.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecentDoc is one entry of a user's recently-viewed list.
type RecentDoc struct {
	DocumentID string    `json:"document_id"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// RecentDocsLimit caps the recently-viewed list per user.
const RecentDocsLimit = 10
