// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a single identity that may carry up to three credentials: a local
// username/password pair, a Google account, and a Facebook account. Credential
// fields are pointers so absent credentials stay absent in Mongo and the
// sparse unique indexes on them only apply when the field is set.
//
// Secret holds the user's one shared secret; resubmission overwrites it.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     *string            `bson:"username,omitempty" json:"username,omitempty"`
	PasswordHash *string            `bson:"password_hash,omitempty" json:"-"`
	GoogleID     *string            `bson:"google_id,omitempty" json:"google_id,omitempty"`
	FacebookID   *string            `bson:"facebook_id,omitempty" json:"facebook_id,omitempty"`
	Secret       *string            `bson:"secret,omitempty" json:"secret,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasSecret reports whether the user has a non-empty secret to display.
func (u *User) HasSecret() bool {
	return u.Secret != nil && *u.Secret != ""
}

// DisplayName returns something printable for pages and logs: the username
// when the user registered locally, otherwise a provider tag.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if u.GoogleID != nil {
		return "google user"
	}
	if u.FacebookID != nil {
		return "facebook user"
	}
	return "anonymous"
}
