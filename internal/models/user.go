// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserID identifies a user. Distinct from PostID so owner checks can't
// silently compare ids across entities.
type UserID string

// RevokedToken is one entry in a user's logged-out token record. A session
// token found in this list is no longer accepted.
type RevokedToken struct {
	ID       string    `json:"id"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// User represents a registered account in the Murmur application.
//
// An account can carry two independent password slots: Password for local
// signups and GooglePassword for Google-originated ones, selected at
// login time by the caller's declared provider.
type User struct {
	ID                UserID `gorm:"primaryKey;size:36" json:"id"`
	Name              string `gorm:"not null" json:"name"`
	Email             string `gorm:"uniqueIndex;not null" json:"email"`
	Password          string `gorm:"not null" json:"-"`
	GooglePassword    string `json:"-"`
	IsGoogle          bool   `json:"is_google"`
	HasGooglePassword bool   `json:"has_google_password"`
	PictureURL        string `json:"picture_url"`

	// RevokedTokens is the denylist of logged-out session tokens, pruned
	// to entries younger than seven days on each logout.
	RevokedTokens datatypes.JSONSlice[RevokedToken] `json:"-"`

	// Likes is the total number of distinct likes across the user's posts,
	// recomputed at read time. It is never persisted as source of truth.
	Likes int `gorm:"-" json:"likes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTokenRevoked reports whether the given session token appears in the
// user's logged-out token record.
func (u *User) IsTokenRevoked(token string) bool {
	for _, rt := range u.RevokedTokens {
		if rt.Token == token {
			return true
		}
	}
	return false
}
