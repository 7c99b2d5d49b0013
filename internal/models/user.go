// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered Mingle account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// Identity is the authenticated {userId, name} pair supplied by the auth
// layer. Posts and comments snapshot it at creation time; later profile
// changes never rewrite history.
type Identity struct {
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
}

// Identity returns the user's identity snapshot.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Name: u.Name}
}
