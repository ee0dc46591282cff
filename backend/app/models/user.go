package models

import "time"

type User struct {
	ID           string `gorm:"primaryKey;size:191"`
	Username     string `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:32;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Workspace groups a user's structures. Every user has one default
// workspace; restores always land in it.
type Workspace struct {
	ID        string `gorm:"primaryKey;size:191"`
	Name      string `gorm:"size:191"`
	OwnerID   string `gorm:"size:191;index"`
	IsDefault bool   `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
