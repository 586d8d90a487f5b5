package model

import "time"

// MaxUsers is the ceiling on registered users.
const MaxUsers = 20

// User represents a registered user of the assistant.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupLock is the single row locked by user creation in SQL stores, so the
// user limit check and the insert cannot interleave.
type SignupLock struct {
	ID uint `gorm:"primaryKey"`
}

// SignupLockID is the primary key of the one SignupLock row.
const SignupLockID = 1
