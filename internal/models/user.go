package models

// User is an account that may sign in to manage links.
// The password is stored only as a salted bcrypt digest; the plaintext is
// never persisted or logged.
type User struct {
	Username     string `gorm:"primaryKey;size:64"`
	PasswordHash string `gorm:"not null"`
}
