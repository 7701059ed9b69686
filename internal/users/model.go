package users

import "time"

// User is a registered account. Skills come from the most recent resume upload
// and seed question generation for every interview session.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Skills       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResultRecord is one answered interview question persisted to the user's history.
type ResultRecord struct {
	ID             int64
	UserID         string
	Question       string
	Answer         string
	QuestionNumber int
	Result         []byte
	CreatedAt      time.Time
}
