package models

import "time"

// User is a principal that can own, receive or act on objects.
// Accounts are provisioned by the external identity service.
type User struct {
	ID        string
	UserName  string
	Email     string
	CreatedAt time.Time
}
