package models

import "time"

// User represents a row in the accounts table.
type User struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	CreatedOn time.Time `json:"createdOn"`
}

// PublicUser is the subset of User returned alongside a token.
type PublicUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{FullName: u.FullName, Email: u.Email}
}

// CreateAccountRequest is the JSON body for POST /create-account.
type CreateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}
