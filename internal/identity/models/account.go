package models

import (
	"strings"
	"time"

	dErrors "civicdesk/pkg/domain-errors"
)

// Account is a staff identity allowed to sign in.
type Account struct {
	ID           string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CredentialsRequest is the body of both signup and signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize lowercases and trims the email. Passwords are left untouched.
func (r *CredentialsRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *CredentialsRequest) Validate() error {
	if r == nil || r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Email and password are required")
	}
	return nil
}

type SignupResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
}

type SigninResponse struct {
	Message     string `json:"message"`
	CustomToken string `json:"customToken"`
}
