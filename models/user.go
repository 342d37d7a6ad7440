package models

import (
	"net/mail"
	"strings"
	"time"
)

// User is an application usuario. The password hash never leaves the server.
type User struct {
	ID           int64      `json:"id_usuario"`
	Name         string     `json:"nombre"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	GitHub       bool       `json:"es_github"`
	ResetCode    *string    `json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

func validPassword(pw string) string {
	if len(pw) < 8 {
		return "password must be at least 8 characters"
	}
	if len(pw) > MaxPasswordBytes {
		return "password must be at most 72 bytes"
	}
	return ""
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"nombre"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterInput) Validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" {
		return "nombre is required"
	}
	if len(r.Username) < 3 || len(r.Username) > 30 {
		return "username must be 3-30 characters"
	}
	// Login tells usernames and emails apart by the @.
	if strings.Contains(r.Username, "@") {
		return "username must not contain @"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return "email is invalid"
	}
	return validPassword(r.Password)
}

// LoginInput accepts a username or an email as identifier.
type LoginInput struct {
	Identifier string `json:"usuario"`
	Password   string `json:"password"`
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

func (p *ProfileInput) Validate() string {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" {
		return "nombre is required"
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return "email is invalid"
	}
	return ""
}

// ResetRequest asks for a password reset code.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetInput completes a password reset.
type ResetInput struct {
	Email    string `json:"email"`
	Code     string `json:"codigo"`
	Password string `json:"password"`
}

func (r *ResetInput) Validate() string {
	r.Email = strings.TrimSpace(r.Email)
	r.Code = strings.TrimSpace(r.Code)
	if r.Email == "" {
		return "email is required"
	}
	if r.Code == "" {
		return "codigo is required"
	}
	return validPassword(r.Password)
}
