// Package model defines domain entities for the application.
package model

import (
	"strings"
)

// AccessAuth is the scope tag carried by session tokens.
const AccessAuth = "auth"

// Token is one active login session of a user.
type Token struct {
	Access string `json:"access"`
	Token  string `json:"token"`
}

// User is an account owning todos and session tokens.
// Password holds the bcrypt hash once the user has been prepared for a write.
type User struct {
	ID       string  `json:"_id"`
	Email    string  `json:"email"`
	Password string  `json:"-"`
	Tokens   []Token `json:"-"`

	// persistedPassword is the password value last written to or read from the store.
	persistedPassword string
}

// NewUser builds an unsaved user from signup credentials.
func NewUser(c Credentials) *User {
	return &User{
		Email:    c.Email,
		Password: c.Password,
		Tokens:   []Token{},
	}
}

// PasswordModified reports whether Password differs from the stored value.
func (u *User) PasswordModified() bool {
	return u.Password != u.persistedPassword
}

// MarkPersisted records the current password as the stored one.
// Stores call it after every successful read or write of the user.
func (u *User) MarkPersisted() {
	u.persistedPassword = u.Password
}

// HasToken checks whether the user holds the given token with the given access.
func (u *User) HasToken(token, access string) bool {
	for _, t := range u.Tokens {
		if t.Token == token && t.Access == access {
			return true
		}
	}
	return false
}

// PublicUser is the only projection of a user sent to clients.
type PublicUser struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// Public returns the client-facing projection.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// Credentials is the email/password pair accepted by signup and login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Normalize trims the email address.
func (c *Credentials) Normalize() {
	c.Email = strings.TrimSpace(c.Email)
}

// Validate checks signup rules: a well-formed email and a password of at least 6 characters.
func (c Credentials) Validate() error {
	return validateStruct(c)
}

// Session is the identity resolved from a request token.
type Session struct {
	User  *User
	Token string
}

// CachedSession is the part of a session kept in the session cache.
type CachedSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
