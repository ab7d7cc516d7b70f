// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages user accounts and issues access tokens.

Accounts own drafts (chapter.AuthorUserID) and carry the role checked by
[middleware.RequireRole]. The very first account registered on an empty
database becomes the administrator; everyone after that starts as a member.
*/
package account

import (
	"time"

	"github.com/taibuivan/folio/internal/platform/sec"
)

// # Domain Entities

// Account is a registered user.
type Account struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Account     *Account  `json:"account"`
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)

const (
	minPasswordLength = 8
	maxNameLength     = 120
	tokenTypeBearer   = "Bearer"
)
