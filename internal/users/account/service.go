// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/pkg/normalize"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID int64, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements registration, login and role management.
type Service struct {
	repo     Repository
	tokens   TokenProvider
	tokenTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs an account [Service].
func NewService(repo Repository, tokens TokenProvider, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, tokenTTL: tokenTTL, logger: logger, now: time.Now}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register validates, hashes and persists a new account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: the created account (admin when it is the first one)
  - error: VALIDATION_ERROR or CONFLICT (email already registered)
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {
	name := normalize.Name(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	validator := &validate.Validator{}
	validator.
		Required(FieldName, name).
		MaxLen(FieldName, name, maxNameLength).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, minPasswordLength).
		Custom(FieldPassword, len(input.Password) > sec.MaxPasswordBytes, fmt.Sprintf("Must be at most %d bytes", sec.MaxPasswordBytes))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	account := &Account{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleMember,
	}
	if err := service.repo.Create(context, account); err != nil {
		return nil, err
	}

	service.logger.Info("account_registered",
		slog.Int64("user_id", account.ID),
		slog.String("role", string(account.Role)),
	)
	return account, nil
}

// # Authentication Flow

/*
Login verifies credentials and issues an access token.

The same UNAUTHORIZED error is returned for an unknown email and for a wrong
password.
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	account, err := service.repo.FindByEmail(context, strings.TrimSpace(email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			sec.RejectUnknownAccount(password)
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	token, err := service.tokens.GenerateAccessToken(account.ID, account.Email, string(account.Role), service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("account_service_token_generation_failed: %w", err)
	}

	// Best effort; a failed audit write must not block the login
	if err := service.repo.TouchLogin(context, account.ID); err != nil {
		service.logger.Warn("account_touch_login_failed", slog.Int64("user_id", account.ID), slog.Any("error", err))
	}

	service.logger.Info("account_logged_in", slog.Int64("user_id", account.ID))
	return &Session{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   service.now().Add(service.tokenTTL),
		Account:     account,
	}, nil
}

// # Account Management

// ListAccounts returns one page of accounts. PasswordHash is never serialized.
func (service *Service) ListAccounts(context context.Context, limit, offset int) ([]*Account, int, error) {
	return service.repo.List(context, limit, offset)
}

func (service *Service) GetAccount(context context.Context, id int64) (*Account, error) {
	return service.repo.FindByID(context, id)
}

// ChangeRole sets the role of an account. Callers must already be admins.
func (service *Service) ChangeRole(context context.Context, id int64, role string) (*Account, error) {
	userRole := sec.UserRole(strings.ToLower(strings.TrimSpace(role)))

	validator := &validate.Validator{}
	validator.
		Positive("id", id).
		Custom(FieldRole, !userRole.Valid(), "Must be one of admin, editor, member")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.repo.UpdateRole(context, id, userRole)
	if err != nil {
		return nil, err
	}

	service.logger.Info("account_role_changed",
		slog.Int64("user_id", id),
		slog.String("role", string(userRole)),
	)
	return account, nil
}
