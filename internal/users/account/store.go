// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"

	"github.com/taibuivan/folio/internal/platform/sec"
)

// Repository defines the data access contract for accounts.
type Repository interface {
	// Create inserts an account. The first account ever created is promoted to admin;
	// Role is filled in from the stored row. A taken email is a CONFLICT.
	Create(context context.Context, account *Account) error

	// List returns one page of accounts ordered by id plus the total count.
	List(context context.Context, limit, offset int) ([]*Account, int, error)

	FindByID(context context.Context, id int64) (*Account, error)

	// FindByEmail matches case-insensitively.
	FindByEmail(context context.Context, email string) (*Account, error)

	// TouchLogin records a successful login.
	TouchLogin(context context.Context, id int64) error

	UpdateRole(context context.Context, id int64, role sec.UserRole) (*Account, error)
}
