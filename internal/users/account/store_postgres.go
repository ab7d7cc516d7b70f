// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
	"github.com/taibuivan/folio/internal/platform/sec"
)

const resourceAccount = "Account"

// PostgresRepository implements [Repository] on users.account.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres account store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func selectColumns() string {
	return strings.Join(schema.UserAccount.Columns(), ", ")
}

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash,
		&account.Role, &account.LastLoginAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

/*
Create inserts the account.

Description: The role is decided inside the INSERT so two concurrent first
registrations cannot both become admin; the unique email index still wins.
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT $1, $2, $3, CASE WHEN EXISTS (SELECT 1 FROM %s) THEN $4 ELSE '%s' END
		RETURNING %s, %s, %s, %s
	`,
		t.Table, t.Name, t.Email, t.Password, t.Role,
		t.Table, sec.RoleAdmin,
		t.ID, t.Role, t.CreatedAt, t.UpdatedAt,
	)

	err := postgres.Executor(context, repository.pool).
		QueryRow(context, query, account.Name, account.Email, account.PasswordHash, sec.RoleMember).
		Scan(&account.ID, &account.Role, &account.CreatedAt, &account.UpdatedAt)

	return dberr.Wrap(err, resourceAccount, "insert_account")
}

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Account, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2
	`,
		selectColumns(), schema.UserAccount.Table, schema.UserAccount.ID,
	)

	rows, err := postgres.Executor(context, repository.pool).Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceAccount, "list_accounts")
	}
	defer rows.Close()

	accounts := []*Account{}
	var total int
	for rows.Next() {
		account := &Account{}
		err := rows.Scan(
			&account.ID, &account.Name, &account.Email, &account.PasswordHash,
			&account.Role, &account.LastLoginAt, &account.CreatedAt, &account.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, resourceAccount, "scan_account")
		}
		accounts = append(accounts, account)
	}

	return accounts, total, dberr.Wrap(rows.Err(), resourceAccount, "list_accounts")
}

func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns(), schema.UserAccount.Table, schema.UserAccount.ID,
	)

	account, err := scanAccount(postgres.Executor(context, repository.pool).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount, "find_account")
	}
	return account, nil
}

func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1)`,
		selectColumns(), schema.UserAccount.Table, schema.UserAccount.Email,
	)

	account, err := scanAccount(postgres.Executor(context, repository.pool).QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount, "find_account_by_email")
	}
	return account, nil
}

func (repository *PostgresRepository) TouchLogin(context context.Context, id int64) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`UPDATE %s SET %s = now() WHERE %s = $1`, t.Table, t.LastLoginAt, t.ID)

	_, err := postgres.Executor(context, repository.pool).Exec(context, query, id)
	return dberr.Wrap(err, resourceAccount, "touch_login")
}

func (repository *PostgresRepository) UpdateRole(context context.Context, id int64, role sec.UserRole) (*Account, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now()
		WHERE %s = $1
		RETURNING %s
	`, t.Table, t.Role, t.UpdatedAt, t.ID, selectColumns())

	account, err := scanAccount(postgres.Executor(context, repository.pool).QueryRow(context, query, id, role))
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount, "update_role")
	}
	return account, nil
}
