// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

const resourceBook = "Book"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Book, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2
	`,
		schema.CoreBook.ID, schema.CoreBook.Name, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
		schema.CoreBook.Table,
		schema.CoreBook.ID,
	)

	rows, err := postgres.Executor(context, repository.pool).Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceBook, "list_books")
	}
	defer rows.Close()

	books := []*Book{}
	var total int
	for rows.Next() {
		b := &Book{}
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, resourceBook, "scan_book")
		}
		books = append(books, b)
	}

	return books, total, dberr.Wrap(rows.Err(), resourceBook, "list_books")
}

func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CoreBook.ID, schema.CoreBook.Name, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
		schema.CoreBook.Table,
		schema.CoreBook.ID,
	)

	b := &Book{}
	err := postgres.Executor(context, repository.pool).QueryRow(context, query, id).
		Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, resourceBook, "find_book")
	}
	return b, nil
}

func (repository *PostgresRepository) Create(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1)
		RETURNING %s, %s, %s
	`,
		schema.CoreBook.Table, schema.CoreBook.Name,
		schema.CoreBook.ID, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
	)

	err := postgres.Executor(context, repository.pool).QueryRow(context, query, book.Name).
		Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	return dberr.Wrap(err, resourceBook, "insert_book")
}

func (repository *PostgresRepository) Rename(context context.Context, id int64, name string) (*Book, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = now()
		WHERE %s = $1
		RETURNING %s, %s, %s, %s
	`,
		schema.CoreBook.Table,
		schema.CoreBook.Name, schema.CoreBook.UpdatedAt,
		schema.CoreBook.ID,
		schema.CoreBook.ID, schema.CoreBook.Name, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
	)

	b := &Book{}
	err := postgres.Executor(context, repository.pool).QueryRow(context, query, id, name).
		Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, resourceBook, "rename_book")
	}
	return b, nil
}
