// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides chapter retrieval and canonical chapter management.

Drafts are also rows of core.chapter; this package reads them, but creating,
replacing and publishing drafts is the job of the hierarchy engine, which does
it inside a single transaction.
*/
package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

const resourceChapter = "Chapter"

// chapterRepository implements [Repository] using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &chapterRepository{pool: pool}
}

// SelectColumns returns the qualified column list scanned by [ScanChapter].
func SelectColumns(alias string) string {
	columns := []string{
		schema.CoreChapter.ID,
		schema.CoreChapter.Name,
		schema.CoreChapter.BookID,
		schema.CoreChapter.AuthorUserID,
		schema.CoreChapter.OriginalChapterID,
		schema.CoreChapter.CreatedAt,
		schema.CoreChapter.UpdatedAt,
	}
	if alias != "" {
		for i, column := range columns {
			columns[i] = alias + "." + column
		}
	}
	return strings.Join(columns, ", ")
}

// ScanChapter hydrates a chapter from a row selected with [SelectColumns].
func ScanChapter(row pgx.Row) (*Chapter, error) {
	chapter := &Chapter{}
	err := row.Scan(
		&chapter.ID,
		&chapter.Name,
		&chapter.BookID,
		&chapter.AuthorUserID,
		&chapter.OriginalChapterID,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

func (repository *chapterRepository) ListByBook(context context.Context, bookID int64, includeDrafts bool) ([]*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		SelectColumns(""), schema.CoreChapter.Table, schema.CoreChapter.BookID,
	)
	if !includeDrafts {
		query += fmt.Sprintf(" AND %s IS NULL", schema.CoreChapter.OriginalChapterID)
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", schema.CoreChapter.ID)

	return repository.queryChapters(context, query, "list_chapters_by_book", bookID)
}

func (repository *chapterRepository) FindByID(context context.Context, id int64) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		SelectColumns(""), schema.CoreChapter.Table, schema.CoreChapter.ID,
	)

	chapter, err := ScanChapter(postgres.Executor(context, repository.pool).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceChapter, "find_chapter")
	}
	return chapter, nil
}

/*
Create inserts a canonical chapter.

Description: Foreign-key failures are reported as NOT_FOUND on the referenced
row so callers see "Book not found" instead of a generic conflict.
*/
func (repository *chapterRepository) Create(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.Name, schema.CoreChapter.BookID, schema.CoreChapter.AuthorUserID, schema.CoreChapter.OriginalChapterID,
		schema.CoreChapter.ID, schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
	)

	err := postgres.Executor(context, repository.pool).
		QueryRow(context, query, chapter.Name, chapter.BookID, chapter.AuthorUserID, chapter.OriginalChapterID).
		Scan(&chapter.ID, &chapter.CreatedAt, &chapter.UpdatedAt)

	if dberr.IsForeignKeyViolation(err) {
		return missingReference(err)
	}
	return dberr.Wrap(err, resourceChapter, "insert_chapter")
}

func (repository *chapterRepository) Rename(context context.Context, id int64, name string) (*Chapter, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.Name, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID,
		SelectColumns(""),
	)

	chapter, err := ScanChapter(postgres.Executor(context, repository.pool).QueryRow(context, query, id, name))
	if err != nil {
		return nil, dberr.Wrap(err, resourceChapter, "rename_chapter")
	}
	return chapter, nil
}

func (repository *chapterRepository) FindDraft(context context.Context, originalChapterID, userID int64) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		SelectColumns(""), schema.CoreChapter.Table,
		schema.CoreChapter.OriginalChapterID, schema.CoreChapter.AuthorUserID,
	)

	chapter, err := ScanChapter(postgres.Executor(context, repository.pool).QueryRow(context, query, originalChapterID, userID))
	if err != nil {
		return nil, dberr.Wrap(err, "Draft", "find_draft")
	}
	return chapter, nil
}

func (repository *chapterRepository) ListDraftsByUser(context context.Context, userID int64) ([]*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s IS NOT NULL
		ORDER BY %s ASC
	`,
		SelectColumns(""), schema.CoreChapter.Table,
		schema.CoreChapter.AuthorUserID, schema.CoreChapter.OriginalChapterID,
		schema.CoreChapter.ID,
	)

	return repository.queryChapters(context, query, "list_drafts_by_user", userID)
}

func (repository *chapterRepository) queryChapters(context context.Context, query, action string, args ...any) ([]*Chapter, error) {
	rows, err := postgres.Executor(context, repository.pool).Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, resourceChapter, action)
	}
	defer rows.Close()

	chapters := []*Chapter{}
	for rows.Next() {
		chapter, err := ScanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resourceChapter, "scan_chapter")
		}
		chapters = append(chapters, chapter)
	}

	return chapters, dberr.Wrap(rows.Err(), resourceChapter, action)
}

func missingReference(err error) error {
	switch dberr.ConstraintName(err) {
	case "chapter_authoruserid_fkey":
		return apperr.NotFound("User")
	case "chapter_originalchapterid_fkey":
		return apperr.NotFound(resourceChapter)
	default:
		return apperr.NotFound("Book")
	}
}
