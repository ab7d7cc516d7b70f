// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/core/section"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

/*
PostgresStore implements [Store] on top of pgx.

All statements run on the transaction carried by the context (see
[postgres.Executor]); the engine always calls it from inside ExecTx.
Delete statements report plain errors so the engine turns them into
TRANSACTION_FAILED.
*/
type PostgresStore struct {
	pool     *pgxpool.Pool
	sections *section.PostgresRepository
}

// NewPostgresStore creates a [PostgresStore].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, sections: section.NewPostgresRepository(pool)}
}

func (store *PostgresStore) db(ctx context.Context) postgres.DBTX {
	return postgres.Executor(ctx, store.pool)
}

// # Locks

func (store *PostgresStore) LockBook(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreBook.ID, schema.CoreBook.Table, schema.CoreBook.ID,
	)

	var locked int64
	err := store.db(ctx).QueryRow(ctx, query, id).Scan(&locked)
	return dberr.Wrap(err, "Book", "lock_book")
}

// LockChapters locks the given chapters in ascending id order and returns the ones that exist.
func (store *PostgresStore) LockChapters(ctx context.Context, ids []int64) ([]*chapter.Chapter, error) {
	if len(ids) == 0 {
		return []*chapter.Chapter{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s ASC FOR UPDATE`,
		chapter.SelectColumns(""), schema.CoreChapter.Table, schema.CoreChapter.ID, schema.CoreChapter.ID,
	)

	rows, err := store.db(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", "lock_chapters")
	}
	defer rows.Close()

	chapters := []*chapter.Chapter{}
	for rows.Next() {
		row, err := chapter.ScanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Chapter", "scan_chapter")
		}
		chapters = append(chapters, row)
	}
	return chapters, dberr.Wrap(rows.Err(), "Chapter", "lock_chapters")
}

func (store *PostgresStore) LockSection(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreSection.ID, schema.CoreSection.Table, schema.CoreSection.ID,
	)

	var locked int64
	err := store.db(ctx).QueryRow(ctx, query, id).Scan(&locked)
	return dberr.Wrap(err, "Section", "lock_section")
}

func (store *PostgresStore) UserExists(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserAccount.Table, schema.UserAccount.ID,
	)

	var exists bool
	if err := store.db(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "User", "user_exists")
	}
	return exists, nil
}

// # Resolution

func (store *PostgresStore) ListCanonicalChapterIDs(ctx context.Context, bookID int64) ([]int64, error) {
	t := schema.CoreChapter
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL ORDER BY %s ASC FOR UPDATE`,
		t.ID, t.Table, t.BookID, t.OriginalChapterID, t.ID,
	)
	return store.queryIDs(ctx, query, "list_canonical_chapters", bookID)
}

func (store *PostgresStore) ListDraftIDs(ctx context.Context, originalChapterID int64) ([]int64, error) {
	t := schema.CoreChapter
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC FOR UPDATE`,
		t.ID, t.Table, t.OriginalChapterID, t.ID,
	)
	return store.queryIDs(ctx, query, "list_drafts", originalChapterID)
}

func (store *PostgresStore) FindDraft(ctx context.Context, originalChapterID, userID int64) (*chapter.Chapter, bool, error) {
	t := schema.CoreChapter
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
		chapter.SelectColumns(""), t.Table, t.OriginalChapterID, t.AuthorUserID,
	)

	draft, err := chapter.ScanChapter(store.db(ctx).QueryRow(ctx, query, originalChapterID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dberr.Wrap(err, "Draft", "find_draft")
	}
	return draft, true, nil
}

func (store *PostgresStore) ListSectionIDs(ctx context.Context, chapterIDs []int64) ([]int64, error) {
	t := schema.CoreSection
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s ASC FOR UPDATE`,
		t.ID, t.Table, t.ChapterID, t.ID,
	)
	return store.queryIDsFor(ctx, query, "list_sections", chapterIDs)
}

func (store *PostgresStore) ListImageIDs(ctx context.Context, sectionIDs []int64) ([]int64, error) {
	t := schema.CoreImage
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s ASC FOR UPDATE`,
		t.ID, t.Table, t.SectionID, t.ID,
	)
	return store.queryIDsFor(ctx, query, "list_images", sectionIDs)
}

func (store *PostgresStore) ListAudioIDs(ctx context.Context, chapterIDs []int64) ([]int64, error) {
	t := schema.CoreAudio
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s ASC FOR UPDATE`,
		t.ID, t.Table, t.ChapterID, t.ID,
	)
	return store.queryIDsFor(ctx, query, "list_audios", chapterIDs)
}

// # Deletion

func (store *PostgresStore) DeleteImages(ctx context.Context, ids []int64) (int64, error) {
	return store.deleteByIDs(ctx, schema.CoreImage.Table, schema.CoreImage.ID, ids)
}

func (store *PostgresStore) DeleteSections(ctx context.Context, ids []int64) (int64, error) {
	return store.deleteByIDs(ctx, schema.CoreSection.Table, schema.CoreSection.ID, ids)
}

func (store *PostgresStore) DeleteAudios(ctx context.Context, ids []int64) (int64, error) {
	return store.deleteByIDs(ctx, schema.CoreAudio.Table, schema.CoreAudio.ID, ids)
}

func (store *PostgresStore) DeleteChapters(ctx context.Context, ids []int64) (int64, error) {
	return store.deleteByIDs(ctx, schema.CoreChapter.Table, schema.CoreChapter.ID, ids)
}

func (store *PostgresStore) DeleteBook(ctx context.Context, id int64) error {
	removed, err := store.deleteByIDs(ctx, schema.CoreBook.Table, schema.CoreBook.ID, []int64{id})
	if err != nil {
		return err
	}
	if removed != 1 {
		return fmt.Errorf("postgres: delete book %d: removed %d rows", id, removed)
	}
	return nil
}

// # Writes

// InsertChapter inserts a draft chapter. A second draft for the same pair violates
// the partial unique index and surfaces as CONFLICT.
func (store *PostgresStore) InsertChapter(ctx context.Context, draft *chapter.Chapter) error {
	t := schema.CoreChapter
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s
	`,
		t.Table, t.Name, t.BookID, t.AuthorUserID, t.OriginalChapterID,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err := store.db(ctx).
		QueryRow(ctx, query, draft.Name, draft.BookID, draft.AuthorUserID, draft.OriginalChapterID).
		Scan(&draft.ID, &draft.CreatedAt, &draft.UpdatedAt)

	if dberr.IsUniqueViolation(err) && dberr.ConstraintName(err) == t.DraftUniqueIndex {
		return apperr.Conflict("Draft already exists").WithCause(err)
	}
	return dberr.Wrap(err, "Draft", "insert_draft")
}

func (store *PostgresStore) RenameChapter(ctx context.Context, id int64, name string) error {
	t := schema.CoreChapter
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`, t.Table, t.Name, t.UpdatedAt, t.ID)

	tag, err := store.db(ctx).Exec(ctx, query, id, name)
	if err != nil {
		return dberr.Wrap(err, "Chapter", "rename_chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}

func (store *PostgresStore) InsertSection(ctx context.Context, row *section.Section) error {
	return store.sections.Create(ctx, row)
}

func (store *PostgresStore) InsertImage(ctx context.Context, image *section.Image) error {
	return store.sections.AddImage(ctx, image)
}

func (store *PostgresStore) ReparentSections(ctx context.Context, fromChapterID, toChapterID int64) (int64, error) {
	t := schema.CoreSection
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`, t.Table, t.ChapterID, t.UpdatedAt, t.ChapterID)

	tag, err := store.db(ctx).Exec(ctx, query, fromChapterID, toChapterID)
	if err != nil {
		return 0, fmt.Errorf("postgres: reparent sections %d -> %d: %w", fromChapterID, toChapterID, err)
	}
	return tag.RowsAffected(), nil
}

// # Helpers

func (store *PostgresStore) queryIDsFor(ctx context.Context, query, action string, parents []int64) ([]int64, error) {
	if len(parents) == 0 {
		return []int64{}, nil
	}
	return store.queryIDs(ctx, query, action, parents)
}

func (store *PostgresStore) queryIDs(ctx context.Context, query, action string, args ...any) ([]int64, error) {
	rows, err := store.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", action)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", action)
	}
	return ids, nil
}

func (store *PostgresStore) deleteByIDs(ctx context.Context, table, idColumn string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`, table, idColumn)
	tag, err := store.db(ctx).Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}
