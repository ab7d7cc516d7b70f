// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audio

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

const resourceAudio = "Audio"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) ListByChapter(context context.Context, chapterID int64) ([]*Audio, error) {
	t := schema.CoreAudio
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		t.ID, t.ChapterID, t.ContentType, t.CreatedAt, t.Table, t.ChapterID, t.ID,
	)

	rows, err := postgres.Executor(context, repository.pool).Query(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, resourceAudio, "list_audio")
	}
	defer rows.Close()

	audios := []*Audio{}
	for rows.Next() {
		a := &Audio{}
		if err := rows.Scan(&a.ID, &a.ChapterID, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, resourceAudio, "scan_audio")
		}
		audios = append(audios, a)
	}

	return audios, dberr.Wrap(rows.Err(), resourceAudio, "list_audio")
}

func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Audio, error) {
	t := schema.CoreAudio
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		t.ID, t.ChapterID, t.Content, t.ContentType, t.CreatedAt, t.Table, t.ID,
	)

	a := &Audio{}
	err := postgres.Executor(context, repository.pool).QueryRow(context, query, id).
		Scan(&a.ID, &a.ChapterID, &a.Content, &a.ContentType, &a.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, resourceAudio, "find_audio")
	}
	return a, nil
}

func (repository *PostgresRepository) Create(context context.Context, a *Audio) error {
	t := schema.CoreAudio
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s
	`,
		t.Table, t.ChapterID, t.Content, t.ContentType,
		t.ID, t.CreatedAt,
	)

	err := postgres.Executor(context, repository.pool).QueryRow(context, query, a.ChapterID, a.Content, a.ContentType).
		Scan(&a.ID, &a.CreatedAt)

	if dberr.IsForeignKeyViolation(err) {
		return apperr.NotFound("Chapter")
	}
	return dberr.Wrap(err, resourceAudio, "insert_audio")
}

func (repository *PostgresRepository) Update(context context.Context, a *Audio) error {
	t := schema.CoreAudio
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		t.Table, t.ChapterID, t.Content, t.ContentType, t.ID,
	)

	tag, err := postgres.Executor(context, repository.pool).Exec(context, query, a.ID, a.ChapterID, a.Content, a.ContentType)
	if dberr.IsForeignKeyViolation(err) {
		return apperr.NotFound("Chapter")
	}
	if err != nil {
		return dberr.Wrap(err, resourceAudio, "update_audio")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAudio)
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreAudio.Table, schema.CoreAudio.ID)

	tag, err := postgres.Executor(context, repository.pool).Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, resourceAudio, "delete_audio")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAudio)
	}
	return nil
}
