// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package section

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

const (
	resourceSection = "Section"
	resourceImage   = "Image"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SectionColumns lists the columns scanned by [ScanSection].
func SectionColumns() string {
	t := schema.CoreSection
	return strings.Join([]string{
		t.ID, t.ChapterID, t.Order, t.Prompt, t.Title, t.Summary,
		t.Original, t.Link3D, t.Feedback, t.Order3D, t.CreatedAt, t.UpdatedAt,
	}, ", ")
}

// ScanSection hydrates a section selected with [SectionColumns].
func ScanSection(row pgx.Row) (*Section, error) {
	s := &Section{Images: []*Image{}}
	err := row.Scan(
		&s.ID, &s.ChapterID, &s.Order, &s.Prompt, &s.Title, &s.Summary,
		&s.Original, &s.Link3D, &s.Feedback, &s.Order3D, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ImageColumns lists the columns scanned by [ScanImage].
func ImageColumns() string {
	t := schema.CoreImage
	return strings.Join([]string{t.ID, t.SectionID, t.Order, t.Content, t.ContentType, t.Description, t.CreatedAt}, ", ")
}

// ScanImage hydrates an image selected with [ImageColumns].
func ScanImage(row pgx.Row) (*Image, error) {
	i := &Image{}
	if err := row.Scan(&i.ID, &i.SectionID, &i.Order, &i.Content, &i.ContentType, &i.Description, &i.CreatedAt); err != nil {
		return nil, err
	}
	return i, nil
}

func (repository *PostgresRepository) ListByChapter(context context.Context, chapterID int64) ([]*Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		SectionColumns(), schema.CoreSection.Table, schema.CoreSection.ChapterID, schema.CoreSection.Order,
	)

	db := postgres.Executor(context, repository.pool)
	rows, err := db.Query(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, resourceSection, "list_sections")
	}
	defer rows.Close()

	sections := []*Section{}
	for rows.Next() {
		s, err := ScanSection(rows)
		if err != nil {
			return nil, dberr.Wrap(err, resourceSection, "scan_section")
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, resourceSection, "list_sections")
	}

	if err := repository.attachImages(context, sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		SectionColumns(), schema.CoreSection.Table, schema.CoreSection.ID,
	)

	s, err := ScanSection(postgres.Executor(context, repository.pool).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceSection, "find_section")
	}

	if err := repository.attachImages(context, []*Section{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (repository *PostgresRepository) Create(context context.Context, s *Section) error {
	t := schema.CoreSection
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s, %s
	`,
		t.Table,
		t.ChapterID, t.Order, t.Prompt, t.Title, t.Summary, t.Original, t.Link3D, t.Feedback, t.Order3D,
		t.ID, t.CreatedAt, t.UpdatedAt,
	)

	err := postgres.Executor(context, repository.pool).QueryRow(context, query,
		s.ChapterID, s.Order, s.Prompt, s.Title, s.Summary, s.Original, s.Link3D, s.Feedback, s.Order3D,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if dberr.IsForeignKeyViolation(err) {
		return apperr.NotFound("Chapter")
	}
	if err == nil && s.Images == nil {
		s.Images = []*Image{}
	}
	return dberr.Wrap(err, resourceSection, "insert_section")
}

func (repository *PostgresRepository) Update(context context.Context, s *Section) error {
	t := schema.CoreSection
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = now()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table,
		t.Order, t.Prompt, t.Title, t.Summary, t.Original, t.Link3D, t.Feedback, t.Order3D, t.UpdatedAt,
		t.ID,
		SectionColumns(),
	)

	updated, err := ScanSection(postgres.Executor(context, repository.pool).QueryRow(context, query,
		s.ID, s.Order, s.Prompt, s.Title, s.Summary, s.Original, s.Link3D, s.Feedback, s.Order3D,
	))
	if err != nil {
		return dberr.Wrap(err, resourceSection, "update_section")
	}

	*s = *updated
	return repository.attachImages(context, []*Section{s})
}

func (repository *PostgresRepository) AddImage(context context.Context, image *Image) error {
	t := schema.CoreImage
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES (
			$1,
			COALESCE(NULLIF($2, 0), (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1)),
			$3, $4, $5
		)
		RETURNING %s, %s, %s
	`,
		t.Table, t.SectionID, t.Order, t.Content, t.ContentType, t.Description,
		t.Order, t.Table, t.SectionID,
		t.ID, t.Order, t.CreatedAt,
	)

	err := postgres.Executor(context, repository.pool).QueryRow(context, query,
		image.SectionID, image.Order, image.Content, image.ContentType, image.Description,
	).Scan(&image.ID, &image.Order, &image.CreatedAt)

	if dberr.IsForeignKeyViolation(err) {
		return apperr.NotFound(resourceSection)
	}
	return dberr.Wrap(err, resourceImage, "insert_image")
}

func (repository *PostgresRepository) FindImage(context context.Context, id int64) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		ImageColumns(), schema.CoreImage.Table, schema.CoreImage.ID,
	)

	image, err := ScanImage(postgres.Executor(context, repository.pool).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourceImage, "find_image")
	}
	return image, nil
}

func (repository *PostgresRepository) UpdateImage(context context.Context, image *Image) error {
	t := schema.CoreImage
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
		WHERE %s = $1
	`,
		t.Table,
		t.SectionID, t.Order, t.Content, t.ContentType, t.Description,
		t.ID,
	)

	tag, err := postgres.Executor(context, repository.pool).Exec(context, query,
		image.ID, image.SectionID, image.Order, image.Content, image.ContentType, image.Description,
	)
	if dberr.IsForeignKeyViolation(err) {
		return apperr.NotFound(resourceSection)
	}
	if err != nil {
		return dberr.Wrap(err, resourceImage, "update_image")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceImage)
	}
	return nil
}

func (repository *PostgresRepository) DeleteImage(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreImage.Table, schema.CoreImage.ID)

	tag, err := postgres.Executor(context, repository.pool).Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, resourceImage, "delete_image")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceImage)
	}
	return nil
}

// attachImages loads the images of all given sections in one round-trip.
func (repository *PostgresRepository) attachImages(context context.Context, sections []*Section) error {
	if len(sections) == 0 {
		return nil
	}

	bySection := make(map[int64]*Section, len(sections))
	ids := make([]int64, 0, len(sections))
	for _, s := range sections {
		s.Images = []*Image{}
		bySection[s.ID] = s
		ids = append(ids, s.ID)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s, %s`,
		ImageColumns(), schema.CoreImage.Table, schema.CoreImage.SectionID,
		schema.CoreImage.SectionID, schema.CoreImage.Order,
	)

	rows, err := postgres.Executor(context, repository.pool).Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, resourceImage, "list_images")
	}
	defer rows.Close()

	for rows.Next() {
		image, err := ScanImage(rows)
		if err != nil {
			return dberr.Wrap(err, resourceImage, "scan_image")
		}
		if owner, ok := bySection[image.SectionID]; ok {
			owner.Images = append(owner.Images, image)
		}
	}

	return dberr.Wrap(rows.Err(), resourceImage, "list_images")
}
