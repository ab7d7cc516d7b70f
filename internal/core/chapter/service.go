// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/pkg/normalize"
)

const (
	FieldName     = "name"
	FieldBookID   = "book_id"
	FieldAuthorID = "author_user_id"

	maxNameLength = 200
)

// # Service Layer

// Service orchestrates the business logic for chapters.
type Service struct {
	chapterRepo Repository
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(chapterRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		logger:      logger,
	}
}

// # Chapter Operations

// ListChapters returns the chapters of a book, optionally including drafts.
func (service *Service) ListChapters(context context.Context, bookID int64, includeDrafts bool) ([]*Chapter, error) {
	return service.chapterRepo.ListByBook(context, bookID, includeDrafts)
}

// GetChapter retrieves a single chapter by its ID.
func (service *Service) GetChapter(context context.Context, id int64) (*Chapter, error) {
	return service.chapterRepo.FindByID(context, id)
}

/*
CreateChapter creates a canonical chapter in a book.

Parameters:
  - bookID: int64 (Owner book)
  - authorUserID: int64 (Creating user)
  - name: string

Returns:
  - *Chapter: The persisted chapter
  - error: VALIDATION_ERROR, or NOT_FOUND when the book or user is missing
*/
func (service *Service) CreateChapter(context context.Context, bookID, authorUserID int64, name string) (*Chapter, error) {
	name = normalize.Name(name)

	validator := &validate.Validator{}
	validator.
		Positive(FieldBookID, bookID).
		Positive(FieldAuthorID, authorUserID).
		Required(FieldName, name).
		MaxLen(FieldName, name, maxNameLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter := &Chapter{Name: name, BookID: bookID, AuthorUserID: authorUserID}
	if err := service.chapterRepo.Create(context, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_created",
		slog.Int64("chapter_id", chapter.ID),
		slog.Int64("book_id", bookID),
	)

	return chapter, nil
}

// RenameChapter changes the name of a canonical chapter or draft.
func (service *Service) RenameChapter(context context.Context, id int64, name string) (*Chapter, error) {
	name = normalize.Name(name)

	validator := &validate.Validator{}
	if err := validator.Required(FieldName, name).MaxLen(FieldName, name, maxNameLength).Err(); err != nil {
		return nil, err
	}

	chapter, err := service.chapterRepo.Rename(context, id, name)
	if err != nil {
		return nil, err
	}

	service.logger.Info("chapter_renamed", slog.Int64("chapter_id", id))
	return chapter, nil
}

// # Drafts

// FindUserDraft returns the user's draft of an original chapter.
func (service *Service) FindUserDraft(context context.Context, originalChapterID, userID int64) (*Chapter, error) {
	return service.chapterRepo.FindDraft(context, originalChapterID, userID)
}

// ListUserDrafts returns all drafts owned by a user.
func (service *Service) ListUserDrafts(context context.Context, userID int64) ([]*Chapter, error) {
	return service.chapterRepo.ListDraftsByUser(context, userID)
}
