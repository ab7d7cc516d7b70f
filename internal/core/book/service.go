// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/pkg/normalize"
)

const (
	FieldName     = "name"
	maxNameLength = 200
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListBooks(context context.Context, limit, offset int) ([]*Book, int, error) {
	return service.repo.List(context, limit, offset)
}

func (service *Service) GetBook(context context.Context, id int64) (*Book, error) {
	return service.repo.FindByID(context, id)
}

// CreateBook validates and persists a new book.
func (service *Service) CreateBook(context context.Context, name string) (*Book, error) {
	name = normalize.Name(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	book := &Book{Name: name}
	if err := service.repo.Create(context, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_created", slog.Int64("book_id", book.ID))
	return book, nil
}

// RenameBook changes the display name of a book.
func (service *Service) RenameBook(context context.Context, id int64, name string) (*Book, error) {
	name = normalize.Name(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	book, err := service.repo.Rename(context, id, name)
	if err != nil {
		return nil, err
	}

	service.logger.Info("book_renamed", slog.Int64("book_id", id))
	return book, nil
}

func validateName(name string) error {
	validator := &validate.Validator{}
	return validator.Required(FieldName, name).MaxLen(FieldName, name, maxNameLength).Err()
}
