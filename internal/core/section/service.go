// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package section

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/platform/validate"
)

const (
	FieldChapterID   = "chapter_id"
	FieldSectionID   = "section_id"
	FieldOrder       = "order"
	FieldTitle       = "title"
	FieldLink3D      = "link3d"
	FieldOrder3D     = "order3d"
	FieldContent     = "content"
	FieldContentType = "content_type"

	maxTitleLength = 300
)

// # Service Layer

// Service manages single sections and images. Removing a section together
// with its images is a cascade and belongs to the hierarchy engine.
type Service struct {
	repo   Repository
	images ImageChecker
	logger *slog.Logger
}

// NewService constructs a section [Service].
func NewService(repo Repository, images ImageChecker, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

func (service *Service) ListSections(context context.Context, chapterID int64) ([]*Section, error) {
	return service.repo.ListByChapter(context, chapterID)
}

func (service *Service) GetSection(context context.Context, id int64) (*Section, error) {
	return service.repo.FindByID(context, id)
}

/*
CreateSection validates and inserts a section into a chapter.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND (chapter) or CONFLICT (order already used)
*/
func (service *Service) CreateSection(context context.Context, section *Section) error {
	validator := &validate.Validator{}
	validator.Positive(FieldChapterID, section.ChapterID)
	ValidateFields(validator, section)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.Create(context, section); err != nil {
		return err
	}

	service.logger.Info("section_created",
		slog.Int64("section_id", section.ID),
		slog.Int64("chapter_id", section.ChapterID),
	)
	return nil
}

// UpdateSection overwrites the editable fields of an existing section.
func (service *Service) UpdateSection(context context.Context, section *Section) error {
	validator := &validate.Validator{}
	ValidateFields(validator, section)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.Update(context, section); err != nil {
		return err
	}

	service.logger.Info("section_updated", slog.Int64("section_id", section.ID))
	return nil
}

// ValidateFields applies the rules shared by section creation, update and drafts.
func ValidateFields(validator *validate.Validator, section *Section) {
	validator.Custom(FieldOrder, section.Order <= 0, "Must be a positive integer")
	validator.MaxLen(FieldTitle, section.Title, maxTitleLength)
	if section.Link3D != nil {
		validator.URL(FieldLink3D, *section.Link3D)
	}
	if section.Order3D != nil {
		validator.Custom(FieldOrder3D, *section.Order3D < 0, "Cannot be negative")
	}
}

// # Images

// AddImage validates the upload against the media policy and attaches it to a section.
func (service *Service) AddImage(context context.Context, image *Image) error {
	validator := &validate.Validator{}
	validator.
		Positive(FieldSectionID, image.SectionID).
		Custom(FieldOrder, image.Order < 0, "Cannot be negative").
		Required(FieldContentType, image.ContentType)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.images.CheckImage(FieldContent, image.Content, image.ContentType); err != nil {
		return err
	}

	if err := service.repo.AddImage(context, image); err != nil {
		return err
	}

	service.logger.Info("image_added",
		slog.Int64("image_id", image.ID),
		slog.Int64("section_id", image.SectionID),
		slog.Int("bytes", len(image.Content)),
	)
	return nil
}

// ListImages returns the images of a section ordered by Order.
func (service *Service) ListImages(context context.Context, sectionID int64) ([]*Image, error) {
	section, err := service.repo.FindByID(context, sectionID)
	if err != nil {
		return nil, err
	}
	return section.Images, nil
}

func (service *Service) GetImage(context context.Context, id int64) (*Image, error) {
	return service.repo.FindImage(context, id)
}

/*
UpdateImage applies patch to an existing image.

New content or a new declared type is checked against the media policy
together with whatever is kept from the stored image.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND (image or target section) or CONFLICT (order taken)
*/
func (service *Service) UpdateImage(context context.Context, id int64, patch ImagePatch) (*Image, error) {
	validator := &validate.Validator{}
	if patch.SectionID != nil {
		validator.Positive(FieldSectionID, *patch.SectionID)
	}
	if patch.Order != nil {
		validator.Custom(FieldOrder, *patch.Order <= 0, "Must be a positive integer")
	}
	if patch.ContentType != nil {
		validator.Required(FieldContentType, *patch.ContentType)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	stored, err := service.repo.FindImage(context, id)
	if err != nil {
		return nil, err
	}

	image := *stored
	if patch.SectionID != nil {
		image.SectionID = *patch.SectionID
	}
	if patch.Order != nil {
		image.Order = *patch.Order
	}
	if patch.ContentType != nil {
		image.ContentType = *patch.ContentType
	}
	if len(patch.Content) > 0 {
		image.Content = patch.Content
	}
	if patch.Description != nil {
		image.Description = patch.Description
		if *patch.Description == "" {
			image.Description = nil
		}
	}

	if len(patch.Content) > 0 || patch.ContentType != nil {
		if err := service.images.CheckImage(FieldContent, image.Content, image.ContentType); err != nil {
			return nil, err
		}
	}

	if err := service.repo.UpdateImage(context, &image); err != nil {
		return nil, err
	}

	service.logger.Info("image_updated",
		slog.Int64("image_id", image.ID),
		slog.Int64("section_id", image.SectionID),
		slog.Bool("content_replaced", len(patch.Content) > 0),
	)
	return &image, nil
}

// DeleteImage removes a single image. Images are leaves, so nothing cascades.
func (service *Service) DeleteImage(context context.Context, id int64) error {
	if err := service.repo.DeleteImage(context, id); err != nil {
		return err
	}

	service.logger.Info("image_deleted", slog.Int64("image_id", id))
	return nil
}
