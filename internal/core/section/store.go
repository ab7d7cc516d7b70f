// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package section

import "context"

// Repository defines the data access contract for sections and their images.
type Repository interface {
	// ListByChapter returns the sections of a chapter ordered by Order, images included.
	ListByChapter(context context.Context, chapterID int64) ([]*Section, error)

	// FindByID returns a section with its images.
	FindByID(context context.Context, id int64) (*Section, error)

	// Create inserts a section. A duplicated order within the chapter is a CONFLICT.
	Create(context context.Context, section *Section) error

	// Update overwrites the editable fields of a section.
	Update(context context.Context, section *Section) error

	// AddImage inserts an image; Order 0 appends after the current last image.
	AddImage(context context.Context, image *Image) error

	// FindImage returns a single image with its content.
	FindImage(context context.Context, id int64) (*Image, error)

	// UpdateImage overwrites an image. A missing section is NOT_FOUND; an order
	// already used in the section is a CONFLICT.
	UpdateImage(context context.Context, image *Image) error

	// DeleteImage removes a single image.
	DeleteImage(context context.Context, id int64) error
}

// ImageChecker validates image uploads against the configured media policy.
type ImageChecker interface {
	CheckImage(field string, content []byte, declaredType string) error
}
