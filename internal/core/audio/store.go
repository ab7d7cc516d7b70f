// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audio

import "context"

// Repository defines the data access contract for chapter audio.
type Repository interface {
	// ListByChapter returns audio metadata for a chapter; Content is not loaded.
	ListByChapter(context context.Context, chapterID int64) ([]*Audio, error)
	FindByID(context context.Context, id int64) (*Audio, error)
	Create(context context.Context, audio *Audio) error

	// Update overwrites chapter, content and content type. A missing chapter is NOT_FOUND.
	Update(context context.Context, audio *Audio) error
	Delete(context context.Context, id int64) error
}

// Checker validates audio uploads against the configured media policy.
type Checker interface {
	CheckAudio(field string, content []byte, declaredType string) error
}
