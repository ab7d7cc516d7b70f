// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter Data Access

// Repository defines the data access contract for chapters.
type Repository interface {

	/*
		ListByBook returns the chapters of a book ordered by id.

		Parameters:
		  - bookID: int64 (Owner ID)
		  - includeDrafts: bool (false returns canonical chapters only)
	*/
	ListByBook(context context.Context, bookID int64, includeDrafts bool) ([]*Chapter, error)

	/*
		FindByID returns the chapter with the given ID.

		Returns:
		  - error: NOT_FOUND if missing
	*/
	FindByID(context context.Context, id int64) (*Chapter, error)

	/*
		Create persists a new canonical chapter and fills its ID and timestamps.

		Returns:
		  - error: NOT_FOUND when the book or author does not exist
	*/
	Create(context context.Context, chapter *Chapter) error

	// Rename changes the chapter name.
	Rename(context context.Context, id int64, name string) (*Chapter, error)

	/*
		FindDraft returns the draft a user keeps for an original chapter.

		Returns:
		  - error: NOT_FOUND when the user has no draft of that chapter
	*/
	FindDraft(context context.Context, originalChapterID, userID int64) (*Chapter, error)

	// ListDraftsByUser returns every draft owned by a user.
	ListDraftsByUser(context context.Context, userID int64) ([]*Chapter, error)
}
