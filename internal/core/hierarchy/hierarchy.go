// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package hierarchy owns every operation that touches more than one level of
the Book → Chapter → Section → Image tree (plus Chapter → Audio).

Components:

  - Resolver: finds every row owned by a chapter or a book.
  - Cascade: deletes a book, chapter or section bottom-up.
  - Drafts: creates or replaces a user's working copy of a chapter.
  - Publish: swaps a destination chapter's sections for a draft's.

Every operation runs inside one database transaction obtained from a
[Transactor]. A store failure in the middle of an operation rolls the whole
operation back and surfaces as TRANSACTION_FAILED; nothing is ever partially
applied.
*/
package hierarchy

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/core/section"
	"github.com/taibuivan/folio/internal/platform/apperr"
)

// # Results

// Summary counts the rows removed by a cascade.
type Summary struct {
	Books    int `json:"books,omitempty"`
	Chapters int `json:"chapters"`
	Drafts   int `json:"drafts"`
	Sections int `json:"sections"`
	Images   int `json:"images"`
	Audios   int `json:"audios"`
}

// Add accumulates other into summary.
func (summary *Summary) Add(other Summary) {
	summary.Books += other.Books
	summary.Chapters += other.Chapters
	summary.Drafts += other.Drafts
	summary.Sections += other.Sections
	summary.Images += other.Images
	summary.Audios += other.Audios
}

// ChapterTree lists every row owned by one chapter, its drafts included.
type ChapterTree struct {
	Chapter    *chapter.Chapter
	DraftIDs   []int64
	SectionIDs []int64
	ImageIDs   []int64
	AudioIDs   []int64
}

// Summary reports the counts a cascade of this tree removes.
func (tree *ChapterTree) Summary() Summary {
	return Summary{
		Chapters: 1,
		Drafts:   len(tree.DraftIDs),
		Sections: len(tree.SectionIDs),
		Images:   len(tree.ImageIDs),
		Audios:   len(tree.AudioIDs),
	}
}

// # Collaborators

// Transactor runs fn inside a single transaction carried by the context.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes work on a key across API instances.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context), error)
}

// ImageChecker validates draft image uploads.
type ImageChecker interface {
	CheckImage(field string, content []byte, declaredType string) error
}

/*
Store is the transactional entity store the engine drives.

Every List and Lock method takes row locks (SELECT … FOR UPDATE) so the
resolved set cannot change before the transaction ends. Empty id lists are
valid and touch nothing.
*/
type Store interface {
	LockBook(ctx context.Context, id int64) error
	LockChapters(ctx context.Context, ids []int64) ([]*chapter.Chapter, error)
	LockSection(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)

	ListCanonicalChapterIDs(ctx context.Context, bookID int64) ([]int64, error)
	ListDraftIDs(ctx context.Context, originalChapterID int64) ([]int64, error)
	FindDraft(ctx context.Context, originalChapterID, userID int64) (*chapter.Chapter, bool, error)
	ListSectionIDs(ctx context.Context, chapterIDs []int64) ([]int64, error)
	ListImageIDs(ctx context.Context, sectionIDs []int64) ([]int64, error)
	ListAudioIDs(ctx context.Context, chapterIDs []int64) ([]int64, error)

	DeleteImages(ctx context.Context, ids []int64) (int64, error)
	DeleteSections(ctx context.Context, ids []int64) (int64, error)
	DeleteAudios(ctx context.Context, ids []int64) (int64, error)
	DeleteChapters(ctx context.Context, ids []int64) (int64, error)
	DeleteBook(ctx context.Context, id int64) error

	InsertChapter(ctx context.Context, chapter *chapter.Chapter) error
	RenameChapter(ctx context.Context, id int64, name string) error
	InsertSection(ctx context.Context, section *section.Section) error
	InsertImage(ctx context.Context, image *section.Image) error
	ReparentSections(ctx context.Context, fromChapterID, toChapterID int64) (int64, error)
}

// # Engine

// Engine implements cascade deletion, draft saving and publishing.
type Engine struct {
	store      Store
	transactor Transactor
	locker     Locker
	images     ImageChecker
	resolver   *Resolver
	logger     *slog.Logger
}

/*
NewEngine wires the engine.

Parameters:
  - locker: optional; nil disables cross-instance draft serialization
  - images: optional; nil skips media policy checks on draft images
*/
func NewEngine(store Store, transactor Transactor, locker Locker, images ImageChecker, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		transactor: transactor,
		locker:     locker,
		images:     images,
		resolver:   NewResolver(store),
		logger:     logger,
	}
}

// Resolver exposes the engine's resolver for read-only callers.
func (engine *Engine) Resolver() *Resolver {
	return engine.resolver
}

/*
atomically runs fn in one transaction.

Application errors other than INTERNAL_ERROR are returned as-is (they are
detected before or instead of a mutation). Anything else means the store
failed mid-operation and becomes TRANSACTION_FAILED.
*/
func (engine *Engine) atomically(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := engine.transactor.ExecTx(ctx, fn)
	if err == nil {
		return nil
	}

	if appError := apperr.As(err); appError != nil && appError.Code != apperr.CodeInternal {
		return err
	}

	engine.logger.ErrorContext(ctx, "hierarchy_transaction_failed",
		slog.String("operation", operation),
		slog.Any("error", err),
	)
	return apperr.TransactionFailed(operation, err)
}
