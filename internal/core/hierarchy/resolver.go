// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy

import (
	"context"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/platform/apperr"
)

// Resolver walks the hierarchy downwards and collects dependent row ids.
// It must run inside the transaction that later acts on the result.
type Resolver struct {
	store Store
}

// NewResolver constructs a [Resolver] over store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

/*
ResolveChapter locks a chapter and collects everything it owns.

Drafts are only collected for canonical chapters. Sections, images and audio
are gathered across the chapter and all of its drafts in one pass.

Returns:
  - *ChapterTree: the chapter and the ids a cascade must delete
  - error: NOT_FOUND when the chapter does not exist
*/
func (resolver *Resolver) ResolveChapter(ctx context.Context, chapterID int64) (*ChapterTree, error) {
	locked, err := resolver.store.LockChapters(ctx, []int64{chapterID})
	if err != nil {
		return nil, err
	}
	if len(locked) == 0 {
		return nil, apperr.NotFound("Chapter")
	}

	return resolver.collect(ctx, locked[0])
}

// ResolveBook locks a book and resolves each of its canonical chapters.
func (resolver *Resolver) ResolveBook(ctx context.Context, bookID int64) ([]*ChapterTree, error) {
	if err := resolver.store.LockBook(ctx, bookID); err != nil {
		return nil, err
	}

	chapterIDs, err := resolver.store.ListCanonicalChapterIDs(ctx, bookID)
	if err != nil {
		return nil, err
	}

	locked, err := resolver.store.LockChapters(ctx, chapterIDs)
	if err != nil {
		return nil, err
	}

	trees := make([]*ChapterTree, 0, len(locked))
	for _, chapter := range locked {
		tree, err := resolver.collect(ctx, chapter)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// ResolveSection locks a section and returns the ids of its images.
func (resolver *Resolver) ResolveSection(ctx context.Context, sectionID int64) ([]int64, error) {
	if err := resolver.store.LockSection(ctx, sectionID); err != nil {
		return nil, err
	}
	return resolver.store.ListImageIDs(ctx, []int64{sectionID})
}

func (resolver *Resolver) collect(ctx context.Context, root *chapter.Chapter) (*ChapterTree, error) {
	tree := &ChapterTree{Chapter: root, DraftIDs: []int64{}}

	if !root.IsDraft() {
		draftIDs, err := resolver.store.ListDraftIDs(ctx, root.ID)
		if err != nil {
			return nil, err
		}
		tree.DraftIDs = draftIDs
	}

	owners := append([]int64{root.ID}, tree.DraftIDs...)

	sectionIDs, err := resolver.store.ListSectionIDs(ctx, owners)
	if err != nil {
		return nil, err
	}
	tree.SectionIDs = sectionIDs

	imageIDs, err := resolver.store.ListImageIDs(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	tree.ImageIDs = imageIDs

	audioIDs, err := resolver.store.ListAudioIDs(ctx, owners)
	if err != nil {
		return nil, err
	}
	tree.AudioIDs = audioIDs

	return tree, nil
}
