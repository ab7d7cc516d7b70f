// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
)

// # Cascade Deletion

/*
DeleteChapter removes a chapter with its drafts, sections, images and audio.

Returns:
  - Summary: counts of the removed rows
  - error: NOT_FOUND, or TRANSACTION_FAILED with nothing removed
*/
func (engine *Engine) DeleteChapter(ctx context.Context, chapterID int64) (Summary, error) {
	var summary Summary

	err := engine.atomically(ctx, "delete_chapter", func(ctx context.Context) error {
		tree, err := engine.resolver.ResolveChapter(ctx, chapterID)
		if err != nil {
			return err
		}
		if err := engine.deleteTree(ctx, tree); err != nil {
			return err
		}
		summary = tree.Summary()
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	engine.logger.InfoContext(ctx, "chapter_cascade_deleted",
		slog.Int64("chapter_id", chapterID),
		slog.Any("summary", summary),
	)
	return summary, nil
}

/*
DeleteBook removes a book and every chapter tree under it.

Chapter trees are deleted one after another inside the same transaction.
*/
func (engine *Engine) DeleteBook(ctx context.Context, bookID int64) (Summary, error) {
	var summary Summary

	err := engine.atomically(ctx, "delete_book", func(ctx context.Context) error {
		trees, err := engine.resolver.ResolveBook(ctx, bookID)
		if err != nil {
			return err
		}

		var total Summary
		for _, tree := range trees {
			if err := engine.deleteTree(ctx, tree); err != nil {
				return err
			}
			total.Add(tree.Summary())
		}

		if err := engine.store.DeleteBook(ctx, bookID); err != nil {
			return err
		}
		total.Books = 1
		summary = total
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	engine.logger.InfoContext(ctx, "book_cascade_deleted",
		slog.Int64("book_id", bookID),
		slog.Any("summary", summary),
	)
	return summary, nil
}

// DeleteSection removes a section and its images.
func (engine *Engine) DeleteSection(ctx context.Context, sectionID int64) (Summary, error) {
	var summary Summary

	err := engine.atomically(ctx, "delete_section", func(ctx context.Context) error {
		imageIDs, err := engine.resolver.ResolveSection(ctx, sectionID)
		if err != nil {
			return err
		}
		if err := expectDeleted(ctx, "images", imageIDs, engine.store.DeleteImages); err != nil {
			return err
		}
		if err := expectDeleted(ctx, "sections", []int64{sectionID}, engine.store.DeleteSections); err != nil {
			return err
		}
		summary = Summary{Sections: 1, Images: len(imageIDs)}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	engine.logger.InfoContext(ctx, "section_cascade_deleted",
		slog.Int64("section_id", sectionID),
		slog.Int("images", summary.Images),
	)
	return summary, nil
}

// deleteTree removes leaves first so no foreign key is ever left dangling.
func (engine *Engine) deleteTree(ctx context.Context, tree *ChapterTree) error {
	if err := expectDeleted(ctx, "images", tree.ImageIDs, engine.store.DeleteImages); err != nil {
		return err
	}
	if err := expectDeleted(ctx, "sections", tree.SectionIDs, engine.store.DeleteSections); err != nil {
		return err
	}
	if err := expectDeleted(ctx, "audios", tree.AudioIDs, engine.store.DeleteAudios); err != nil {
		return err
	}
	if err := expectDeleted(ctx, "drafts", tree.DraftIDs, engine.store.DeleteChapters); err != nil {
		return err
	}
	return expectDeleted(ctx, "chapters", []int64{tree.Chapter.ID}, engine.store.DeleteChapters)
}

// expectDeleted fails when the store removed a different number of rows than were resolved.
func expectDeleted(ctx context.Context, what string, ids []int64, remove func(context.Context, []int64) (int64, error)) error {
	if len(ids) == 0 {
		return nil
	}

	removed, err := remove(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	if removed != int64(len(ids)) {
		return fmt.Errorf("delete %s: removed %d of %d rows", what, removed, len(ids))
	}
	return nil
}
