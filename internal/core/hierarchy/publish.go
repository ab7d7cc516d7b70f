// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/validate"
)

const fieldDestination = "destination_chapter_id"

// # Publish Coordinator

/*
Publish replaces the sections of the destination chapter with those of a draft
and retires the draft.

Both chapter rows are locked in ascending id order first, so two publishes
into the same destination never interleave. The destination's images and
sections are deleted, the draft's sections move to the destination (their
images follow), the draft's audio is deleted and finally the draft row.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND (draft or destination) or TRANSACTION_FAILED
*/
func (engine *Engine) Publish(ctx context.Context, draftID int64, destinationChapterID *int64) error {
	if destinationChapterID == nil {
		return validate.RequiredError(fieldDestination, "Field is required")
	}

	destinationID := *destinationChapterID
	validator := &validate.Validator{}
	validator.
		Positive("draft_id", draftID).
		Positive(fieldDestination, destinationID).
		Custom(fieldDestination, destinationID == draftID, "Cannot publish a draft onto itself")
	if err := validator.Err(); err != nil {
		return err
	}

	var moved int64
	err := engine.atomically(ctx, "publish_draft", func(ctx context.Context) error {
		draft, _, err := engine.lockPublishPair(ctx, draftID, destinationID)
		if err != nil {
			return err
		}

		if err := engine.emptyChapter(ctx, destinationID); err != nil {
			return err
		}

		moved, err = engine.store.ReparentSections(ctx, draft.ID, destinationID)
		if err != nil {
			return fmt.Errorf("reparent sections: %w", err)
		}

		audioIDs, err := engine.store.ListAudioIDs(ctx, []int64{draft.ID})
		if err != nil {
			return err
		}
		if err := expectDeleted(ctx, "audios", audioIDs, engine.store.DeleteAudios); err != nil {
			return err
		}

		return expectDeleted(ctx, "drafts", []int64{draft.ID}, engine.store.DeleteChapters)
	})
	if err != nil {
		return err
	}

	engine.logger.InfoContext(ctx, "draft_published",
		slog.Int64("draft_id", draftID),
		slog.Int64("destination_chapter_id", destinationID),
		slog.Int64("sections", moved),
	)
	return nil
}

// lockPublishPair locks both chapters and checks their roles.
func (engine *Engine) lockPublishPair(ctx context.Context, draftID, destinationID int64) (*chapter.Chapter, *chapter.Chapter, error) {
	ids := []int64{draftID, destinationID}
	slices.Sort(ids)

	locked, err := engine.store.LockChapters(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	var draft, destination *chapter.Chapter
	for _, row := range locked {
		switch row.ID {
		case draftID:
			draft = row
		case destinationID:
			destination = row
		}
	}

	if draft == nil || !draft.IsDraft() {
		return nil, nil, apperr.NotFound("Draft")
	}
	if destination == nil {
		return nil, nil, apperr.NotFound("Chapter")
	}
	return draft, destination, nil
}
