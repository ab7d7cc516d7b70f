// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/core/section"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/constants"
	"github.com/taibuivan/folio/internal/platform/redis"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/pkg/normalize"
)

const fieldSections = "sections"

// # Draft Payload

// DraftSection is one section of a draft snapshot as supplied by the caller.
type DraftSection struct {
	Order    int          `json:"order"`
	Prompt   string       `json:"prompt"`
	Title    string       `json:"title"`
	Summary  string       `json:"summary"`
	Original string       `json:"original"`
	Link3D   *string      `json:"link3d"`
	Feedback bool         `json:"feedback"`
	Order3D  *int         `json:"order3d"`
	Images   []DraftImage `json:"images"`
}

// DraftImage is an image nested in a [DraftSection]. Order 0 means "use the list position".
type DraftImage struct {
	Order       int     `json:"order"`
	Content     []byte  `json:"content"`
	ContentType string  `json:"content_type"`
	Description *string `json:"description"`
}

// DraftResult is the draft chapter and the sections materialized for it.
type DraftResult struct {
	Chapter  *chapter.Chapter   `json:"chapter"`
	Sections []*section.Section `json:"sections"`
	Created  bool               `json:"created"`
}

// # Draft Manager

// SaveDraft snapshots sections into the user's draft of a chapter using the default name.
func (engine *Engine) SaveDraft(ctx context.Context, originalChapterID, userID int64, sections []DraftSection) (*DraftResult, error) {
	return engine.SaveNamedDraft(ctx, originalChapterID, userID, "", sections)
}

/*
SaveNamedDraft creates or replaces the draft of originalChapterID owned by userID.

An existing draft has all of its sections and images replaced; it is never
merged. A new draft copies the book of its original and is named
DraftNamePrefix plus the original name unless name is non-empty.

Returns:
  - *DraftResult: the draft chapter and its new sections
  - error: VALIDATION_ERROR, NOT_FOUND (chapter or user), CONFLICT or TRANSACTION_FAILED
*/
func (engine *Engine) SaveNamedDraft(ctx context.Context, originalChapterID, userID int64, name string, sections []DraftSection) (*DraftResult, error) {
	name = normalize.Name(name)

	if err := engine.validateDraft(originalChapterID, userID, sections); err != nil {
		return nil, err
	}

	release, err := engine.lockDraft(ctx, originalChapterID, userID)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var result *DraftResult
	err = engine.atomically(ctx, "save_draft", func(ctx context.Context) error {
		draft, created, err := engine.prepareDraft(ctx, originalChapterID, userID, name)
		if err != nil {
			return err
		}

		materialized, err := engine.materialize(ctx, draft.ID, sections)
		if err != nil {
			return err
		}

		result = &DraftResult{Chapter: draft, Sections: materialized, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	engine.logger.InfoContext(ctx, "draft_saved",
		slog.Int64("draft_id", result.Chapter.ID),
		slog.Int64("original_chapter_id", originalChapterID),
		slog.Int64("user_id", userID),
		slog.Bool("created", result.Created),
		slog.Int("sections", len(result.Sections)),
	)
	return result, nil
}

// prepareDraft locks the original and returns an emptied existing draft or a new one.
func (engine *Engine) prepareDraft(ctx context.Context, originalChapterID, userID int64, name string) (*chapter.Chapter, bool, error) {
	locked, err := engine.store.LockChapters(ctx, []int64{originalChapterID})
	if err != nil {
		return nil, false, err
	}
	if len(locked) == 0 {
		return nil, false, apperr.NotFound("Chapter")
	}

	original := locked[0]
	if original.IsDraft() {
		return nil, false, validate.RequiredError("original_chapter_id", "Cannot draft a chapter that is itself a draft")
	}

	exists, err := engine.store.UserExists(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, apperr.NotFound("User")
	}

	draft, found, err := engine.store.FindDraft(ctx, originalChapterID, userID)
	if err != nil {
		return nil, false, err
	}

	if found {
		if err := engine.emptyChapter(ctx, draft.ID); err != nil {
			return nil, false, err
		}
		if name != "" && name != draft.Name {
			if err := engine.store.RenameChapter(ctx, draft.ID, name); err != nil {
				return nil, false, err
			}
			draft.Name = name
		}
		return draft, false, nil
	}

	if name == "" {
		name = constants.DraftNamePrefix + original.Name
	}

	originalID := original.ID
	draft = &chapter.Chapter{
		Name:              name,
		BookID:            original.BookID,
		AuthorUserID:      userID,
		OriginalChapterID: &originalID,
	}
	if err := engine.store.InsertChapter(ctx, draft); err != nil {
		return nil, false, err
	}
	return draft, true, nil
}

// emptyChapter deletes every section of a chapter together with their images.
func (engine *Engine) emptyChapter(ctx context.Context, chapterID int64) error {
	sectionIDs, err := engine.store.ListSectionIDs(ctx, []int64{chapterID})
	if err != nil {
		return err
	}
	imageIDs, err := engine.store.ListImageIDs(ctx, sectionIDs)
	if err != nil {
		return err
	}

	if err := expectDeleted(ctx, "images", imageIDs, engine.store.DeleteImages); err != nil {
		return err
	}
	return expectDeleted(ctx, "sections", sectionIDs, engine.store.DeleteSections)
}

func (engine *Engine) materialize(ctx context.Context, chapterID int64, drafts []DraftSection) ([]*section.Section, error) {
	created := make([]*section.Section, 0, len(drafts))

	for _, draft := range drafts {
		row := &section.Section{
			ChapterID: chapterID,
			Order:     draft.Order,
			Prompt:    draft.Prompt,
			Title:     draft.Title,
			Summary:   draft.Summary,
			Original:  draft.Original,
			Link3D:    draft.Link3D,
			Feedback:  draft.Feedback,
			Order3D:   draft.Order3D,
			Images:    make([]*section.Image, 0, len(draft.Images)),
		}
		if err := engine.store.InsertSection(ctx, row); err != nil {
			return nil, err
		}

		for position, image := range draft.Images {
			stored := &section.Image{
				SectionID:   row.ID,
				Order:       imageOrder(image, position),
				Content:     image.Content,
				ContentType: image.ContentType,
				Description: image.Description,
			}
			if err := engine.store.InsertImage(ctx, stored); err != nil {
				return nil, err
			}
			row.Images = append(row.Images, stored)
		}

		created = append(created, row)
	}
	return created, nil
}

// # Validation

func (engine *Engine) validateDraft(originalChapterID, userID int64, sections []DraftSection) error {
	validator := &validate.Validator{}
	validator.
		Positive("original_chapter_id", originalChapterID).
		Positive("user_id", userID).
		Custom(fieldSections, sections == nil, "Must be a list")

	seenOrders := make(map[int]bool, len(sections))
	for index, draft := range sections {
		prefix := fmt.Sprintf("%s[%d].", fieldSections, index)

		row := &section.Section{
			Order:   draft.Order,
			Title:   draft.Title,
			Link3D:  draft.Link3D,
			Order3D: draft.Order3D,
		}
		scoped := &validate.Validator{}
		section.ValidateFields(scoped, row)
		mergeScoped(validator, scoped, prefix)

		validator.Custom(prefix+section.FieldOrder, draft.Order > 0 && seenOrders[draft.Order], "Duplicated order")
		seenOrders[draft.Order] = true

		seenImages := make(map[int]bool, len(draft.Images))
		for position, image := range draft.Images {
			imagePrefix := fmt.Sprintf("%simages[%d].", prefix, position)
			order := imageOrder(image, position)

			validator.
				Custom(imagePrefix+section.FieldOrder, image.Order < 0, "Cannot be negative").
				Custom(imagePrefix+section.FieldOrder, image.Order >= 0 && seenImages[order], "Duplicated order").
				Custom(imagePrefix+section.FieldContent, len(image.Content) == 0, "Field is required").
				Required(imagePrefix+section.FieldContentType, image.ContentType)
			seenImages[order] = true

			if engine.images != nil && len(image.Content) > 0 && image.ContentType != "" {
				mergeAppError(validator, engine.images.CheckImage(imagePrefix+section.FieldContent, image.Content, image.ContentType))
			}
		}
	}

	return validator.Err()
}

func imageOrder(image DraftImage, position int) int {
	if image.Order > 0 {
		return image.Order
	}
	return position + 1
}

// mergeScoped copies the failures of scoped into validator under prefix.
func mergeScoped(validator *validate.Validator, scoped *validate.Validator, prefix string) {
	appError := apperr.As(scoped.Err())
	if appError == nil {
		return
	}
	for _, detail := range appError.Details {
		validator.Custom(prefix+detail.Field, true, detail.Message)
	}
}

func mergeAppError(validator *validate.Validator, err error) {
	if err == nil {
		return
	}
	appError := apperr.As(err)
	if appError == nil || len(appError.Details) == 0 {
		validator.Custom(fieldSections, true, err.Error())
		return
	}
	for _, detail := range appError.Details {
		validator.Custom(detail.Field, true, detail.Message)
	}
}

// # Locking

// lockDraft serializes SaveDraft for one (user, chapter) pair across instances.
func (engine *Engine) lockDraft(ctx context.Context, originalChapterID, userID int64) (func(context.Context), error) {
	if engine.locker == nil {
		return func(context.Context) {}, nil
	}

	release, err := engine.locker.Acquire(ctx, fmt.Sprintf("%d:%d", userID, originalChapterID))
	if err == nil {
		return release, nil
	}

	if errors.Is(err, redis.ErrLockTimeout) {
		return nil, apperr.Conflict("Draft is being saved by another request").WithCause(err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, apperr.ServiceUnavailable("Draft lock unavailable").WithCause(err)
}
