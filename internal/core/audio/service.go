// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audio

import (
	"context"
	"log/slog"

	"github.com/taibuivan/folio/internal/platform/validate"
)

const (
	FieldChapterID   = "chapter_id"
	FieldContent     = "content"
	FieldContentType = "content_type"
)

type Service struct {
	repo    Repository
	checker Checker
	logger  *slog.Logger
}

func NewService(repo Repository, checker Checker, logger *slog.Logger) *Service {
	return &Service{repo: repo, checker: checker, logger: logger}
}

func (service *Service) ListAudios(context context.Context, chapterID int64) ([]*Audio, error) {
	return service.repo.ListByChapter(context, chapterID)
}

func (service *Service) GetAudio(context context.Context, id int64) (*Audio, error) {
	return service.repo.FindByID(context, id)
}

// AddAudio validates the upload against the media policy and attaches it to a chapter.
func (service *Service) AddAudio(context context.Context, audio *Audio) error {
	validator := &validate.Validator{}
	validator.
		Positive(FieldChapterID, audio.ChapterID).
		Required(FieldContentType, audio.ContentType)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.checker.CheckAudio(FieldContent, audio.Content, audio.ContentType); err != nil {
		return err
	}

	if err := service.repo.Create(context, audio); err != nil {
		return err
	}

	service.logger.Info("audio_added",
		slog.Int64("audio_id", audio.ID),
		slog.Int64("chapter_id", audio.ChapterID),
		slog.Int("bytes", len(audio.Content)),
	)
	return nil
}

/*
UpdateAudio applies patch to an existing audio row.

Replacing the bytes or the declared type runs the media policy again on the
merged result, so a stored recording can never end up with a type it does
not match.

Returns:
  - error: VALIDATION_ERROR, or NOT_FOUND for the audio or the target chapter
*/
func (service *Service) UpdateAudio(context context.Context, id int64, patch Patch) (*Audio, error) {
	validator := &validate.Validator{}
	if patch.ChapterID != nil {
		validator.Positive(FieldChapterID, *patch.ChapterID)
	}
	if patch.ContentType != nil {
		validator.Required(FieldContentType, *patch.ContentType)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	stored, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	audio := *stored
	if patch.ChapterID != nil {
		audio.ChapterID = *patch.ChapterID
	}
	if patch.ContentType != nil {
		audio.ContentType = *patch.ContentType
	}
	if len(patch.Content) > 0 {
		audio.Content = patch.Content
	}

	if len(patch.Content) > 0 || patch.ContentType != nil {
		if err := service.checker.CheckAudio(FieldContent, audio.Content, audio.ContentType); err != nil {
			return nil, err
		}
	}

	if err := service.repo.Update(context, &audio); err != nil {
		return nil, err
	}

	service.logger.Info("audio_updated",
		slog.Int64("audio_id", audio.ID),
		slog.Int64("chapter_id", audio.ChapterID),
		slog.Bool("content_replaced", len(patch.Content) > 0),
	)
	return &audio, nil
}

// DeleteAudio removes a single audio row. Audio is a leaf of the hierarchy.
func (service *Service) DeleteAudio(context context.Context, id int64) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("audio_deleted", slog.Int64("audio_id", id))
	return nil
}
