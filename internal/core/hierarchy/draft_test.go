// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/core/hierarchy"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/redis"
)

func png() []byte { return []byte("\x89PNG\r\n\x1a\n") }

func twoSections() []hierarchy.DraftSection {
	return []hierarchy.DraftSection{
		{
			Order: 1,
			Title: "Points",
			Images: []hierarchy.DraftImage{
				{Content: png(), ContentType: "image/png"},
				{Content: png(), ContentType: "image/png"},
			},
		},
		{Order: 2, Title: "Lines"},
	}
}

/*
TestSaveDraft_Create materializes a new draft chapter with the caller's sections.
*/
func TestSaveDraft_Create(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)

	result, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "Draft — chapter 10", result.Chapter.Name)
	assert.Equal(t, int64(1), result.Chapter.BookID)
	assert.Equal(t, int64(1), result.Chapter.AuthorUserID)
	require.NotNil(t, result.Chapter.OriginalChapterID)
	assert.Equal(t, int64(10), *result.Chapter.OriginalChapterID)

	require.Len(t, result.Sections, 2)
	assert.Equal(t, result.Chapter.ID, result.Sections[0].ChapterID)
	require.Len(t, result.Sections[0].Images, 2)

	// Images without an explicit order take their list position
	assert.Equal(t, 1, result.Sections[0].Images[0].Order)
	assert.Equal(t, 2, result.Sections[0].Images[1].Order)

	assert.Len(t, store.draftsOf(10, 1), 1)
	assert.Len(t, store.sectionIDsOf(result.Chapter.ID), 2)

	// The original is untouched
	assert.Equal(t, []int64{101, 102}, store.sectionIDsOf(10))
}

/*
TestSaveDraft_ReplacesExisting overwrites the draft content instead of merging it.
*/
func TestSaveDraft_ReplacesExisting(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)
	ctx := context.Background()

	first, err := engine.SaveDraft(ctx, 10, 7, twoSections())
	require.NoError(t, err)
	assert.False(t, first.Created)
	assert.Equal(t, int64(11), first.Chapter.ID)
	assert.NotContains(t, store.sections, int64(111))

	second, err := engine.SaveDraft(ctx, 10, 7, []hierarchy.DraftSection{{Order: 5, Title: "Only"}})
	require.NoError(t, err)
	assert.Equal(t, int64(11), second.Chapter.ID)

	sectionIDs := store.sectionIDsOf(11)
	require.Len(t, sectionIDs, 1)
	assert.Equal(t, 5, store.sections[sectionIDs[0]].Order)
	assert.Equal(t, "Only", store.sections[sectionIDs[0]].Title)
	assert.Len(t, store.draftsOf(10, 7), 1)

	// Images of the first payload are gone with their sections
	for _, image := range store.images {
		assert.NotEqual(t, first.Sections[0].ID, image.SectionID)
	}
}

/*
TestSaveDraft_Idempotent yields the same section set for identical input.
*/
func TestSaveDraft_Idempotent(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)
	ctx := context.Background()

	_, err := engine.SaveDraft(ctx, 10, 1, twoSections())
	require.NoError(t, err)
	result, err := engine.SaveDraft(ctx, 10, 1, twoSections())
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Len(t, store.sectionIDsOf(result.Chapter.ID), 2)
	assert.Len(t, store.draftsOf(10, 1), 1)
}

/*
TestSaveDraft_EmptyList clears the draft.
*/
func TestSaveDraft_EmptyList(t *testing.T) {
	store := seedGeometry()

	result, err := newEngine(store).SaveDraft(context.Background(), 10, 7, []hierarchy.DraftSection{})
	require.NoError(t, err)

	assert.Empty(t, result.Sections)
	assert.Empty(t, store.sectionIDsOf(11))
}

func TestSaveNamedDraft(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)
	ctx := context.Background()

	created, err := engine.SaveNamedDraft(ctx, 10, 1, "  My   copy ", nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Nil(t, created)

	created, err = engine.SaveNamedDraft(ctx, 10, 1, "  My   copy ", twoSections())
	require.NoError(t, err)
	assert.Equal(t, "My copy", created.Chapter.Name)

	renamed, err := engine.SaveNamedDraft(ctx, 10, 1, "Second pass", twoSections())
	require.NoError(t, err)
	assert.Equal(t, created.Chapter.ID, renamed.Chapter.ID)
	assert.Equal(t, "Second pass", store.chapters[created.Chapter.ID].Name)
}

/*
TestSaveDraft_NotFound rejects a missing chapter or user.
*/
func TestSaveDraft_NotFound(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)
	before := store.counts()

	_, err := engine.SaveDraft(context.Background(), 404, 1, twoSections())
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = engine.SaveDraft(context.Background(), 10, 99, twoSections())
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, "User not found", err.Error())

	assert.Equal(t, before, store.counts())
}

/*
TestSaveDraft_DraftOfDraft refuses to derive a draft from another draft.
*/
func TestSaveDraft_DraftOfDraft(t *testing.T) {
	store := seedGeometry()

	_, err := newEngine(store).SaveDraft(context.Background(), 11, 1, twoSections())
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Empty(t, store.draftsOf(11, 1))
}

/*
TestSaveDraft_InvalidSections covers malformed section lists.
*/
func TestSaveDraft_InvalidSections(t *testing.T) {
	badLink := "ftp://example.com/model"

	tests := []struct {
		name     string
		sections []hierarchy.DraftSection
		field    string
	}{
		{"nil_list", nil, "sections"},
		{"zero_order", []hierarchy.DraftSection{{Order: 0}}, "sections[0].order"},
		{"duplicated_order", []hierarchy.DraftSection{{Order: 1}, {Order: 1}}, "sections[1].order"},
		{"bad_link", []hierarchy.DraftSection{{Order: 1, Link3D: &badLink}}, "sections[0].link3d"},
		{
			"image_without_content",
			[]hierarchy.DraftSection{{Order: 1, Images: []hierarchy.DraftImage{{ContentType: "image/png"}}}},
			"sections[0].images[0].content",
		},
		{
			"image_without_type",
			[]hierarchy.DraftSection{{Order: 1, Images: []hierarchy.DraftImage{{Content: png()}}}},
			"sections[0].images[0].content_type",
		},
		{
			"duplicated_image_order",
			[]hierarchy.DraftSection{{Order: 1, Images: []hierarchy.DraftImage{
				{Content: png(), ContentType: "image/png"},
				{Order: 1, Content: png(), ContentType: "image/png"},
			}}},
			"sections[0].images[1].order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedGeometry()
			before := store.counts()

			_, err := newEngine(store).SaveDraft(context.Background(), 10, 1, tt.sections)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)

			fields := make([]string, 0, len(appError.Details))
			for _, detail := range appError.Details {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Equal(t, before, store.counts())
		})
	}
}

/*
TestSaveDraft_RollsBack keeps the previous draft content when materialization fails.
*/
func TestSaveDraft_RollsBack(t *testing.T) {
	for _, step := range []string{"FindDraft", "DeleteSections", "InsertSection", "InsertImage"} {
		t.Run(step, func(t *testing.T) {
			store := seedGeometry()
			before := store.counts()
			store.failOn[step] = true

			_, err := newEngine(store).SaveDraft(context.Background(), 10, 7, twoSections())

			assert.True(t, apperr.HasCode(err, apperr.CodeTransactionFailed))
			assert.Equal(t, before, store.counts())
			assert.Equal(t, []int64{111}, store.sectionIDsOf(11))
		})
	}
}

/*
TestSaveDraft_Concurrent never produces two drafts for the same user and chapter
when the calls serialize on the transaction.
*/
func TestSaveDraft_Concurrent(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)

	var group errgroup.Group
	for range 8 {
		group.Go(func() error {
			_, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())
			return err
		})
	}
	require.NoError(t, group.Wait())

	drafts := store.draftsOf(10, 1)
	require.Len(t, drafts, 1)
	assert.Len(t, store.sectionIDsOf(drafts[0].ID), 2)
}

/*
TestSaveDraft_LosesCreateRace reports CONFLICT, not TRANSACTION_FAILED, when
another request commits the same user's draft between the lookup and the
insert, and writes nothing of its own.
*/
func TestSaveDraft_LosesCreateRace(t *testing.T) {
	store := seedGeometry()
	engine := newEngine(store)

	winner := chapter.Chapter{ID: 900, Name: "Draft — chapter 10", BookID: 1, AuthorUserID: 1, OriginalChapterID: ptr(10)}
	store.beforeInsertChapter = func(store *memoryStore) { store.commitElsewhere(winner) }

	before := store.counts()
	_, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "got %v", err)
	assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)

	// The lookup saw no draft, so the insert was attempted
	require.Contains(t, store.calls, "FindDraft")
	assert.Less(t, slices.Index(store.calls, "FindDraft"), slices.Index(store.calls, "InsertChapter"))
	assert.NotContains(t, store.calls, "InsertSection")

	drafts := store.draftsOf(10, 1)
	require.Len(t, drafts, 1)
	assert.Equal(t, winner, drafts[0])
	assert.Empty(t, store.sectionIDsOf(winner.ID))

	after := store.counts()
	before[2]++
	assert.Equal(t, before, after)
}

// # Collaborators

type fakeLocker struct {
	err      error
	keys     []string
	released int
}

func (locker *fakeLocker) Acquire(_ context.Context, key string) (func(context.Context), error) {
	if locker.err != nil {
		return nil, locker.err
	}
	locker.keys = append(locker.keys, key)
	return func(context.Context) { locker.released++ }, nil
}

type rejectingChecker struct{}

func (rejectingChecker) CheckImage(field string, _ []byte, _ string) error {
	return apperr.ValidationError("Invalid upload", apperr.FieldError{Field: field, Message: "Unsupported content type"})
}

func TestSaveDraft_Locking(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("acquires_and_releases", func(t *testing.T) {
		store := seedGeometry()
		locker := &fakeLocker{}
		engine := hierarchy.NewEngine(store, store, locker, nil, logger)

		_, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())
		require.NoError(t, err)
		assert.Equal(t, []string{"1:10"}, locker.keys)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("timeout_is_conflict", func(t *testing.T) {
		store := seedGeometry()
		engine := hierarchy.NewEngine(store, store, &fakeLocker{err: redis.ErrLockTimeout}, nil, logger)

		_, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	})

	t.Run("redis_down_is_unavailable", func(t *testing.T) {
		store := seedGeometry()
		engine := hierarchy.NewEngine(store, store, &fakeLocker{err: errors.New("dial tcp: refused")}, nil, logger)

		_, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())
		assert.True(t, apperr.HasCode(err, apperr.CodeServiceUnavailable))
		assert.Empty(t, store.draftsOf(10, 1))
	})
}

func TestSaveDraft_ImagePolicy(t *testing.T) {
	store := seedGeometry()
	engine := hierarchy.NewEngine(store, store, nil, rejectingChecker{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := engine.SaveDraft(context.Background(), 10, 1, twoSections())

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeValidation, appError.Code)
	assert.Equal(t, "sections[0].images[0].content", appError.Details[0].Field)
}
