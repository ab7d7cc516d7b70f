// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/platform/apperr"
)

// seedPublish builds chapter 10 with four sections (one image each) and
// draft 50 of it with two sections, the first carrying an image, plus one audio.
func seedPublish() *memoryStore {
	store := newMemoryStore()
	store.addUser(7)
	store.addBook(1)

	store.addChapter(10, 1, 7, nil)
	for i := int64(1); i <= 4; i++ {
		store.addSection(100+i, 10, int(i))
		store.addImage(200+i, 100+i, 1)
	}

	store.addChapter(50, 1, 7, ptr(10))
	store.addSection(501, 50, 1)
	store.addSection(502, 50, 2)
	store.addImage(601, 501, 1)
	store.addAudio(701, 50)

	store.addChapter(60, 1, 7, nil)
	return store
}

/*
TestPublish_ReplacesDestination moves the draft's sections onto chapter 10.
*/
func TestPublish_ReplacesDestination(t *testing.T) {
	store := seedPublish()

	err := newEngine(store).Publish(context.Background(), 50, ptr(10))
	require.NoError(t, err)

	assert.Equal(t, []int64{501, 502}, store.sectionIDsOf(10))
	assert.NotContains(t, store.chapters, int64(50))

	for i := int64(1); i <= 4; i++ {
		assert.NotContains(t, store.sections, 100+i)
		assert.NotContains(t, store.images, 200+i)
	}

	// Images follow their section
	assert.Equal(t, []int64{601}, store.imageIDsOf(501))
	assert.Empty(t, store.audios)
}

/*
TestPublish_OntoOtherChapter publishes into a chapter that is not the draft's original.
*/
func TestPublish_OntoOtherChapter(t *testing.T) {
	store := seedPublish()

	require.NoError(t, newEngine(store).Publish(context.Background(), 50, ptr(60)))

	assert.Equal(t, []int64{501, 502}, store.sectionIDsOf(60))
	assert.Len(t, store.sectionIDsOf(10), 4)
}

func TestPublish_InvalidInput(t *testing.T) {
	engine := newEngine(seedPublish())

	err := engine.Publish(context.Background(), 50, nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	err = engine.Publish(context.Background(), 50, ptr(50))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestPublish_NotFound covers a missing draft, a canonical "draft" and a missing destination.
*/
func TestPublish_NotFound(t *testing.T) {
	tests := []struct {
		name        string
		draftID     int64
		destination int64
		message     string
	}{
		{"missing_draft", 404, 10, "Draft not found"},
		{"not_a_draft", 60, 10, "Draft not found"},
		{"missing_destination", 50, 404, "Chapter not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedPublish()
			before := store.counts()

			err := newEngine(store).Publish(context.Background(), tt.draftID, ptr(tt.destination))

			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, before, store.counts())
		})
	}
}

/*
TestPublish_AllOrNothing injects a failure at every step and checks that both the
destination's content and the draft survive.
*/
func TestPublish_AllOrNothing(t *testing.T) {
	steps := []string{"LockChapters", "DeleteImages", "DeleteSections", "ReparentSections", "ListAudioIDs", "DeleteAudios", "DeleteChapters"}

	for _, step := range steps {
		t.Run(step, func(t *testing.T) {
			store := seedPublish()
			before := store.counts()
			store.failOn[step] = true

			err := newEngine(store).Publish(context.Background(), 50, ptr(10))

			assert.True(t, apperr.HasCode(err, apperr.CodeTransactionFailed))
			assert.Equal(t, before, store.counts())
			assert.Equal(t, []int64{101, 102, 103, 104}, store.sectionIDsOf(10))
			assert.Equal(t, []int64{501, 502}, store.sectionIDsOf(50))
			assert.Contains(t, store.chapters, int64(50))
		})
	}
}

/*
TestPublish_Twice fails the second time because the draft is gone.
*/
func TestPublish_Twice(t *testing.T) {
	store := seedPublish()
	engine := newEngine(store)

	require.NoError(t, engine.Publish(context.Background(), 50, ptr(10)))

	err := engine.Publish(context.Background(), 50, ptr(10))
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, []int64{501, 502}, store.sectionIDsOf(10))
}

/*
TestPublish_LocksInIDOrder locks both rows in a single ascending call.
*/
func TestPublish_LocksInIDOrder(t *testing.T) {
	store := seedPublish()

	require.NoError(t, newEngine(store).Publish(context.Background(), 50, ptr(10)))
	require.NotEmpty(t, store.locked)
	assert.Equal(t, []int64{10, 50}, store.locked[0])
}
