// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/taibuivan/folio/internal/core/chapter"
	"github.com/taibuivan/folio/internal/core/hierarchy"
	"github.com/taibuivan/folio/internal/core/section"
	"github.com/taibuivan/folio/internal/platform/apperr"
)

// memoryStore is an in-memory [hierarchy.Store] and [hierarchy.Transactor].
//
// ExecTx holds a mutex for the whole transaction, snapshots every table
// and restores the snapshot when fn fails. Foreign keys are enforced on
// delete the way Postgres does without ON DELETE CASCADE.
type memoryStore struct {
	mu sync.Mutex

	users    map[int64]bool
	books    map[int64]bool
	chapters map[int64]chapter.Chapter
	sections map[int64]section.Section
	images   map[int64]section.Image
	audios   map[int64]int64

	nextID int64
	failOn map[string]bool
	calls  []string
	locked [][]int64

	// beforeInsertChapter runs once, inside the transaction, right before the
	// unique draft check of InsertChapter.
	beforeInsertChapter func(store *memoryStore)

	// committed holds rows written by another transaction; a rollback keeps them.
	committed map[int64]chapter.Chapter
}

type tables struct {
	users    map[int64]bool
	books    map[int64]bool
	chapters map[int64]chapter.Chapter
	sections map[int64]section.Section
	images   map[int64]section.Image
	audios   map[int64]int64
	nextID   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    map[int64]bool{},
		books:    map[int64]bool{},
		chapters: map[int64]chapter.Chapter{},
		sections: map[int64]section.Section{},
		images:   map[int64]section.Image{},
		audios:   map[int64]int64{},
		nextID:    1000,
		failOn:    map[string]bool{},
		committed: map[int64]chapter.Chapter{},
	}
}

func newEngine(store *memoryStore) *hierarchy.Engine {
	return hierarchy.NewEngine(store, store, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Transactor

func (store *memoryStore) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	saved := store.snapshot()
	if err := fn(ctx); err != nil {
		store.restore(saved)
		for id, row := range store.committed {
			store.chapters[id] = row
		}
		return err
	}
	return nil
}

// commitElsewhere writes a chapter as if a concurrent transaction had committed it.
func (store *memoryStore) commitElsewhere(row chapter.Chapter) {
	store.chapters[row.ID] = row
	store.committed[row.ID] = row
}

func (store *memoryStore) snapshot() tables {
	return tables{
		users:    maps.Clone(store.users),
		books:    maps.Clone(store.books),
		chapters: maps.Clone(store.chapters),
		sections: maps.Clone(store.sections),
		images:   maps.Clone(store.images),
		audios:   maps.Clone(store.audios),
		nextID:   store.nextID,
	}
}

func (store *memoryStore) restore(saved tables) {
	store.users = saved.users
	store.books = saved.books
	store.chapters = saved.chapters
	store.sections = saved.sections
	store.images = saved.images
	store.audios = saved.audios
	store.nextID = saved.nextID
}

func (store *memoryStore) fail(method string) error {
	store.calls = append(store.calls, method)
	if store.failOn[method] {
		return fmt.Errorf("injected failure in %s", method)
	}
	return nil
}

// # Fixtures

func (store *memoryStore) addUser(id int64) { store.users[id] = true }
func (store *memoryStore) addBook(id int64) { store.books[id] = true }

func (store *memoryStore) addChapter(id, bookID, authorID int64, original *int64) {
	store.chapters[id] = chapter.Chapter{ID: id, Name: fmt.Sprintf("chapter %d", id), BookID: bookID, AuthorUserID: authorID, OriginalChapterID: original}
}

func (store *memoryStore) addSection(id, chapterID int64, order int) {
	store.sections[id] = section.Section{ID: id, ChapterID: chapterID, Order: order}
}

func (store *memoryStore) addImage(id, sectionID int64, order int) {
	store.images[id] = section.Image{ID: id, SectionID: sectionID, Order: order, Content: []byte{0x1}, ContentType: "image/png"}
}

func (store *memoryStore) addAudio(id, chapterID int64) { store.audios[id] = chapterID }

// # Inspection

func (store *memoryStore) sectionIDsOf(chapterID int64) []int64 {
	ids := []int64{}
	for id, row := range store.sections {
		if row.ChapterID == chapterID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (store *memoryStore) imageIDsOf(sectionID int64) []int64 {
	ids := []int64{}
	for id, row := range store.images {
		if row.SectionID == sectionID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (store *memoryStore) draftsOf(originalID, userID int64) []chapter.Chapter {
	drafts := []chapter.Chapter{}
	for _, row := range store.chapters {
		if row.OriginalChapterID != nil && *row.OriginalChapterID == originalID && row.AuthorUserID == userID {
			drafts = append(drafts, row)
		}
	}
	return drafts
}

func (store *memoryStore) counts() [6]int {
	return [6]int{len(store.users), len(store.books), len(store.chapters), len(store.sections), len(store.images), len(store.audios)}
}

// # Store

func (store *memoryStore) LockBook(_ context.Context, id int64) error {
	if err := store.fail("LockBook"); err != nil {
		return err
	}
	if !store.books[id] {
		return apperr.NotFound("Book")
	}
	return nil
}

func (store *memoryStore) LockChapters(_ context.Context, ids []int64) ([]*chapter.Chapter, error) {
	if err := store.fail("LockChapters"); err != nil {
		return nil, err
	}
	store.locked = append(store.locked, slices.Clone(ids))
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	out := []*chapter.Chapter{}
	for _, id := range sorted {
		if row, ok := store.chapters[id]; ok {
			copied := row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (store *memoryStore) LockSection(_ context.Context, id int64) error {
	if err := store.fail("LockSection"); err != nil {
		return err
	}
	if _, ok := store.sections[id]; !ok {
		return apperr.NotFound("Section")
	}
	return nil
}

func (store *memoryStore) UserExists(_ context.Context, id int64) (bool, error) {
	if err := store.fail("UserExists"); err != nil {
		return false, err
	}
	return store.users[id], nil
}

func (store *memoryStore) ListCanonicalChapterIDs(_ context.Context, bookID int64) ([]int64, error) {
	if err := store.fail("ListCanonicalChapterIDs"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, row := range store.chapters {
		if row.BookID == bookID && row.OriginalChapterID == nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (store *memoryStore) ListDraftIDs(_ context.Context, originalID int64) ([]int64, error) {
	if err := store.fail("ListDraftIDs"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, row := range store.chapters {
		if row.OriginalChapterID != nil && *row.OriginalChapterID == originalID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (store *memoryStore) FindDraft(_ context.Context, originalID, userID int64) (*chapter.Chapter, bool, error) {
	if err := store.fail("FindDraft"); err != nil {
		return nil, false, err
	}
	drafts := store.draftsOf(originalID, userID)
	if len(drafts) == 0 {
		return nil, false, nil
	}
	return &drafts[0], true, nil
}

func (store *memoryStore) ListSectionIDs(_ context.Context, chapterIDs []int64) ([]int64, error) {
	if err := store.fail("ListSectionIDs"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, row := range store.sections {
		if slices.Contains(chapterIDs, row.ChapterID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (store *memoryStore) ListImageIDs(_ context.Context, sectionIDs []int64) ([]int64, error) {
	if err := store.fail("ListImageIDs"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, row := range store.images {
		if slices.Contains(sectionIDs, row.SectionID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (store *memoryStore) ListAudioIDs(_ context.Context, chapterIDs []int64) ([]int64, error) {
	if err := store.fail("ListAudioIDs"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, chapterID := range store.audios {
		if slices.Contains(chapterIDs, chapterID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (store *memoryStore) DeleteImages(_ context.Context, ids []int64) (int64, error) {
	if err := store.fail("DeleteImages"); err != nil {
		return 0, err
	}
	var removed int64
	for _, id := range ids {
		if _, ok := store.images[id]; ok {
			delete(store.images, id)
			removed++
		}
	}
	return removed, nil
}

func (store *memoryStore) DeleteSections(_ context.Context, ids []int64) (int64, error) {
	if err := store.fail("DeleteSections"); err != nil {
		return 0, err
	}
	for _, image := range store.images {
		if slices.Contains(ids, image.SectionID) {
			return 0, fmt.Errorf("section %d still referenced by image %d", image.SectionID, image.ID)
		}
	}
	var removed int64
	for _, id := range ids {
		if _, ok := store.sections[id]; ok {
			delete(store.sections, id)
			removed++
		}
	}
	return removed, nil
}

func (store *memoryStore) DeleteAudios(_ context.Context, ids []int64) (int64, error) {
	if err := store.fail("DeleteAudios"); err != nil {
		return 0, err
	}
	var removed int64
	for _, id := range ids {
		if _, ok := store.audios[id]; ok {
			delete(store.audios, id)
			removed++
		}
	}
	return removed, nil
}

func (store *memoryStore) DeleteChapters(_ context.Context, ids []int64) (int64, error) {
	if err := store.fail("DeleteChapters"); err != nil {
		return 0, err
	}
	for _, row := range store.sections {
		if slices.Contains(ids, row.ChapterID) {
			return 0, fmt.Errorf("chapter %d still referenced by section %d", row.ChapterID, row.ID)
		}
	}
	for audioID, chapterID := range store.audios {
		if slices.Contains(ids, chapterID) {
			return 0, fmt.Errorf("chapter %d still referenced by audio %d", chapterID, audioID)
		}
	}
	for _, row := range store.chapters {
		if row.OriginalChapterID != nil && slices.Contains(ids, *row.OriginalChapterID) && !slices.Contains(ids, row.ID) {
			return 0, fmt.Errorf("chapter %d still referenced by draft %d", *row.OriginalChapterID, row.ID)
		}
	}

	var removed int64
	for _, id := range ids {
		if _, ok := store.chapters[id]; ok {
			delete(store.chapters, id)
			removed++
		}
	}
	return removed, nil
}

func (store *memoryStore) DeleteBook(_ context.Context, id int64) error {
	if err := store.fail("DeleteBook"); err != nil {
		return err
	}
	for _, row := range store.chapters {
		if row.BookID == id {
			return fmt.Errorf("book %d still referenced by chapter %d", id, row.ID)
		}
	}
	if !store.books[id] {
		return errors.New("book vanished")
	}
	delete(store.books, id)
	return nil
}

func (store *memoryStore) InsertChapter(_ context.Context, draft *chapter.Chapter) error {
	if err := store.fail("InsertChapter"); err != nil {
		return err
	}
	if hook := store.beforeInsertChapter; hook != nil {
		store.beforeInsertChapter = nil
		hook(store)
	}
	if draft.OriginalChapterID != nil && len(store.draftsOf(*draft.OriginalChapterID, draft.AuthorUserID)) > 0 {
		return apperr.Conflict("Draft already exists")
	}
	store.nextID++
	draft.ID = store.nextID
	store.chapters[draft.ID] = *draft
	return nil
}

func (store *memoryStore) RenameChapter(_ context.Context, id int64, name string) error {
	if err := store.fail("RenameChapter"); err != nil {
		return err
	}
	row, ok := store.chapters[id]
	if !ok {
		return apperr.NotFound("Chapter")
	}
	row.Name = name
	store.chapters[id] = row
	return nil
}

func (store *memoryStore) InsertSection(_ context.Context, row *section.Section) error {
	if err := store.fail("InsertSection"); err != nil {
		return err
	}
	if _, ok := store.chapters[row.ChapterID]; !ok {
		return apperr.NotFound("Chapter")
	}
	for _, existing := range store.sections {
		if existing.ChapterID == row.ChapterID && existing.Order == row.Order {
			return apperr.Conflict("Section already exists")
		}
	}
	store.nextID++
	row.ID = store.nextID
	stored := *row
	stored.Images = nil
	store.sections[row.ID] = stored
	return nil
}

func (store *memoryStore) InsertImage(_ context.Context, image *section.Image) error {
	if err := store.fail("InsertImage"); err != nil {
		return err
	}
	if _, ok := store.sections[image.SectionID]; !ok {
		return apperr.NotFound("Section")
	}
	for _, existing := range store.images {
		if existing.SectionID == image.SectionID && existing.Order == image.Order {
			return apperr.Conflict("Image already exists")
		}
	}
	store.nextID++
	image.ID = store.nextID
	store.images[image.ID] = *image
	return nil
}

func (store *memoryStore) ReparentSections(_ context.Context, fromID, toID int64) (int64, error) {
	if err := store.fail("ReparentSections"); err != nil {
		return 0, err
	}
	var moved int64
	for id, row := range store.sections {
		if row.ChapterID == fromID {
			row.ChapterID = toID
			store.sections[id] = row
			moved++
		}
	}
	return moved, nil
}

func ptr(id int64) *int64 { return &id }
