// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"encoding/json"
	"time"
)

// Kind distinguishes published chapters from per-user working copies.
type Kind string

const (
	KindCanonical Kind = "canonical"
	KindDraft     Kind = "draft"
)

// Chapter belongs to a Book. A chapter with an OriginalChapterID is a draft
// owned by AuthorUserID; the kind is derived from that field, never stored.
type Chapter struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	BookID            int64     `json:"book_id"`
	AuthorUserID      int64     `json:"author_user_id"`
	OriginalChapterID *int64    `json:"original_chapter_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Kind reports whether the chapter is canonical or a draft.
func (chapter *Chapter) Kind() Kind {
	if chapter.OriginalChapterID != nil {
		return KindDraft
	}
	return KindCanonical
}

// IsDraft is shorthand for Kind() == KindDraft.
func (chapter *Chapter) IsDraft() bool {
	return chapter.OriginalChapterID != nil
}

// MarshalJSON adds the derived kind to the wire form.
func (chapter *Chapter) MarshalJSON() ([]byte, error) {
	type plain Chapter
	return json.Marshal(struct {
		*plain
		Kind Kind `json:"kind"`
	}{plain: (*plain)(chapter), Kind: chapter.Kind()})
}
