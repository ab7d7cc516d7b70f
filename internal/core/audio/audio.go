// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audio

import "time"

// Audio is a binary recording attached to a chapter. Content is base64 in JSON.
type Audio struct {
	ID          int64     `json:"id"`
	ChapterID   int64     `json:"chapter_id"`
	Content     []byte    `json:"content,omitempty"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Patch lists the fields an update changes. Nil or empty fields keep the stored value.
type Patch struct {
	ChapterID   *int64
	Content     []byte
	ContentType *string
}
