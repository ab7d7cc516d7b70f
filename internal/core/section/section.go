// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package section

import "time"

// Section is an ordered block of content inside a chapter.
type Section struct {
	ID        int64     `json:"id"`
	ChapterID int64     `json:"chapter_id"`
	Order     int       `json:"order"`
	Prompt    string    `json:"prompt"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Original  string    `json:"original"`
	Link3D    *string   `json:"link3d"`
	Feedback  bool      `json:"feedback"`
	Order3D   *int      `json:"order3d"`
	Images    []*Image  `json:"images"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Image is an ordered binary attachment of a section.
// Content is rendered as base64 in JSON.
type Image struct {
	ID          int64     `json:"id"`
	SectionID   int64     `json:"section_id"`
	Order       int       `json:"order"`
	Content     []byte    `json:"content"`
	ContentType string    `json:"content_type"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImagePatch lists the fields an image update changes. Nil or empty fields keep
// the stored value; an empty Description clears it.
type ImagePatch struct {
	SectionID   *int64
	Order       *int
	Content     []byte
	ContentType *string
	Description *string
}
