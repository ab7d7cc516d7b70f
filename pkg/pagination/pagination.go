// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses page requests for list endpoints and builds the
// metadata block returned alongside the items.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	// MaxLimit bounds a single page of books.
	MaxLimit    = 100
	DefaultPage = 1
)

// Params is the page and limit parsed from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET for the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds the metadata for a page of a result set of size total.
func NewMeta(page, limit, total int) Meta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Meta{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

/*
FromRequest parses the "page" and "limit" query parameters.

Unparseable or out-of-range values fall back to [DefaultPage] and
[DefaultLimit]; a limit above [MaxLimit] is clamped to it.
*/
func FromRequest(request *http.Request) Params {
	page := intParam(request, "page", DefaultPage)
	limit := intParam(request, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

func intParam(request *http.Request, key string, fallback int) int {
	raw := request.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
