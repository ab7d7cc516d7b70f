// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter retrieval and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints to the root API router.
// Deleting, drafting and publishing live in the hierarchy handler.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books/{bookID}/chapters", handler.ListChapters)
	api.Get("/chapters/{id}", handler.GetChapter)
	api.Get("/chapters/{id}/drafts/users/{userID}", handler.FindUserDraft)
	api.Get("/users/{userID}/drafts", handler.ListUserDrafts)

	api.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Post("/chapters", handler.CreateChapter)
		editor.Put("/chapters/{id}", handler.RenameChapter)
	})
}

// # Chapter Retrieval

/*
GET /api/v1/books/{bookID}/chapters.

Request:
  - bookID: int64
  - drafts: bool (query, include drafts)

Response:
  - 200: []Chapter
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.Int64ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	includeDrafts, _ := strconv.ParseBool(request.URL.Query().Get("drafts"))

	chapters, err := handler.service.ListChapters(request.Context(), bookID, includeDrafts)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapters)
}

/*
GET /api/v1/chapters/{id}.

Response:
  - 200: Chapter
  - 404: Chapter not found
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.GetChapter(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// # Chapter Management

type createChapterRequest struct {
	BookID int64  `json:"book_id"`
	Name   string `json:"name"`
}

/*
POST /api/v1/chapters.

Description: Creates a canonical chapter authored by the caller.

Response:
  - 201: Chapter
  - 400: Validation failed
  - 404: Book not found
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.CreateChapter(request.Context(), input.BookID, userID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

type renameChapterRequest struct {
	Name string `json:"name"`
}

// RenameChapter handles PUT /api/v1/chapters/{id}.
func (handler *Handler) RenameChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input renameChapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.RenameChapter(request.Context(), id, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// # Drafts

// FindUserDraft handles GET /api/v1/chapters/{id}/drafts/users/{userID}.
func (handler *Handler) FindUserDraft(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID, err := requestutil.Int64ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := handler.service.FindUserDraft(request.Context(), chapterID, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, draft)
}

// ListUserDrafts handles GET /api/v1/users/{userID}/drafts.
func (handler *Handler) ListUserDrafts(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.Int64ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	drafts, err := handler.service.ListUserDrafts(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, drafts)
}
