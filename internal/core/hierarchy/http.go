// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package hierarchy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/internal/platform/sec"
)

// Handler exposes cascade deletion, draft saving and publishing over HTTP.
type Handler struct {
	engine *Engine
}

// NewHandler constructs a new hierarchy [Handler].
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes attaches the multi-entity endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Delete("/books/{id}", handler.DeleteBook)
	})

	api.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Delete("/chapters/{id}", handler.DeleteChapter)
		editor.Delete("/sections/{id}", handler.DeleteSection)
		editor.Post("/chapters/{id}/publish", handler.Publish)
	})

	api.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)
		member.Put("/chapters/{id}/draft", handler.SaveDraft)
	})
}

// # Cascade Deletion

/*
DELETE /api/v1/books/{id}.

Response:
  - 200: Summary
  - 404: Book not found
  - 500: TRANSACTION_FAILED, nothing was deleted
*/
func (handler *Handler) DeleteBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.engine.DeleteBook(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

// DeleteChapter handles DELETE /api/v1/chapters/{id}.
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.engine.DeleteChapter(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

// DeleteSection handles DELETE /api/v1/sections/{id}.
func (handler *Handler) DeleteSection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.engine.DeleteSection(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

// # Drafts

type saveDraftRequest struct {
	UserID   *int64         `json:"user_id"`
	Name     string         `json:"name"`
	Sections []DraftSection `json:"sections"`
}

/*
PUT /api/v1/chapters/{id}/draft.

Description: Snapshots the supplied sections into the caller's draft of
chapter {id}. Admins may save on behalf of another user through user_id.

Response:
  - 200: DraftResult (existing draft replaced)
  - 201: DraftResult (draft created)
  - 400: Validation failed
  - 403: user_id belongs to someone else
  - 404: Chapter or user not found
*/
func (handler *Handler) SaveDraft(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims := requestutil.Claims(request)
	if claims == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	var input saveDraftRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := claims.UserID
	if input.UserID != nil && *input.UserID != claims.UserID {
		if !sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin) {
			respond.Error(writer, request, apperr.Forbidden("Cannot save a draft for another user"))
			return
		}
		userID = *input.UserID
	}

	result, err := handler.engine.SaveNamedDraft(request.Context(), chapterID, userID, input.Name, input.Sections)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Created {
		respond.Created(writer, result)
		return
	}
	respond.OK(writer, result)
}

type publishRequest struct {
	DestinationChapterID *int64 `json:"destination_chapter_id"`
}

/*
POST /api/v1/chapters/{id}/publish.

Description: Publishes draft {id} onto destination_chapter_id.

Response:
  - 204: Published
  - 400: Destination missing or equal to the draft
  - 404: Draft or destination not found
  - 500: TRANSACTION_FAILED, destination and draft unchanged
*/
func (handler *Handler) Publish(writer http.ResponseWriter, request *http.Request) {
	draftID, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input publishRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.engine.Publish(request.Context(), draftID, input.DestinationChapterID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
