// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/internal/platform/sec"
	"github.com/taibuivan/folio/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches book endpoints. Deletion is owned by the hierarchy handler.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books", handler.listBooks)
	api.Get("/books/{id}", handler.getBook)

	api.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Post("/books", handler.createBook)
		editor.Put("/books/{id}", handler.renameBook)
	})
}

type bookRequest struct {
	Name string `json:"name"`
}

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	books, total, err := handler.service.ListBooks(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, books, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var input bookRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.CreateBook(request.Context(), input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, book)
}

func (handler *Handler) renameBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input bookRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.RenameBook(request.Context(), id, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}
