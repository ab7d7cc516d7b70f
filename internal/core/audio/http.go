// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audio

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/folio/internal/platform/middleware"
	requestutil "github.com/taibuivan/folio/internal/platform/request"
	"github.com/taibuivan/folio/internal/platform/respond"
	"github.com/taibuivan/folio/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/chapters/{chapterID}/audios", handler.listAudios)
	api.Get("/audios/{id}", handler.getAudio)

	api.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Post("/audios", handler.addAudio)
		editor.Put("/audios/{id}", handler.updateAudio)
		editor.Delete("/audios/{id}", handler.deleteAudio)
	})
}

type audioRequest struct {
	ChapterID   int64  `json:"chapter_id"`
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
}

// audioPatchRequest leaves out whatever the caller does not send.
type audioPatchRequest struct {
	ChapterID   *int64  `json:"chapter_id"`
	Content     []byte  `json:"content"`
	ContentType *string `json:"content_type"`
}

func (handler *Handler) listAudios(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.Int64ID(request, "chapterID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	audios, err := handler.service.ListAudios(request.Context(), chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, audios)
}

func (handler *Handler) getAudio(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	audio, err := handler.service.GetAudio(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, audio)
}

func (handler *Handler) addAudio(writer http.ResponseWriter, request *http.Request) {
	var input audioRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	audio := &Audio{ChapterID: input.ChapterID, Content: input.Content, ContentType: input.ContentType}
	if err := handler.service.AddAudio(request.Context(), audio); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The upload is echoed without its bytes
	audio.Content = nil
	respond.Created(writer, audio)
}

func (handler *Handler) updateAudio(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input audioPatchRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	audio, err := handler.service.UpdateAudio(request.Context(), id, Patch{
		ChapterID:   input.ChapterID,
		Content:     input.Content,
		ContentType: input.ContentType,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	audio.Content = nil
	respond.OK(writer, audio)
}

func (handler *Handler) deleteAudio(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteAudio(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
