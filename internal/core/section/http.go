// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package section

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

// RegisterRoutes attaches section and image endpoints.
// DELETE /sections/{id} is owned by the hierarchy handler.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/chapters/{chapterID}/sections", handler.listSections)
	api.Get("/sections/{id}", handler.getSection)
	api.Get("/sections/{sectionID}/images", handler.listImages)
	api.Get("/images/{id}", handler.getImage)

	api.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Post("/sections", handler.createSection)
		editor.Put("/sections/{id}", handler.updateSection)
		editor.Post("/sections/{sectionID}/images", handler.addImage)
		editor.Put("/images/{id}", handler.updateImage)
		editor.Delete("/images/{id}", handler.deleteImage)
	})
}

// sectionRequest is the inbound schema for section creation and update.
type sectionRequest struct {
	ChapterID int64   `json:"chapter_id"`
	Order     int     `json:"order"`
	Prompt    string  `json:"prompt"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	Original  string  `json:"original"`
	Link3D    *string `json:"link3d"`
	Feedback  bool    `json:"feedback"`
	Order3D   *int    `json:"order3d"`
}

func (input sectionRequest) toSection() *Section {
	return &Section{
		ChapterID: input.ChapterID,
		Order:     input.Order,
		Prompt:    input.Prompt,
		Title:     input.Title,
		Summary:   input.Summary,
		Original:  input.Original,
		Link3D:    input.Link3D,
		Feedback:  input.Feedback,
		Order3D:   input.Order3D,
	}
}

// imageRequest carries the image bytes base64-encoded, as encoding/json does for []byte.
type imageRequest struct {
	Order       int     `json:"order"`
	Content     []byte  `json:"content"`
	ContentType string  `json:"content_type"`
	Description *string `json:"description"`
}

// imagePatchRequest leaves out whatever the caller does not send.
type imagePatchRequest struct {
	SectionID   *int64  `json:"section_id"`
	Order       *int    `json:"order"`
	Content     []byte  `json:"content"`
	ContentType *string `json:"content_type"`
	Description *string `json:"description"`
}

func (handler *Handler) listSections(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.Int64ID(request, "chapterID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sections, err := handler.service.ListSections(request.Context(), chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sections)
}

func (handler *Handler) getSection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	section, err := handler.service.GetSection(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, section)
}

func (handler *Handler) createSection(writer http.ResponseWriter, request *http.Request) {
	var input sectionRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	section := input.toSection()
	if err := handler.service.CreateSection(request.Context(), section); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, section)
}

func (handler *Handler) updateSection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input sectionRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	section := input.toSection()
	section.ID = id
	if err := handler.service.UpdateSection(request.Context(), section); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, section)
}

func (handler *Handler) addImage(writer http.ResponseWriter, request *http.Request) {
	sectionID, err := requestutil.Int64ID(request, "sectionID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input imageRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	image := &Image{
		SectionID:   sectionID,
		Order:       input.Order,
		Content:     input.Content,
		ContentType: input.ContentType,
		Description: input.Description,
	}
	if err := handler.service.AddImage(request.Context(), image); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, image)
}

func (handler *Handler) listImages(writer http.ResponseWriter, request *http.Request) {
	sectionID, err := requestutil.Int64ID(request, "sectionID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	images, err := handler.service.ListImages(request.Context(), sectionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, images)
}

func (handler *Handler) getImage(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.service.GetImage(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, image)
}

func (handler *Handler) updateImage(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input imagePatchRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.service.UpdateImage(request.Context(), id, ImagePatch{
		SectionID:   input.SectionID,
		Order:       input.Order,
		Content:     input.Content,
		ContentType: input.ContentType,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, image)
}

func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteImage(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
