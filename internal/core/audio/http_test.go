// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audio_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/folio/internal/core/audio"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/ctxutil"
	"github.com/taibuivan/folio/internal/platform/sec"
)

type memoryRepository struct {
	audios   map[int64]*audio.Audio
	chapters map[int64]bool
}

func (repository *memoryRepository) ListByChapter(_ context.Context, chapterID int64) ([]*audio.Audio, error) {
	out := []*audio.Audio{}
	for _, a := range repository.audios {
		if a.ChapterID == chapterID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id int64) (*audio.Audio, error) {
	if a, ok := repository.audios[id]; ok {
		return a, nil
	}
	return nil, apperr.NotFound("Audio")
}

func (repository *memoryRepository) Create(_ context.Context, a *audio.Audio) error {
	a.ID = int64(len(repository.audios) + 1)
	stored := *a
	repository.audios[a.ID] = &stored
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, a *audio.Audio) error {
	if _, ok := repository.audios[a.ID]; !ok {
		return apperr.NotFound("Audio")
	}
	if !repository.chapters[a.ChapterID] {
		return apperr.NotFound("Chapter")
	}
	stored := *a
	repository.audios[a.ID] = &stored
	return nil
}

func (repository *memoryRepository) Delete(_ context.Context, id int64) error {
	if _, ok := repository.audios[id]; !ok {
		return apperr.NotFound("Audio")
	}
	delete(repository.audios, id)
	return nil
}

type allowAudio struct{}

func (allowAudio) CheckAudio(string, []byte, string) error { return nil }

type audioCheckerFunc func(field string, content []byte, declaredType string) error

func (fn audioCheckerFunc) CheckAudio(field string, content []byte, declaredType string) error {
	return fn(field, content, declaredType)
}

func newRouter(repository *memoryRepository) http.Handler {
	return newRouterWith(repository, allowAudio{})
}

func newRouterWith(repository *memoryRepository, checker audio.Checker) http.Handler {
	service := audio.NewService(repository, checker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := chi.NewRouter()

	// Every request runs as an editor
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: 1, Role: string(sec.RoleEditor)})
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	})
	audio.NewHandler(service).RegisterRoutes(router)
	return router
}

/*
TestHandler_AudioLifecycle uploads base64 content, reads it back and deletes it.
*/
func TestHandler_AudioLifecycle(t *testing.T) {
	repository := &memoryRepository{audios: map[int64]*audio.Audio{}}
	router := newRouter(repository)

	payload := `{"chapter_id": 4, "content_type": "audio/mpeg", "content": "` + base64.StdEncoding.EncodeToString([]byte("ID3-bytes")) + `"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/audios", strings.NewReader(payload)))
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), `"content":`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/audios/1", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data audio.Audio `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, []byte("ID3-bytes"), body.Data.Content)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/audios/1", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/audios/1", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func seededRepository() *memoryRepository {
	return &memoryRepository{
		audios: map[int64]*audio.Audio{
			1: {ID: 1, ChapterID: 4, Content: []byte("ID3-old"), ContentType: "audio/mpeg"},
		},
		chapters: map[int64]bool{4: true, 5: true},
	}
}

/*
TestHandler_UpdateAudio replaces content and moves the recording to another chapter.
*/
func TestHandler_UpdateAudio(t *testing.T) {
	repository := seededRepository()

	var checked []string
	router := newRouterWith(repository, audioCheckerFunc(func(_ string, content []byte, declaredType string) error {
		checked = append(checked, declaredType+":"+string(content))
		return nil
	}))

	payload := `{"chapter_id": 5, "content_type": "audio/ogg", "content": "` + base64.StdEncoding.EncodeToString([]byte("OggS")) + `"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/audios/1", strings.NewReader(payload)))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), `"content":`)

	assert.Equal(t, []string{"audio/ogg:OggS"}, checked)
	assert.Equal(t, int64(5), repository.audios[1].ChapterID)
	assert.Equal(t, []byte("OggS"), repository.audios[1].Content)
	assert.Equal(t, "audio/ogg", repository.audios[1].ContentType)
}

/*
TestHandler_UpdateAudio_Partial keeps stored values and skips the media policy
when only the chapter changes.
*/
func TestHandler_UpdateAudio_Partial(t *testing.T) {
	repository := seededRepository()
	router := newRouterWith(repository, audioCheckerFunc(func(string, []byte, string) error {
		t.Fatal("media policy must not run without new content or type")
		return nil
	}))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/audios/1", strings.NewReader(`{"chapter_id": 5}`)))
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, int64(5), repository.audios[1].ChapterID)
	assert.Equal(t, []byte("ID3-old"), repository.audios[1].Content)
	assert.Equal(t, "audio/mpeg", repository.audios[1].ContentType)
}

/*
TestHandler_UpdateAudio_Rejected leaves the stored row untouched on every failure.
*/
func TestHandler_UpdateAudio_Rejected(t *testing.T) {
	rejectType := audioCheckerFunc(func(field string, _ []byte, declaredType string) error {
		if declaredType == "audio/mpeg" {
			return nil
		}
		return apperr.ValidationError("Invalid upload", apperr.FieldError{Field: field, Message: "Unsupported content type"})
	})

	tests := []struct {
		name    string
		path    string
		payload string
		status  int
	}{
		{"policy_rejects_type", "/audios/1", `{"content_type": "video/mp4"}`, http.StatusBadRequest},
		{"empty_content_type", "/audios/1", `{"content_type": ""}`, http.StatusBadRequest},
		{"missing_chapter", "/audios/1", `{"chapter_id": 99}`, http.StatusNotFound},
		{"missing_audio", "/audios/7", `{"chapter_id": 5}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repository := seededRepository()
			router := newRouterWith(repository, rejectType)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.payload)))
			assert.Equal(t, tt.status, recorder.Code)

			assert.Equal(t, seededRepository().audios[1], repository.audios[1])
		})
	}
}
