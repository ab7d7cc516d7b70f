// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package media validates uploaded binary content before it reaches the store.

Content is an opaque blob with a declared content type. [Policy] checks the
size limit and the allow-list, then sniffs the bytes with mimetype so a
client cannot label a PDF as "image/png".
*/
package media

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/taibuivan/folio/internal/platform/apperr"
)

const bytesPerMB = 1 << 20

// Kind names the family of content a policy check applies to.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Policy holds upload limits and supported content types.
type Policy struct {
	MaxImageBytes int64
	MaxAudioBytes int64
	ImageTypes    []string
	AudioTypes    []string
}

// NewPolicy builds a [Policy] from megabyte limits and type lists.
func NewPolicy(maxImageMB, maxAudioMB int, imageTypes, audioTypes []string) Policy {
	return Policy{
		MaxImageBytes: int64(maxImageMB) * bytesPerMB,
		MaxAudioBytes: int64(maxAudioMB) * bytesPerMB,
		ImageTypes:    normalizeTypes(imageTypes),
		AudioTypes:    normalizeTypes(audioTypes),
	}
}

// CheckImage validates an image payload. field names the offending input in errors.
func (policy Policy) CheckImage(field string, content []byte, declaredType string) error {
	return policy.check(KindImage, field, content, declaredType, policy.MaxImageBytes, policy.ImageTypes)
}

// CheckAudio validates an audio payload.
func (policy Policy) CheckAudio(field string, content []byte, declaredType string) error {
	return policy.check(KindAudio, field, content, declaredType, policy.MaxAudioBytes, policy.AudioTypes)
}

func (policy Policy) check(kind Kind, field string, content []byte, declaredType string, maxBytes int64, allowed []string) error {
	if len(content) == 0 {
		return fieldError(field, "Content must not be empty")
	}

	if int64(len(content)) > maxBytes {
		return fieldError(field, fmt.Sprintf("Content exceeds the %d MB limit", maxBytes/bytesPerMB))
	}

	declared := baseType(declaredType)
	if !slices.Contains(allowed, declared) {
		return fieldError(field, fmt.Sprintf("Unsupported %s type %q", kind, declaredType))
	}

	// The sniffed type only has to agree on the family; browsers disagree on audio/mp3 vs audio/mpeg
	detected := mimetype.Detect(content)
	if !detectedInFamily(detected, kind) {
		return fieldError(field, fmt.Sprintf("Content does not look like %s (detected %s)", kind, detected.String()))
	}

	return nil
}

func detectedInFamily(detected *mimetype.MIME, kind Kind) bool {
	for mime := detected; mime != nil; mime = mime.Parent() {
		if strings.HasPrefix(mime.String(), string(kind)+"/") {
			return true
		}
	}
	// WebM and Ogg containers are reported as video/* or application/ogg
	if kind == KindAudio {
		return detected.Is("video/webm") || detected.Is("application/ogg")
	}
	return false
}

func fieldError(field, message string) error {
	return apperr.ValidationError("Invalid upload", apperr.FieldError{Field: field, Message: message})
}

func baseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t = baseType(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
