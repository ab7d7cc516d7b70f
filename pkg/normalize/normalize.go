// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize cleans human-entered names before they are stored.
//
// Book, chapter and draft names arrive from editors on different platforms;
// the same title typed on two keyboards must compare equal in the database.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name converts s to NFC, drops control characters and collapses runs of whitespace.
func Name(s string) string {
	composed := norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.Map(dropControl, composed)), " ")
}

// Fold returns an accent-insensitive, lower-cased form of s for comparisons.
//
// "Capítulo  Um" and "capitulo um" fold to the same value.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	folded, _, err := transform.String(t, Name(s))
	if err != nil {
		return strings.ToLower(Name(s))
	}
	return strings.ToLower(folded)
}

func dropControl(r rune) rune {
	if unicode.IsControl(r) && !unicode.IsSpace(r) {
		return -1
	}
	return r
}

// isMn reports whether the rune is a non-spacing mark (accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
