// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/pkg/normalize"
)

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim_and_collapse", "  Intro \t to   Anatomy\n", "Intro to Anatomy"},
		{"decomposed_to_composed", "Cafe\u0301", "Caf\u00e9"},
		{"control_removed", "Intro\u0007", "Intro"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Name(tt.input))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, normalize.Fold("capitulo um"), normalize.Fold("  Capítulo   Um "))
	assert.Equal(t, "cafe", normalize.Fold("Café"))
}
