package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
)

func TestCreateCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"minimum length", "ten chars!", false},
		{"too short after trim", "   short   ", true},
		{"control characters stripped", "\x00\x07hello world", false},
		{"multibyte counts runes", strings.Repeat("é", 5000), false},
		{"too long", strings.Repeat("a", 5001), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := CreateCommand{Text: tt.text}
			cmd.Normalize()
			err := cmd.Validate()
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeComment(t *testing.T) {
	got, err := NormalizeComment("  hi\x01 ")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = NormalizeComment(" \x02 ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewViewHidesAuthor(t *testing.T) {
	c := &Confession{
		ID:        id.NewConfessionID(),
		AuthorID:  id.NewPrincipalID(),
		Body:      "a secret worth keeping",
		ImageKey:  "media/abc",
		CreatedAt: time.Now(),
	}
	v := NewView(c, Stats{Likes: 2, Comments: 1, Liked: true}, func(k string) string { return "https://cdn/" + k })

	assert.Equal(t, "https://cdn/media/abc", v.ImageURL)
	assert.Equal(t, 2, v.Likes)
	assert.True(t, v.Liked)
	assert.NotContains(t, v.ID, c.AuthorID.String())
}

func TestSummarizeTruncates(t *testing.T) {
	c := &Confession{ID: id.NewConfessionID(), Body: strings.Repeat("x", 300)}
	s := Summarize(c)
	assert.Equal(t, excerptRunes+1, len([]rune(s.Excerpt)))
}
