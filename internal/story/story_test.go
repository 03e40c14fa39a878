package story

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slides(ids ...string) []Slide {
	out := make([]Slide, len(ids))
	for i, id := range ids {
		out[i] = Slide{ID: id, Text: "slide " + id}
	}
	return out
}

func TestSlideDuration_Default(t *testing.T) {
	assert.Equal(t, DefaultSlideDuration, Slide{}.Duration())
	assert.Equal(t, DefaultSlideDuration, Slide{DurationMs: -100}.Duration())
}

func TestSlideDuration_Override(t *testing.T) {
	sl := Slide{DurationMs: 3000}
	assert.Equal(t, 3*time.Second, sl.Duration())
}

func TestValidate_EmptyStory(t *testing.T) {
	st := Story{ID: "s1"}
	assert.Error(t, st.Validate())
}

func TestValidate_DuplicateSlideID(t *testing.T) {
	st := Story{ID: "s1", Slides: slides("a", "b", "a")}
	assert.ErrorContains(t, st.Validate(), "duplicate slide id")
}

func TestValidate_StickerBounds(t *testing.T) {
	st := Story{ID: "s1", Slides: []Slide{{
		ID:       "a",
		Stickers: []Sticker{{Emoji: "🎉", XPercent: 50, YPercent: 101}},
	}}}
	assert.ErrorContains(t, st.Validate(), "out of bounds")

	st.Slides[0].Stickers[0].YPercent = 100
	assert.NoError(t, st.Validate())
}

func TestReorder_PreservesSlidesByID(t *testing.T) {
	st := Story{ID: "s1", Slides: slides("a", "b", "c")}
	require.NoError(t, st.Reorder([]string{"c", "a", "b"}))

	got := make([]string, len(st.Slides))
	for i, sl := range st.Slides {
		got[i] = sl.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, got)
	// Content rode along with the IDs.
	assert.Equal(t, "slide c", st.Slides[0].Text)
}

func TestReorder_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		order []string
	}{
		{"wrong length", []string{"a", "b"}},
		{"unknown id", []string{"a", "b", "x"}},
		{"duplicate id", []string{"a", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Story{ID: "s1", Slides: slides("a", "b", "c")}
			err := st.Reorder(tt.order)
			require.Error(t, err)
			// Failed reorder leaves the story untouched.
			assert.Equal(t, "a", st.Slides[0].ID)
			assert.Len(t, st.Slides, 3)
		})
	}
}

func TestNewSlideID_Unique(t *testing.T) {
	a, b := NewSlideID(), NewSlideID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Happy New Year!", "happy-new-year"},
		{"  spaced   out  ", "spaced-out"},
		{"Déjà Vu", "déjà-vu"},
		{"2026 — Year of Fire", "2026-year-of-fire"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestSlugify_UnicodeNormalization(t *testing.T) {
	composed := "café"        // é as single rune
	decomposed := "café"     // e + combining accent
	assert.Equal(t, Slugify(composed), Slugify(decomposed))
}
