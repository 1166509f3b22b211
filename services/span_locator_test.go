package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateSpan_ExactMatch(t *testing.T) {
	text := "We need banners for the entrance and catering for 200 guests."
	source := "banners for the entrance"

	span, ok := LocateSpan(text, source)
	require.True(t, ok)
	assert.Equal(t, source, text[span.Start:span.End])
}

func TestLocateSpan_CurlyQuotesInText(t *testing.T) {
	source := `the "main hall" setup`
	text := "Please prepare the “main hall” setup before Friday."

	span, ok := LocateSpan(text, source)
	require.True(t, ok)

	// The re-extracted content must normalize identically to the source.
	extracted := normalizeQuotes(text[span.Start:span.End]).text
	assert.Equal(t, normalizeQuotes(source).text, extracted)
}

func TestLocateSpan_CurlyApostrophe(t *testing.T) {
	source := "don't forget the stage lighting"
	text := "Important: don’t forget the stage lighting near the exit."

	span, ok := LocateSpan(text, source)
	require.True(t, ok)
	assert.Contains(t, text[span.Start:span.End], "stage lighting")
}

func TestLocateSpan_CaseInsensitive(t *testing.T) {
	text := "BANNERS AND POSTERS are listed under printing."
	source := "banners and posters"

	span, ok := LocateSpan(text, source)
	require.True(t, ok)
	assert.Equal(t, "BANNERS AND POSTERS", text[span.Start:span.End])
}

func TestLocateSpan_BulletStripped(t *testing.T) {
	// The brief was reformatted into a bullet list after the span was captured.
	text := "Requirements:\n- Catering for 200 guests\n- Stage and lighting"
	source := "catering for 200 guests"

	span, ok := LocateSpan(text, source)
	require.True(t, ok)
	assert.Contains(t, strings.ToLower(text[span.Start:span.End]), "catering")
}

func TestLocateSpan_AnchorFallback(t *testing.T) {
	// Only the head of the span survives in the edited text; the anchor
	// (first words) should still place the highlight.
	text := "Budget covers venue rental downtown plus incidentals."
	source := "venue rental downtown, including all service fees and insurance"

	span, ok := LocateSpan(text, source)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text[span.Start:], "venue rental downtown"))
	assert.LessOrEqual(t, span.End, len(text))
}

func TestLocateSpan_NoMatch(t *testing.T) {
	_, ok := LocateSpan("A completely unrelated brief about catering.", "quantum flux capacitors")
	assert.False(t, ok)
}

func TestLocateSpan_EmptyInputs(t *testing.T) {
	_, ok := LocateSpan("", "anything")
	assert.False(t, ok)

	_, ok = LocateSpan("some text", "   ")
	assert.False(t, ok)
}

func TestBuildHighlightSegments_Alternating(t *testing.T) {
	text := "We need banners for the hall and catering for the guests."
	sources := []string{"catering for the guests", "banners for the hall"}

	segments := BuildHighlightSegments(text, sources)
	require.Len(t, segments, 5)

	assert.False(t, segments[0].Highlight)
	assert.True(t, segments[1].Highlight)
	assert.Equal(t, "banners for the hall", segments[1].Text)
	assert.False(t, segments[2].Highlight)
	assert.True(t, segments[3].Highlight)
	assert.Equal(t, "catering for the guests", segments[3].Text)
	assert.False(t, segments[4].Highlight)

	// Concatenating all segments must reproduce the text.
	var rebuilt strings.Builder
	for _, s := range segments {
		rebuilt.WriteString(s.Text)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestBuildHighlightSegments_NoMatchReturnsPlainText(t *testing.T) {
	text := "Nothing in here matches."
	segments := BuildHighlightSegments(text, []string{"completely absent span"})

	require.Len(t, segments, 1)
	assert.False(t, segments[0].Highlight)
	assert.Equal(t, text, segments[0].Text)
}

func TestBuildHighlightSegments_OverlapKeepsEarlier(t *testing.T) {
	text := "banners and posters for the hall"
	segments := BuildHighlightSegments(text, []string{"banners and posters", "posters for the hall"})

	highlighted := 0
	for _, s := range segments {
		if s.Highlight {
			highlighted++
		}
	}
	assert.Equal(t, 1, highlighted)
}

func TestNormalizeFull_OffsetsMapBack(t *testing.T) {
	text := "* Stage — and “Lighting”"
	n := normalizeFull(text)

	assert.Equal(t, `stage - and "lighting"`, n.text)
	require.Len(t, n.offsets, len(n.text))

	// Every mapped offset must point inside the original text.
	for _, off := range n.offsets {
		assert.GreaterOrEqual(t, off, 0)
		assert.Less(t, off, len(text))
	}
}
