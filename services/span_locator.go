package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// The span locator re-anchors AI-cited source spans inside a brief that may
// have been edited since the span was captured (quotes changed, markdown
// stripped, bullets reformatted). Each normalization stage produces the
// transformed text together with a byte-offset map back into the original,
// so a match in normalized space translates to an exact original range.
// Passes are tried in order against the full text; the first hit wins, and
// a span that no pass can place is simply not highlighted.

// TextSpan is a located source span inside the original text.
type TextSpan struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Source string `json:"source"`
}

// HighlightSegment is one node of the alternating plain/highlight render list.
type HighlightSegment struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight"`
	Source    string `json:"source,omitempty"`
}

// normalized couples a transformed string with its offset map:
// offsets[i] is the original byte offset of normalized byte i.
type normalized struct {
	text    string
	offsets []int
}

// locateIn finds needle in the normalized text and maps the match back to an
// original-text byte range.
func (n normalized) locateIn(original, needle string) (start, end int, ok bool) {
	if needle == "" {
		return 0, 0, false
	}
	idx := strings.Index(n.text, needle)
	if idx < 0 {
		return 0, 0, false
	}
	start = n.offsets[idx]
	last := n.offsets[idx+len(needle)-1]
	_, size := utf8.DecodeRuneInString(original[last:])
	return start, last + size, true
}

func isQuoteRune(r rune) (rune, bool) {
	switch r {
	case '“', '”', '„', '«', '»':
		return '"', true
	case '‘', '’', '‚', '‹', '›':
		return '\'', true
	}
	return r, false
}

func isDashRune(r rune) bool {
	switch r {
	case '‐', '‑', '‒', '–', '—', '−':
		return true
	}
	return false
}

// normalizeQuotes unifies curly and angled quote variants with their straight
// equivalents. Apostrophes between word characters map to straight quotes too,
// which keeps "don’t" matching "don't".
func normalizeQuotes(s string) normalized {
	var b strings.Builder
	offsets := make([]int, 0, len(s))

	for i, r := range s {
		mapped, _ := isQuoteRune(r)
		n, _ := b.WriteRune(mapped)
		for j := 0; j < n; j++ {
			offsets = append(offsets, i)
		}
	}

	return normalized{text: b.String(), offsets: offsets}
}

// foldCase lowercases rune by rune while keeping the offset map.
func foldCase(s string) normalized {
	var b strings.Builder
	offsets := make([]int, 0, len(s))

	for i, r := range s {
		n, _ := b.WriteRune(unicode.ToLower(r))
		for j := 0; j < n; j++ {
			offsets = append(offsets, i)
		}
	}

	return normalized{text: b.String(), offsets: offsets}
}

func isBulletRune(r rune) bool {
	switch r {
	case '-', '*', '+', '#', '•', '●', '▪', '>':
		return true
	}
	return false
}

// normalizeFull applies the whole chain: quote and dash unification, bullet
// and markdown marker stripping, whitespace collapsing and lowercasing.
func normalizeFull(s string) normalized {
	var b strings.Builder
	offsets := make([]int, 0, len(s))

	atLineStart := true
	pendingSpace := -1 // original offset of the first byte of a whitespace run

	writeRune := func(r rune, at int) {
		n, _ := b.WriteRune(r)
		for j := 0; j < n; j++ {
			offsets = append(offsets, at)
		}
	}

	for i, r := range s {
		if r == '\n' || r == '\r' {
			atLineStart = true
			if b.Len() > 0 {
				pendingSpace = i
			}
			continue
		}
		if unicode.IsSpace(r) {
			if b.Len() > 0 {
				if pendingSpace < 0 {
					pendingSpace = i
				}
			}
			continue
		}
		if atLineStart && isBulletRune(r) {
			// leading list/heading marker, drop it
			continue
		}
		atLineStart = false
		if r == '*' || r == '_' || r == '`' {
			// inline markdown emphasis
			continue
		}

		if pendingSpace >= 0 {
			writeRune(' ', pendingSpace)
			pendingSpace = -1
		}

		mapped, _ := isQuoteRune(r)
		if isDashRune(mapped) {
			mapped = '-'
		}
		writeRune(unicode.ToLower(mapped), i)
	}

	return normalized{text: b.String(), offsets: offsets}
}

// fullNormalizeString normalizes a span the same way normalizeFull treats the
// text, without the offset bookkeeping.
func fullNormalizeString(s string) string {
	return normalizeFull(s).text
}

// anchorCandidates returns the word-prefix anchors tried against the
// normalized text when the full span cannot be found: the first three words,
// the first two, then the single first word when it is long enough to be
// distinctive.
func anchorCandidates(normSource string) []string {
	words := strings.Fields(normSource)
	var anchors []string
	if len(words) >= 3 {
		anchors = append(anchors, strings.Join(words[:3], " "))
	}
	if len(words) >= 2 {
		anchors = append(anchors, strings.Join(words[:2], " "))
	}
	if len(words) >= 1 && len(words[0]) > 3 {
		anchors = append(anchors, words[0])
	}
	return anchors
}

// LocateSpan attempts the ordered fallback passes and returns the located
// span in original-text byte offsets. ok is false when every pass fails;
// that is a silent degradation, not an error.
func LocateSpan(text, source string) (TextSpan, bool) {
	source = strings.TrimSpace(source)
	if text == "" || source == "" {
		return TextSpan{}, false
	}

	// Pass 1: exact substring.
	if idx := strings.Index(text, source); idx >= 0 {
		return TextSpan{Start: idx, End: idx + len(source), Source: source}, true
	}

	// Pass 2: quote-normalized.
	nt := normalizeQuotes(text)
	ns := normalizeQuotes(source)
	if start, end, ok := nt.locateIn(text, ns.text); ok {
		return TextSpan{Start: start, End: end, Source: source}, true
	}

	// Pass 3: case-insensitive.
	lt := foldCase(text)
	ls := foldCase(source)
	if start, end, ok := lt.locateIn(text, ls.text); ok {
		return TextSpan{Start: start, End: end, Source: source}, true
	}

	// Pass 4: full normalization, then anchor relocation.
	ft := normalizeFull(text)
	fs := fullNormalizeString(source)
	if start, end, ok := ft.locateIn(text, fs); ok {
		return TextSpan{Start: start, End: end, Source: source}, true
	}
	for _, anchor := range anchorCandidates(fs) {
		start, _, ok := ft.locateIn(text, anchor)
		if !ok {
			continue
		}
		// anchor gives the start; extend by the span length, clamped to a
		// rune boundary inside the text
		end := start + len(source)
		if end > len(text) {
			end = len(text)
		}
		for end > start && !utf8.RuneStart(text[end-1]) {
			end--
		}
		return TextSpan{Start: start, End: end, Source: source}, true
	}

	return TextSpan{}, false
}

// BuildHighlightSegments locates each source span in the text and splices the
// hits into an alternating array of plain and highlighted segments. Spans are
// sorted by start offset; overlapping spans keep the earlier one. Sources
// that cannot be located contribute nothing, so an unmatched list returns the
// text as a single plain segment.
func BuildHighlightSegments(text string, sources []string) []HighlightSegment {
	var spans []TextSpan
	for _, source := range sources {
		if span, ok := LocateSpan(text, source); ok {
			spans = append(spans, span)
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var segments []HighlightSegment
	cursor := 0
	for _, span := range spans {
		if span.Start < cursor {
			continue // overlaps the previous highlight
		}
		if span.Start > cursor {
			segments = append(segments, HighlightSegment{Text: text[cursor:span.Start]})
		}
		segments = append(segments, HighlightSegment{
			Text:      text[span.Start:span.End],
			Highlight: true,
			Source:    span.Source,
		})
		cursor = span.End
	}
	if cursor < len(text) || len(segments) == 0 {
		segments = append(segments, HighlightSegment{Text: text[cursor:]})
	}

	return segments
}
