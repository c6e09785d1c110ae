package outline

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Document provides text lookups over one source unit. Offsets are byte
// offsets; columns count runes.
type Document struct {
	text       string
	lineStarts []int
}

// NewDocument indexes the line breaks of text.
func NewDocument(text string) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{text: text, lineStarts: starts}
}

// Text returns the full document text.
func (d *Document) Text() string {
	return d.text
}

// Slice returns the text in [start, end), clamped to the document.
func (d *Document) Slice(start, end int) string {
	start = d.clamp(start)
	end = d.clamp(end)
	if end < start {
		return ""
	}
	return d.text[start:end]
}

// LineText returns line without its line terminator.
func (d *Document) LineText(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	return strings.TrimSuffix(d.text[start:end], "\r")
}

// PositionAt converts a byte offset to a line/column position.
func (d *Document) PositionAt(offset int) Position {
	offset = d.clamp(offset)
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	lineStart := d.lineStarts[line]
	return Position{
		Line:      line,
		Character: utf8.RuneCountInString(d.text[lineStart:offset]),
	}
}

// OffsetAt converts a position back to a byte offset.
func (d *Document) OffsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	offset := d.lineStarts[pos.Line]
	line := d.LineText(pos.Line)
	for i := 0; i < pos.Character && len(line) > 0; i++ {
		_, size := utf8.DecodeRuneInString(line)
		offset += size
		line = line[size:]
	}
	return offset
}

// RangeForIdentifier locates name on the line containing offset. When name
// occurs exactly once on that line the tight range around it is returned;
// otherwise the range is zero-width at the first occurrence. A name that does
// not occur on the line yields a zero-width range at offset.
func (d *Document) RangeForIdentifier(name string, offset int) Range {
	pos := d.PositionAt(offset)
	line := d.LineText(pos.Line)

	first := strings.Index(line, name)
	if name == "" || first < 0 {
		return Range{Start: pos, End: pos}
	}

	start := Position{Line: pos.Line, Character: utf8.RuneCountInString(line[:first])}
	if strings.LastIndex(line, name) != first {
		return Range{Start: start, End: start}
	}

	end := Position{Line: pos.Line, Character: start.Character + utf8.RuneCountInString(name)}
	return Range{Start: start, End: end}
}

// ZeroRange returns an empty range at offset.
func (d *Document) ZeroRange(offset int) Range {
	pos := d.PositionAt(offset)
	return Range{Start: pos, End: pos}
}

func (d *Document) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}
