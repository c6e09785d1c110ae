package outline

// Test Plan for Document:
// - PositionAt maps offsets on the first and later lines
// - PositionAt clamps offsets outside the document
// - PositionAt counts runes, not bytes, for the column
// - OffsetAt is the inverse of PositionAt
// - LineText strips \n and \r\n terminators
// - Slice clamps and handles inverted ranges
// - RangeForIdentifier returns a tight range for a unique occurrence
// - RangeForIdentifier returns a zero-width range at the first of repeated occurrences
// - RangeForIdentifier falls back to the offset when the name is missing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_PositionAt(t *testing.T) {
	t.Parallel()

	doc := NewDocument("abc\ndef\n\nxyz")

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{2, Position{0, 2}},
		{3, Position{0, 3}},
		{4, Position{1, 0}},
		{6, Position{1, 2}},
		{8, Position{2, 0}},
		{9, Position{3, 0}},
		{12, Position{3, 3}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doc.PositionAt(tt.offset), "offset %d", tt.offset)
	}
}

func TestDocument_PositionAtClamps(t *testing.T) {
	t.Parallel()

	doc := NewDocument("ab\ncd")
	assert.Equal(t, Position{0, 0}, doc.PositionAt(-5))
	assert.Equal(t, Position{1, 2}, doc.PositionAt(100))
}

func TestDocument_PositionAtCountsRunes(t *testing.T) {
	t.Parallel()

	doc := NewDocument("const é = 1; foo")
	offset := len("const é = 1; ")
	assert.Equal(t, Position{0, 13}, doc.PositionAt(offset))
	assert.Equal(t, offset, doc.OffsetAt(Position{0, 13}))
}

func TestDocument_OffsetAtRoundTrip(t *testing.T) {
	t.Parallel()

	doc := NewDocument("class A {\n  run() {}\n}\n")
	for offset := 0; offset <= len(doc.Text()); offset++ {
		assert.Equal(t, offset, doc.OffsetAt(doc.PositionAt(offset)), "offset %d", offset)
	}
	assert.Equal(t, 0, doc.OffsetAt(Position{Line: -1}))
	assert.Equal(t, len(doc.Text()), doc.OffsetAt(Position{Line: 99}))
}

func TestDocument_LineText(t *testing.T) {
	t.Parallel()

	doc := NewDocument("first\r\nsecond\nthird")
	assert.Equal(t, "first", doc.LineText(0))
	assert.Equal(t, "second", doc.LineText(1))
	assert.Equal(t, "third", doc.LineText(2))
	assert.Equal(t, "", doc.LineText(3))
	assert.Equal(t, "", doc.LineText(-1))
}

func TestDocument_Slice(t *testing.T) {
	t.Parallel()

	doc := NewDocument("hello world")
	assert.Equal(t, "hello", doc.Slice(0, 5))
	assert.Equal(t, "world", doc.Slice(6, 100))
	assert.Equal(t, "", doc.Slice(5, 2))
	assert.Equal(t, "he", doc.Slice(-3, 2))
}

func TestDocument_RangeForIdentifier(t *testing.T) {
	t.Parallel()

	doc := NewDocument("let x = 1;\nfunction foo(a) {}\nfoo(foo);\n")

	t.Run("unique occurrence gives tight range", func(t *testing.T) {
		t.Parallel()
		r := doc.RangeForIdentifier("foo", len("let x = 1;\n"))
		assert.Equal(t, Position{1, 9}, r.Start)
		assert.Equal(t, Position{1, 12}, r.End)
		assert.Equal(t, 3, r.End.Character-r.Start.Character)
	})

	t.Run("repeated occurrence gives zero-width range", func(t *testing.T) {
		t.Parallel()
		r := doc.RangeForIdentifier("foo", len("let x = 1;\nfunction foo(a) {}\n")+4)
		assert.True(t, r.Empty())
		assert.Equal(t, Position{2, 0}, r.Start)
	})

	t.Run("missing name falls back to offset", func(t *testing.T) {
		t.Parallel()
		r := doc.RangeForIdentifier("bar", 4)
		assert.True(t, r.Empty())
		assert.Equal(t, Position{0, 4}, r.Start)
	})

	t.Run("substring matches count as occurrences", func(t *testing.T) {
		t.Parallel()
		d := NewDocument("function foo(food) {}")
		r := d.RangeForIdentifier("foo", 0)
		assert.True(t, r.Empty())
		assert.Equal(t, Position{0, 9}, r.Start)
	})
}
