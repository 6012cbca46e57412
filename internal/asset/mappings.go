package asset

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Values = func() [128]int8 {
	var t [128]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64Digits); i++ {
		t[base64Digits[i]] = int8(i)
	}
	return t
}()

// Segment is one decoded mapping. Columns count UTF-16 code units. Source and
// Name are -1 when the segment does not carry them.
type Segment struct {
	GenCol   int
	Source   int
	OrigLine int
	OrigCol  int
	Name     int
}

// HasSource reports whether the segment points into a source.
func (s Segment) HasSource() bool { return s.Source >= 0 }

// DecodeMappings splits a mappings string into segments per generated line.
func DecodeMappings(mappings string) ([][]Segment, error) {
	lines := [][]Segment{nil}
	var src, origLine, origCol, name int
	genCol := 0
	for i := 0; i < len(mappings); {
		switch mappings[i] {
		case ';':
			lines = append(lines, nil)
			genCol = 0
			i++
			continue
		case ',':
			i++
			continue
		}

		var fields [5]int
		n := 0
		for i < len(mappings) && mappings[i] != ',' && mappings[i] != ';' {
			if n == len(fields) {
				return nil, fmt.Errorf("mappings: segment with more than 5 fields at offset %d", i)
			}
			v, next, err := decodeVLQ(mappings, i)
			if err != nil {
				return nil, err
			}
			fields[n] = v
			n++
			i = next
		}

		genCol += fields[0]
		seg := Segment{GenCol: genCol, Source: -1, Name: -1}
		switch n {
		case 1:
		case 4, 5:
			src += fields[1]
			origLine += fields[2]
			origCol += fields[3]
			seg.Source, seg.OrigLine, seg.OrigCol = src, origLine, origCol
			if n == 5 {
				name += fields[4]
				seg.Name = name
			}
		default:
			return nil, fmt.Errorf("mappings: segment with %d fields", n)
		}
		last := len(lines) - 1
		lines[last] = append(lines[last], seg)
	}
	return lines, nil
}

// EncodeMappings is the inverse of DecodeMappings. Segments are sorted by
// generated column within each line.
func EncodeMappings(lines [][]Segment) string {
	var b strings.Builder
	var src, origLine, origCol, name int
	for li, segs := range lines {
		if li > 0 {
			b.WriteByte(';')
		}
		sorted := append([]Segment(nil), segs...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].GenCol < sorted[j].GenCol })
		genCol := 0
		for si, s := range sorted {
			if si > 0 {
				b.WriteByte(',')
			}
			encodeVLQ(&b, s.GenCol-genCol)
			genCol = s.GenCol
			if !s.HasSource() {
				continue
			}
			encodeVLQ(&b, s.Source-src)
			encodeVLQ(&b, s.OrigLine-origLine)
			encodeVLQ(&b, s.OrigCol-origCol)
			src, origLine, origCol = s.Source, s.OrigLine, s.OrigCol
			if s.Name >= 0 {
				encodeVLQ(&b, s.Name-name)
				name = s.Name
			}
		}
	}
	return b.String()
}

func decodeVLQ(s string, i int) (value, next int, err error) {
	shift, result := 0, 0
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("mappings: truncated value")
		}
		c := s[i]
		if c >= 128 || base64Values[c] < 0 {
			return 0, i, fmt.Errorf("mappings: invalid character %q at offset %d", c, i)
		}
		digit := int(base64Values[c])
		i++
		result += (digit & 31) << shift
		if digit&32 == 0 {
			break
		}
		shift += 5
	}
	if result&1 == 1 {
		return -(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

func encodeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}

// Edit replaces the bytes [Start, End) of a text with Len new bytes.
type Edit struct {
	Start int
	End   int
	Len   int
}

// PrependLines moves every mapping down by n generated lines, for text that
// gained n full lines at its top.
func (m *SourceMap) PrependLines(n int) {
	if n > 0 {
		m.Mappings = strings.Repeat(";", n) + m.Mappings
	}
}

// ShiftMappings rewrites generated positions after old was turned into updated
// by edits, which must be sorted and must not overlap. Mappings inside deleted
// text are dropped. Mappings inside replaced text move to the replacement start.
func (m *SourceMap) ShiftMappings(old, updated []byte, edits []Edit) error {
	lines, err := DecodeMappings(m.Mappings)
	if err != nil {
		return err
	}
	from, to := newLineIndex(old), newLineIndex(updated)
	out := make([][]Segment, len(to.starts))
	for line, segs := range lines {
		for _, s := range segs {
			off, ok := from.offset(line, s.GenCol)
			if !ok {
				continue
			}
			if off, ok = shiftOffset(off, edits); !ok {
				continue
			}
			nl, nc := to.position(off)
			s.GenCol = nc
			out[nl] = append(out[nl], s)
		}
	}
	m.Mappings = EncodeMappings(out)
	return nil
}

func shiftOffset(off int, edits []Edit) (int, bool) {
	delta := 0
	for _, e := range edits {
		if off >= e.End {
			delta += e.Len - (e.End - e.Start)
			continue
		}
		if off >= e.Start {
			if e.Len == 0 {
				return 0, false
			}
			return e.Start + delta, true
		}
		break
	}
	return off + delta, true
}

// ComposeSourceMaps chains outer, which maps a final text onto an intermediate
// text, with inner, which maps that intermediate text onto the original
// sources. The result maps the final text onto inner's sources. outer must have
// a single source: the intermediate text.
func ComposeSourceMaps(outer, inner *SourceMap) (*SourceMap, error) {
	outerLines, err := DecodeMappings(outer.Mappings)
	if err != nil {
		return nil, fmt.Errorf("outer map: %w", err)
	}
	innerLines, err := DecodeMappings(inner.Mappings)
	if err != nil {
		return nil, fmt.Errorf("inner map: %w", err)
	}
	composed := make([][]Segment, len(outerLines))
	for line, segs := range outerLines {
		for _, s := range segs {
			if !s.HasSource() || s.OrigLine >= len(innerLines) {
				continue
			}
			target, ok := segmentAt(innerLines[s.OrigLine], s.OrigCol)
			if !ok || !target.HasSource() {
				continue
			}
			composed[line] = append(composed[line], Segment{
				GenCol:   s.GenCol,
				Source:   target.Source,
				OrigLine: target.OrigLine,
				OrigCol:  target.OrigCol,
				Name:     target.Name,
			})
		}
	}
	out := inner.Clone()
	out.Mappings = EncodeMappings(composed)
	return out, nil
}

// segmentAt returns the last segment starting at or before col.
func segmentAt(segs []Segment, col int) (Segment, bool) {
	var found Segment
	ok := false
	for _, s := range segs {
		if s.GenCol > col {
			break
		}
		found, ok = s, true
	}
	return found, ok
}

// lineIndex converts between byte offsets and line/UTF-16 column positions.
type lineIndex struct {
	text   []byte
	starts []int
}

func newLineIndex(text []byte) lineIndex {
	starts := []int{0}
	for i, c := range text {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{text: text, starts: starts}
}

func (x lineIndex) lineEnd(line int) int {
	if line+1 < len(x.starts) {
		return x.starts[line+1] - 1
	}
	return len(x.text)
}

func (x lineIndex) offset(line, col int) (int, bool) {
	if line < 0 || line >= len(x.starts) {
		return 0, false
	}
	off, end := x.starts[line], x.lineEnd(line)
	for units := 0; units < col; {
		if off >= end {
			return 0, false
		}
		r, size := utf8.DecodeRune(x.text[off:end])
		units += utf16.RuneLen(r)
		off += size
	}
	return off, true
}

func (x lineIndex) position(off int) (line, col int) {
	line = sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > off }) - 1
	for _, r := range string(x.text[x.starts[line]:off]) {
		col += utf16.RuneLen(r)
	}
	return line, col
}
