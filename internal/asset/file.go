package asset

import (
	"io"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
)

// Kind is the payload state of a File.
type Kind int

const (
	// KindNull carries no contents; stages pass it through untouched.
	KindNull Kind = iota
	// KindBuffered holds its contents in memory. The only kind stages transform.
	KindBuffered
	// KindStreaming has not been materialized. Stages needing contents reject it.
	KindStreaming
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBuffered:
		return "buffered"
	case KindStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// File is one unit of work in a pipeline run. Stages mutate it in place.
type File struct {
	// Path is the absolute location; it changes as stages rename the file.
	Path string
	// Base is the root Relative is computed against. Fixed for the run.
	Base string
	Kind Kind

	Contents []byte
	// Stream backs a KindStreaming file.
	Stream io.Reader

	// SourceMap is non-nil only when source maps were requested for this run.
	SourceMap *SourceMap
}

// NewFile returns a buffered file.
func NewFile(base, path string, contents []byte) *File {
	return &File{Path: path, Base: base, Kind: KindBuffered, Contents: contents}
}

// NewNullFile returns a placeholder with no contents.
func NewNullFile(base, path string) *File {
	return &File{Path: path, Base: base, Kind: KindNull}
}

// NewStreamFile returns a file whose contents are still a reader.
func NewStreamFile(base, path string, r io.Reader) *File {
	return &File{Path: path, Base: base, Kind: KindStreaming, Stream: r}
}

// IsNull reports whether the file has no contents.
func (f *File) IsNull() bool { return f.Kind == KindNull }

// IsBuffered reports whether the contents are held in memory.
func (f *File) IsBuffered() bool { return f.Kind == KindBuffered }

// IsStream reports whether the contents are an unread stream.
func (f *File) IsStream() bool { return f.Kind == KindStreaming }

// Relative returns Path relative to Base with forward slashes. If the two do not
// share a root the base name is returned.
func (f *File) Relative() string {
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return filepath.Base(f.Path)
	}
	return filepath.ToSlash(rel)
}

// Text decodes Contents as UTF-8, dropping a leading byte order mark.
func (f *File) Text() (string, error) {
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(f.Contents)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// SetText replaces Contents with the UTF-8 encoding of s.
func (f *File) SetText(s string) {
	f.Contents = []byte(s)
}

// InitSourceMap starts source-map tracking with an identity map for the file.
func (f *File) InitSourceMap() {
	rel := f.Relative()
	f.SourceMap = &SourceMap{
		Version: 3,
		File:    rel,
		Sources: []string{rel},
	}
}

// Clone returns a deep copy of f. Stream readers are shared.
func (f *File) Clone() *File {
	cp := *f
	if f.Contents != nil {
		cp.Contents = append([]byte(nil), f.Contents...)
	}
	if f.SourceMap != nil {
		cp.SourceMap = f.SourceMap.Clone()
	}
	return &cp
}
