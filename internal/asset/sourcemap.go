package asset

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SourceMap is a revision 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// ParseSourceMap decodes a JSON source map.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode source map: %w", err)
	}
	if m.Version == 0 {
		m.Version = 3
	}
	return &m, nil
}

// Marshal encodes the map as JSON.
func (m *SourceMap) Marshal() ([]byte, error) {
	if m.Names == nil {
		m.Names = []string{}
	}
	if m.Sources == nil {
		m.Sources = []string{}
	}
	return json.Marshal(m)
}

// RebaseSources rewrites every file:// entry in Sources to a slash-separated
// path relative to root. Other entries, including already relative paths, are
// left as they are.
func (m *SourceMap) RebaseSources(root string) {
	for i, src := range m.Sources {
		m.Sources[i] = rebaseSource(src, root)
	}
}

func rebaseSource(src, root string) string {
	if !strings.HasPrefix(src, "file://") {
		return src
	}
	u, err := url.Parse(src)
	if err != nil || u.Path == "" {
		return src
	}
	osPath := filepath.FromSlash(u.Path)
	rel, err := filepath.Rel(root, osPath)
	if err != nil {
		return src
	}
	return filepath.ToSlash(rel)
}

// Clone returns a deep copy of m.
func (m *SourceMap) Clone() *SourceMap {
	cp := *m
	cp.Sources = append([]string(nil), m.Sources...)
	cp.SourcesContent = append([]string(nil), m.SourcesContent...)
	cp.Names = append([]string(nil), m.Names...)
	return &cp
}
