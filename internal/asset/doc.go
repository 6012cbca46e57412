// Package asset defines the file record that flows through every pipeline stage,
// its optional source map, and the small path helpers the stages share.
package asset
