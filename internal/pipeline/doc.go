// Package pipeline runs asset files through an ordered list of stages.
//
// A Stage receives one *asset.File and returns it (possibly modified), nil to
// drop it, or an error that aborts the run. Pipeline.Run drives every file
// through every stage strictly in order, one file at a time.
package pipeline
