package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTask       = "task"
	KeyGraph      = "graph"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeySize       = "size"
	KeyFiles      = "files"
	KeyError      = "error"
)

func Task(name string) slog.Attr     { return slog.String(KeyTask, name) }
func Graph(name string) slog.Attr    { return slog.String(KeyGraph, name) }
func Stage(name string) slog.Attr    { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func BuildID(id string) slog.Attr    { return slog.String(KeyBuildID, id) }
func Size(human string) slog.Attr    { return slog.String(KeySize, human) }
func Files(n int) slog.Attr          { return slog.Int(KeyFiles, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
