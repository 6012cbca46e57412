package pipeline

import (
	"context"

	"github.com/wpmoo-org/uibuild/internal/asset"
)

// Notifier is told about every file that reaches the end of a graph.
type Notifier interface {
	Notify(path string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(path string)

func (fn NotifierFunc) Notify(path string) { fn(path) }

// Notify reports each non-null file path to n. A nil n makes it a pass-through.
func Notify(n Notifier) Stage {
	return NewStage("notify", func(_ context.Context, f *asset.File) (*asset.File, error) {
		if n != nil && !f.IsNull() {
			n.Notify(f.Path)
		}
		return f, nil
	})
}
