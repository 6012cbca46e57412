package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")

	if lc := GetContext(ctx); lc.BuildID != "build-123" {
		t.Errorf("expected build-123, got %s", lc.BuildID)
	}
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b1")
	ctx = WithTask(ctx, "styles")
	ctx = WithStage(ctx, "compile")

	lc := GetContext(ctx)
	if lc.BuildID != "b1" || lc.Task != "styles" || lc.Stage != "compile" {
		t.Errorf("unexpected log context %+v", lc)
	}
}

func TestNewBuildID(t *testing.T) {
	id := NewBuildID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("build id %q is not a uuid: %v", id, err)
	}
	if id == NewBuildID() {
		t.Fatal("build ids should be unique")
	}
}

func TestInfoContextIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	ctx := WithTask(WithBuildID(context.Background(), "b-42"), "pico:scope")
	InfoContext(ctx, "Finished", slog.Int("files", 1))
	DebugContext(ctx, "detail")

	out := buf.String()
	for _, want := range []string{"build_id=b-42", "task=pico:scope", "files=1", "msg=detail"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
