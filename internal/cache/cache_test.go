package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// Without Redis configured the cache must degrade to a silent no-op.
func TestNilClientDisablesCaching(t *testing.T) {
	c := New(nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "u1"); ok {
		t.Error("expected miss from disabled cache")
	}

	// Must not panic.
	c.Set(ctx, "u1", []byte(`[]`))
	c.Invalidate(ctx, "u1")

	if _, ok := c.Get(ctx, "u1"); ok {
		t.Error("disabled cache must never report a hit")
	}
}

func TestKeyShapes(t *testing.T) {
	if got := key(""); got != "conversations:all" {
		t.Errorf("expected all-key for empty filter, got %q", got)
	}
	if got := key("u1"); got != "conversations:user:u1" {
		t.Errorf("unexpected user key %q", got)
	}
}
