package observability

import (
	"context"
	"testing"
	"time"
)

type recordingQueryHooks struct {
	starts, completes int
	lastOp            string
}

func (h *recordingQueryHooks) OnQueryStart(_ context.Context, op string, _ int) {
	h.starts++
	h.lastOp = op
}

func (h *recordingQueryHooks) OnQueryComplete(_ context.Context, op string, _ int, _ time.Duration, _ error) {
	h.completes++
}

func TestQueryHooksRegistry(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingQueryHooks{}
	SetQueryHooks(rec)

	ctx := context.Background()
	Query().OnQueryStart(ctx, "cycles", 10)
	Query().OnQueryComplete(ctx, "cycles", 10, time.Millisecond, nil)

	if rec.starts != 1 || rec.completes != 1 {
		t.Errorf("starts=%d completes=%d, want 1/1", rec.starts, rec.completes)
	}
	if rec.lastOp != "cycles" {
		t.Errorf("lastOp = %q, want cycles", rec.lastOp)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingQueryHooks{}
	SetQueryHooks(rec)
	SetQueryHooks(nil)

	Query().OnQueryStart(context.Background(), "order", 1)
	if rec.starts != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingQueryHooks{}
	SetQueryHooks(rec)
	Reset()

	Query().OnQueryStart(context.Background(), "order", 1)
	if rec.starts != 0 {
		t.Error("Reset did not restore no-op hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("cache hooks not reset")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP hooks not reset")
	}
}
