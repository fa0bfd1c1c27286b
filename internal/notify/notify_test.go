package notify

import (
	"context"
	"testing"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	if _, ok := rec.Last(); ok {
		t.Error("Last() on empty recorder reported a value")
	}

	Send(ctx, rec, Info, "first")
	Send(ctx, rec, Error, "second")

	last, ok := rec.Last()
	if !ok || last.Message != "second" || last.Level != Error {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
	if last.Time.IsZero() {
		t.Error("Send() did not set the time")
	}
	if got := len(rec.All()); got != 2 {
		t.Errorf("len(All()) = %d, want 2", got)
	}
	if got := len(rec.Drain()); got != 2 {
		t.Errorf("len(Drain()) = %d, want 2", got)
	}
	if got := len(rec.All()); got != 0 {
		t.Errorf("len(All()) after Drain = %d, want 0", got)
	}
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi(a, nil, b)

	Send(context.Background(), m, Success, "done")

	for name, rec := range map[string]*Recorder{"a": a, "b": b} {
		if got, ok := rec.Last(); !ok || got.Message != "done" {
			t.Errorf("recorder %s Last() = %+v, %v", name, got, ok)
		}
	}
}

func TestSendNilNotifier(t *testing.T) {
	Send(context.Background(), nil, Info, "ignored")
	Send(context.Background(), Nop, Info, "ignored")
}
