package eventloop

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDrain_FIFO(t *testing.T) {
	l := New()
	var got []string
	rec := func(s string) Task {
		return func() error { got = append(got, s); return nil }
	}
	l.Enqueue(rec("a"))
	l.Enqueue(func() error {
		got = append(got, "b")
		l.Enqueue(rec("d"))
		return nil
	})
	l.Enqueue(rec("c"))

	n, err := l.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n != 4 {
		t.Errorf("ran %d tasks, want 4", n)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if l.Pending() != 0 {
		t.Errorf("pending = %d, want 0", l.Pending())
	}
}

func TestRun_TimersAfterMicrotasks(t *testing.T) {
	l := New()
	var got []string
	l.SetTimeout(20*time.Millisecond, func() error { got = append(got, "t20"); return nil })
	l.SetTimeout(10*time.Millisecond, func() error {
		got = append(got, "t10")
		l.Enqueue(func() error { got = append(got, "m-from-t10"); return nil })
		return nil
	})
	l.SetTimeout(10*time.Millisecond, func() error { got = append(got, "t10b"); return nil })
	l.Enqueue(func() error { got = append(got, "m"); return nil })

	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"m", "t10", "m-from-t10", "t10b", "t20"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if l.Now() != 20*time.Millisecond {
		t.Errorf("clock = %v, want 20ms", l.Now())
	}
}

func TestClearTimeout(t *testing.T) {
	l := New()
	fired := false
	id := l.SetTimeout(time.Second, func() error { fired = true; return nil })
	if !l.ClearTimeout(id) {
		t.Fatal("ClearTimeout returned false for a pending timer")
	}
	if l.ClearTimeout(id) {
		t.Error("ClearTimeout returned true twice")
	}
	if err := l.Run(); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Error("cancelled timer fired")
	}
}

func TestDrain_StopsOnError(t *testing.T) {
	l := New()
	boom := errors.New("boom")
	ran := false
	l.Enqueue(func() error { return boom })
	l.Enqueue(func() error { ran = true; return nil })

	if _, err := l.Drain(); !errors.Is(err, boom) {
		t.Fatalf("Drain error = %v, want boom", err)
	}
	if ran {
		t.Error("task after failure ran")
	}
	if l.Pending() != 1 {
		t.Errorf("pending = %d, want 1", l.Pending())
	}
	if _, err := l.Drain(); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("remaining task did not run on the next drain")
	}
}

func TestReset(t *testing.T) {
	l := New()
	ran := false
	task := func() error { ran = true; return nil }
	l.Enqueue(task)
	l.SetTimeout(5*time.Millisecond, task)
	first := l.SetTimeout(time.Millisecond, task)

	l.Reset()
	if l.Pending() != 0 {
		t.Fatalf("pending after Reset = %d, want 0", l.Pending())
	}
	if l.ClearTimeout(first) {
		t.Errorf("timer %d survived Reset", first)
	}
	if err := l.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ran {
		t.Error("a task queued before Reset ran")
	}

	if id := l.SetTimeout(0, task); id <= first {
		t.Errorf("timer id %d reused after Reset, last was %d", id, first)
	}
	if err := l.Run(); err != nil || !ran {
		t.Errorf("Run after Reset: ran=%v err=%v", ran, err)
	}
}
