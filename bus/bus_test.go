package bus

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestBroadcast(t *testing.T) {
	b := New[int]()

	go func() {
		l := b.Join(context.Background())

		var out []int

		out = l.Batch()
		if !reflect.DeepEqual(out, []int{1, 2, 3}) {
			t.Errorf("expected 1,2,3, was: %+v", out)
		}

		out = l.Batch()
		if !reflect.DeepEqual(out, []int{4}) {
			t.Errorf("expected 4, was: %+v", out)
		}

		go func() {
			l2 := b.Join(context.Background())
			out2 := l2.Batch()
			if !reflect.DeepEqual(out2, []int{5}) {
				t.Errorf("expected 5, was: %+v", out2)
			}
		}()

		out = l.Batch()
		if !reflect.DeepEqual(out, []int{5}) {
			t.Errorf("expected 5, was: %+v", out)
		}
	}()

	time.Sleep(time.Millisecond * 10)
	b.Publish(1, 2, 3)

	time.Sleep(time.Millisecond * 10)
	b.Publish(4)

	time.Sleep(time.Millisecond * 10)
	awoke := b.Publish(5)
	if !awoke {
		t.Errorf("expected valid awoke")
	}

	time.Sleep(time.Millisecond * 10)
}

func TestPublishWithoutListeners(t *testing.T) {
	b := New[int]()

	if b.Publish(1, 2, 3) {
		t.Error("nothing should wake without listeners")
	}

	l := b.Join(context.Background())
	if _, ok := l.Peek(); ok {
		t.Error("values published before joining should be dropped")
	}
}

func TestSeededListener(t *testing.T) {
	b := New[string]()
	l := b.JoinWith(context.Background(), "seed1", "seed2")

	b.Publish("live")

	if out, ok := l.Peek(); !ok || out != "seed1" {
		t.Errorf("expected to peek seed1, was: %v", out)
	}

	var got []string
	got = append(got, l.Batch()...)
	got = append(got, l.Batch()...)
	if !reflect.DeepEqual(got, []string{"seed1", "seed2", "live"}) {
		t.Errorf("expected seeds before live values, was: %+v", got)
	}
}

func TestClose(t *testing.T) {
	b := New[int]()
	l := b.Join(context.Background())

	b.Publish(1, 2)
	b.Close()
	b.Close() // idempotent

	if out := l.Batch(); !reflect.DeepEqual(out, []int{1, 2}) {
		t.Errorf("buffered values should survive close, was: %+v", out)
	}
	if _, ok := l.Next(); ok {
		t.Error("listener should be done after close drains")
	}

	// joining after close completes after any seeds
	l2 := b.JoinWith(context.Background(), 9)
	if out, ok := l2.Next(); !ok || out != 9 {
		t.Errorf("expected seed after close, was: %v", out)
	}
	if _, ok := l2.Next(); ok {
		t.Error("post-close listener should be done")
	}

	defer func() {
		if recover() == nil {
			t.Error("publish after close should panic")
		}
	}()
	b.Publish(3)
}

func TestCloseWakesWaiter(t *testing.T) {
	b := New[int]()
	l := b.Join(context.Background())

	doneCh := make(chan bool, 1)
	go func() {
		_, ok := l.Next()
		doneCh <- ok
	}()

	time.Sleep(time.Millisecond * 10)
	b.Close()

	select {
	case ok := <-doneCh:
		if ok {
			t.Error("expected done, got a value")
		}
	case <-time.After(time.Second):
		t.Error("close did not wake the waiter")
	}
}

func TestListenerCancel(t *testing.T) {
	b := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	l := b.Join(ctx)

	cancel()
	time.Sleep(time.Millisecond * 10)

	b.Publish(1)
	if _, ok := l.Next(); ok {
		t.Error("cancelled listener should not receive values")
	}
	if l.Context() != ctx {
		t.Error("listener should expose its join context")
	}
}

func TestIter(t *testing.T) {
	b := New[int]()
	l := b.Join(context.Background())

	b.Publish(1, 2, 3)
	b.Close()

	var out []int
	for x := range l.Iter() {
		out = append(out, x)
	}
	if !reflect.DeepEqual(out, []int{1, 2, 3}) {
		t.Errorf("unexpected iteration: %+v", out)
	}
}
