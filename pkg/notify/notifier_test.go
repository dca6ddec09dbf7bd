package notify

import (
	"fmt"
	"testing"
	"time"
)

func TestBuffer_NotifyAndDrain(t *testing.T) {
	b := NewBuffer(8)

	b.Notify("Proxy enabled", "first", 5*time.Second)
	b.Notify("Proxy enabled", "second", 5*time.Second)

	got := b.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain() returned %d items, want 2", len(got))
	}
	if got[0].Message != "first" || got[1].Message != "second" {
		t.Errorf("order not preserved: %v", got)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Error("notifications missing distinct IDs")
	}

	if rest := b.Drain(); len(rest) != 0 {
		t.Errorf("second Drain() returned %d items, want 0", len(rest))
	}
}

func TestBuffer_DropsOldestWhenFull(t *testing.T) {
	b := NewBuffer(3)

	for i := 0; i < 5; i++ {
		b.Notify("t", fmt.Sprintf("msg-%d", i), time.Second)
	}

	got := b.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain() returned %d items, want capacity 3", len(got))
	}
	if got[0].Message != "msg-2" || got[2].Message != "msg-4" {
		t.Errorf("oldest entries not dropped: %v", got)
	}
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewBuffer(4), NewBuffer(4)

	Multi{a, b}.Notify("t", "hello", time.Second)

	if len(a.Drain()) != 1 || len(b.Drain()) != 1 {
		t.Error("Multi did not deliver to every sink")
	}
}
