package cache

import (
	"context"
	"testing"
	"time"
)

type entry struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func TestMemoryRoundTrip(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	var got []entry
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := []entry{{"电池", 0.9}, {"香蕉", 0.1}}
	if err := c.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err = c.Get(ctx, "k", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Fatalf("got %+v, want %+v", got, in)
	}

	got[0].Label = "mutated"
	var again []entry
	if _, err := c.Get(ctx, "k", &again); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again[0].Label != "电池" {
		t.Fatal("cached value shared memory with a previous hit")
	}
}

func TestMemoryExpires(t *testing.T) {
	c := NewMemory(20 * time.Millisecond)
	ctx := context.Background()
	if err := c.Set(ctx, "k", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	var v int
	if ok, _ := c.Get(ctx, "k", &v); ok {
		t.Fatal("entry should have expired")
	}
}

func TestMemorySetRejectsUnencodable(t *testing.T) {
	c := NewMemory(time.Minute)
	if err := c.Set(context.Background(), "k", make(chan int)); err == nil {
		t.Fatal("expected encoding error")
	}
}
