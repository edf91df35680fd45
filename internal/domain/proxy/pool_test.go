package proxy

import (
	"errors"
	"testing"
)

func TestProxy_Valid(t *testing.T) {
	t.Parallel()

	cases := map[Proxy]bool{
		"10.0.0.1:8080":      true,
		"10.0.0.1":           false,
		"10.0.0:8080":        false,
		"10.0.0.1-2:8080":    false,
		"proxy.example:3128": false,
	}
	for p, want := range cases {
		if got := p.Valid(); got != want {
			t.Fatalf("%s: expected %v, got %v", p, want, got)
		}
	}
	if host := Proxy("10.0.0.1:8080").Host(); host != "10.0.0.1" {
		t.Fatalf("unexpected host %q", host)
	}
}

func TestPool_InvalidateUntilExhausted(t *testing.T) {
	t.Parallel()

	pool := NewPool([]Proxy{"10.0.0.1:80", "10.0.0.2:80", "10.0.0.1:80", "bad"})
	if pool.Len() != 2 {
		t.Fatalf("expected duplicates and invalid entries dropped, got %d", pool.Len())
	}

	first, err := pool.Next()
	if err != nil {
		t.Fatalf("next proxy: %v", err)
	}
	pool.Invalidate(first)
	second, err := pool.Next()
	if err != nil {
		t.Fatalf("next proxy: %v", err)
	}
	if second == first {
		t.Fatalf("invalidated proxy %s handed out again", first)
	}
	pool.Invalidate(second)

	if _, err := pool.Next(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}
