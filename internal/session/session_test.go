package session

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := NewID()
	if err := s.Put(ctx, id, []byte(`{"folder":"/photos/2020"}`), time.Hour); err != nil {
		t.Fatal(err)
	}

	data, ok, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("session not found after Put")
	}
	if string(data) != `{"folder":"/photos/2020"}` {
		t.Errorf("data = %s", data)
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Get(context.Background(), NewID())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unknown session reported as found")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := NewID()
	if err := s.Put(ctx, id, []byte("one"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, id, []byte("two"), time.Hour); err != nil {
		t.Fatal(err)
	}

	data, ok, _ := s.Get(ctx, id)
	if !ok || string(data) != "two" {
		t.Errorf("data = %q, ok = %v, want two", data, ok)
	}
}

func TestExpiredSessionInvisible(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := NewID()
	if err := s.Put(ctx, id, []byte("x"), -time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := s.Get(ctx, id); ok {
		t.Error("expired session should not be returned")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expired := NewID()
	live := NewID()
	if err := s.Put(ctx, expired, []byte("x"), -time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, live, []byte("y"), time.Hour); err != nil {
		t.Fatal(err)
	}

	if err := s.Sweep(ctx); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := s.Get(ctx, live); !ok {
		t.Error("live session swept")
	}
	if _, ok, _ := s.Get(ctx, expired); ok {
		t.Error("expired session survived sweep")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := NewID()
	if err := s.Put(ctx, id, []byte("x"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, id); ok {
		t.Error("session survived delete")
	}
}
