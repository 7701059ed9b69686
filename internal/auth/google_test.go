package auth

import (
	"testing"
	"time"
)

func TestStateStoreConsumeOnce(t *testing.T) {
	store := newStateStore()
	store.put("abc", time.Now().Add(time.Minute))

	if !store.consume("abc") {
		t.Fatal("first consume should succeed")
	}
	if store.consume("abc") {
		t.Fatal("second consume should fail")
	}
	if store.consume("never-stored") {
		t.Fatal("unknown state should fail")
	}
}

func TestStateStoreExpired(t *testing.T) {
	store := newStateStore()
	store.put("abc", time.Now().Add(-time.Second))
	if store.consume("abc") {
		t.Fatal("expired state should fail")
	}
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("https://app.example.com/auth?next=%2Fhome", "tok123")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	want := "https://app.example.com/auth?next=%2Fhome&token=tok123"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if _, err := appendToken("", "tok"); err == nil {
		t.Fatal("empty redirect should error")
	}
}
