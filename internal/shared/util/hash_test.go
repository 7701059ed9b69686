package util

import "testing"

func TestHashUserKeyGuest(t *testing.T) {
	id := "guest:candidate-42"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if got == HashUserKey("guest:candidate-43") {
		t.Fatal("distinct ids collided")
	}
}
