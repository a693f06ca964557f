package artifact

import "testing"

func TestTicketKeyIsDeterministic(t *testing.T) {
	key := TicketKey("abc-123")
	if key != "todo-tickets/todo-abc-123.png" {
		t.Fatalf("unexpected key %q", key)
	}
	if TicketKey("abc-123") != key {
		t.Fatal("key is not deterministic")
	}
}
