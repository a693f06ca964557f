package domain

import "testing"

func TestNewLocalIDUniqueness(t *testing.T) {
	const draws = 10000
	seen := make(map[string]struct{}, draws)
	for i := 0; i < draws; i++ {
		id := NewLocalID()
		if id == "" {
			t.Fatalf("empty id on draw %d", i)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q on draw %d", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestIsDomainErrorMatchesCode(t *testing.T) {
	err := WrapError(ErrCodeUpstream, "tracker rejected task", ErrTodoNotFound)
	if !IsDomainError(err, ErrCodeUpstream) {
		t.Fatalf("expected UPSTREAM classification for %v", err)
	}
	if IsDomainError(err, ErrCodeRender) {
		t.Fatalf("did not expect RENDER classification for %v", err)
	}
}
