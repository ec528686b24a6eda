//go:build !integration

package usecase

import "testing"

func TestRandomSelector_Deterministic(t *testing.T) {
	a, b := RandomSelector(7), RandomSelector(7)
	for i := 0; i < 20; i++ {
		x, y := a(len(fallbackReplies)), b(len(fallbackReplies))
		if x != y {
			t.Fatalf("same seed diverged at %d: %d vs %d", i, x, y)
		}
		if x < 0 || x >= len(fallbackReplies) {
			t.Fatalf("index out of range: %d", x)
		}
	}
}

func TestFallbackReply_ClampsIndex(t *testing.T) {
	if got := fallbackReply(func(int) int { return 99 }); got != fallbackReplies[0] {
		t.Fatalf("out of range selector should clamp to first reply, got %q", got)
	}
	if got := fallbackReply(func(int) int { return 3 }); got != fallbackReplies[3] {
		t.Fatalf("got %q", got)
	}
}
