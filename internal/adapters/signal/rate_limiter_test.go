package signal

import (
	"testing"
	"time"
)

func TestJoinLimiter_BlocksOverLimit(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewJoinLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("attempt %d should pass", i)
		}
	}
	if rl.Allow("a") {
		t.Fatalf("fourth attempt inside the window should be blocked")
	}
	if !rl.Allow("b") {
		t.Fatalf("limits are per connection")
	}
}

func TestJoinLimiter_WindowSlides(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewJoinLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("a")
	if rl.Allow("a") {
		t.Fatalf("expected block at the limit")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow("a") {
		t.Fatalf("expected old attempts to age out")
	}
}

func TestJoinLimiter_Forget(t *testing.T) {
	rl := NewJoinLimiter(1, time.Minute)

	rl.Allow("a")
	if rl.Allow("a") {
		t.Fatalf("expected block")
	}
	rl.Forget("a")
	if !rl.Allow("a") {
		t.Fatalf("expected a clean slate after Forget")
	}
}
