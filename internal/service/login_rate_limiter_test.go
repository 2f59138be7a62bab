package service

import (
	"testing"
	"time"
)

func TestLoginRateLimiter_BlocksAfterMax(t *testing.T) {
	limiter := NewLoginRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("mike@x.com") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if limiter.Allow("mike@x.com") {
		t.Fatalf("fourth attempt should be blocked")
	}
	// Otra clave no comparte la ventana.
	if !limiter.Allow("other@x.com") {
		t.Fatalf("different key should be allowed")
	}
}

func TestLoginRateLimiter_WindowExpires(t *testing.T) {
	limiter := NewLoginRateLimiter(50*time.Millisecond, 1)

	if !limiter.Allow("mike@x.com") {
		t.Fatalf("first attempt should be allowed")
	}
	if limiter.Allow("mike@x.com") {
		t.Fatalf("second attempt should be blocked")
	}
	time.Sleep(60 * time.Millisecond)
	if !limiter.Allow("mike@x.com") {
		t.Fatalf("attempt after window should be allowed")
	}
}
