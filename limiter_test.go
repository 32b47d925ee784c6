package notionpub

import (
	"testing"
	"time"
)

func failLogin(l *LoginLimiter, ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	if !failLogin(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !failLogin(limiter, ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if failLogin(limiter, ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	if !failLogin(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if failLogin(limiter, ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !failLogin(limiter, ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	if !failLogin(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !failLogin(limiter, "203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if failLogin(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Check("203.0.113.40") {
			t.Fatalf("Check #%d = false, want true without recorded failures", i+1)
		}
	}
}

func TestLoginLimiterStopTwice(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}
