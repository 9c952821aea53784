package verify

import (
	"testing"
	"time"
)

func TestSweepForgetsLongExpiredVerifications(t *testing.T) {
	r := NewRegistry(0)
	defer r.Shutdown()

	r.Begin("verify-abandoned")
	if !r.Expired("verify-abandoned") {
		t.Fatal("zero-window verification must be expired")
	}

	// Freshly expired: still listed so the frontend can offer a resend.
	r.sweep(time.Now())
	if _, known := r.Remaining("verify-abandoned"); !known {
		t.Fatal("expired verification swept before the grace period")
	}

	// Past the grace period the abandoned flow is forgotten.
	r.sweep(time.Now().Add(expiredGrace + time.Second))
	if _, known := r.Remaining("verify-abandoned"); known {
		t.Fatal("abandoned verification survived the sweep")
	}
}

func TestSweepKeepsLiveVerifications(t *testing.T) {
	r := NewRegistry(300 * time.Second)
	defer r.Shutdown()

	r.Begin("verify-live")

	// A live window is never swept, no matter how aggressive the clock.
	r.sweep(time.Now().Add(24 * time.Hour))
	if _, known := r.Remaining("verify-live"); !known {
		t.Fatal("live verification must survive the sweep")
	}
}
