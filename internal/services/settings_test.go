package services

import (
	"testing"
	"time"
)

func TestSettingsClamping(t *testing.T) {
	t.Parallel()

	s := NewSettings(50, 10*time.Second)
	v := s.View()
	if v.MaxConcurrentDownloads != 10 {
		t.Fatalf("max concurrent = %d, must clamp to 10", v.MaxConcurrentDownloads)
	}
	if v.RequestDelaySeconds != 1.0 {
		t.Fatalf("delay = %v, must clamp to 1s", v.RequestDelaySeconds)
	}

	zero := 0
	tiny := time.Millisecond
	v = s.Update(&zero, &tiny)
	if v.MaxConcurrentDownloads != 1 {
		t.Fatalf("max concurrent = %d, must clamp to 1", v.MaxConcurrentDownloads)
	}
	if v.RequestDelaySeconds != 0.01 {
		t.Fatalf("delay = %v, must clamp to 10ms", v.RequestDelaySeconds)
	}

	// Partial update keeps the other knob.
	five := 5
	v = s.Update(&five, nil)
	if v.MaxConcurrentDownloads != 5 || v.RequestDelaySeconds != 0.01 {
		t.Fatalf("view = %+v", v)
	}

	opts := s.Options()
	if opts.MaxConcurrent != 5 || opts.RequestInterval != 10*time.Millisecond {
		t.Fatalf("options = %+v", opts)
	}
}
