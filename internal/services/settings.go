package services

import (
	"sync"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/downloads"
)

// SettingsView is the wire form of the tunable download knobs.
type SettingsView struct {
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	RequestDelaySeconds    float64 `json:"request_delay_seconds"`
}

// Settings holds the download tuning shared between the settings endpoint
// and the download service. Values are clamped on the way in; a batch reads
// them once at start.
type Settings struct {
	mu       sync.Mutex
	maxConc  int
	interval time.Duration
}

func NewSettings(maxConcurrent int, requestInterval time.Duration) *Settings {
	s := &Settings{}
	s.Update(&maxConcurrent, &requestInterval)
	return s
}

func (s *Settings) Options() downloads.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return downloads.Options{
		MaxConcurrent:   s.maxConc,
		RequestInterval: s.interval,
	}
}

func (s *Settings) View() SettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SettingsView{
		MaxConcurrentDownloads: s.maxConc,
		RequestDelaySeconds:    s.interval.Seconds(),
	}
}

// Update applies the non-nil fields, clamping concurrency to [1,10] and the
// request interval to [10ms, 1s].
func (s *Settings) Update(maxConcurrent *int, requestInterval *time.Duration) SettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxConcurrent != nil {
		v := *maxConcurrent
		if v < 1 {
			v = 1
		}
		if v > 10 {
			v = 10
		}
		s.maxConc = v
	}
	if requestInterval != nil {
		v := *requestInterval
		if v < 10*time.Millisecond {
			v = 10 * time.Millisecond
		}
		if v > time.Second {
			v = time.Second
		}
		s.interval = v
	}
	return SettingsView{
		MaxConcurrentDownloads: s.maxConc,
		RequestDelaySeconds:    s.interval.Seconds(),
	}
}
