package utils

import (
	"sync"
	"time"
)

// Watch measures solve time. Pausing excludes bookkeeping, such as per-sweep logging, from a measurement.
type Watch struct {
	mu           sync.RWMutex
	paused       bool
	pauseTime    time.Time
	startTime    time.Time
	adjustedTime time.Time
	lapTime      time.Time
}

func (w *Watch) Start() {
	w.mu.Lock()
	if w.paused {
		w.mu.Unlock()
		panic("watch cant start because paused")
	}
	w.startTime = time.Now()
	w.adjustedTime = w.startTime
	w.lapTime = w.startTime
	w.mu.Unlock()
}

func (w *Watch) Elapsed() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.paused {
		return w.pauseTime.Sub(w.adjustedTime)
	}
	return time.Since(w.adjustedTime)
}

// Time since the previous Lap (or Start), ignoring pauses.
func (w *Watch) Lap() time.Duration {
	w.mu.Lock()
	now := time.Now()
	lap := now.Sub(w.lapTime)
	w.lapTime = now
	w.mu.Unlock()
	return lap
}

func (w *Watch) Pause() time.Duration { // returns currently elapsed time
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		panic("watch already paused")
	}
	w.pauseTime = time.Now()
	w.paused = true
	return w.pauseTime.Sub(w.adjustedTime)
}

func (w *Watch) UnPause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.paused {
		panic("watch wasn't paused")
	}
	w.paused = false
	w.adjustedTime = w.adjustedTime.Add(time.Since(w.pauseTime))
}
