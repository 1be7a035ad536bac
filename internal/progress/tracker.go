// Package progress reports batch clone progress to the console.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

const (
	rateHistorySize = 10 // Keep last 10 rate measurements for averaging
)

// Tracker receives progress events from the orchestrator's collecting loop.
// All calls come from a single goroutine, so implementations need no
// locking.
type Tracker interface {
	// Start begins tracking an operation over total items
	Start(operation string, total int)

	// Update reports that current items have completed
	Update(current int)

	// Message prints a line without disturbing the progress display
	Message(format string, args ...interface{})

	// Complete marks the operation as finished
	Complete()
}

// ConsoleTracker renders a single-line progress display with a moving
// average completion rate and an ETA.
type ConsoleTracker struct {
	out         io.Writer
	name        string
	total       int
	startTime   time.Time
	lastUpdate  time.Time
	lastCurrent int
	rateHistory []float64
	rate        float64 // items per second
}

// NewConsoleTracker creates a new console-based progress tracker
func NewConsoleTracker() *ConsoleTracker {
	return &ConsoleTracker{out: os.Stdout}
}

// Start begins tracking a new operation
func (t *ConsoleTracker) Start(operation string, total int) {
	now := time.Now()
	t.name = operation
	t.total = total
	t.startTime = now
	t.lastUpdate = now
	t.lastCurrent = 0
	t.rateHistory = make([]float64, 0, rateHistorySize)
	t.rate = 0
	fmt.Fprintf(t.out, "Starting: %s (%d repositories)\n", operation, total)
}

// Update reports completion progress for the current operation
func (t *ConsoleTracker) Update(current int) {
	if t.total == 0 {
		return
	}

	now := time.Now()
	if t.lastCurrent > 0 || current > 0 {
		timeDiff := now.Sub(t.lastUpdate).Seconds()
		if timeDiff > 0 {
			currentRate := float64(current-t.lastCurrent) / timeDiff
			if len(t.rateHistory) >= rateHistorySize {
				t.rateHistory = t.rateHistory[1:]
			}
			t.rateHistory = append(t.rateHistory, currentRate)

			var totalRate float64
			for _, rate := range t.rateHistory {
				totalRate += rate
			}
			t.rate = totalRate / float64(len(t.rateHistory))
		}
	}

	t.lastUpdate = now
	t.lastCurrent = current

	etaStr := "calculating..."
	if t.rate > 0 {
		remaining := time.Duration(float64(t.total-current)/t.rate) * time.Second
		if remaining > 0 {
			etaStr = remaining.Round(time.Second).String()
		} else {
			etaStr = "almost done"
		}
	}

	fmt.Fprintf(t.out, "\r%s: %d/%d (%.1f%%, %.1f repos/min, ETA: %s)",
		t.name,
		current,
		t.total,
		float64(current)/float64(t.total)*100,
		t.rate*60,
		etaStr)
}

// Message prints a line, breaking out of the \r progress display first
func (t *ConsoleTracker) Message(format string, args ...interface{}) {
	fmt.Fprintf(t.out, "\n"+format+"\n", args...)
}

// Complete marks the current operation as completed
func (t *ConsoleTracker) Complete() {
	if t.name == "" {
		return
	}
	duration := time.Since(t.startTime).Round(time.Millisecond)
	fmt.Fprintf(t.out, "\nCompleted: %s (took %v)\n", t.name, duration)
	t.name = ""
}

// NopTracker discards all progress events. Used in tests.
type NopTracker struct{}

func (NopTracker) Start(string, int)              {}
func (NopTracker) Update(int)                     {}
func (NopTracker) Message(string, ...interface{}) {}
func (NopTracker) Complete()                      {}
