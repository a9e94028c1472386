// Package rollstats maintains trailing-window statistics over ordered
// transaction sequences, partitioned by category and merchant, plus the
// generic mean/stddev/cv/lag helpers shared by the detectors.
package rollstats

import (
	"math"

	"findataops/internal/domain"
)

// WindowSize is the row-count bound of every partition window.
const WindowSize = 30

// Window is a fixed-capacity trailing window over |amount| values with
// incremental sum / sum-of-squares maintenance, giving O(1) updates without
// rescanning window members.
type Window struct {
	values [WindowSize]float64
	head   int // next slot to overwrite
	count  int // values currently held, <= WindowSize
	sum    float64
	sumSq  float64
}

// Push adds a value, evicting the oldest once the window is full.
func (w *Window) Push(v float64) {
	if w.count == WindowSize {
		old := w.values[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.values[w.head] = v
	w.sum += v
	w.sumSq += v * v
	w.head = (w.head + 1) % WindowSize
}

// Count returns the number of values inside the window.
func (w *Window) Count() int {
	return w.count
}

// Mean returns the trailing mean, 0 for an empty window.
func (w *Window) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

// Stddev returns the sample standard deviation (n-1 denominator).
// Undefined below two values and reported as 0, which disables z-score
// gating downstream until enough history exists.
func (w *Window) Stddev() float64 {
	if w.count < 2 {
		return 0
	}
	n := float64(w.count)
	// Incremental sum-of-squares can drift a hair negative on constant input.
	variance := (w.sumSq - w.sum*w.sum/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Snapshot captures the current window state.
func (w *Window) Snapshot() domain.WindowSnapshot {
	return domain.WindowSnapshot{
		Count:  w.Count(),
		Mean:   w.Mean(),
		Stddev: w.Stddev(),
	}
}
