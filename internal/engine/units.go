package engine

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidSpeed is returned by ValidateSpeed for non-positive or
// non-finite speeds.
var ErrInvalidSpeed = errors.New("speed must be a positive finite number of words per minute")

// DefaultSpeed is used when a Config carries no valid speed.
const DefaultSpeed = 300

// MaxDelay is the longest wait per word. Speeds below about 6.5e-6 wpm,
// or pacing factors that push a delay past it, wait MaxDelay.
const MaxDelay = time.Duration(math.MaxInt64)

// ValidateSpeed checks that wpm can drive the timing loop.
func ValidateSpeed(wpm float64) error {
	if math.IsNaN(wpm) || math.IsInf(wpm, 0) || wpm <= 0 {
		return ErrInvalidSpeed
	}
	return nil
}

// WPMToMs converts words per minute to milliseconds per word.
// It returns +Inf for 0; validate the input first.
func WPMToMs(wpm float64) float64 {
	return 60000 / wpm
}

// MsToWPM converts milliseconds per word to words per minute.
// It returns +Inf for 0; validate the input first.
func MsToWPM(ms float64) float64 {
	return 60000 / ms
}

// WPMToDuration converts a valid speed to the delay per word, capped at
// MaxDelay.
func WPMToDuration(wpm float64) time.Duration {
	return saturate(WPMToMs(wpm) * float64(time.Millisecond))
}

// saturate converts nanoseconds to a Duration within [0, MaxDelay].
func saturate(ns float64) time.Duration {
	switch {
	case math.IsNaN(ns) || ns >= float64(math.MaxInt64):
		return MaxDelay
	case ns <= 0:
		return 0
	}
	return time.Duration(ns)
}

// EstimateDuration sums the per-word delays of words at wpm.
// A nil pacer means every word gets the base delay.
func EstimateDuration(words []string, wpm float64, pacer Pacer) time.Duration {
	if ValidateSpeed(wpm) != nil {
		return 0
	}
	if pacer == nil {
		pacer = ConstantPacer{}
	}

	base := WPMToDuration(wpm)
	var total time.Duration
	for _, w := range words {
		d := pacer.Delay(w, base)
		if total > MaxDelay-d {
			return MaxDelay
		}
		total += d
	}
	return total
}
