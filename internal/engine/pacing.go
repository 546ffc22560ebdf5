package engine

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Pacer decides how long a word stays on screen given the base delay
// derived from the speed. Implementations must return a positive duration.
type Pacer interface {
	Delay(word string, base time.Duration) time.Duration
}

// ConstantPacer shows every word for the base delay.
type ConstantPacer struct{}

// Delay returns base.
func (ConstantPacer) Delay(_ string, base time.Duration) time.Duration {
	return base
}

// PunctuationPacer holds words longer at clause and sentence ends, and
// long words a little longer.
//
// Delay = base * punctuation factor * length factor, where the
// punctuation factor is SentenceFactor for words ending in . ! ? or …,
// ClauseFactor for , ; : – or —, otherwise 1, and the length factor is
// LongWordFactor for words of more than LongWordLength runes, otherwise 1.
// Factors below 1 count as 1, so a word is never shown shorter than base.
type PunctuationPacer struct {
	LongWordLength int
	LongWordFactor float64
	ClauseFactor   float64
	SentenceFactor float64
}

// DefaultPunctuationPacer returns the pacing used when pacing is enabled
// without explicit factors.
func DefaultPunctuationPacer() PunctuationPacer {
	return PunctuationPacer{
		LongWordLength: 8,
		LongWordFactor: 1.3,
		ClauseFactor:   1.5,
		SentenceFactor: 2.0,
	}
}

// closers may follow the final punctuation mark, as in `end."` or `(so).`
const closers = "\"”’')]}>»›"

// Delay implements Pacer.
func (p PunctuationPacer) Delay(word string, base time.Duration) time.Duration {
	factor := 1.0

	trimmed := strings.TrimRight(word, closers)
	if last, _ := utf8.DecodeLastRuneInString(trimmed); trimmed != "" {
		switch last {
		case '.', '!', '?', '…':
			factor *= atLeastOne(p.SentenceFactor)
		case ',', ';', ':', '–', '—':
			factor *= atLeastOne(p.ClauseFactor)
		}
	}

	if p.LongWordLength > 0 && utf8.RuneCountInString(word) > p.LongWordLength {
		factor *= atLeastOne(p.LongWordFactor)
	}

	return saturate(float64(base) * factor)
}

func atLeastOne(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
		return 1
	}
	return f
}
