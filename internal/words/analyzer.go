// Package words splits text into words and computes the fixation point of each word.
package words

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultStripChars are removed from the front of a word before its
// fixation point is computed: straight and curly quotes, backticks,
// opening brackets and inverted punctuation.
const DefaultStripChars = "\"“”„'‘’‚`([{<¿¡«‹"

// Parts is a word split around its focus letter.
// Before + Focus + After is the cleaned word.
type Parts struct {
	Before string
	Focus  string
	After  string
}

// String joins the parts back into the cleaned word.
func (p Parts) String() string {
	return p.Before + p.Focus + p.After
}

// Info summarises the analysis of a single word.
type Info struct {
	Word     string // Raw word as displayed
	Length   int    // Rune count of the raw word
	ORPIndex int    // Focus position in the cleaned word
	Parts    Parts
}

// String renders the info as a single status line.
func (i Info) String() string {
	return fmt.Sprintf("Word: %q | Length: %d | ORP Index: %d | Parts: [%s] [%s] [%s]",
		i.Word, i.Length, i.ORPIndex, i.Parts.Before, i.Parts.Focus, i.Parts.After)
}

// Analyzer holds the set of leading characters ignored during analysis.
type Analyzer struct {
	strip map[rune]struct{}
}

// DefaultAnalyzer strips DefaultStripChars.
var DefaultAnalyzer = NewAnalyzer(DefaultStripChars)

// NewAnalyzer creates an analyzer that strips any rune of chars from the
// front of a word.
func NewAnalyzer(chars string) *Analyzer {
	a := &Analyzer{strip: make(map[rune]struct{})}
	for _, r := range chars {
		a.strip[r] = struct{}{}
	}
	return a
}

// Clean removes leading strip characters. Trailing characters are kept.
func (a *Analyzer) Clean(word string) string {
	return strings.TrimLeftFunc(word, func(r rune) bool {
		_, ok := a.strip[r]
		return ok
	})
}

// ComputeORPIndex returns the rune index of the focus letter in the cleaned word.
func (a *Analyzer) ComputeORPIndex(word string) int {
	return orpIndex(utf8.RuneCountInString(a.Clean(word)))
}

// SplitWord splits the cleaned word into the text before, at and after the focus letter.
func (a *Analyzer) SplitWord(word string) Parts {
	runes := []rune(a.Clean(word))
	if len(runes) == 0 {
		return Parts{}
	}

	idx := orpIndex(len(runes))
	return Parts{
		Before: string(runes[:idx]),
		Focus:  string(runes[idx : idx+1]),
		After:  string(runes[idx+1:]),
	}
}

// Describe analyses a raw word.
func (a *Analyzer) Describe(word string) Info {
	return Info{
		Word:     word,
		Length:   utf8.RuneCountInString(word),
		ORPIndex: a.ComputeORPIndex(word),
		Parts:    a.SplitWord(word),
	}
}

// orpIndex places the focus slightly left of center.
//
// For a word of n runes the index is round((n-1) * f(n)) with
// f(n) = 1/2 - 1/(n+1). f grows with n but stays below 1/2, so short words
// fixate early, long words approach the center, and for n > 2 the last
// rune is never chosen. In integer form:
//
//	((n-1)^2 + (n+1)) / (2(n+1))
//
// which gives 0,1,1,1,2,2,3,3,4,4,5,5 for n = 2..13.
func orpIndex(n int) int {
	if n <= 1 {
		return 0
	}
	return ((n-1)*(n-1) + (n + 1)) / (2 * (n + 1))
}

// Clean strips DefaultStripChars from the front of word.
func Clean(word string) string {
	return DefaultAnalyzer.Clean(word)
}

// ComputeORPIndex uses DefaultAnalyzer.
func ComputeORPIndex(word string) int {
	return DefaultAnalyzer.ComputeORPIndex(word)
}

// SplitWord uses DefaultAnalyzer.
func SplitWord(word string) Parts {
	return DefaultAnalyzer.SplitWord(word)
}

// Describe uses DefaultAnalyzer.
func Describe(word string) Info {
	return DefaultAnalyzer.Describe(word)
}
