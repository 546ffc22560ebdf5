package words

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTokenize_Basic(t *testing.T) {
	got := Tokenize("The quick brown fox")
	want := []string{"The", "quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenize_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t \r\n", "  "} {
		got := Tokenize(in)
		if got == nil {
			t.Errorf("Tokenize(%q) = nil, want empty slice", in)
		}
		if len(got) != 0 {
			t.Errorf("Tokenize(%q) = %v, want no words", in, got)
		}
	}
}

func TestTokenize_WhitespaceRuns(t *testing.T) {
	got := Tokenize("  one\t\ttwo\n\nthree   four  ")
	want := []string{"one", "two", "three", "four"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenize_Idempotent(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog.",
		"  «Bonjour»,\tdit-il.\n\n¿Qué tal?  ",
		"single",
		"a b c",
	}
	for _, in := range inputs {
		first := Tokenize(in)
		second := Tokenize(strings.Join(first, " "))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-tokenizing %q: got %v, want %v", in, second, first)
		}
	}
}

func TestParseText_MatchesTokenize(t *testing.T) {
	in := "The quick brown fox jumps over the lazy dog."
	if !reflect.DeepEqual(ParseText(in), Tokenize(in)) {
		t.Error("ParseText and Tokenize disagree")
	}
	if Count(in) != 9 {
		t.Errorf("Count = %d, want 9", Count(in))
	}
}

func TestCount_MatchesTokenize(t *testing.T) {
	for _, in := range []string{"", "   \n\t", "one", " a  b\u00a0c\n", "«Bonjour», dit-il."} {
		if got, want := Count(in), len(Tokenize(in)); got != want {
			t.Errorf("Count(%q) = %d, Tokenize gives %d words", in, got, want)
		}
	}
}

func TestClean_LeadingOnly(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Hello`, "Hello"},
		{`"Hello"`, `Hello"`},
		{"“¿(Qué", "Qué"},
		{"¡Hola!", "Hola!"},
		{"`code`", "code`"},
		{"plain", "plain"},
		{`"'([`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComputeORPIndex_KnownValues(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"", 0},
		{"a", 0},
		{"an", 0},
		{"fox", 1},
		{"quick", 1},
		{"reader", 2},
		{"sentence", 3},
		{"recognition", 4},
		{`"Hello`, 1},
		{"(((", 0},
	}
	for _, tt := range tests {
		if got := ComputeORPIndex(tt.word); got != tt.want {
			t.Errorf("ComputeORPIndex(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestComputeORPIndex_Bounds(t *testing.T) {
	prev := 0
	for n := 1; n <= 200; n++ {
		idx := orpIndex(n)
		if idx < 0 || idx > n-1 {
			t.Fatalf("orpIndex(%d) = %d, out of [0, %d]", n, idx, n-1)
		}
		if n > 2 && idx == n-1 {
			t.Errorf("orpIndex(%d) = %d, must not be the last rune", n, idx)
		}
		if 2*idx >= n {
			t.Errorf("orpIndex(%d) = %d, not left of center", n, idx)
		}
		if idx < prev {
			t.Errorf("orpIndex(%d) = %d, decreased from %d", n, idx, prev)
		}
		prev = idx
	}
}

func TestComputeORPIndex_FoxBeforeQuick(t *testing.T) {
	if ComputeORPIndex("fox") > ComputeORPIndex("quick") {
		t.Error("index(fox) should not exceed index(quick)")
	}
}

func TestSplitWord_Reconstructs(t *testing.T) {
	words := []string{
		"", "a", "fox", `"Hello`, "¿Dónde?", "naïveté", "日本語の文章",
		"((([[[", "«Bonjour»", "extraordinarily", "don't",
	}
	for _, w := range words {
		p := SplitWord(w)
		if p.String() != Clean(w) {
			t.Errorf("SplitWord(%q) = %+v, joins to %q, want %q", w, p, p.String(), Clean(w))
		}
		if Clean(w) != "" && utf8.RuneCountInString(p.Focus) != 1 {
			t.Errorf("SplitWord(%q).Focus = %q, want one rune", w, p.Focus)
		}
	}
}

func TestSplitWord_QuotedHello(t *testing.T) {
	p := SplitWord(`"Hello`)
	if p.String() != "Hello" {
		t.Fatalf("joined = %q, want Hello", p.String())
	}
	if p.Before != "H" || p.Focus != "e" || p.After != "llo" {
		t.Errorf("parts = %+v, want H/e/llo", p)
	}
}

func TestSplitWord_OnlyStripped(t *testing.T) {
	p := SplitWord(`"'`)
	if p != (Parts{}) {
		t.Errorf("SplitWord of strip-only word = %+v, want empty parts", p)
	}
}

func TestAnalyzer_CustomStripSet(t *testing.T) {
	a := NewAnalyzer("*")
	if got := a.Clean(`*"bold`); got != `"bold` {
		t.Errorf("Clean = %q, want %q", got, `"bold`)
	}
	if got := a.ComputeORPIndex("**fox"); got != 1 {
		t.Errorf("ComputeORPIndex = %d, want 1", got)
	}
}

func TestDescribe(t *testing.T) {
	info := Describe(`"Hello`)
	if info.Word != `"Hello` || info.Length != 6 || info.ORPIndex != 1 {
		t.Errorf("Describe = %+v", info)
	}
	want := `Word: "\"Hello" | Length: 6 | ORP Index: 1 | Parts: [H] [e] [llo]`
	if info.String() != want {
		t.Errorf("String() = %q, want %q", info.String(), want)
	}
}
