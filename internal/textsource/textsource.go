// Package textsource loads reading material from files and streams.
package textsource

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotText is returned for files that don't look like plain text.
	ErrNotText = errors.New("not a text file")

	// ErrEmptyText is returned when the input holds no words.
	ErrEmptyText = errors.New("no text to read")
)

// Extensions are accepted without sniffing the content.
var Extensions = []string{".txt", ".text", ".md"}

// maxSize bounds what is read into memory.
const maxSize = 32 << 20

// Document is loaded text plus where it came from.
type Document struct {
	Source string // Stable key, e.g. an absolute path
	Title  string
	Text   string
	Path   string // Set only for documents read from a file
}

// HasTextExtension reports whether name has one of Extensions.
func HasTextExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SourceKey returns the absolute form of path.
func SourceKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Load reads a text file. Files without a known extension must sniff as text/*.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize))
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if !HasTextExtension(path) && !looksLikeText(data) {
		return Document{}, fmt.Errorf("%s: %w", path, ErrNotText)
	}

	doc, err := newDocument(SourceKey(path), filepath.Base(path), data)
	if err != nil {
		return Document{}, err
	}
	doc.Path = doc.Source
	return doc, nil
}

// Read reads text from r, e.g. stdin. source names the stream.
func Read(r io.Reader, source string) (Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize))
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", source, err)
	}
	if !looksLikeText(data) {
		return Document{}, fmt.Errorf("%s: %w", source, ErrNotText)
	}
	return newDocument(source, source, data)
}

// FromString wraps pasted text.
func FromString(text, source, title string) (Document, error) {
	return newDocument(source, title, []byte(text))
}

func newDocument(source, title string, data []byte) (Document, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("%s: %w", source, ErrEmptyText)
	}
	return Document{Source: source, Title: title, Text: text}, nil
}

func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if !utf8.Valid(data) {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(data), "text/")
}
