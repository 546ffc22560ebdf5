// Package bigword renders a word as large block art using half-block characters.
package bigword

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/f3rmion/rsvp/internal/words"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Block is a rendered word. Columns [FocusStart, FocusEnd) hold the focus letter.
type Block struct {
	Lines      []string
	Width      int
	FocusStart int
	FocusEnd   int
}

// Empty reports whether nothing was rendered.
func (b Block) Empty() bool {
	return len(b.Lines) == 0
}

// Renderer draws words with an embedded font and caches the results.
type Renderer struct {
	face    font.Face
	padding int

	mu    sync.Mutex
	cache map[string]Block
}

// New creates a renderer using the Go regular font.
func New() (*Renderer, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    64,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return &Renderer{
		face:    face,
		padding: 4,
		cache:   make(map[string]Block),
	}, nil
}

// Render draws the parts of a word rows cells high.
func (r *Renderer) Render(p words.Parts, rows int) Block {
	text := p.String()
	if text == "" || rows <= 0 {
		return Block{}
	}

	key := fmt.Sprintf("%s\x00%s\x00%s\x00%d", p.Before, p.Focus, p.After, rows)
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.cache[key]; ok {
		return b
	}

	b := r.render(p, text, rows)
	r.cache[key] = b
	return b
}

func (r *Renderer) render(p words.Parts, text string, rows int) Block {
	metrics := r.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	textHeight := ascent + metrics.Descent.Ceil()

	advance := font.MeasureString(r.face, text).Ceil()
	focusStart := font.MeasureString(r.face, p.Before).Ceil()
	focusEnd := font.MeasureString(r.face, p.Before+p.Focus).Ceil()

	srcWidth := advance + r.padding*2
	srcHeight := textHeight + r.padding*2

	// Create source image at the font's natural size
	src := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P(r.padding, r.padding+ascent),
	}
	d.DrawString(text)

	// Half-blocks give two pixels per cell vertically and cells are about
	// twice as tall as wide, so both axes use the same scale.
	scale := float64(rows*2) / float64(srcHeight)
	cols := int(math.Ceil(float64(srcWidth) * scale))
	if cols < 1 {
		cols = 1
	}

	scaled := scaleDown(src, cols, rows*2)
	lines := strings.Split(imageToHalfBlocks(scaled, cols, rows), "\n")

	toCol := func(px int) int {
		return int(math.Round(float64(px+r.padding) * scale))
	}
	start, end := toCol(focusStart), toCol(focusEnd)
	if end <= start && utf8.RuneCountInString(p.Focus) > 0 {
		end = start + 1
	}
	if end > cols {
		end = cols
	}

	return Block{
		Lines:      lines,
		Width:      cols,
		FocusStart: start,
		FocusEnd:   end,
	}
}

// scaleDown scales a grayscale image using area averaging
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcBounds := src.Bounds()
	srcWidth := srcBounds.Max.X
	srcHeight := srcBounds.Max.Y

	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1 := int(float64(dx) * xRatio)
			sy1 := int(float64(dy) * yRatio)
			sx2 := min(int(float64(dx+1)*xRatio), srcWidth)
			sy2 := min(int(float64(dy+1)*yRatio), srcHeight)
			if sx2 <= sx1 {
				sx2 = min(sx1+1, srcWidth)
			}
			if sy2 <= sy1 {
				sy2 = min(sy1+1, srcHeight)
			}

			var sum, count int
			for sy := sy1; sy < sy2; sy++ {
				for sx := sx1; sx < sx2; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}

			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}

	return dst
}

// imageToHalfBlocks converts a grayscale image to half-block art
func imageToHalfBlocks(img *image.Gray, cols, rows int) string {
	const threshold = 60

	var result strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			topOn := brightness(img, col, row*2) > threshold
			bottomOn := brightness(img, col, row*2+1) > threshold

			switch {
			case topOn && bottomOn:
				result.WriteRune('█')
			case topOn:
				result.WriteRune('▀')
			case bottomOn:
				result.WriteRune('▄')
			default:
				result.WriteRune(' ')
			}
		}
		if row < rows-1 {
			result.WriteRune('\n')
		}
	}

	return result.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if x < 0 || y < 0 || x >= img.Bounds().Max.X || y >= img.Bounds().Max.Y {
		return 0
	}
	return img.GrayAt(x, y).Y
}
