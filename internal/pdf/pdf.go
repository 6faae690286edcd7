// Package pdf reads page geometry from PDFs and stamps text marks onto them.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPDF is returned when the input cannot be parsed as a PDF.
var ErrInvalidPDF = errors.New("pdf: invalid document")

// Page is the intrinsic size of one page in PDF points.
type Page struct {
	Number int
	Width  float64
	Height float64
}

// RGB is a colour with channels in [0,1].
type RGB struct {
	R, G, B float64
}

// Mark is a line of text to draw with its baseline starting at (X, Y) in PDF space.
// FontSize is drawn at StampPoints(FontSize).
type Mark struct {
	Page     int
	X        float64
	Y        float64
	Text     string
	FontSize float64
	Color    RGB
}

// Stamper inspects and stamps PDF byte streams. Implementations never modify their input.
type Stamper interface {
	// Pages returns the page sizes in page order.
	Pages(ctx context.Context, data []byte) ([]Page, error)
	// Stamp returns a new PDF with every mark drawn on its page.
	Stamp(ctx context.Context, data []byte, marks []Mark) ([]byte, error)
}

// ParseHexColor decodes "#RRGGBB" into normalized channels.
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 || len(hex) == len(s) {
		return RGB{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}
