package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FontName is the standard font marks are drawn with.
const FontName = "Helvetica"

type pdfcpuStamper struct{}

// NewPDFCPU returns a Stamper backed by pdfcpu.
func NewPDFCPU() Stamper {
	return pdfcpuStamper{}
}

func (pdfcpuStamper) conf() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// PageCount validates data as a PDF and returns its number of pages.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return n, nil
}

func (s pdfcpuStamper) Pages(ctx context.Context, data []byte) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dims, err := api.PageDims(bytes.NewReader(data), s.conf())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	pages := make([]Page, len(dims))
	for i, d := range dims {
		pages[i] = Page{Number: i + 1, Width: d.Width, Height: d.Height}
	}
	return pages, nil
}

func (s pdfcpuStamper) Stamp(ctx context.Context, data []byte, marks []Mark) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(marks) == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	byPage := make(map[int][]*model.Watermark)
	for _, m := range marks {
		wm, err := textWatermark(m)
		if err != nil {
			return nil, err
		}
		byPage[m.Page] = append(byPage[m.Page], wm)
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(data), &out, byPage, s.conf()); err != nil {
		return nil, fmt.Errorf("stamp marks: %w", err)
	}
	return out.Bytes(), nil
}

// StampPoints is the font size a mark is drawn at. pdfcpu sizes text in whole points,
// so fractional sizes round to the nearest point with a floor of 1.
func StampPoints(size float64) int {
	points := int(math.Round(size))
	if points < 1 {
		return 1
	}
	return points
}

// baselineOffset is the height of the first baseline above the bottom edge of a pdfcpu text stamp.
func baselineOffset(points int) float64 {
	return math.Ceil(font.Descent(FontName, points))
}

// textWatermark builds an opaque, unrotated, absolutely scaled text stamp whose baseline starts at (X, Y).
func textWatermark(m Mark) (*model.Watermark, error) {
	points := StampPoints(m.FontSize)
	desc := fmt.Sprintf("fontname:%s, points:%d, position:bl, scalefactor:1 abs, rotation:0, opacity:1", FontName, points)

	wm, err := pdfcpu.ParseTextWatermarkDetails(m.Text, desc, true, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse text stamp: %w", err)
	}
	wm.Dx = m.X
	wm.Dy = m.Y - baselineOffset(points)
	wm.FillColor = color.SimpleColor{R: float32(m.Color.R), G: float32(m.Color.G), B: float32(m.Color.B)}
	return wm, nil
}
