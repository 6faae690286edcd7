// Package coords converts signature positions between capture space and PDF space.
//
// Capture space is where a signer dropped a mark: either absolute pixels relative to the
// viewport the page was rendered in, or fractions of that viewport. Its origin is top-left.
// PDF space is the page's own point grid with the origin at the bottom-left edge.
package coords

// Placement is a position recorded in capture space.
type Placement struct {
	X            float64
	Y            float64
	Page         int
	RenderWidth  float64
	RenderHeight float64
	// Fractional reports whether X and Y are already fractions of the render size.
	Fractional bool
}

// Normalize returns the placement as clamped fractions of the render size.
// A pixel placement with a non-positive render size yields the origin; such
// placements are rejected before they are stored.
func Normalize(p Placement) (xFrac, yFrac float64) {
	if p.Fractional {
		return clamp01(p.X), clamp01(p.Y)
	}
	if p.RenderWidth <= 0 || p.RenderHeight <= 0 {
		return 0, 0
	}
	return clamp01(p.X / p.RenderWidth), clamp01(p.Y / p.RenderHeight)
}

// ToPDFSpace maps p onto a page of the given point dimensions.
// The result depends only on the page's intrinsic size, never on how large it was rendered.
func ToPDFSpace(p Placement, pageWidthPt, pageHeightPt float64) (xPt, yPt float64) {
	xFrac, yFrac := Normalize(p)
	return xFrac * pageWidthPt, pageHeightPt - yFrac*pageHeightPt
}

// FromPDFSpace is the inverse of ToPDFSpace for fractional placements.
func FromPDFSpace(xPt, yPt, pageWidthPt, pageHeightPt float64) (xFrac, yFrac float64) {
	if pageWidthPt <= 0 || pageHeightPt <= 0 {
		return 0, 0
	}
	return clamp01(xPt / pageWidthPt), clamp01((pageHeightPt - yPt) / pageHeightPt)
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
