package tasktype

import "fmt"

// Rect is an axis-aligned rectangle within the nominal game window,
// expressed as (x, y, width, height).
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether all four coordinates (x, y, width, height) are
// zero, i.e. it was never set and should fall back to a caller-specific
// default.
func (r Rect) Empty() bool {
	return r.X == 0 && r.Y == 0 && r.W == 0 && r.H == 0
}

// String renders the rectangle the way the original implementation logs it.
func (r Rect) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", r.X, r.Y, r.W, r.H)
}

// MaskRange is an inclusive (low, high) gray-value pair used to mask out
// irrelevant pixels before matching.
type MaskRange struct {
	Low, High int
}

// ReplacePair is a single (pattern, replacement) entry of an OCR
// replace-map, order-preserving.
type ReplacePair struct {
	Pattern     string
	Replacement string
}
