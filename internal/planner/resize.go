package planner

import "math"

// ResizeMode selects which sizing rule a run applies.
type ResizeMode int

const (
	ResizeNone ResizeMode = iota
	ResizeMaxDimension
	ResizeExact
)

type ResizeSpec struct {
	Mode         ResizeMode
	MaxDimension int
	Width        int
	Height       int
	KeepAspect   bool
}

// TargetSize computes output dimensions for a w x h source. The third
// return reports whether a resample happens; exact mode without aspect
// preservation always resamples, even to identical dimensions.
func TargetSize(w, h int, spec ResizeSpec) (int, int, bool) {
	switch spec.Mode {
	case ResizeMaxDimension:
		return fitWithin(w, h, spec.MaxDimension, spec.MaxDimension)
	case ResizeExact:
		if spec.KeepAspect {
			return fitWithin(w, h, spec.Width, spec.Height)
		}
		return spec.Width, spec.Height, true
	default:
		return w, h, false
	}
}

// fitWithin never scales up and never returns a dimension below 1.
func fitWithin(w, h, maxW, maxH int) (int, int, bool) {
	if w <= maxW && h <= maxH {
		return w, h, false
	}

	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * ratio))
	nh := int(math.Round(float64(h) * ratio))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh, true
}
