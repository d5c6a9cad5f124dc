package codec

import (
	"errors"
	"io"

	"squish/pkg/imgutil"
)

// Mode is the color layout of a decoded image.
type Mode int

const (
	ModeRGB Mode = iota
	ModeRGBA
	ModeGray
	ModeGrayAlpha // stdlib decoders normalize gray+alpha to NRGBA, so rarely reported
	ModePaletted
	ModeCMYK
)

func (m Mode) String() string {
	switch m {
	case ModeRGB:
		return "rgb"
	case ModeRGBA:
		return "rgba"
	case ModeGray:
		return "gray"
	case ModeGrayAlpha:
		return "gray+alpha"
	case ModePaletted:
		return "paletted"
	case ModeCMYK:
		return "cmyk"
	default:
		return "unknown"
	}
}

// HasAlpha reports whether the mode can carry transparency. Paletted
// counts: palettes may hold transparent entries.
func (m Mode) HasAlpha() bool {
	return m == ModeRGBA || m == ModeGrayAlpha || m == ModePaletted
}

// EncodeParams carries the encoder knobs. Quality drives JPEG and WebP;
// PNGLevel is a 0 (store) to 9 (max effort) scale.
type EncodeParams struct {
	Quality  int
	PNGLevel int
}

var ErrUnsupportedFormat = errors.New("unsupported output format")

// Image is what the conversion pipeline needs from a decoded image.
// Transforms return a new Image; the receiver is never modified.
type Image interface {
	Width() int
	Height() int
	Mode() Mode
	Resize(w, h int) Image
	Orient(o Orientation) Image
	Flatten() Image
	Encode(w io.Writer, kind imgutil.Kind, p EncodeParams) error
}
