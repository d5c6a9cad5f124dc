package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"  // BMP decode support
	_ "golang.org/x/image/tiff" // TIFF decode support

	"squish/pkg/imgutil"
)

// Decode parses any registered image format. Importing this package
// registers JPEG, PNG, BMP, TIFF, and WebP decoders.
func Decode(r io.Reader) (Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return &imagingImage{img: img, mode: modeOf(img)}, nil
}

type imagingImage struct {
	img  image.Image
	mode Mode
}

func (im *imagingImage) Width() int  { return im.img.Bounds().Dx() }
func (im *imagingImage) Height() int { return im.img.Bounds().Dy() }
func (im *imagingImage) Mode() Mode  { return im.mode }

func (im *imagingImage) Resize(w, h int) Image {
	return &imagingImage{img: imaging.Resize(im.img, w, h, imaging.Lanczos), mode: im.mode}
}

// Orient applies the transform that upright-displays an image stored with
// the given EXIF orientation.
func (im *imagingImage) Orient(o Orientation) Image {
	var out image.Image
	switch o {
	case OrientFlipH:
		out = imaging.FlipH(im.img)
	case OrientRotate180:
		out = imaging.Rotate180(im.img)
	case OrientFlipV:
		out = imaging.FlipV(im.img)
	case OrientTranspose:
		out = imaging.Transpose(im.img)
	case OrientRotate90CW:
		out = imaging.Rotate270(im.img)
	case OrientTransverse:
		out = imaging.Transverse(im.img)
	case OrientRotate270CW:
		out = imaging.Rotate90(im.img)
	default:
		return im
	}
	return &imagingImage{img: out, mode: im.mode}
}

// Flatten composites over an opaque white background.
func (im *imagingImage) Flatten() Image {
	b := im.img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return &imagingImage{img: imaging.Overlay(bg, im.img, image.Pt(0, 0), 1.0), mode: ModeRGB}
}

func (im *imagingImage) Encode(w io.Writer, kind imgutil.Kind, p EncodeParams) error {
	switch kind {
	case imgutil.KindJPEG:
		return imaging.Encode(w, im.img, imaging.JPEG, imaging.JPEGQuality(p.Quality))
	case imgutil.KindPNG:
		return imaging.Encode(w, im.img, imaging.PNG, imaging.PNGCompressionLevel(pngLevel(p.PNGLevel)))
	case imgutil.KindWebP:
		return webp.Encode(w, im.img, &webp.Options{Quality: float32(p.Quality)})
	case imgutil.KindBMP:
		return imaging.Encode(w, im.img, imaging.BMP)
	case imgutil.KindTIFF:
		return imaging.Encode(w, im.img, imaging.TIFF)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
}

// pngLevel maps the 0..9 scale onto the discrete stdlib levels.
func pngLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 7:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// modeOf classifies a decoded image. Fully opaque alpha-typed images
// count as RGB so they skip the flatten.
func modeOf(img image.Image) Mode {
	switch im := img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.Paletted:
		return ModePaletted
	case *image.CMYK:
		return ModeCMYK
	case *image.YCbCr:
		return ModeRGB
	case *image.NRGBA:
		return alphaMode(im.Opaque())
	case *image.NRGBA64:
		return alphaMode(im.Opaque())
	case *image.RGBA:
		return alphaMode(im.Opaque())
	case *image.RGBA64:
		return alphaMode(im.Opaque())
	case *image.NYCbCrA:
		return alphaMode(im.Opaque())
	default:
		return ModeRGBA
	}
}

func alphaMode(opaque bool) Mode {
	if opaque {
		return ModeRGB
	}
	return ModeRGBA
}
