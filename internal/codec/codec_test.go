package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"squish/pkg/imgutil"
)

func TestDecodeModes(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Mode
	}{
		{"opaque png", encodePNG(t, opaqueNRGBA(4, 4)), ModeRGB},
		{"transparent png", encodePNG(t, translucentNRGBA(4, 4)), ModeRGBA},
		{"gray png", encodePNG(t, image.NewGray(image.Rect(0, 0, 4, 4))), ModeGray},
		{"paletted png", encodePNG(t, palettedImage(4, 4)), ModePaletted},
		{"jpeg", encodeJPEG(t, opaqueNRGBA(4, 4)), ModeRGB},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Decode(bytes.NewReader(tc.data))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Mode() != tc.want {
				t.Fatalf("mode = %v, want %v", img.Mode(), tc.want)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("definitely not an image"))); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestResize(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, opaqueNRGBA(200, 100))))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	small := img.Resize(100, 50)
	if small.Width() != 100 || small.Height() != 50 {
		t.Fatalf("resized to %dx%d, want 100x50", small.Width(), small.Height())
	}
	if small.Mode() != img.Mode() {
		t.Fatalf("resize changed mode from %v to %v", img.Mode(), small.Mode())
	}
	if img.Width() != 200 || img.Height() != 100 {
		t.Fatal("resize modified the receiver")
	}
}

func TestFlatten(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{})

	img := &imagingImage{img: src, mode: ModeRGBA}
	flat := img.Flatten()

	if flat.Mode() != ModeRGB {
		t.Fatalf("flattened mode = %v, want %v", flat.Mode(), ModeRGB)
	}

	out, ok := flat.(*imagingImage).img.(*image.NRGBA)
	if !ok {
		t.Fatalf("flattened image is %T", flat.(*imagingImage).img)
	}
	if !out.Opaque() {
		t.Fatal("flattened image still has transparency")
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("opaque pixel changed: %#v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("transparent pixel not white: %#v", got)
	}
}

func TestOrient(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	makeStrip := func() *imagingImage {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		src.SetNRGBA(0, 0, red)
		src.SetNRGBA(1, 0, blue)
		return &imagingImage{img: src, mode: ModeRGB}
	}

	pixel := func(img Image, x, y int) color.NRGBA {
		c := img.(*imagingImage).img.At(x, y)
		return color.NRGBAModel.Convert(c).(color.NRGBA)
	}

	t.Run("rotate 90 cw", func(t *testing.T) {
		got := makeStrip().Orient(OrientRotate90CW)
		if got.Width() != 1 || got.Height() != 2 {
			t.Fatalf("dims %dx%d, want 1x2", got.Width(), got.Height())
		}
		if pixel(got, 0, 0) != red || pixel(got, 0, 1) != blue {
			t.Fatalf("pixels %v / %v, want red on top", pixel(got, 0, 0), pixel(got, 0, 1))
		}
	})

	t.Run("rotate 180", func(t *testing.T) {
		got := makeStrip().Orient(OrientRotate180)
		if got.Width() != 2 || got.Height() != 1 {
			t.Fatalf("dims %dx%d, want 2x1", got.Width(), got.Height())
		}
		if pixel(got, 0, 0) != blue || pixel(got, 1, 0) != red {
			t.Fatal("expected pixel order reversed")
		}
	})

	t.Run("flip horizontal", func(t *testing.T) {
		got := makeStrip().Orient(OrientFlipH)
		if pixel(got, 0, 0) != blue || pixel(got, 1, 0) != red {
			t.Fatal("expected mirrored pixels")
		}
	})

	t.Run("normal is a no-op", func(t *testing.T) {
		strip := makeStrip()
		if got := strip.Orient(OrientNormal); got != Image(strip) {
			t.Fatal("expected the same image back")
		}
	})
}

func TestEncodeJPEG(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, opaqueNRGBA(8, 6))))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, imgutil.KindJPEG, EncodeParams{Quality: 85}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := jpeg.Decode(&buf)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 6 {
		t.Fatalf("output bounds %v", decoded.Bounds())
	}
}

func TestEncodeWebP(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, opaqueNRGBA(8, 6))))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var buf bytes.Buffer
	if err := img.Encode(&buf, imgutil.KindWebP, EncodeParams{Quality: 80}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data := buf.Bytes()
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Fatalf("output is not a WebP container: % x", data[:min(len(data), 12)])
	}
}

func TestEncodePNGLevels(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, opaqueNRGBA(8, 6))))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for level := 0; level <= 9; level++ {
		var buf bytes.Buffer
		if err := img.Encode(&buf, imgutil.KindPNG, EncodeParams{PNGLevel: level}); err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if _, err := png.Decode(&buf); err != nil {
			t.Fatalf("level %d produced undecodable output: %v", level, err)
		}
	}
}

func TestEncodeUnsupported(t *testing.T) {
	img := &imagingImage{img: opaqueNRGBA(2, 2), mode: ModeRGB}
	err := img.Encode(&bytes.Buffer{}, imgutil.KindUnknown, EncodeParams{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPNGLevelMapping(t *testing.T) {
	cases := []struct {
		level int
		want  png.CompressionLevel
	}{
		{0, png.NoCompression},
		{1, png.BestSpeed},
		{3, png.BestSpeed},
		{4, png.DefaultCompression},
		{7, png.DefaultCompression},
		{8, png.BestCompression},
		{9, png.BestCompression},
	}
	for _, tc := range cases {
		if got := pngLevel(tc.level); got != tc.want {
			t.Errorf("pngLevel(%d) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestReadOrientation(t *testing.T) {
	data := buildJPEGWithOrientation(6)
	o, err := ReadOrientation(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadOrientation: %v", err)
	}
	if o != OrientRotate90CW {
		t.Fatalf("orientation = %d, want %d", o, OrientRotate90CW)
	}
}

func TestReadOrientationNoExif(t *testing.T) {
	o, err := ReadOrientation(bytes.NewReader(encodeJPEG(t, opaqueNRGBA(2, 2))))
	if err != nil {
		t.Fatalf("ReadOrientation: %v", err)
	}
	if o != OrientNormal {
		t.Fatalf("orientation = %d, want %d", o, OrientNormal)
	}
}

func opaqueNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 31), G: uint8(y * 31), B: 128, A: 255})
		}
	}
	return img
}

func translucentNRGBA(w, h int) *image.NRGBA {
	img := opaqueNRGBA(w, h)
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})
	return img
}

func palettedImage(w, h int) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{
		color.NRGBA{A: 255},
		color.NRGBA{R: 255, A: 255},
	})
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func buildJPEGWithOrientation(orientation uint16) []byte {
	tiff := buildOrientationTIFF(orientation)
	payload := append([]byte("Exif\x00\x00"), tiff...)

	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8})
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xff, 0xd9})
	return buf.Bytes()
}

func buildOrientationTIFF(orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(1))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, orientation)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	return tiff.Bytes()
}
