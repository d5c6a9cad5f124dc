package codec

import (
	"io"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Orientation is the EXIF orientation tag value, 1 through 8.
type Orientation int

const (
	OrientNormal Orientation = iota + 1
	OrientFlipH
	OrientRotate180
	OrientFlipV
	OrientTranspose
	OrientRotate90CW
	OrientTransverse
	OrientRotate270CW
)

// ReadOrientation extracts the EXIF Orientation tag. Images without EXIF
// data or without the tag report OrientNormal.
func ReadOrientation(rs io.ReadSeeker) (Orientation, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return OrientNormal, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return OrientNormal, nil
		}
		return OrientNormal, err
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" {
			continue
		}
		switch v := tag.Value.(type) {
		case []uint16:
			if len(v) > 0 {
				return clampOrientation(int(v[0])), nil
			}
		case uint16:
			return clampOrientation(int(v)), nil
		}
		if n, err := strconv.Atoi(strings.TrimSpace(tag.FormattedFirst)); err == nil {
			return clampOrientation(n), nil
		}
	}

	return OrientNormal, nil
}

func clampOrientation(n int) Orientation {
	if n < int(OrientNormal) || n > int(OrientRotate270CW) {
		return OrientNormal
	}
	return Orientation(n)
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
