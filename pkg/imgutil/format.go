package imgutil

import (
	"path/filepath"
	"strings"
)

// kindByName maps the extensions accepted as input. Matching is
// case-insensitive; ".tif" is deliberately not recognized.
var kindByName = map[string]Kind{
	"jpg":  KindJPEG,
	"jpeg": KindJPEG,
	"png":  KindPNG,
	"webp": KindWebP,
	"bmp":  KindBMP,
	"tiff": KindTIFF,
}

// KindForPath maps a file name to its format by extension alone.
func KindForPath(path string) Kind {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return kindByName[ext]
}

// KindForFormat resolves a format name such as "jpg" or "webp".
func KindForFormat(name string) (Kind, bool) {
	k, ok := kindByName[strings.ToLower(name)]
	return k, ok
}

// SupportedPath reports whether the file name carries one of the accepted
// image extensions.
func SupportedPath(path string) bool {
	return KindForPath(path) != KindUnknown
}
