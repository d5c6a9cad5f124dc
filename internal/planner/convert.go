package planner

import (
	"path/filepath"
	"strings"

	"squish/internal/codec"
	"squish/pkg/imgutil"
)

// EffectiveFormat resolves the output format: the configured target when
// set, otherwise the source's own format. The second return is the output
// extension without the dot; ".JPEG" stays "jpeg".
func EffectiveFormat(srcPath, configured string) (imgutil.Kind, string) {
	if configured != "" {
		name := strings.ToLower(configured)
		kind, _ := imgutil.KindForFormat(name)
		return kind, name
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(srcPath)), ".")
	return imgutil.KindForPath(srcPath), ext
}

// NeedsFlatten reports whether a decoded mode must be composited onto an
// opaque background before encoding to format. Only JPEG requires it.
func NeedsFlatten(mode codec.Mode, format imgutil.Kind) bool {
	return format == imgutil.KindJPEG && mode.HasAlpha()
}

// EncodeParamsFor translates the quality setting into the target format's
// encoder parameters. PNG derives its level as 9 - quality/10.
func EncodeParamsFor(format imgutil.Kind, quality int) codec.EncodeParams {
	var p codec.EncodeParams
	switch format {
	case imgutil.KindJPEG, imgutil.KindWebP:
		p.Quality = quality
	case imgutil.KindPNG:
		p.PNGLevel = clampLevel(9 - quality/10)
	}
	return p
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 9 {
		return 9
	}
	return level
}
