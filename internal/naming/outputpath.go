package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrOutsideRoot = errors.New("path outside input root")

// OutputPath mirrors srcPath's location under inputRoot into outputRoot
// and swaps the extension for ext (no leading dot).
func OutputPath(inputRoot, srcPath, outputRoot, ext string) (string, error) {
	rel, err := filepath.Rel(inputRoot, srcPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, srcPath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, srcPath)
	}

	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputRoot, stem+"."+ext), nil
}
