package batch

import (
	"os"

	"golang.org/x/sync/singleflight"
)

// dirMaker collapses concurrent MkdirAll calls for the same directory.
type dirMaker struct {
	group singleflight.Group
}

func newDirMaker() *dirMaker {
	return &dirMaker{}
}

func (d *dirMaker) EnsureDir(dir string) error {
	_, err, _ := d.group.Do(dir, func() (any, error) {
		return nil, os.MkdirAll(dir, 0o755)
	})
	return err
}
