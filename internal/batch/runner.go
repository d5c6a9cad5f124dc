package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"squish/internal/codec"
	"squish/internal/config"
	"squish/internal/naming"
	"squish/internal/planner"
	"squish/pkg/imgutil"
)

// Run converts every supported image under cfg.InputDir into
// cfg.OutputDir. Per-file failures become Results; the returned error
// covers only setup and traversal problems.
func Run(ctx context.Context, cfg config.Config, updates chan<- ProgressUpdate) (Summary, error) {
	summary := Summary{}

	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		return summary, err
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("%s is not a directory", cfg.InputDir)
	}

	absRoot, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		return summary, err
	}
	absOut, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return summary, err
	}

	absRoot = filepath.Clean(absRoot)
	absOut = filepath.Clean(absOut)
	outputInsideRoot := absOut != absRoot && isWithin(absOut, absRoot)

	ensure := newDirMaker()
	jobs := make(chan Job)
	results := make(chan Result)

	workers := cfg.EffectiveWorkers()
	slog.Debug("starting batch", "input", absRoot, "output", absOut, "workers", workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobs, results, cfg, absRoot, absOut, ensure, updates)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			summary.Found++
			var up ProgressUpdate
			if res.Err != nil {
				summary.Failed++
				up.FailedDelta = 1
			} else {
				summary.Processed++
				summary.InBytes += res.InBytes
				summary.OutBytes += res.OutBytes
				up.ProcessedDelta = 1
				up.BytesSavedDelta = res.InBytes - res.OutBytes
			}
			if updates != nil {
				up.Done = &res
				updates <- up
			}
		}
	}()

	producerErr := make(chan error, 1)
	go func() {
		defer close(jobs)

		sendJob := func(job Job) error {
			select {
			case jobs <- job:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		fsys := os.DirFS(absRoot)
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				if outputInsideRoot && isWithin(filepath.Join(absRoot, path), absOut) {
					return fs.SkipDir
				}
				if !cfg.Recursive {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !imgutil.SupportedPath(path) {
				return nil
			}

			return sendJob(Job{
				ID:      uuid.New().String(),
				Path:    filepath.Join(absRoot, path),
				RelPath: path,
			})
		})
		producerErr <- err
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if err := <-producerErr; err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}
	return summary, nil
}

func worker(ctx context.Context, jobs <-chan Job, results chan<- Result, cfg config.Config, inRoot, outRoot string, ensure *dirMaker, updates chan<- ProgressUpdate) {
	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if updates != nil {
			updates <- ProgressUpdate{FoundDelta: 1}
		}
		results <- convertOne(job, cfg, inRoot, outRoot, ensure)
	}
}

func convertOne(job Job, cfg config.Config, inRoot, outRoot string, ensure *dirMaker) Result {
	start := time.Now()
	res := Result{Job: job}

	file, err := os.Open(job.Path)
	if err != nil {
		res.Err = err
		return res
	}
	defer file.Close()

	srcInfo, err := file.Stat()
	if err != nil {
		res.Err = err
		return res
	}
	res.InBytes = srcInfo.Size()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		res.Err = fmt.Errorf("decode: %w", err)
		return res
	}

	orient := codec.OrientNormal
	if cfg.AutoOrient && (kind == imgutil.KindJPEG || kind == imgutil.KindTIFF) {
		o, oErr := codec.ReadOrientation(file)
		if oErr != nil {
			slog.Debug("exif orientation unavailable", "job", job.ID, "file", job.RelPath, "err", oErr)
		} else {
			orient = o
		}
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		res.Err = err
		return res
	}

	img, err := codec.Decode(file)
	if err != nil {
		res.Err = fmt.Errorf("decode: %w", err)
		return res
	}
	if orient != codec.OrientNormal {
		img = img.Orient(orient)
	}

	format, ext := planner.EffectiveFormat(job.Path, cfg.Format)

	if tw, th, resize := planner.TargetSize(img.Width(), img.Height(), cfg.Resize); resize {
		img = img.Resize(tw, th)
	}
	if planner.NeedsFlatten(img.Mode(), format) {
		img = img.Flatten()
	}

	outPath, err := naming.OutputPath(inRoot, job.Path, outRoot, ext)
	if err != nil {
		res.Err = err
		return res
	}
	if filepath.Clean(outPath) == filepath.Clean(job.Path) {
		res.Err = fmt.Errorf("output path resolves to input path: %s", outPath)
		return res
	}
	res.OutputPath = outPath

	destDir := filepath.Dir(outPath)
	if err := ensure.EnsureDir(destDir); err != nil {
		res.Err = fmt.Errorf("write: %w", err)
		return res
	}

	params := planner.EncodeParamsFor(format, cfg.Quality)
	if err := writeImage(outPath, destDir, srcInfo.Mode(), img, format, params); err != nil {
		res.Err = err
		return res
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		res.Err = err
		return res
	}
	res.OutBytes = outInfo.Size()

	slog.Debug("converted", "job", job.ID, "file", job.RelPath,
		"format", format.String(), "bytes_in", res.InBytes, "bytes_out", res.OutBytes,
		"elapsed", time.Since(start))
	return res
}

func writeImage(destPath, destDir string, perm fs.FileMode, img codec.Image, format imgutil.Kind, params codec.EncodeParams) error {
	tmp, err := os.CreateTemp(destDir, "squish-*.tmp")
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := img.Encode(tmp, format, params); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := replaceFile(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if strings.HasPrefix(rel, "..") {
		return false
	}
	return true
}
