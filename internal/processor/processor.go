package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rinse/internal/metadata"
)

// Run walks root (a file or a directory tree), fans supported images out
// to a worker pool, and aggregates per-file outcomes. Progress deltas go
// to updates when non-nil.
func Run(ctx context.Context, root string, opts Options, updates chan<- ProgressUpdate) (Summary, []Report, error) {
	summary := Summary{}
	var reports []Report

	if opts.Handler == nil {
		return summary, nil, fmt.Errorf("metadata handler is required")
	}

	info, err := os.Stat(root)
	if err != nil {
		return summary, nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return summary, nil, err
	}

	var outputAbs string
	var outputInsideRoot bool
	if opts.Mode == ModeClean && !opts.InPlace && opts.OutputDir != "" {
		if absOut, outErr := filepath.Abs(opts.OutputDir); outErr == nil {
			outputAbs = absOut
			absRootClean := filepath.Clean(absRoot)
			outputClean := filepath.Clean(outputAbs)
			if outputClean != absRootClean && isWithin(outputClean, absRootClean) {
				outputInsideRoot = true
			}
		}
	}

	jobs := make(chan Job)
	results := make(chan Result)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobs, results, opts, updates)
		}()
	}

	// Duplicate tracking is shared across workers: first digest wins.
	var seen *seenSet
	if opts.SkipDuplicates && opts.Guard != nil {
		seen = newSeenSet()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			if res.Supported {
				summary.Total++
			}
			switch {
			case res.Skipped:
				summary.Skipped++
				if updates != nil {
					updates <- ProgressUpdate{SkippedDelta: 1}
				}
			case res.Err != nil:
				summary.Errors++
				if updates != nil {
					updates <- ProgressUpdate{ErrorDelta: 1}
				}
			default:
				summary.Processed++
				if updates != nil {
					updates <- ProgressUpdate{ProcessedDelta: 1}
				}
			}
			if res.TagCount > 0 {
				summary.Tags += res.TagCount
				if updates != nil {
					updates <- ProgressUpdate{TagDelta: res.TagCount}
				}
			}
			if res.BytesSaved != 0 {
				summary.BytesSaved += res.BytesSaved
				if updates != nil {
					updates <- ProgressUpdate{BytesSavedDelta: res.BytesSaved}
				}
			}
			if res.Supported {
				reports = append(reports, Report{
					Path:     res.Display,
					Document: res.Document,
					Insights: res.Insights,
					Err:      res.Err,
					Skipped:  res.Skipped,
				})
			}
		}
	}()

	producerErr := make(chan error, 1)
	go func() {
		defer close(jobs)

		sendJob := func(job Job) error {
			job.seen = seen
			if ctx == nil {
				jobs <- job
				return nil
			}
			select {
			case jobs <- job:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if !info.IsDir() {
			job := Job{
				Path:    absRoot,
				RelPath: filepath.Base(absRoot),
				Display: filepath.Base(absRoot),
			}
			producerErr <- sendJob(job)
			return
		}

		fsys := os.DirFS(absRoot)
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if outputInsideRoot {
					fullDir := filepath.Join(absRoot, path)
					if isWithin(fullDir, outputAbs) {
						return fs.SkipDir
					}
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			fullPath := filepath.Join(absRoot, path)
			if err := sendJob(Job{
				Path:    fullPath,
				RelPath: path,
				Display: path,
			}); err != nil {
				return err
			}
			return nil
		})
		producerErr <- err
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if err := <-producerErr; err != nil {
		return summary, reports, err
	}

	if ctx != nil {
		if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return summary, reports, err
		}
	}

	return summary, reports, nil
}

func worker(ctx context.Context, jobs <-chan Job, results chan<- Result, opts Options, updates chan<- ProgressUpdate) {
	for job := range jobs {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return
			}
		}

		res := Result{Path: job.Path, RelPath: job.RelPath, Display: job.Display}

		if !opts.Handler.IsSupportedFormat(job.Path) {
			continue
		}

		res.Supported = true
		if updates != nil {
			updates <- ProgressUpdate{TotalDelta: 1}
		}

		switch opts.Mode {
		case ModeInspect:
			inspectFile(&res, job, opts)
		case ModeClean:
			cleanFile(ctx, &res, job, opts)
		default:
			res.Err = fmt.Errorf("unknown mode")
		}

		results <- res
	}
}

func inspectFile(res *Result, job Job, opts Options) {
	doc := opts.Handler.ExtractMetadata(job.Path)
	if doc.Error != "" {
		res.Err = errors.New(doc.Error)
		return
	}
	res.Document = doc
	res.TagCount = doc.TagCount()
	if opts.Insights {
		res.Insights = buildInsights(doc)
	}
}

func cleanFile(ctx context.Context, res *Result, job Job, opts Options) {
	if opts.Guard != nil {
		if res.Skipped = isDuplicate(job, opts); res.Skipped {
			return
		}
		if err := throttle(ctx, rateLimitKey, opts); err != nil {
			res.Err = err
			return
		}
		gateCtx := ctx
		if gateCtx == nil {
			gateCtx = context.Background()
		}
		if err := opts.Guard.Gate.Acquire(gateCtx); err != nil {
			res.Err = err
			return
		}
		defer opts.Guard.Gate.Release()
	}

	srcInfo, err := os.Stat(job.Path)
	if err != nil {
		res.Err = err
		return
	}

	// Count what is about to be removed. File info is derived, not
	// embedded, so it does not count.
	doc := opts.Handler.ExtractMetadata(job.Path)
	if doc.Error == "" {
		for _, sec := range doc.Sections {
			if sec.Label != metadata.SectionFileInfo {
				res.TagCount += len(sec.Tags)
			}
		}
	}

	destPath, destDir, inPlace, err := resolveDestination(job, opts)
	if err != nil {
		res.Err = err
		return
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		res.Err = err
		return
	}

	writePath := destPath
	if inPlace {
		// The handler refuses an output equal to its input, so in-place
		// cleaning goes through a sibling file that replaces the source.
		writePath = filepath.Join(destDir, "."+filepath.Base(job.Path)+".rinse")
		defer os.Remove(writePath)
	}

	if ok := opts.Handler.RemoveMetadata(job.Path, writePath); !ok {
		res.Err = fmt.Errorf("failed to clean %s", job.Display)
		return
	}

	if inPlace {
		if err := replaceFile(writePath, destPath); err != nil {
			res.Err = err
			return
		}
	}

	outInfo, err := os.Stat(destPath)
	if err != nil {
		res.Err = err
		return
	}
	res.BytesSaved = srcInfo.Size() - outInfo.Size()
}

func isDuplicate(job Job, opts Options) bool {
	if job.seen == nil {
		return false
	}
	digest, err := opts.Guard.Cache.Digest(job.Path)
	if err != nil {
		return false
	}
	return !job.seen.add(digest)
}

// rateLimitKey is the limiter identifier every clean operation shares.
// Throughput is bounded per run, not per file: each job draws from the
// same window, so a large batch actually slows down at the ceiling.
const rateLimitKey = "clean"

// throttle blocks until the rate limiter admits the operation or the
// context is done.
func throttle(ctx context.Context, id string, opts Options) error {
	for !opts.Guard.Limiter.Allow(id) {
		if ctx == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func resolveDestination(job Job, opts Options) (string, string, bool, error) {
	if opts.InPlace {
		return job.Path, filepath.Dir(job.Path), true, nil
	}
	if opts.OutputDir == "" {
		return "", "", false, fmt.Errorf("output directory required when not using --inplace")
	}

	destPath := filepath.Join(opts.OutputDir, job.RelPath)
	if filepath.Clean(destPath) == filepath.Clean(job.Path) {
		return "", "", false, fmt.Errorf("output path resolves to input path; use --inplace or a different --output")
	}

	return destPath, filepath.Dir(destPath), false, nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if info, err := os.Lstat(destPath); err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("destination %s is not a regular file", destPath)
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

type seenSet struct {
	mu sync.Mutex
	m  map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{m: make(map[string]struct{})}
}

// add reports whether the digest was new.
func (s *seenSet) add(digest string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[digest]; ok {
		return false
	}
	s.m[digest] = struct{}{}
	return true
}
