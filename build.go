package pathindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/pathindex/internal/index"
	"github.com/meigma/pathindex/internal/pathutil"
	"github.com/meigma/pathindex/internal/scan"
)

// Build scans the archives on classPath and computes their index.
//
// Each entry's position is its index in classPath; it is the entry's
// resolution priority and is preserved by WriteTo and Read. Paths are
// recorded relative to appRoot with forward slashes.
//
// Archives are scanned concurrently (see BuildWithWorkers) and merged in
// position order afterwards, so the result does not depend on scan timing.
// Any scan or I/O error aborts the build; no partial index is returned.
func Build(ctx context.Context, appRoot, mainClass string, classPath []string, opts ...BuildOption) (*Index, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(classPath) > index.MaxCount {
		return nil, fmt.Errorf("%w: %d search-path entries", ErrTooLarge, len(classPath))
	}

	b := &builder{cfg: cfg, logger: cfg.logger}
	b.log().Info("building index", "entries", len(classPath), "parent_first", len(cfg.parentFirst))

	idx := &Index{
		MainClass:            mainClass,
		Entries:              make([]IndexEntry, len(classPath)),
		NonExistentResources: slices.Clone(cfg.nonExistent),
	}
	for i, path := range classPath {
		rel, err := filepath.Rel(appRoot, path)
		if err != nil {
			return nil, fmt.Errorf("relativize %s: %w", path, err)
		}
		idx.Entries[i] = IndexEntry{Position: i, Path: filepath.ToSlash(rel)}
	}

	results, err := b.scanAll(ctx, classPath)
	if err != nil {
		return nil, err
	}

	b.reportProgress(StageAggregating, "", 0, len(results))
	idx.Directories, idx.Resources = b.aggregate(idx.Entries, results)

	idx.OverridePackages, err = b.collectPackages(ctx, cfg.parentFirst)
	if err != nil {
		return nil, err
	}

	b.log().Info("index built",
		"entries", len(idx.Entries),
		"directories", len(idx.Directories),
		"resources", len(idx.Resources),
		"override_packages", len(idx.OverridePackages),
	)
	return idx, nil
}

// Write builds the index of classPath and writes it to w.
func Write(ctx context.Context, w io.Writer, appRoot, mainClass string, classPath []string, opts ...BuildOption) error {
	idx, err := Build(ctx, appRoot, mainClass, classPath, opts...)
	if err != nil {
		return err
	}
	_, err = idx.WriteTo(w)
	return err
}

// builder holds state for an index build.
type builder struct {
	cfg    buildConfig
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// reportProgress sends a progress event if a callback is configured.
func (b *builder) reportProgress(stage ProgressStage, path string, done, total int) {
	if b.cfg.progress == nil {
		return
	}
	b.cfg.progress(ProgressEvent{Stage: stage, Path: path, Done: done, Total: total})
}

func (b *builder) workers() int {
	switch {
	case b.cfg.workers < 0:
		return 1
	case b.cfg.workers == 0:
		return runtime.GOMAXPROCS(0)
	default:
		return b.cfg.workers
	}
}

// scanAll scans every archive, storing each result at its position.
func (b *builder) scanAll(ctx context.Context, classPath []string) ([]*scan.Result, error) {
	results := make([]*scan.Result, len(classPath))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for i, path := range classPath {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := scan.ArchiveFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			b.log().Debug("scanned archive",
				"position", i,
				"path", path,
				"directories", len(res.Dirs),
				"indexed_resources", len(res.Indexed()),
				"manifest", res.Manifest != nil,
			)
			b.reportProgress(StageScanning, path, int(done.Add(1)), len(classPath))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// aggregate merges per-archive results in position order. Positions are
// held in bitmaps, so each archive contributes at most once per key and
// every list comes out ascending.
func (b *builder) aggregate(entries []IndexEntry, results []*scan.Result) (dirs, resources map[string][]int) {
	dirSets := make(map[string]*roaring.Bitmap)
	resSets := make(map[string]*roaring.Bitmap)

	for pos, res := range results {
		entries[pos].Manifest = res.Manifest
		entries[pos].Dirs = res.Dirs
		for _, dir := range res.Dirs {
			bitmapFor(dirSets, dir).Add(uint32(pos)) //nolint:gosec // bounded by index.MaxCount
		}
		for _, name := range res.Indexed() {
			bitmapFor(resSets, name).Add(uint32(pos)) //nolint:gosec // bounded by index.MaxCount
		}
	}
	return positions(dirSets), positions(resSets)
}

func bitmapFor(sets map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	bm, ok := sets[key]
	if !ok {
		bm = roaring.New()
		sets[key] = bm
	}
	return bm
}

func positions(sets map[string]*roaring.Bitmap) map[string][]int {
	out := make(map[string][]int, len(sets))
	for key, bm := range sets {
		list := make([]int, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			list = append(list, int(it.Next()))
		}
		out[key] = list
	}
	return out
}

// collectPackages unions the directories of every parent-first entry and
// converts them to dotted package names.
func (b *builder) collectPackages(ctx context.Context, paths []string) ([]string, error) {
	set := make(map[string]struct{})
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dirs, err := scan.Packages(path)
		if err != nil {
			return nil, fmt.Errorf("collect packages of %s: %w", path, err)
		}
		for _, dir := range dirs {
			set[pathutil.PackageName(dir)] = struct{}{}
		}
		b.log().Debug("collected packages", "path", path, "packages", len(dirs))
		b.reportProgress(StageCollecting, path, i+1, len(paths))
	}

	pkgs := make([]string, 0, len(set))
	for pkg := range set {
		pkgs = append(pkgs, pkg)
	}
	slices.Sort(pkgs)
	return pkgs, nil
}
