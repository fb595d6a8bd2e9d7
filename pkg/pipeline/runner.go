package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nodegraph/pkg/cache"
	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	ngio "github.com/matzehuels/nodegraph/pkg/io"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

const cacheKeyType = "conversion"

// Runner encapsulates conversion with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store conversion results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ConvertFile reads the session at path and converts it.
func (r *Runner) ConvertFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nerrors.Wrap(nerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := r.Convert(ctx, data, path, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Convert runs parse → project → encode on session bytes with caching.
// source names the input in logs and hook events.
//
// No partial output is ever returned: on error Result is nil.
func (r *Runner) Convert(ctx context.Context, data []byte, source string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(data),
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}
	logger = logger.With("run", result.RunID[:8])
	cacheKey := r.Keyer.ConversionKey(result.InputHash, opts.KeyOpts())

	if !opts.Refresh {
		if out, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			logger.Debug("cache hit", "projection", opts.Projection, "format", opts.Format)
			result.Output = out
			result.CacheHit = true
			return result, nil
		} else if err != nil {
			logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	// Stage 1: Parse
	parseStart := time.Now()
	doc, g, err := Parse(ctx, data, source)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.RootCount = len(g.Roots())

	logger.Debug("parsed session",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"roots", result.Stats.RootCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Project
	projectStart := time.Now()
	view, err := Project(ctx, doc, g, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Projection, err)
	}
	result.Stats.ProjectTime = time.Since(projectStart)

	// Stage 3: Encode
	encodeStart := time.Now()
	out, err := ngio.Encode(view, ngio.Format(opts.Format))
	if err != nil {
		return nil, err
	}
	result.Output = out
	result.Stats.EncodeTime = time.Since(encodeStart)

	logger.Info("converted",
		"projection", opts.Projection,
		"format", opts.Format,
		"bytes", len(out),
		"duration", time.Since(parseStart))

	if err := r.Cache.Set(ctx, cacheKey, out, opts.CacheTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(out))
	}

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
