package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nodegraph/pkg/cache"
	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/hierarchy"
	"github.com/matzehuels/nodegraph/pkg/identity"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

const testSession = `{
  "graph": {"layout_direction": 0},
  "nodes": {
    "0x10": {"name": "root0", "type_": "custom.ports.CustomPortNode"},
    "0x11": {"name": "root0_0"},
    "0x12": {"name": "root0_1"},
    "0x13": {"name": "backdrop", "custom": {"contained_node_ids": ["0x11", "0x12"]}}
  },
  "connections": [
    {"out": ["0x10", "output0"], "in": ["0x11", "input0"]},
    {"out": ["0x10", "output1"], "in": ["0x12", "input0"]}
  ]
}`

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestValidateProjection(t *testing.T) {
	for _, p := range Projections {
		assert.NoError(t, ValidateProjection(p), p)
	}
	err := ValidateProjection("tree")
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeInvalidInput, nerrors.GetCode(err))
}

func TestOptionsDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    Options
		wantErr bool
	}{
		{
			name: "empty",
			opts: Options{},
			want: Options{Projection: ProjectionNeighbors, Format: "json"},
		},
		{
			name: "graph defaults to dot",
			opts: Options{Projection: ProjectionGraph},
			want: Options{Projection: ProjectionGraph, Format: "dot"},
		},
		{
			name: "hierarchy gets node limit",
			opts: Options{Projection: ProjectionHierarchy, Root: "r", Format: "yml"},
			want: Options{Projection: ProjectionHierarchy, Format: "yaml", Root: "r", MaxNodes: hierarchy.DefaultMaxNodes},
		},
		{
			name: "hierarchy options cleared elsewhere",
			opts: Options{Projection: ProjectionLineage, Root: "r", AllRoots: true, MaxNodes: 3},
			want: Options{Projection: ProjectionLineage, Format: "json"},
		},
		{name: "dot for neighbors", opts: Options{Projection: ProjectionNeighbors, Format: "dot"}, wantErr: true},
		{name: "json for graph", opts: Options{Projection: ProjectionGraph, Format: "json"}, wantErr: true},
		{name: "root and all roots", opts: Options{Projection: ProjectionHierarchy, Root: "r", AllRoots: true}, wantErr: true},
		{name: "negative limit", opts: Options{Projection: ProjectionHierarchy, MaxNodes: -1}, wantErr: true},
		{name: "unknown format", opts: Options{Format: "svg"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, nerrors.ErrCodeInvalidInput, nerrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.KeyOpts(), opts.KeyOpts())
			assert.Equal(t, DefaultCacheTTL, opts.CacheTTL)
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Projection: ProjectionHierarchy}
	require.NoError(t, opts.ValidateAndSetDefaults())
	first := opts.KeyOpts()

	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, first, opts.KeyOpts())
}

func TestConvert_Projections(t *testing.T) {
	tests := []struct {
		projection string
		contains   []string
	}{
		{ProjectionNeighbors, []string{`"connected_to": "root0_0"`, `"output_port": "output1"`}},
		{ProjectionLineage, []string{`"root": "root0"`, `"branch": "1"`, `"branch": null`}},
		{ProjectionHierarchy, []string{`"kids": [`, `"name": "root0_1"`}},
		{ProjectionGroups, []string{`"members": [`, `"root0_0",`}},
		{ProjectionGraph, []string{`digraph G`, `"root0" -> "root0_1" [label="output1 -> input0"];`}},
	}

	r := quietRunner(nil)
	for _, tt := range tests {
		t.Run(tt.projection, func(t *testing.T) {
			res, err := r.Convert(context.Background(), []byte(testSession), "test", Options{Projection: tt.projection})
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(res.Output), want)
			}
			assert.Equal(t, 4, res.Stats.NodeCount)
			assert.Equal(t, 2, res.Stats.EdgeCount)
			assert.Equal(t, 2, res.Stats.RootCount)
			assert.NotEmpty(t, res.RunID)
			assert.False(t, res.CacheHit)
		})
	}
}

func TestConvert_AllRoots(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Convert(context.Background(), []byte(testSession), "test",
		Options{Projection: ProjectionHierarchy, AllRoots: true})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Output, []byte("[\n")), "forest should encode as an array")
	assert.Contains(t, string(res.Output), `"name": "backdrop"`)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		code  nerrors.Code
	}{
		{
			name:  "unknown id",
			input: `{"nodes": {"0": {"name": "a"}}, "connections": [{"out": ["0", "o"], "in": ["9", "i"]}]}`,
			code:  nerrors.ErrCodeUnknownID,
		},
		{
			name:  "duplicate name",
			input: `{"nodes": {"0": {"name": "a"}, "1": {"name": "a"}}}`,
			code:  nerrors.ErrCodeDuplicateName,
		},
		{
			name:  "malformed",
			input: `{"nodes": `,
			code:  nerrors.ErrCodeInvalidDocument,
		},
		{
			name:  "cycle",
			input: `{"nodes": {"0": {"name": "A"}, "1": {"name": "B"}}, "connections": [{"out": ["0", "o"], "in": ["1", "i"]}, {"out": ["1", "o"], "in": ["0", "i"]}]}`,
			opts:  Options{Projection: ProjectionHierarchy, Root: "A"},
			code:  nerrors.ErrCodeCycleDetected,
		},
		{
			name:  "missing root",
			input: testSession,
			opts:  Options{Projection: ProjectionHierarchy, Root: "nope"},
			code:  nerrors.ErrCodeRootNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMemCache()
			res, err := quietRunner(c).Convert(context.Background(), []byte(tt.input), "test", tt.opts)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.code, nerrors.GetCode(err), err.Error())
			assert.Zero(t, c.sets, "failed conversions must not be cached")
		})
	}
}

func TestConvert_UnknownIDContext(t *testing.T) {
	input := `{"nodes": {"0": {"name": "a"}}, "connections": [{"out": ["0", "o"], "in": ["ghost", "i"]}]}`
	_, err := quietRunner(nil).Convert(context.Background(), []byte(input), "test", Options{})

	var unk *identity.UnknownIDError
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, "ghost", unk.ID)
	assert.Equal(t, "in", unk.Endpoint)
}

func TestConvert_CycleDoesNotAffectNeighbors(t *testing.T) {
	input := `{"nodes": {"0": {"name": "A"}, "1": {"name": "B"}}, "connections": [{"out": ["0", "o"], "in": ["1", "i"]}, {"out": ["1", "o"], "in": ["0", "i"]}]}`
	r := quietRunner(nil)
	for _, p := range []string{ProjectionNeighbors, ProjectionLineage} {
		_, err := r.Convert(context.Background(), []byte(input), "test", Options{Projection: p})
		assert.NoError(t, err, p)
	}
}

func TestConvert_Cache(t *testing.T) {
	c := newMemCache()
	r := quietRunner(c)
	ctx := context.Background()
	opts := Options{Projection: ProjectionLineage, Format: "yaml"}

	first, err := r.Convert(ctx, []byte(testSession), "test", opts)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, c.sets)

	second, err := r.Convert(ctx, []byte(testSession), "test", opts)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Nil(t, second.Graph)
	assert.Equal(t, first.Output, second.Output, "cached and fresh output must be identical")

	refreshed, err := r.Convert(ctx, []byte(testSession), "test", Options{Projection: ProjectionLineage, Format: "yaml", Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheHit)
	assert.Equal(t, first.Output, refreshed.Output)
	assert.Equal(t, 2, c.sets)

	other, err := r.Convert(ctx, []byte(testSession), "test", Options{Projection: ProjectionNeighbors})
	require.NoError(t, err)
	assert.False(t, other.CacheHit, "different options must not share an entry")
}

func TestConvert_Deterministic(t *testing.T) {
	r := quietRunner(nil)
	a, err := r.Convert(context.Background(), []byte(testSession), "test", Options{})
	require.NoError(t, err)
	b, err := r.Convert(context.Background(), []byte(testSession), "test", Options{})
	require.NoError(t, err)
	assert.Equal(t, a.Output, b.Output)
}

func TestConvert_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quietRunner(nil).Convert(ctx, []byte(testSession), "test", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertFile(t *testing.T) {
	r := quietRunner(nil)
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(testSession), 0o644))

	res, err := r.ConvertFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Output)

	_, err = r.ConvertFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), Options{})
	assert.Equal(t, nerrors.ErrCodeFileNotFound, nerrors.GetCode(err))
}

type recordingHooks struct {
	observability.NoopConversionHooks
	observability.NoopCacheHooks
	mu       sync.Mutex
	parsed   []observability.Stats
	projects []string
	hits     int
	misses   int
}

func (h *recordingHooks) OnParseComplete(_ context.Context, _ string, s observability.Stats, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.parsed = append(h.parsed, s)
	}
}

func (h *recordingHooks) OnConvertComplete(_ context.Context, p string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.projects = append(h.projects, p)
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func TestConvert_Hooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetConversionHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	r := quietRunner(newMemCache())
	for i := 0; i < 2; i++ {
		_, err := r.Convert(context.Background(), []byte(testSession), "test", Options{Projection: ProjectionLineage})
		require.NoError(t, err)
	}

	require.Len(t, h.parsed, 1)
	assert.Equal(t, observability.Stats{Nodes: 4, Edges: 2, Roots: 2}, h.parsed[0])
	assert.Equal(t, []string{ProjectionLineage}, h.projects)
	assert.Equal(t, 1, h.hits)
	assert.Equal(t, 1, h.misses)
}
