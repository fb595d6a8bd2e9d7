// Package pipeline provides the parse → project → encode pipeline behind
// every nodegraph command.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode the session document and build the directed graph
//  2. Project: derive the requested view (hierarchy, neighbors, lineage,
//     groups, or the graph itself)
//  3. Encode: serialize the view as JSON, YAML or DOT
//
// The encoded bytes of a run are cached under a key derived from the
// content hash of the input and the options, so converting an unchanged
// session again skips all three stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ConvertFile(ctx, "session.json", pipeline.Options{
//	    Projection: pipeline.ProjectionLineage,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Output)
//
// Run individual stages:
//
//	doc, g, err := pipeline.Parse(ctx, data, "session.json")
//	view, err := pipeline.Project(ctx, doc, g, opts)
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodegraph/pkg/cache"
	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/hierarchy"
	ngio "github.com/matzehuels/nodegraph/pkg/io"
)

// Projection names.
const (
	ProjectionHierarchy = "hierarchy"
	ProjectionNeighbors = "neighbors"
	ProjectionLineage   = "lineage"
	ProjectionGroups    = "groups"
	ProjectionGraph     = "graph"
)

// Projections lists the projection names in help order.
var Projections = []string{
	ProjectionHierarchy,
	ProjectionNeighbors,
	ProjectionLineage,
	ProjectionGroups,
	ProjectionGraph,
}

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultProjection is used when Options.Projection is empty.
	DefaultProjection = ProjectionNeighbors

	// DefaultCacheTTL is how long converted output stays cached.
	DefaultCacheTTL = 24 * time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options configures a conversion.
type Options struct {
	Projection string `json:"projection"`
	Format     string `json:"format,omitempty"`

	// Hierarchy options
	Root     string `json:"root,omitempty"`
	AllRoots bool   `json:"all_roots,omitempty"`
	MaxNodes int    `json:"max_nodes,omitempty"`

	// Cache options
	Refresh  bool          `json:"refresh,omitempty"`
	CacheTTL time.Duration `json:"-"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a conversion.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// InputHash is the SHA-256 of the session bytes.
	InputHash string

	// Output is the encoded projection.
	Output []byte

	// Graph is the parsed graph. Nil when the output came from the cache.
	Graph *graph.Graph

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Output came from the cache.
	CacheHit bool
}

// Stats contains conversion statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	RootCount   int
	ParseTime   time.Duration
	ProjectTime time.Duration
	EncodeTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateProjection checks that a projection name is known.
func ValidateProjection(p string) error {
	if !slices.Contains(Projections, p) {
		return nerrors.New(nerrors.ErrCodeInvalidInput, "invalid projection: %q (must be one of: %s)",
			p, strings.Join(Projections, ", "))
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
//
// The graph projection is only available as DOT and DOT only for the graph
// projection. Hierarchy-only options are cleared for other projections so
// that they do not split the cache.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Projection == "" {
		o.Projection = DefaultProjection
	}
	if err := ValidateProjection(o.Projection); err != nil {
		return err
	}

	if o.Format == "" {
		o.Format = string(ngio.FormatJSON)
		if o.Projection == ProjectionGraph {
			o.Format = string(ngio.FormatDOT)
		}
	}
	f, err := ngio.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = string(f)
	if (f == ngio.FormatDOT) != (o.Projection == ProjectionGraph) {
		return nerrors.New(nerrors.ErrCodeInvalidInput,
			"format %s is not available for the %s projection", f, o.Projection)
	}

	if o.Projection == ProjectionHierarchy {
		if o.MaxNodes < 0 {
			return nerrors.New(nerrors.ErrCodeInvalidInput, "max nodes must not be negative")
		}
		if o.MaxNodes == 0 {
			o.MaxNodes = hierarchy.DefaultMaxNodes
		}
		if o.AllRoots && o.Root != "" {
			return nerrors.New(nerrors.ErrCodeInvalidInput, "--root and --all-roots are mutually exclusive")
		}
	} else {
		o.Root, o.AllRoots, o.MaxNodes = "", false, 0
	}

	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	o.validated = true
	return nil
}

// KeyOpts returns the cache key options for the conversion.
func (o *Options) KeyOpts() cache.ConversionKeyOpts {
	return cache.ConversionKeyOpts{
		Projection: o.Projection,
		Format:     o.Format,
		Root:       o.Root,
		AllRoots:   o.AllRoots,
		MaxNodes:   o.MaxNodes,
	}
}
