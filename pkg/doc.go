// Package pkg provides the core libraries for nodegraph session conversion.
//
// # Overview
//
// nodegraph turns a node-editor session, where nodes are keyed by opaque
// ids and connections join output ports to input ports, into documents
// keyed by node name. The pkg directory is organized by stage:
//
//  1. [session] - the input document model, its validation and file watcher
//  2. [identity] and [graph] - id↔name resolution and the directed multigraph
//  3. [hierarchy], [neighbor], [lineage], [groups] - the projections
//  4. [io] - JSON, YAML and DOT encoding plus atomic file export
//  5. [pipeline] - orchestration (parse → project → encode) with caching
//
// # Architecture
//
// The data flow through nodegraph:
//
//	session.json
//	     ↓
//	[session] package (decode + validate, node order preserved)
//	     ↓
//	[graph] package (resolve ids to names, build the multigraph)
//	     ↓
//	[hierarchy] / [neighbor] / [lineage] / [groups]
//	     ↓
//	[io] package (JSON / YAML / DOT)
//
// # Quick Start
//
//	doc, err := session.ImportJSON("session.json")
//	if err != nil {
//	    return err
//	}
//	g, err := graph.Build(doc)
//	if err != nil {
//	    return err
//	}
//	out, err := io.Encode(lineage.Annotate(g), io.FormatJSON)
//
// Or run the whole pipeline, with caching:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.ConvertFile(ctx, "session.json", pipeline.Options{
//	    Projection: pipeline.ProjectionLineage,
//	})
//
// # Supporting Packages
//
//   - [errors] - error codes shared by every package
//   - [cache] - content-addressed output cache
//   - [config] - TOML defaults for the CLI
//   - [observability] - conversion and cache hooks, with a Prometheus backend
//   - [ordered] - insertion-ordered maps for deterministic output
//   - [buildinfo] - version information set at build time
//
// [session]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/session
// [identity]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/identity
// [graph]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/graph
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/hierarchy
// [neighbor]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/neighbor
// [lineage]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/lineage
// [groups]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/groups
// [io]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/errors
// [cache]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/observability
// [ordered]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/ordered
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/buildinfo
package pkg
