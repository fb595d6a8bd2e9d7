package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	ngio "github.com/matzehuels/nodegraph/pkg/io"
	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// convertOpts holds the command-line flags shared by convert, the
// projection shortcuts and watch.
type convertOpts struct {
	projection string // projection name
	format     string // json, yaml or dot
	root       string // hierarchy root name
	allRoots   bool   // one hierarchy per root
	maxNodes   int    // hierarchy expansion limit
	output     string // output file path (stdout if empty)
	noCache    bool   // disable the conversion cache
	refresh    bool   // recompute and overwrite the cached entry
	pick       bool   // choose the hierarchy root interactively
}

func (o *convertOpts) register(cmd *cobra.Command, withProjection bool) {
	f := cmd.Flags()
	if withProjection {
		f.StringVarP(&o.projection, "projection", "p", pipeline.DefaultProjection,
			"projection: "+strings.Join(pipeline.Projections, ", "))
	}
	f.StringVarP(&o.format, "format", "f", "", "output format: json, yaml, dot (default json, dot for graph)")
	f.StringVarP(&o.output, "output", "o", "", "output file (stdout if empty)")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the conversion cache")
	f.BoolVar(&o.refresh, "refresh", false, "bypass cached output")
	if withProjection || o.projection == pipeline.ProjectionHierarchy {
		f.StringVarP(&o.root, "root", "r", "", "hierarchy root node name (default first root)")
		f.BoolVar(&o.allRoots, "all-roots", false, "emit one hierarchy per root")
		f.IntVar(&o.maxNodes, "max-nodes", 0, "maximum nodes in an expanded hierarchy (default 100000)")
	}
}

// options merges flags over the config file. Only flags given on the
// command line override config values.
func (c *CLI) options(cmd *cobra.Command, o *convertOpts) pipeline.Options {
	cfg := c.config.Convert
	flags := cmd.Flags()
	changed := func(name string) bool {
		fl := flags.Lookup(name)
		return fl != nil && fl.Changed
	}

	opts := pipeline.Options{
		Projection: cfg.Projection,
		Format:     cfg.Format,
		Root:       cfg.Root,
		MaxNodes:   cfg.MaxNodes,
		CacheTTL:   c.config.Cache.TTL.Duration,
		Refresh:    o.refresh,
		AllRoots:   o.allRoots,
	}
	if flags.Lookup("projection") == nil || changed("projection") {
		opts.Projection = o.projection
	}
	if changed("root") {
		opts.Root = o.root
	}
	if changed("max-nodes") {
		opts.MaxNodes = o.maxNodes
	}
	if opts.AllRoots && !changed("root") {
		opts.Root = ""
	}

	switch {
	case changed("format"):
		opts.Format = o.format
	case o.output != "":
		if f, err := ngio.ParseFormat(strings.TrimPrefix(filepath.Ext(o.output), ".")); err == nil {
			opts.Format = string(f)
		}
	}
	if !changed("format") && opts.Format != "" {
		// A configured format that the projection cannot produce falls back
		// to the projection's default.
		isDOT := opts.Format == string(ngio.FormatDOT)
		if isDOT != (opts.Projection == pipeline.ProjectionGraph) {
			opts.Format = ""
		}
	}
	return opts
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <session.json>",
		Short: "Convert a session into a graph document",
		Long: `Convert a node-editor session into one of the graph projections.

Projections:
  hierarchy  nested tree expanded from a root node
  neighbors  per-node inputs and outputs keyed by node name
  lineage    neighbors plus the root and branch each node descends from
  groups     backdrop nodes and the nodes they contain
  graph      the directed graph itself, as Graphviz DOT

Examples:
  nodegraph convert session.json
  nodegraph convert session.json -p lineage -f yaml -o lineage.yaml
  nodegraph convert session.json -p hierarchy -r Read1
  nodegraph convert session.json -p graph | dot -Tsvg > graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, &opts, args[0])
		},
	}
	opts.register(cmd, true)
	_ = cmd.RegisterFlagCompletionFunc("projection", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.Projections, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, len(ngio.Formats))
		for i, f := range ngio.Formats {
			formats[i] = string(f)
		}
		return formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// projectionCommand creates a shortcut for "convert -p <projection>".
func (c *CLI) projectionCommand(projection string) *cobra.Command {
	opts := convertOpts{projection: projection}

	cmd := &cobra.Command{
		Use:   projection + " <session.json>",
		Short: fmt.Sprintf("Convert a session into its %s projection", projection),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, &opts, args[0])
		},
	}
	opts.register(cmd, false)
	if projection == pipeline.ProjectionHierarchy {
		cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the root interactively when there are several")
	}

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, o *convertOpts, path string) error {
	ctx := cmd.Context()
	opts := c.options(cmd, o)

	if o.pick && opts.Root == "" && !opts.AllRoots {
		root, err := c.pickRoot(ctx, path)
		if err != nil {
			return err
		}
		opts.Root = root
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if o.output != "" {
		spinner = newSpinner(ctx, "Converting "+filepath.Base(path)+"...")
		spinner.Start()
	}
	res, err := runner.ConvertFile(ctx, path, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if o.output == "" {
		_, err := cmd.OutOrStdout().Write(res.Output)
		return err
	}
	if err := ngio.ExportFile(res.Output, o.output); err != nil {
		return err
	}
	printSuccess("Converted %s", StyleHighlight.Render(filepath.Base(path)))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
	printFile(o.output)
	return nil
}

// pickRoot offers the graph's roots in an interactive list. A graph with a
// single root needs no choice.
func (c *CLI) pickRoot(ctx context.Context, path string) (string, error) {
	data, err := readSession(path)
	if err != nil {
		return "", err
	}
	_, g, err := pipeline.Parse(ctx, data, path)
	if err != nil {
		return "", err
	}

	roots := g.Roots()
	switch len(roots) {
	case 0:
		return "", nil
	case 1:
		return roots[0].Name, nil
	}

	printInfo("Found %d roots", len(roots))
	printNewline()
	root, err := runRootPicker(ctx, g)
	if err != nil {
		return "", err
	}
	if root == "" {
		return "", errNoSelection
	}
	return root, nil
}

var errNoSelection = errors.New("no root selected")

// ExitCode maps an error to the process exit status: 130 when the run
// was interrupted, 1 for any other failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// ErrorMessage formats err for the terminal, with its code when it has one.
func ErrorMessage(err error) string {
	msg := styleIconError.Render(iconError) + " " + err.Error()
	if code := nerrors.GetCode(err); code != "" {
		msg += " " + StyleDim.Render("["+string(code)+"]")
	}
	return msg
}
