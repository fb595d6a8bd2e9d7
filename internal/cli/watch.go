package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	ngio "github.com/matzehuels/nodegraph/pkg/io"
	"github.com/matzehuels/nodegraph/pkg/pipeline"
	"github.com/matzehuels/nodegraph/pkg/session"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "watch <session.json>",
		Short: "Re-convert a session every time it is saved",
		Long: `Convert a session, then watch the file and convert it again after every save.
Conversion errors are reported and the watch keeps running. Stop with Ctrl+C.

Example:
  nodegraph watch session.json -p lineage -o lineage.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, &opts, args[0])
		},
	}
	opts.register(cmd, true)

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, o *convertOpts, path string) error {
	ctx := cmd.Context()
	opts := c.options(cmd, o)

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	w := &watcher{
		runner: runner,
		opts:   opts,
		path:   path,
		output: o.output,
		stdout: cmd.OutOrStdout(),
		prog:   newProgress(c.Logger),
	}
	w.convert(ctx)

	printInfo("Watching %s", StyleHighlight.Render(filepath.Base(path)))
	err = session.Watch(ctx, path, func(_ *session.Document, err error) {
		if err != nil {
			printError("%v", err)
			return
		}
		w.convert(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watcher re-runs one conversion. Events arrive sequentially from the
// watch loop, so it needs no locking.
type watcher struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	path   string
	output string
	stdout io.Writer
	prog   *progress
}

func (w *watcher) convert(ctx context.Context) {
	w.prog.restart()
	res, err := w.runner.ConvertFile(ctx, w.path, w.opts)
	if err == nil {
		err = w.write(res.Output)
	}
	if err != nil {
		printError("%v", err)
		return
	}
	w.prog.done(fmt.Sprintf("Converted %s", filepath.Base(w.path)))
}

func (w *watcher) write(out []byte) error {
	if w.output == "" {
		_, err := w.stdout.Write(out)
		return err
	}
	return ngio.ExportFile(out, w.output)
}
