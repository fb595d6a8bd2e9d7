package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/groups"
	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <session.json>",
		Short: "Summarise the graph of a session",
		Long: `Print node, edge and root counts of a session, the roots with the size of
their lineage, the groups, and the first cycle found if the graph has one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0])
		},
	}
}

func (c *CLI) runInspect(cmd *cobra.Command, path string) error {
	data, err := readSession(path)
	if err != nil {
		return err
	}
	doc, g, err := pipeline.Parse(cmd.Context(), data, path)
	if err != nil {
		return err
	}
	gm, err := groups.Project(doc, g)
	if err != nil {
		return err
	}

	printInfo("%s", StyleTitle.Render(path))
	printKeyValue("nodes", strconv.Itoa(g.NodeCount()))
	printKeyValue("connections", strconv.Itoa(g.EdgeCount()))
	printKeyValue("roots", strconv.Itoa(len(g.Roots())))
	printKeyValue("sinks", strconv.Itoa(len(g.Sinks())))
	printKeyValue("groups", strconv.Itoa(gm.Len()))

	if roots := rootInfos(g); len(roots) > 0 {
		printNewline()
		fmt.Fprintln(statusOut, rootsTable(roots, 0, -1).Render())
	}

	if cycle := g.FindCycle(); cycle != nil {
		printNewline()
		printWarning("cycle: %s", strings.Join(cycle, " → "))
		printDetail("the hierarchy projection fails on nodes that reach this cycle")
	}
	return nil
}

// readSession reads a session file, reporting a missing file with its code.
func readSession(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nerrors.Wrap(nerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
