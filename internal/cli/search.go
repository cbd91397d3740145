package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanparty/pkg/clique"
)

// trianglesCommand creates the triangles command.
func (c *CLI) trianglesCommand() *cobra.Command {
	var flags analysisFlags
	var list bool

	cmd := &cobra.Command{
		Use:   "triangles <file>",
		Short: "Count triangles of interconnected computers",
		Long: `Triangles prints the number of sets of three computers that are all
connected to each other and where at least one name starts with --prefix.

With --list every matching triangle is printed, one per line, names sorted
within the triangle and triangles sorted overall.`,
		Example: `  lanparty triangles input.txt
  lanparty triangles --prefix k --list input.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return c.listTriangles(cmd, args[0], &flags)
			}
			res, err := c.analyze(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Report.Triangles)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print every matching triangle")

	return cmd
}

// listTriangles enumerates triangles instead of counting them. It bypasses
// the cache because the report does not store the triangles themselves.
func (c *CLI) listTriangles(cmd *cobra.Command, path string, flags *analysisFlags) error {
	ctx := cmd.Context()
	lines, err := readInput(ctx, cmd, path)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, true)
	defer runner.Close()

	opts := flags.options(cmd, c.Config.Analysis)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	g, _, err := runner.Build(ctx, lines, opts)
	if err != nil {
		return err
	}

	var triangles []string
	clique.EachTriangle(g, opts.Predicate(), func(t clique.Triplet) bool {
		names := t.Names(g)
		slices.Sort(names[:])
		triangles = append(triangles, strings.Join(names[:], ","))
		return ctx.Err() == nil
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	slices.Sort(triangles)

	out := cmd.OutOrStdout()
	for _, t := range triangles {
		fmt.Fprintln(out, t)
	}
	loggerFromContext(ctx).Info("listed triangles", "count", len(triangles), "filter", opts.Filter())
	return nil
}

// cliqueCommand creates the clique command.
func (c *CLI) cliqueCommand() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:     "clique <file>",
		Aliases: []string{"password"},
		Short:   "Print the LAN party password",
		Long: `Clique finds the largest set of computers that are all connected to each
other and prints their names, sorted and joined with commas.

The default greedy search may return a smaller clique than the true maximum;
use --strategy exact when the answer must be optimal.`,
		Example: `  lanparty clique input.txt
  lanparty clique --strategy exact input.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.analyze(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Report.Password)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
