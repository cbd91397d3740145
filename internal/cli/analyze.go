package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanparty/pkg/clique"
	"github.com/matzehuels/lanparty/pkg/config"
	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	"github.com/matzehuels/lanparty/pkg/graph"
	lpio "github.com/matzehuels/lanparty/pkg/io"
	"github.com/matzehuels/lanparty/pkg/pipeline"
)

// analysisFlags are the flags shared by every command that runs the pipeline.
// Unset flags fall back to the [analysis] section of the config file.
type analysisFlags struct {
	prefix   string
	all      bool
	strategy string
	workers  int
	noCache  bool
	refresh  bool
	verify   bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.prefix, "prefix", "p", pipeline.DefaultPrefix, "only count triangles with a name starting with this prefix")
	fs.BoolVar(&f.all, "all", false, "count every triangle (ignore --prefix)")
	fs.StringVarP(&f.strategy, "strategy", "s", string(clique.StrategyGreedy), "clique search: greedy, exact")
	fs.IntVarP(&f.workers, "workers", "w", 0, "clique search workers (0 = GOMAXPROCS)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	fs.BoolVar(&f.verify, "verify", false, "cross-check results with independent algorithms")
}

// options merges the flags with the config file. Explicit flags win.
func (f *analysisFlags) options(cmd *cobra.Command, cfg config.Analysis) pipeline.Options {
	opts := pipeline.Options{
		Prefix:     f.prefix,
		All:        f.all,
		Strategy:   clique.Strategy(f.strategy),
		Workers:    f.workers,
		NameLength: cfg.NameLength,
		Refresh:    f.refresh,
		Verify:     f.verify,
	}
	fs := cmd.Flags()
	if !fs.Changed("prefix") {
		opts.Prefix = cfg.Prefix
	}
	if !fs.Changed("strategy") && cfg.Strategy != "" {
		opts.Strategy = clique.Strategy(cfg.Strategy)
	}
	if !fs.Changed("workers") {
		opts.Workers = cfg.Workers
	}
	return opts
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags analysisFlags
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Count triangles and find the LAN party",
		Long: `Analyze reads a LAN map and prints both answers: the number of triangles
with at least one computer name starting with --prefix, and the password of
the LAN party (the members of the largest clique, sorted and comma-joined).

The default greedy clique search is fast but can miss the true maximum on
some maps; use --strategy exact for a guaranteed answer.

Use "-" to read from standard input. Files ending in .json are read as a
graph export.`,
		Example: `  lanparty analyze input.txt
  lanparty analyze --strategy exact --json input.txt
  cat input.txt | lanparty analyze --all -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.analyze(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return graph.WriteReport(res.Report, out)
			}
			printReport(out, res.Report)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	return cmd
}

// analyze reads path and runs the full pipeline.
func (c *CLI) analyze(cmd *cobra.Command, path string, flags *analysisFlags) (*pipeline.Result, error) {
	ctx := cmd.Context()
	lines, err := readInput(ctx, cmd, path)
	if err != nil {
		return nil, err
	}

	runner := c.newRunner(ctx, flags.noCache)
	defer runner.Close()

	return runner.Execute(ctx, lines, flags.options(cmd, c.Config.Analysis))
}

// readInput loads the edge lines at path, or standard input for "-".
func readInput(ctx context.Context, cmd *cobra.Command, path string) ([]string, error) {
	prog := newProgress(loggerFromContext(ctx))

	var lines []string
	var err error
	if path == lpio.StdinPath {
		lines, err = lpio.ReadLines(cmd.InOrStdin())
	} else {
		lines, err = lpio.ImportLines(path)
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, lperrors.Wrap(lperrors.ErrCodeFileNotFound, err, "input not found")
	case err != nil:
		return nil, lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "cannot read input")
	}

	prog.done(fmt.Sprintf("Loaded %d links from %s", len(lines), displayPath(path)))
	return lines, nil
}

func displayPath(path string) string {
	if path == lpio.StdinPath {
		return "stdin"
	}
	return path
}
