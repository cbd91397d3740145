package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanparty/pkg/pipeline"
	"github.com/matzehuels/lanparty/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string  // output file path; empty derives it from the input or uses stdout
	format      string  // dot, svg, png, pdf, json or edges
	engine      string  // graphviz layout engine
	detailed    bool    // add ID and degree to node labels
	noHighlight bool    // draw the clique like every other node
	scale       float64 // PNG scale factor
}

// textFormats are written to stdout when no output path is given.
var textFormats = map[string]bool{
	pipeline.FormatDOT:   true,
	pipeline.FormatJSON:  true,
	pipeline.FormatEdges: true,
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags analysisFlags
	opts := renderOpts{
		format: pipeline.FormatDOT,
		scale:  pipeline.DefaultPNGScale,
	}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render the LAN map with the LAN party highlighted",
		Long: `Render draws the LAN map as a node-link diagram. Members of the clique
found by the selected strategy are filled and their links drawn bold.

DOT, JSON and edge-list output go to stdout unless -o is given. SVG, PNG and
PDF are written next to the input file by default. PNG and PDF require
rsvg-convert (librsvg).`,
		Example: `  lanparty render input.txt | dot -Tsvg > lan.svg
  lanparty render --format svg --engine circo input.txt
  lanparty render --format png -o lan.png --strategy exact input.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &flags, &opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (\"-\" for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png, pdf, json, edges")
	cmd.Flags().StringVar(&opts.engine, "engine", string(nodelink.EngineNeato), "graphviz layout: neato, dot, circo, fdp")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and degrees")
	cmd.Flags().BoolVar(&opts.noHighlight, "no-highlight", false, "do not highlight the clique")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

// runRender analyses the input and renders the result.
func (c *CLI) runRender(cmd *cobra.Command, input string, flags *analysisFlags, opts *renderOpts) error {
	ctx := cmd.Context()
	engine, err := nodelink.ParseEngine(opts.engine)
	if err != nil {
		return err
	}

	lines, err := readInput(ctx, cmd, input)
	if err != nil {
		return err
	}
	runner := c.newRunner(ctx, flags.noCache)
	defer runner.Close()

	res, err := runner.Execute(ctx, lines, flags.options(cmd, c.Config.Analysis))
	if err != nil {
		return err
	}

	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s", opts.format))
	spin.Start()
	data, err := runner.Render(ctx, res, pipeline.RenderOptions{
		Format:    opts.format,
		Engine:    engine,
		Highlight: !opts.noHighlight,
		Detailed:  opts.detailed,
		Scale:     opts.scale,
	})
	spin.Stop()
	if err != nil {
		return err
	}

	path := outputPath(opts.output, input, opts.format)
	out, err := openOutput(path, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if path != "" && path != "-" {
		printSuccess(cmd.ErrOrStderr(), "Rendered %s (%d bytes)", opts.format, len(data))
		printFile(cmd.ErrOrStderr(), path)
	}
	return nil
}

// outputPath picks where a rendering goes. An explicit output wins; text
// formats default to stdout (""); binary formats default to the input path
// with its extension replaced, or "lanparty.<format>" for stdin input.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	if textFormats[format] {
		return ""
	}
	if input == "-" {
		return "lanparty." + format
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
