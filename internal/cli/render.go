package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/cache"
	chartio "github.com/matzehuels/chartkit/pkg/io"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/pipeline"
	"github.com/matzehuels/chartkit/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple outputs)
	data        string   // data file replacing the spec's data
	formats     []string // output formats: "svg", "png", "pdf", "json", "dot"
	width       float64  // overrides the config width when set
	height      float64  // overrides the config height when set
	title       string   // overrides the config title when set
	scale       float64  // PNG scale factor
	interactive bool     // hover highlighting in SVG
	pinned      bool     // keep chart positions in DOT
	noCache     bool     // disable the local cache
	refresh     bool     // bypass cache reads
	summary     bool     // print a per-layer element table
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [spec]",
		Short: "Render a chart spec to SVG, PNG, PDF, JSON or DOT",
		Long: `Render mounts the chart described by a spec file on an offscreen surface,
applies its data, settles every transition and writes the result.

The spec is a JSON or TOML document with a "config" and a "data" section.
Use --data to take the data from a separate JSON, TOML or CSV file.`,
		Example: `  chartkit render sales.toml
  chartkit render chart.json --data points.csv -f svg,png -o out/chart`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "data file (json, toml or csv) replacing the spec's data")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "surface width (overrides the config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "surface height (overrides the config)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (overrides the config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "add hover highlighting to SVG output")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "pin node positions in DOT output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the local cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results and recompute")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print the settled scene per layer and kind")

	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.MarkFlagFilename("data", dataExts...)

	return cmd
}

// validateFormats checks that all requested formats are known.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'pdf', 'json' or 'dot')", f)
		}
	}
	return nil
}

// runRender loads the spec, runs the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	spec, err := loadSpec(ctx, input, opts.data)
	if err != nil {
		return err
	}
	if opts.width > 0 {
		spec.Config.Width = opts.width
	}
	if opts.height > 0 {
		spec.Config.Height = opts.height
	}
	if opts.title != "" {
		spec.Config.Title = opts.title
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, os.Stderr, "Rendering chart...")
	restore := spinner.Track()
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Config:      spec.Config,
		Data:        spec.Data,
		Formats:     opts.formats,
		Scale:       opts.scale,
		Interactive: opts.interactive,
		Pinned:      opts.pinned,
		Refresh:     opts.refresh,
		Logger:      logger,
	})
	spinner.Stop()
	restore()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printError("Render failed")
		return err
	}
	prog.done(fmt.Sprintf("Settled %d points", result.Stats.Points))
	if nc, ok := runner.Cache.(*cache.NullCache); ok {
		writes, size := nc.Dropped()
		logger.Debug("cache disabled", "dropped_writes", writes, "dropped_bytes", size)
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s chart", result.Scene.Kind)
	printStats(result.Stats, result.CacheInfo)
	printSkipped(result.Warnings)
	for _, p := range paths {
		printFile(p)
	}
	if opts.summary {
		printNewline()
		fmt.Fprintln(stdout, sceneTable(result.Scene))
	}
	return nil
}

// loadSpec reads the spec at path and, when dataPath is set, replaces its
// data with the contents of that file.
func loadSpec(ctx context.Context, path, dataPath string) (chartio.Spec, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLoadStart(ctx, path)

	spec, err := chartio.ImportSpec(path)
	if err == nil && dataPath != "" {
		spec.Data, err = chartio.ImportData(dataPath)
	}
	hooks.OnLoadComplete(ctx, path, len(spec.Data), time.Since(start), err)
	if err != nil {
		return chartio.Spec{}, err
	}
	loggerFromContext(ctx).Debug("loaded spec", "path", path, "kind", spec.Config.Kind, "points", len(spec.Data))
	return spec, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(ext); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where the artifact for format is written. A single
// requested format honors an explicit output path as given.
func outputPath(format string, formats []string, output, input string) string {
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return basePath(output, input) + "." + format
}

// writeArtifacts writes each artifact next to the input (or under output)
// in the requested order and returns the written paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		f, _ := render.ParseFormat(f)
		if !slices.Contains(names, string(f)) {
			names = append(names, string(f))
		}
	}

	paths := make([]string, 0, len(names))
	for _, f := range names {
		b, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("missing %s artifact", f)
		}
		path := outputPath(f, names, output, input)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// sceneTable tabulates the settled scene by layer and element kind.
func sceneTable(sc render.Scene) string {
	type row struct{ layer, kind string }
	counts := make(map[row]int)
	var order []row
	for _, el := range sc.Elements {
		r := row{el.Layer, string(el.Kind)}
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}

	rows := make([][]string, 0, len(order))
	for _, r := range order {
		rows = append(rows, []string{r.layer, r.kind, fmt.Sprint(counts[r])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layer", "Kind", "Elements").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return StyleNumber
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
