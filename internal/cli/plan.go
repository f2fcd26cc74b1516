package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/observability"
	"github.com/matzehuels/patchplan/pkg/pipeline"
	"github.com/matzehuels/patchplan/pkg/render"
	"github.com/matzehuels/patchplan/pkg/scenario"
	"github.com/matzehuels/patchplan/pkg/world"
)

// planOpts holds the command-line flags for the plan command. Settings
// flags override the scenario's settings only when given.
type planOpts struct {
	output  string
	formats []string
	noCache bool
	refresh bool
	quiet   bool

	unit         string
	transporter  string
	relay        string
	booster      string
	module       string
	quota        int
	density      string
	flow         string
	quality      string
	conservative bool
	allowForeign bool
	tailExit     bool
}

// formatExt maps output formats to file extensions.
var formatExt = map[string]string{
	pipeline.FormatText: "txt",
	pipeline.FormatJSON: "json",
	pipeline.FormatSVG:  "svg",
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var formatsStr string
	var opts planOpts

	cmd := &cobra.Command{
		Use:   "plan [scenario]",
		Short: "Plan a mining outpost for a scenario file",
		Long: `Plan a mining outpost for a scenario file (.toml, .yaml or .yml).

Units are placed first, then transporters, relays and boosters. With a
single text format and no --output, the plan is printed to stdout.`,
		Example: `  patchplan plan examples/iron.toml
  patchplan plan examples/iron.toml --density sparse -f text,svg -o iron
  patchplan plan examples/uranium.yaml --conservative --booster beacon`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenario,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runPlan(ctx, cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), json, svg (comma-separated)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the plan cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute the plan even if cached")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "only write outputs")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	f.StringVar(&opts.unit, "unit", "", "unit prototype (default: first compatible)")
	f.StringVar(&opts.transporter, "transporter", "", "transporter prototype")
	f.StringVar(&opts.relay, "relay", "", "relay prototype")
	f.StringVar(&opts.booster, "booster", "", "booster prototype")
	f.StringVar(&opts.module, "module", "", "module inserted into boosters")
	f.IntVar(&opts.quota, "quota", pipeline.DefaultBoosterQuota, "boosters wanted per unit")
	f.StringVar(&opts.density, "density", pipeline.DefaultDensity, "unit spacing: dense, sparse")
	f.StringVar(&opts.flow, "flow", pipeline.DefaultFlow, "output direction: north, east, south, west")
	f.StringVar(&opts.quality, "quality", pipeline.DefaultQuality, "quality of placed markers")
	f.BoolVar(&opts.conservative, "conservative", false, "skip positions that need removals instead of clearing them")
	f.BoolVar(&opts.allowForeign, "allow-foreign", false, "allow units over other deposit types")
	f.BoolVar(&opts.tailExit, "tail-exit", false, "close underground lanes with an exit past the last unit")

	return cmd
}

// apply copies the flags the user set onto the scenario options.
func (o *planOpts) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	strs := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"unit", o.unit, &opts.Unit},
		{"transporter", o.transporter, &opts.Transporter},
		{"relay", o.relay, &opts.Relay},
		{"booster", o.booster, &opts.Booster},
		{"module", o.module, &opts.BoosterModule},
		{"density", o.density, &opts.Density},
		{"flow", o.flow, &opts.Flow},
		{"quality", o.quality, &opts.Quality},
	}
	for _, s := range strs {
		if changed(s.flag) {
			*s.dst = s.src
		}
	}
	if changed("quota") {
		opts.BoosterQuota = o.quota
	}
	if changed("conservative") {
		opts.Conservative = o.conservative
	}
	if changed("allow-foreign") {
		opts.AllowForeign = o.allowForeign
	}
	if changed("tail-exit") {
		opts.TailExit = o.tailExit
	}
	opts.Refresh = o.refresh
}

// planRun is everything one plan invocation produced.
type planRun struct {
	name   string
	result *pipeline.Result
	grid   *world.Grid
	field  *deposit.Field
	scene  render.Scene
}

// runPlan loads the scenario, runs the pipeline and writes the outputs.
func (c *CLI) runPlan(ctx context.Context, cmd *cobra.Command, input string, opts *planOpts) error {
	run, err := c.execute(ctx, cmd, input, opts, !opts.quiet)
	if err != nil {
		return err
	}

	artifacts, err := pipeline.Render(run.result, run.scene, opts.formats)
	if err != nil {
		return err
	}

	if !opts.quiet {
		printSuccess("Planned %s", run.name)
		printStats(run.result.Stats, run.result.CacheInfo.PlanHit)
		for _, st := range run.result.Stages {
			printStage(st)
		}
		for _, o := range run.grid.Removed() {
			printDetail("removed %s #%d at %v", o.Name, o.ID, o.Box)
		}
	}

	if len(opts.formats) == 1 && opts.output == "" && opts.formats[0] == pipeline.FormatText {
		_, err := os.Stdout.Write(artifacts[pipeline.FormatText])
		return err
	}
	return writeArtifacts(artifacts, opts.formats, basePath(opts.output, input), opts.output, opts.quiet)
}

// execute loads and runs a scenario. With spin set, a spinner follows the
// stages on stderr.
func (c *CLI) execute(ctx context.Context, cmd *cobra.Command, input string, opts *planOpts, spin bool) (*planRun, error) {
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	sc, err := scenario.Load(input)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	grid, field, options, err := sc.Build(runner.Catalog)
	if err != nil {
		return nil, err
	}
	opts.apply(cmd, &options)
	prog.done(fmt.Sprintf("Loaded scenario %s", sc.Name))

	if spin {
		s := newSpinnerWithContext(ctx, "Planning "+sc.Name+"...")
		s.Start()
		defer s.Stop()
		observability.SetPipelineHooks(spinnerHooks{s})
		defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})
	}

	result, err := runner.Execute(ctx, grid, field, options)
	if err != nil {
		return nil, err
	}
	return &planRun{
		name:   sc.Name,
		result: result,
		grid:   grid,
		field:  field,
		scene:  result.Scene(field, grid.Obstacles(), render.GlyphsFrom(runner.Catalog)),
	}, nil
}

// spinnerHooks shows the stage in progress next to the spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	s *Spinner
}

func (h spinnerHooks) OnPlanComputed(_ context.Context, units, _ int, _ bool, _ time.Duration) {
	h.s.Update(fmt.Sprintf("Placing %d units...", units))
}

func (h spinnerHooks) OnStageComplete(_ context.Context, stage string, placed, _ int, _ time.Duration) {
	h.s.Update(fmt.Sprintf("Placed %d %s...", placed, stage))
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	for _, known := range formatExt {
		if ext == known {
			return strings.TrimSuffix(output, "."+ext)
		}
	}
	return output
}

// writeArtifacts writes one file per format. A single format with an
// explicit output path is written to that path unchanged.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string, quiet bool) error {
	for _, format := range formats {
		path := base + "." + formatExt[format]
		if len(formats) == 1 && output != "" {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		if !quiet {
			printFile(path)
		}
	}
	return nil
}
