package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rfkit/rfkit/pkg/events"
	rfio "github.com/rfkit/rfkit/pkg/io"
	"github.com/rfkit/rfkit/pkg/plot"
	"github.com/rfkit/rfkit/pkg/seis"
)

// plotOpts holds the flags shared by the plot subcommands.
type plotOpts struct {
	output  string  // output SVG path; empty derives it from the first input
	scale   float64 // peak amplitude scaling
	width   float64 // figure width in inches
	fillPos string  // fill color for positive lobes
	fillNeg string  // fill color for negative lobes
	trim    string  // time window around the onset, "start:end" in seconds
}

// plotCommand creates the plot command with its figure-type subcommands.
func (c *CLI) plotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render receiver function figures from stream files",
	}

	cmd.AddCommand(c.plotStackCommand())
	cmd.AddCommand(c.plotProfileCommand())
	cmd.AddCommand(c.plotMapCommand())

	return cmd
}

// addPlotFlags registers the shared geometry flags, seeded from the config.
func (c *CLI) addPlotFlags(cmd *cobra.Command, opts *plotOpts) {
	opts.scale = c.Config.Plot.Scale
	opts.width = c.Config.Plot.FigWidth
	opts.fillPos = c.Config.Plot.FillPos
	opts.fillNeg = c.Config.Plot.FillNeg

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output SVG file")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "amplitude scale")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "figure width in inches")
	cmd.Flags().StringVar(&opts.fillPos, "fill-pos", opts.fillPos, "fill color for positive lobes")
	cmd.Flags().StringVar(&opts.fillNeg, "fill-neg", opts.fillNeg, "fill color for negative lobes")
	cmd.Flags().StringVar(&opts.trim, "trim", "", "time window around onset, start:end seconds")
}

// plotStackCommand creates the "plot stack" subcommand.
func (c *CLI) plotStackCommand() *cobra.Command {
	var opts plotOpts
	var downsample float64
	var noTitle, noInfo bool

	cmd := &cobra.Command{
		Use:   "stack [file...]",
		Short: "Render stacked receiver function traces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStreams(args)
			if err != nil {
				return err
			}
			trim, err := parseWindow(opts.trim)
			if err != nil {
				return err
			}
			svg, err := plot.RenderStack(cmd.Context(), st, plot.StackOptions{
				Scale:      opts.scale,
				FigWidth:   opts.width,
				FillPos:    opts.fillPos,
				FillNeg:    opts.fillNeg,
				Trim:       trim,
				Downsample: downsample,
				NoTitle:    noTitle,
				NoInfo:     noInfo,
				Logger:     c.Logger,
			})
			if err != nil {
				return err
			}
			return writeFigure(cmd.Context(), svg, outputPath(opts.output, args[0]), len(st))
		},
	}

	c.addPlotFlags(cmd, &opts)
	cmd.Flags().Float64Var(&downsample, "downsample", 0, "decimate traces to at most this rate in Hz")
	cmd.Flags().BoolVar(&noTitle, "no-title", false, "omit the title annotation")
	cmd.Flags().BoolVar(&noInfo, "no-info", false, "omit the info column")

	return cmd
}

// plotProfileCommand creates the "plot profile" subcommand.
func (c *CLI) plotProfileCommand() *cobra.Command {
	var opts plotOpts
	var height float64
	var topHist bool
	var depthTicksStr string

	cmd := &cobra.Command{
		Use:   "profile [file...]",
		Short: "Render box-stacked traces along a profile line",
		Long: `Profile renders traces that carry box geometry (position and length
along a profile line) as vertical wiggles, time increasing downward.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStreams(args)
			if err != nil {
				return err
			}
			trim, err := parseWindow(opts.trim)
			if err != nil {
				return err
			}
			ticks, err := parseDepthTicks(depthTicksStr)
			if err != nil {
				return err
			}
			svg, err := plot.RenderProfile(cmd.Context(), st, plot.ProfileOptions{
				Scale:      opts.scale,
				FigWidth:   opts.width,
				FigHeight:  height,
				FillPos:    opts.fillPos,
				FillNeg:    opts.fillNeg,
				Trim:       trim,
				TopHist:    topHist,
				DepthTicks: ticks,
			})
			if err != nil {
				return err
			}
			return writeFigure(cmd.Context(), svg, outputPath(opts.output, args[0]), len(st))
		},
	}

	c.addPlotFlags(cmd, &opts)
	cmd.Flags().Float64Var(&height, "height", 5, "figure height in inches")
	cmd.Flags().BoolVar(&topHist, "top-hist", false, "draw a trace-count histogram above the profile")
	cmd.Flags().StringVar(&depthTicksStr, "depth-ticks", "", "depth axis ticks, depth:time pairs (e.g. 30:3.5,50:5.9)")

	return cmd
}

// plotMapCommand creates the "plot map" subcommand.
func (c *CLI) plotMapCommand() *cobra.Command {
	var opts plotOpts
	var mapType string
	var depth float64
	var noLabels bool

	cmd := &cobra.Command{
		Use:   "map [file...]",
		Short: "Render a station or piercing point map",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadStreams(args)
			if err != nil {
				return err
			}
			if len(st) == 0 {
				printWarning("Nothing to plot")
				return nil
			}
			mopts := plot.MapOptions{FigSize: opts.width, NoLabels: noLabels}
			marks := stationMarks(st)

			var svg []byte
			switch mapType {
			case "stations":
				svg, err = plot.RenderStationMap(cmd.Context(), marks, mopts)
			case "piercing":
				var points [][2]float64
				points, err = events.PiercingPoints(st, depth, st[0].Stats.Phase)
				if err != nil {
					return err
				}
				svg, err = plot.RenderPiercingMap(cmd.Context(), points, marks, mopts)
			default:
				return fmt.Errorf("invalid map type: %s (must be 'stations' or 'piercing')", mapType)
			}
			if err != nil {
				return err
			}
			return writeFigure(cmd.Context(), svg, outputPath(opts.output, args[0]), len(st))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output SVG file")
	cmd.Flags().Float64Var(&opts.width, "width", 5, "figure edge in inches")
	cmd.Flags().StringVarP(&mapType, "type", "t", "stations", "map type: stations, piercing")
	cmd.Flags().Float64Var(&depth, "depth", 50, "piercing depth in km")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "omit station labels")

	return cmd
}

// loadStreams reads and concatenates stream JSON files.
func loadStreams(paths []string) (seis.Stream, error) {
	var st seis.Stream
	for _, path := range paths {
		s, err := rfio.ImportJSON(path)
		if err != nil {
			return nil, err
		}
		st = append(st, s...)
	}
	return st, nil
}

// stationMarks collects the distinct stations of a stream.
func stationMarks(st seis.Stream) []plot.StationMark {
	seen := map[string]bool{}
	var marks []plot.StationMark
	for _, tr := range st {
		s := &tr.Stats
		id := s.Network + "." + s.Station
		if seen[id] {
			continue
		}
		seen[id] = true
		marks = append(marks, plot.StationMark{
			Label: s.Station,
			Lat:   s.StationLatitude,
			Lon:   s.StationLongitude,
		})
	}
	return marks
}

// writeFigure writes the rendered SVG, reporting an empty render instead of
// creating an empty file.
func writeFigure(_ context.Context, svg []byte, path string, traces int) error {
	if len(svg) == 0 {
		printWarning("Nothing to plot")
		return nil
	}
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return err
	}
	printSuccess("Rendered %d traces", traces)
	printFile(path)
	return nil
}

// outputPath derives the SVG output path from the first input file when no
// --output was given.
func outputPath(output, input string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
}

// parseWindow parses a "start:end" seconds window. An empty string means no
// trimming.
func parseWindow(s string) (*plot.Window, error) {
	if s == "" {
		return nil, nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid window %q (want start:end)", s)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid window start %q", lo)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid window end %q", hi)
	}
	return &plot.Window{Start: start, End: end}, nil
}

// parseDepthTicks parses comma-separated depth:time pairs.
func parseDepthTicks(s string) ([]plot.DepthTick, error) {
	if s == "" {
		return nil, nil
	}
	var ticks []plot.DepthTick
	for _, pair := range strings.Split(s, ",") {
		d, t, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("invalid depth tick %q (want depth:time)", pair)
		}
		depth, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid depth %q", d)
		}
		ts, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q", t)
		}
		ticks = append(ticks, plot.DepthTick{DepthKM: depth, TimeS: ts})
	}
	return ticks, nil
}
