package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rfkit/rfkit/pkg/cache"
	"github.com/rfkit/rfkit/pkg/events"
	"github.com/rfkit/rfkit/pkg/fdsn"
	rfio "github.com/rfkit/rfkit/pkg/io"
	"github.com/rfkit/rfkit/pkg/seis"
)

// defaultCacheTTL is how long cached waveforms stay fresh when the config
// does not say otherwise.
const defaultCacheTTL = 7 * 24 * time.Hour

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	network  string // FDSN network code, e.g. "IU"
	station  string // station code, may be a wildcard the service accepts
	location string // location code, empty for blank
	channel  string // channel band with component wildcard, e.g. "BH?"
	start    string // catalog start date (YYYY-MM-DD)
	end      string // catalog end date (YYYY-MM-DD)
	minMag   float64
	limit    int
	phase    string  // "P", "S", "PP", ...
	minDist  float64 // epicentral distance bounds in degrees; 0,0 keeps
	maxDist  float64 // the per-phase defaults
	output   string  // directory receiving one JSON stream per event
	baseURL  string
	noCache  bool
	noTUI    bool
}

// fetchCommand creates the fetch command for downloading event waveforms.
func (c *CLI) fetchCommand() *cobra.Command {
	opts := fetchOpts{
		channel: "BH?",
		phase:   "P",
		output:  "streams",
	}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch three-component event waveforms from FDSN services",
		Long: `Fetch queries the event and station services, then iterates every
event/station pair: waveforms are downloaded around the predicted phase
onset, merged, annotated with receiver function statistics, and written as
one JSON stream file per pair. Responses are cached so reruns do not
refetch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.network, "network", "", "network code (required)")
	cmd.Flags().StringVar(&opts.station, "station", "", "station code (required)")
	cmd.Flags().StringVar(&opts.location, "location", "", "location code")
	cmd.Flags().StringVar(&opts.channel, "channel", opts.channel, "channel pattern")
	cmd.Flags().StringVar(&opts.start, "start", "", "catalog start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "catalog end date YYYY-MM-DD (required)")
	cmd.Flags().Float64Var(&opts.minMag, "min-mag", 5.5, "minimum event magnitude")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum number of events (0 = no limit)")
	cmd.Flags().StringVar(&opts.phase, "phase", opts.phase, "phase to window around: P, S, PP, ...")
	cmd.Flags().Float64Var(&opts.minDist, "min-dist", 0, "minimum epicentral distance in degrees")
	cmd.Flags().Float64Var(&opts.maxDist, "max-dist", 0, "maximum epicentral distance in degrees")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory for stream files")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "FDSN service base URL")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the waveform cache")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "disable the interactive progress display")

	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("station")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

// runFetch queries the catalog and inventory, then iterates the pairs.
func (c *CLI) runFetch(ctx context.Context, opts *fetchOpts) error {
	start, err := time.Parse("2006-01-02", opts.start)
	if err != nil {
		return fmt.Errorf("parse --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", opts.end)
	if err != nil {
		return fmt.Errorf("parse --end: %w", err)
	}

	client := c.newFDSNClient(opts.baseURL)

	sp := newSpinner(ctx, "Querying event catalog...")
	sp.Start()
	cat, err := client.Events(ctx, fdsn.EventQuery{
		Start:        start,
		End:          end,
		MinMagnitude: opts.minMag,
		Limit:        opts.limit,
	})
	sp.Stop()
	if err != nil {
		return err
	}
	printInfo("%d events in catalog", len(cat))

	sp = newSpinner(ctx, "Querying station inventory...")
	sp.Start()
	inv, err := client.Stations(ctx, fdsn.StationQuery{
		Network:  opts.network,
		Station:  opts.station,
		Location: opts.location,
		Channel:  opts.channel,
		Start:    start,
		End:      end,
	})
	sp.Stop()
	if err != nil {
		return err
	}
	printInfo("%d stations in inventory", len(inv.Stations))

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	backend := c.newCache(opts.noCache)
	defer backend.Close()
	ttl := defaultCacheTTL
	if c.Config.Cache.TTLHours > 0 {
		ttl = time.Duration(c.Config.Cache.TTLHours) * time.Hour
	}
	wf := cache.Waveforms(backend, cache.NewDefaultKeyer(), ttl, client.Waveforms)

	var distRange *[2]float64
	if opts.maxDist > 0 {
		distRange = &[2]float64{opts.minDist, opts.maxDist}
	}

	prog := newProgress(c.Logger)
	written, err := c.iteratePairs(ctx, cat, inv, wf, opts, distRange)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			printWarning("Fetch aborted after %d streams", written)
			return nil
		}
		return err
	}

	prog.done(fmt.Sprintf("Fetched %d receiver function streams", written))
	printSuccess("Fetched %d streams", written)
	printFile(opts.output)
	return nil
}

// iteratePairs drives IterEvents, writing one JSON file per yielded stream.
// Unless disabled, a bubbletea progress display tracks the pair counter.
func (c *CLI) iteratePairs(ctx context.Context, cat events.Catalog, inv *events.Inventory,
	wf events.WaveformFunc, opts *fetchOpts, distRange *[2]float64) (int, error) {

	run := func(ctx context.Context, report func(tea.Msg)) (int, error) {
		iterOpts := events.IterOptions{
			Phase:     opts.phase,
			DistRange: distRange,
			Logger:    c.Logger,
			Progress: func(done, total int) {
				report(fetchProgressMsg{done: done, total: total})
			},
		}
		written := 0
		for st, err := range events.IterEvents(ctx, cat, inv, wf, iterOpts) {
			if err != nil {
				return written, err
			}
			path := filepath.Join(opts.output, streamFileName(st))
			if err := rfio.ExportJSON(st, path); err != nil {
				return written, err
			}
			written++
			report(fetchStreamMsg{id: st[0].ID()})
		}
		return written, nil
	}

	if opts.noTUI {
		return run(ctx, func(msg tea.Msg) {
			if pm, ok := msg.(fetchProgressMsg); ok {
				c.Logger.Debugf("processed %d/%d pairs", pm.done, pm.total)
			}
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newFetchModel("Fetching receiver functions"), tea.WithOutput(os.Stderr))

	type result struct {
		written int
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		written, err := run(ctx, p.Send)
		p.Send(fetchDoneMsg{err: err})
		resCh <- result{written: written, err: err}
	}()

	final, uiErr := p.Run()
	if fm, ok := final.(fetchModel); ok && fm.aborted {
		cancel()
	}
	res := <-resCh
	if uiErr != nil && res.err == nil {
		return res.written, uiErr
	}
	return res.written, res.err
}

// newFDSNClient builds the web service client, preferring the flag over the
// config file.
func (c *CLI) newFDSNClient(baseURL string) *fdsn.Client {
	var opts []fdsn.Option
	if baseURL == "" {
		baseURL = c.Config.FDSN.BaseURL
	}
	if baseURL != "" {
		opts = append(opts, fdsn.WithBaseURL(baseURL))
	}
	opts = append(opts, fdsn.WithLogger(c.Logger))
	return fdsn.NewClient(opts...)
}

// streamFileName derives a stable file name from the stream's event and
// station identity, e.g. "us7000abcd_IU.ANMO.json".
func streamFileName(st seis.Stream) string {
	s := &st[0].Stats
	event := sanitizeName(s.EventID)
	if event == "" {
		event = s.Onset.UTC().Format("20060102T150405")
	}
	return fmt.Sprintf("%s_%s.%s.json", event, s.Network, s.Station)
}

// sanitizeName keeps file names portable by replacing anything outside
// [A-Za-z0-9._-] with a dash.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}
