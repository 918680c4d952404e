package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rfkit/rfkit/internal/web"
	"github.com/rfkit/rfkit/pkg/store"
)

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	addr     string
	mongoURI string
	mongoDB  string
	figures  string // directory of SVG files loaded into the store at startup
}

// serveCommand creates the serve command for the figure server.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     c.Config.Server.Addr,
		mongoURI: c.Config.Server.MongoURI,
		mongoDB:  c.Config.Server.MongoDB,
	}
	if opts.mongoDB == "" {
		opts.mongoDB = appName
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered figures and Prometheus metrics over HTTP",
		Long: `Serve exposes stored figures as JSON listings and SVG documents, a
health endpoint, and /metrics. With --mongo-uri figures persist in MongoDB;
otherwise they live in memory for the lifetime of the process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB connection URI for persistent figures")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.figures, "figures", "", "directory of SVG files to load at startup")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	figures, err := c.newStore(ctx, opts)
	if err != nil {
		return err
	}
	defer figures.Close(context.Background())

	if opts.figures != "" {
		n, err := loadFigureDir(ctx, figures, opts.figures)
		if err != nil {
			return err
		}
		c.Logger.Info("loaded figures", "count", n, "dir", opts.figures)
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           web.NewServer(figures, web.NewMetrics(), c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printInfo("Serving figures on %s", opts.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

// newStore builds the figure store, MongoDB when configured, in-memory
// otherwise.
func (c *CLI) newStore(ctx context.Context, opts *serveOpts) (store.Store, error) {
	if opts.mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB, "figures")
}

// loadFigureDir imports every .svg file in dir into the store. The figure
// kind is guessed from the file name prefix, falling back to "stack".
func loadFigureDir(ctx context.Context, figures store.Store, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".svg") {
			continue
		}
		svg, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, err
		}
		title := strings.TrimSuffix(e.Name(), ".svg")
		fig := store.NewFigure(figureKind(e.Name()), title, svg)
		if err := figures.Put(ctx, fig); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func figureKind(name string) string {
	for _, kind := range []string{"profile", "map", "stack"} {
		if strings.Contains(name, kind) {
			return kind
		}
	}
	return "stack"
}
