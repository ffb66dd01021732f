// Command gradient annotates a road-network graph with elevation and grade
// data fetched from a remote elevation API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/velomaps/gradient/pkg/annotate"
	"github.com/velomaps/gradient/pkg/cache"
	"github.com/velomaps/gradient/pkg/elevation"
	"github.com/velomaps/gradient/pkg/graph"
	"github.com/velomaps/gradient/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var pretty bool

	root := &cobra.Command{
		Use:           "gradient",
		Short:         "Annotate road networks with elevation and grade data",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(logLevel),
				Pretty: pretty,
				Output: os.Stderr,
			})
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable log output")

	root.AddCommand(newAnnotateCmd())
	return root
}

// annotateOptions collects the annotate subcommand flags.
type annotateOptions struct {
	graphPath      string
	outPath        string
	apiKey         string
	batchSize      int
	pause          time.Duration
	roundingPlaces int
	urlTemplate    string
	proxy          string
	cacheDir       string
	redisAddr      string
	noAbsolute     bool
	metricsAddr    string
}

func newAnnotateCmd() *cobra.Command {
	opts := &annotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Fetch node elevations and compute edge grades for a graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.graphPath, "graph", "", "input graph JSON file (required)")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "output graph JSON file (required)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "elevation API key")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", elevation.DefaultBatchSize, "max locations per API call")
	cmd.Flags().DurationVar(&opts.pause, "pause", elevation.DefaultPause, "pause before each uncached API call")
	cmd.Flags().IntVar(&opts.roundingPlaces, "rounding-places", elevation.DefaultRoundingPlaces, "decimal places for request coordinates")
	cmd.Flags().StringVar(&opts.urlTemplate, "url-template", elevation.DefaultURLTemplate, "request URL template")
	cmd.Flags().StringVar(&opts.proxy, "proxy", "", "proxy URL for outbound requests")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", ".gradient-cache", "directory for the embedded response cache (empty for in-memory)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for a shared response cache (overrides --cache-dir)")
	cmd.Flags().BoolVar(&opts.noAbsolute, "no-absolute", false, "skip the absolute grade attribute")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (optional)")

	cobra.CheckErr(cmd.MarkFlagRequired("graph"))
	cobra.CheckErr(cmd.MarkFlagRequired("out"))

	return cmd
}

func runAnnotate(ctx context.Context, opts *annotateOptions) error {
	logger := logging.NewLogger("gradient")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.metricsAddr != "" {
		go serveMetrics(opts.metricsAddr)
	}

	in, err := os.Open(opts.graphPath)
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	g, err := graph.ReadJSON(in)
	in.Close()
	if err != nil {
		return err
	}
	logger.Info().
		Int("nodes", g.NodeCount()).
		Int("edges", g.EdgeCount()).
		Str("graph", opts.graphPath).
		Msg("Loaded graph")

	store, closeStore, err := buildStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	clientCfg := elevation.DefaultClientConfig()
	clientCfg.Proxy = opts.proxy
	client, err := elevation.NewClient(clientCfg)
	if err != nil {
		return err
	}

	fetcherCfg := elevation.DefaultFetcherConfig(opts.apiKey)
	fetcherCfg.BatchSize = opts.batchSize
	fetcherCfg.Pause = opts.pause
	fetcherCfg.RoundingPlaces = opts.roundingPlaces
	fetcherCfg.URLTemplate = opts.urlTemplate
	fetcher, err := elevation.NewFetcher(client, store, fetcherCfg)
	if err != nil {
		return err
	}

	if err := annotate.AddNodeElevations(ctx, g, fetcher); err != nil {
		return err
	}
	if err := annotate.AddEdgeGrades(g, !opts.noAbsolute); err != nil {
		return err
	}

	out, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := graph.WriteJSON(out, g); err != nil {
		return err
	}

	logger.Info().Str("out", opts.outPath).Msg("Wrote annotated graph")
	return nil
}

// buildStore selects the cache backend: Redis when an address is given,
// otherwise an embedded Badger cache, falling back to in-memory when no
// directory is configured.
func buildStore(ctx context.Context, opts *annotateOptions) (cache.Store, func(), error) {
	logger := logging.NewLogger("gradient")

	if opts.redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.redisAddr, err)
		}
		logger.Info().Str("addr", opts.redisAddr).Msg("Using Redis response cache")
		return cache.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
	}

	if opts.cacheDir != "" {
		store, err := cache.OpenBadgerStore(opts.cacheDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("dir", opts.cacheDir).Msg("Using embedded response cache")
		return store, func() { store.Close() }, nil
	}

	store, err := cache.NewMemoryStore(0)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Using in-memory response cache")
	return store, func() {}, nil
}

func serveMetrics(addr string) {
	logger := logging.NewLogger("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn().Err(err).Msg("Metrics server stopped")
	}
}
