package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/internal/server"
	"github.com/matzehuels/chartkit/pkg/cache"
	"github.com/matzehuels/chartkit/pkg/pipeline"
	"github.com/matzehuels/chartkit/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	redisURL string // shared artifact cache; empty uses the local file cache
	mongoURI string // definition store; empty keeps charts in memory
	mongoDB  string
	scope    string // cache key namespace for hosts sharing one Redis
	noCache  bool
	timeout  time.Duration
	maxBody  int64
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     server.DefaultAddr,
		redisURL: os.Getenv("CHARTKIT_REDIS_URL"),
		mongoURI: os.Getenv("CHARTKIT_MONGO_URI"),
		mongoDB:  store.DefaultDatabase,
		timeout:  server.DefaultRequestTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host charts over HTTP",
		Long: `Serve mounts charts created through the HTTP API and keeps them live, so
data updates and resizes animate between frames.

Chart definitions go to MongoDB when --mongo-uri is set and settled artifacts
are cached in Redis when --redis-url is set. Both fall back to local storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", opts.redisURL, "redis URL for the shared artifact cache (env CHARTKIT_REDIS_URL)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB URI for chart definitions (env CHARTKIT_MONGO_URI)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.scope, "cache-scope", "", "namespace for cache keys when several hosts share one Redis")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", 0, "maximum request body in bytes (default 8 MiB)")

	return cmd
}

// runServe wires the cache and store backends and blocks until ctx ends.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	ch, err := newSharedCache(ctx, opts.redisURL, opts.noCache)
	if err != nil {
		return fmt.Errorf("connect cache: %w", err)
	}
	var keyer cache.Keyer
	if opts.scope != "" {
		keyer = cache.NewScopedKeyer(nil, opts.scope+":")
	}
	runner := pipeline.NewRunner(ch, keyer, logger)
	defer runner.Close()

	var st store.Store = store.NewMemoryStore()
	if opts.mongoURI != "" {
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: opts.mongoURI, Database: opts.mongoDB})
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		st = ms
	}
	defer st.Close()

	srv := server.New(server.Options{
		Runner:         runner,
		Store:          st,
		Logger:         logger,
		MaxBody:        opts.maxBody,
		RequestTimeout: opts.timeout,
	})

	printSuccess("Serving charts on %s", StyleLink.Render(displayAddr(opts.addr)))
	printKeyValue("cache", backendName(opts.redisURL != "" && !opts.noCache, "redis", "local"))
	printKeyValue("store", backendName(opts.mongoURI != "", "mongodb", "memory"))
	printNextStep("Create a chart", "curl -X POST --data @spec.json "+displayAddr(opts.addr)+"/charts")

	printInfo("Press Ctrl+C to stop")

	if err := srv.Serve(ctx, opts.addr); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// displayAddr turns a listen address into a URL a user can open.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func backendName(remote bool, yes, no string) string {
	if remote {
		return yes
	}
	return no
}
