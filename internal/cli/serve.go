package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/observability/prom"
	"github.com/matzehuels/listgraph/pkg/server"
	"github.com/matzehuels/listgraph/pkg/session"
	"github.com/matzehuels/listgraph/pkg/source/file"
	"github.com/matzehuels/listgraph/pkg/source/mongo"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	noWatch bool
}

// serveCommand creates the HTTP API server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Serve interaction workspaces over HTTP",
		Long: `Serve starts the HTTP API. Each file argument is opened as a workspace at
startup and reloaded when it changes; clients can create more workspaces from
inline documents or, with [mongo] configured, from stored graphs.

With [redis] configured, every interaction event is also published to the
events channel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload files when they change")
	cmd.AddCommand(c.followCommand())
	return cmd
}

func (c *CLI) runServe(ctx context.Context, files []string, opts serveOpts) error {
	cfg := c.cfg
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	layering, err := cfg.Layering()
	if err != nil {
		return err
	}

	store := session.NewMemoryStore(cfg.Server.SessionTTL.Duration)
	srvOpts := server.Options{
		Store:       store,
		Layering:    layering,
		Hover:       cfg.HoverOptions(),
		CacheTTL:    cfg.Cache.TTL.Duration,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      c.Logger,
	}

	if srvOpts.Cache, err = c.newCache(false); err != nil {
		return err
	}
	defer srvOpts.Cache.Close()

	if cfg.Redis.Addr != "" {
		client := c.redisClient()
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		channel := cfg.Redis.Channel
		srvOpts.Workspace.Publisher = func(id string) events.Publisher {
			return events.NewRedisPublisher(client, channel, id)
		}
		c.Logger.Info("publishing events", "redis", cfg.Redis.Addr, "channel", channel)
	}

	if cfg.Mongo.URI != "" {
		graphs, client, err := mongo.Connect(ctx, mongo.Options{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		srvOpts.Graphs = graphs
		c.Logger.Info("serving stored graphs", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
	}

	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom.New(reg).Install()
		srvOpts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	srv, err := server.New(srvOpts)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range files {
		src := file.New(path, file.Options{Logger: c.Logger})
		ws, err := srv.Open(ctx, src)
		if err != nil {
			return err
		}
		printDetail("%s → /api/v1/workspaces/%s", src.Name(), ws.ID)
		if opts.noWatch {
			continue
		}
		id := ws.ID
		g.Go(func() error {
			return src.Watch(ctx, func() {
				if err := srv.Reload(ctx, id, src); err != nil {
					c.Logger.Warn("reload failed", "source", src.Name(), "err", err)
				}
			})
		})
	}

	g.Go(func() error {
		store.Run(ctx, cfg.Server.CleanupInterval.Duration, func(n int) {
			c.Logger.Info("expired workspaces removed", "count", n)
		})
		return nil
	})
	g.Go(func() error {
		return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Duration)
	})
	return g.Wait()
}

// followCommand prints the events published to Redis by a running server.
func (c *CLI) followCommand() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Print interaction events published to Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Redis.Addr == "" {
				return fmt.Errorf("follow requires redis.addr in the configuration")
			}
			client := c.redisClient()
			defer client.Close()
			return events.Follow(cmd.Context(), client, c.cfg.Redis.Channel, func(env events.Envelope) {
				if workspace != "" && env.Session != workspace {
					return
				}
				fmt.Println(formatEnvelope(env))
			})
		},
	}
	cmd.Flags().StringVar(&workspace, "workspace", "", "only show events of this workspace")
	return cmd
}

func formatEnvelope(env events.Envelope) string {
	line := fmt.Sprintf("%s %s %s", StyleDim.Render(env.Time.Format("15:04:05.000")), StyleHighlight.Render(env.Session), env.Event.Name)
	if id := env.Event.Data.NodeID; id != "" {
		line += " " + StyleValue.Render(id)
	}
	if mode := env.Event.Data.Mode; mode != "" {
		line += "=" + mode
	}
	if n := len(env.Event.Data.Batch); n > 0 {
		line += StyleDim.Render(fmt.Sprintf(" (%d changes)", n))
	}
	return line
}

func (c *CLI) redisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
}
