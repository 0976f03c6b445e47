package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hferras/depsolve/internal/server"
	"github.com/hferras/depsolve/pkg/cache"
	"github.com/hferras/depsolve/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeKind string
		mongoURI  string
		mongoDB   string
		cacheKind string
		redisAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the graph query HTTP API",
		Long: `Serve starts the HTTP API for storing graphs and querying leaves, roots,
cycles, shortest paths and merge order. Graphs live in memory by default;
pass --store mongo for persistence. Query results can be cached on disk or
in Redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := newStore(ctx, storeKind, mongoURI, mongoDB)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = st.Close(closeCtx)
			}()

			ca, err := newServeCache(ctx, cacheKind, redisAddr)
			if err != nil {
				return err
			}
			defer ca.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(st, ca, c.Logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			c.Logger.Info("listening", "addr", addr, "store", storeKind, "cache", cacheKind)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&storeKind, "store", "memory", "graph store: memory or mongo")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "depsolve", "MongoDB database name")
	cmd.Flags().StringVar(&cacheKind, "cache", "file", "query cache: none, file or redis")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address")
	return cmd
}

func newStore(ctx context.Context, kind, mongoURI, mongoDB string) (store.Store, error) {
	switch kind {
	case "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		return store.NewMongoStore(ctx, mongoURI, mongoDB)
	default:
		return nil, fmt.Errorf("unknown store %q (want memory or mongo)", kind)
	}
}

func newServeCache(ctx context.Context, kind, redisAddr string) (cache.Cache, error) {
	switch kind {
	case "none":
		return cache.NewNullCache(), nil
	case "file":
		return newCache(false)
	case "redis":
		return cache.NewRedisCache(ctx, redisAddr)
	default:
		return nil, fmt.Errorf("unknown cache %q (want none, file or redis)", kind)
	}
}
