package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/talentloop/lookscreen/internal/config"
	"github.com/talentloop/lookscreen/internal/embedding"
	"github.com/talentloop/lookscreen/internal/eval"
	"github.com/talentloop/lookscreen/internal/match"
	"github.com/talentloop/lookscreen/internal/refcache"
	"github.com/talentloop/lookscreen/internal/storage"
	"github.com/talentloop/lookscreen/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Lookscreen web server.
The server exposes the candidate evaluation endpoint and the
administration endpoints for reloading the reference cache.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("skip-initial-build", false, "Do not build the reference cache on startup")
}

// newProvider wires the embedding fetcher and inference backends from config.
func newProvider(cfg *config.Config, transformer embedding.Transformer) *embedding.Provider {
	backends := embedding.Backends(cfg.Embedding.URL, cfg.Embedding.Model, cfg.Embedding.Token)
	fetcher := embedding.NewFetcher(transformer)
	return embedding.NewProvider(fetcher, backends...)
}

// newStorageClient creates the storage client, or returns nil when no
// credentials are configured. A nil client leaves the cache empty but the
// evaluation endpoint still works with neutral similarity.
func newStorageClient(ctx context.Context, cfg *config.Config) (*storage.Client, error) {
	if cfg.Storage.Username == "" || cfg.Storage.Password == "" {
		return nil, nil
	}
	return storage.NewClient(ctx, cfg.Storage.URL, cfg.Storage.Username, cfg.Storage.Password)
}

// newBuilder creates a cache builder configured from the environment.
// The source may be nil when storage credentials are missing.
func newBuilder(cfg *config.Config, cache *refcache.Cache, source refcache.ImageSource, embedder refcache.Embedder) *refcache.Builder {
	builder := refcache.NewBuilder(cache, source, embedder)
	builder.GroupNames = cfg.Cache.Groups
	builder.MaxSamples = cfg.Cache.MaxSamples
	builder.Workers = cfg.Cache.EmbedWorkers
	return builder
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	storageClient, err := newStorageClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if storageClient == nil {
		fmt.Println("No storage credentials configured; reference cache stays empty until STORAGE_USERNAME and STORAGE_PASSWORD are set")
	}

	var transformer embedding.Transformer
	var source refcache.ImageSource
	if storageClient != nil {
		transformer = storageClient
		source = storageClient
	}

	provider := newProvider(cfg, transformer)
	cache := refcache.NewCache()
	builder := newBuilder(cfg, cache, source, provider)

	matcher := match.NewMatcher(provider, cfg.Cache.MaxPhotoEmbed)
	evaluator := eval.NewEvaluator(cache, matcher)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, evaluator, builder, provider)

	if storageClient != nil && !mustGetBool(cmd, "skip-initial-build") {
		go func() {
			fmt.Println("Building reference cache...")
			snapshot, err := builder.Rebuild(ctx)
			if err != nil {
				fmt.Printf("Warning: initial cache build failed: %v\n", err)
				fmt.Println("Evaluations use neutral similarity until a reload succeeds")
				return
			}
			fmt.Printf("Reference cache ready with %d groups\n", len(snapshot.Groups))
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Lookscreen API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
