package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/talentloop/lookscreen/internal/config"
	"github.com/talentloop/lookscreen/internal/refcache"
	"github.com/talentloop/lookscreen/internal/storage"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Build the reference cache once and print the result",
	Long: `Build the reference cache from the configured storage groups.
Useful for verifying storage credentials, embedding backends and group
layout before starting the server.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)

	rebuildCmd.Flags().Int("max-samples", 0, "Override the per-group sample cap")
	rebuildCmd.Flags().Int("workers", 0, "Override the embedding worker count")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.Storage.Username == "" || cfg.Storage.Password == "" {
		return errors.New("STORAGE_USERNAME and STORAGE_PASSWORD environment variables are required")
	}

	fmt.Printf("Connecting to storage at %s...\n", cfg.Storage.URL)
	storageClient, err := storage.NewClient(ctx, cfg.Storage.URL, cfg.Storage.Username, cfg.Storage.Password)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	provider := newProvider(cfg, storageClient)
	cache := refcache.NewCache()
	builder := newBuilder(cfg, cache, storageClient, provider)

	if n := mustGetInt(cmd, "max-samples"); n > 0 {
		builder.MaxSamples = n
	}
	if n := mustGetInt(cmd, "workers"); n > 0 {
		builder.Workers = n
	}

	var bar *progressbar.ProgressBar
	builder.OnProgress = func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Embedding groups"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("groups"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		bar.Set(done)
	}

	snapshot, err := builder.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("cache build failed: %w", err)
	}
	if bar != nil {
		bar.Finish()
	}

	fmt.Printf("\nBuild %s finished with %d groups (%d sample failures)\n",
		snapshot.BuildID, len(snapshot.Groups), snapshot.SampleFailures)
	for _, group := range snapshot.Groups {
		fmt.Printf("  %-20s gender=%-7s samples=%d dim=%d\n",
			group.Label, group.Gender, group.SampleCount, len(group.Centroid))
	}
	return nil
}
