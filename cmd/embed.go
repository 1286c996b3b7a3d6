package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/talentloop/lookscreen/internal/config"
)

var embedCmd = &cobra.Command{
	Use:   "embed [image-url]",
	Short: "Embed a single image and print the vector shape",
	Long: `Fetch one image by URL, run it through the configured embedding
backends and print the resulting vector dimension. Useful for checking
the embedding credentials and model before building the cache.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().Bool("print-vector", false, "Print the full vector values")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	provider := newProvider(cfg, nil)

	vector, err := provider.EmbedURL(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	fmt.Printf("Embedded %s\n", args[0])
	fmt.Printf("Dimension: %d\n", len(vector))
	if mustGetBool(cmd, "print-vector") {
		for i, v := range vector {
			fmt.Printf("  [%4d] %f\n", i, v)
		}
	}
	return nil
}
