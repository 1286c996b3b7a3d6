package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lookscreen",
	Short: "A screening service for candidate photo submissions",
	Long: `Lookscreen evaluates candidate submissions (photo URLs plus biometric
attributes) against cached reference look profiles and hand-tuned
preference rules, producing a decision, a confidence score, and
human-readable reasons.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
