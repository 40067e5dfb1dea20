package main

import (
	"fmt"
	"os"

	"github.com/phototree/backend/pkg/galleryclient"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cliCfg    *cliConfig
	apiClient *galleryclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "galleryctl",
	Short: "PhotoTree CLI — manage galleries and photos from the terminal",
	Long: `PhotoTree CLI lets you browse galleries, rate and like photos, and
run batch operations against your PhotoTree server.

Get started:
  galleryctl login you@example.com    Authenticate
  galleryctl ls                       List your root galleries
  galleryctl photos <galleryID>       List photos in a gallery`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cliCfg, err = loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cliCfg.ServerURL = flagServerURL
		}
		apiClient = galleryclient.NewClient(cliCfg.ServerURL, cliCfg.Token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cliCfg == nil || cliCfg.Token == "" {
		return fmt.Errorf("not authenticated — run \"galleryctl login\" first")
	}
	return nil
}
