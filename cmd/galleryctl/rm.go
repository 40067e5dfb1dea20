package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/phototree/backend/pkg/galleryclient"
	"github.com/spf13/cobra"
)

var flagForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <photoID> [photoID...]",
	Short: "Delete one or more photos",
	Long: `Delete photos from the server. With multiple ids the batch endpoint
is used; already-missing photos count as deleted.

  galleryctl rm 550e8400-...
  galleryctl rm id1 id2 id3 --force

Warning: This cannot be undone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if !flagForce {
			fmt.Printf("Delete %d photo(s)? This cannot be undone. [y/N] ", len(args))
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.TrimSpace(strings.ToLower(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		var resp galleryclient.BatchDeleteResponse
		if err := apiClient.Delete("/photos/batch", map[string]interface{}{
			"photoIDs": args,
		}, &resp); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}

		if flagJSON {
			printJSON(resp)
			return nil
		}
		fmt.Printf("Deleted %d photo(s)\n", len(resp.Deleted))
		for _, e := range resp.Errors {
			fmt.Printf("Failed %s: %s\n", e.PhotoID, e.Error)
		}
		return nil
	},
}

var rmGalleryCmd = &cobra.Command{
	Use:   "rmgallery <galleryID>",
	Short: "Delete a gallery and everything beneath it",
	Long: `Delete a gallery, all its sub-galleries, and every photo in the
subtree.

Warning: This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var infoResp galleryclient.Response[galleryclient.Gallery]
		if err := apiClient.Get("/galleries/"+args[0], nil, &infoResp); err != nil {
			return fmt.Errorf("fetching gallery: %w", err)
		}

		if !flagForce {
			fmt.Printf("Delete gallery %q and all its contents? This cannot be undone. [y/N] ", infoResp.Data.Name)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.TrimSpace(strings.ToLower(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := apiClient.Delete("/galleries/"+args[0], nil, nil); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}
		fmt.Printf("Deleted: %s\n", infoResp.Data.Name)
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompt")
	rmGalleryCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(rmGalleryCmd)
}
