package main

import (
	"fmt"

	"github.com/phototree/backend/pkg/galleryclient"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [galleryID]",
	Short: "List galleries",
	Long: `List your root galleries, or the sub-galleries of a gallery.

  galleryctl ls                List root galleries
  galleryctl ls 550e8400-...   List sub-galleries`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp galleryclient.Response[[]galleryclient.Gallery]
		var err error
		if len(args) == 0 {
			err = apiClient.Get("/galleries", nil, &resp)
		} else {
			err = apiClient.Get("/galleries/"+args[0]+"/children", nil, &resp)
		}
		if err != nil {
			return fmt.Errorf("listing galleries: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}
		printGalleryTable(resp.Data)
		return nil
	},
}

var photosCmd = &cobra.Command{
	Use:   "photos <galleryID>",
	Short: "List photos in a gallery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp galleryclient.Response[[]galleryclient.Photo]
		if err := apiClient.Get("/galleries/"+args[0]+"/photos", nil, &resp); err != nil {
			return fmt.Errorf("listing photos: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}
		printPhotoTable(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(photosCmd)
}
