package main

import (
	"fmt"
	"path/filepath"

	"github.com/phototree/backend/pkg/galleryclient"
	"github.com/spf13/cobra"
)

var flagAltText string

var uploadCmd = &cobra.Command{
	Use:   "upload <galleryID> <file> [file...]",
	Short: "Upload photos to a gallery",
	Long: `Upload one or more image files. The server derives medium and
thumbnail renditions automatically.

  galleryctl upload 550e8400-... beach.jpg
  galleryctl upload 550e8400-... *.jpg`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		galleryID := args[0]
		for _, path := range args[1:] {
			var resp galleryclient.Response[galleryclient.Photo]
			err := apiClient.Upload("/photos/upload", "file", path, map[string]string{
				"galleryID": galleryID,
				"altText":   flagAltText,
			}, &resp)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
			}
			fmt.Printf("Uploaded %s → %s\n", resp.Data.Filename, resp.Data.ID)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <photoID> [dest]",
	Short: "Download a photo's original file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var infoResp galleryclient.Response[galleryclient.Photo]
		if err := apiClient.Get("/photos/"+args[0], nil, &infoResp); err != nil {
			return fmt.Errorf("fetching photo: %w", err)
		}

		dest := infoResp.Data.Filename
		if len(args) == 2 {
			dest = args[1]
		}
		if err := apiClient.DownloadToFile("/photos/"+args[0]+"/download", dest); err != nil {
			return fmt.Errorf("downloading: %w", err)
		}
		fmt.Printf("Saved %s\n", dest)
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&flagAltText, "alt", "", "Alt text stored with the photo")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
}
