package main

import (
	"fmt"
	"strconv"

	"github.com/phototree/backend/pkg/galleryclient"
	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate <rating> <photoID> [photoID...]",
	Short: "Set a rating on one or more photos",
	Long: `Set a 0-5 star rating. With multiple ids the batch endpoint is used
and per-photo results are reported.

  galleryctl rate 5 550e8400-...
  galleryctl rate 3 id1 id2 id3`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		rating, err := strconv.Atoi(args[0])
		if err != nil || rating < 0 || rating > 5 {
			return fmt.Errorf("rating must be an integer between 0 and 5")
		}
		photoIDs := args[1:]

		if len(photoIDs) == 1 {
			var resp galleryclient.Response[galleryclient.RatedPhoto]
			if err := apiClient.Put("/photos/"+photoIDs[0]+"/rating", map[string]int{"rating": rating}, &resp); err != nil {
				return fmt.Errorf("setting rating: %w", err)
			}
			if flagJSON {
				printJSON(resp.Data)
				return nil
			}
			fmt.Printf("Rated %s: %d\n", resp.Data.ID, resp.Data.Rating)
			return nil
		}

		var resp galleryclient.BatchRatingResponse
		if err := apiClient.Post("/photos/batch/rating", map[string]interface{}{
			"photoIDs": photoIDs,
			"rating":   rating,
		}, &resp); err != nil {
			return fmt.Errorf("setting ratings: %w", err)
		}

		if flagJSON {
			printJSON(resp)
			return nil
		}
		for _, p := range resp.Photos {
			fmt.Printf("Rated %s: %d\n", p.ID, p.Rating)
		}
		if missing := len(photoIDs) - len(resp.Photos); missing > 0 {
			fmt.Printf("%d photo(s) no longer exist\n", missing)
		}
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <photoID>",
	Short: "Toggle the like status of a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var photoResp galleryclient.Response[galleryclient.Photo]
		if err := apiClient.Get("/photos/"+args[0], nil, &photoResp); err != nil {
			return fmt.Errorf("fetching photo: %w", err)
		}

		var resp galleryclient.Response[galleryclient.LikeResult]
		if err := apiClient.Post("/photos/"+args[0]+"/like", map[string]bool{
			"isLiked": !photoResp.Data.IsLiked,
		}, &resp); err != nil {
			return fmt.Errorf("toggling like: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}
		state := "unliked"
		if resp.Data.IsLiked {
			state = "liked"
		}
		fmt.Printf("Photo %s is now %s\n", resp.Data.PhotoID, state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(likeCmd)
}
