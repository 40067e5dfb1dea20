package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/phototree/backend/pkg/galleryclient"
)

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printGalleryTable(galleries []galleryclient.Gallery) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPROTECTED\tCREATED")
	for _, g := range galleries {
		protected := "-"
		if g.Protected {
			protected = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Name, protected, g.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func printPhotoTable(photos []galleryclient.Photo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tRATING\tLIKED\tSIZE")
	for _, p := range photos {
		liked := "-"
		if p.IsLiked {
			liked = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n", p.ID, p.Filename, p.Rating, liked, p.Size)
	}
	w.Flush()
}
