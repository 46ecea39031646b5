// Command blaze is a thin CLI wrapper over the blaze package: build an
// index from an archive, then search it. All indexing and ranking logic
// lives in the blaze package; this file only parses flags and prints.
package main

import (
	"fmt"
	"os"

	"github.com/blazeindex/blaze"
	"github.com/spf13/cobra"
)

var indexDir string

func main() {
	root := &cobra.Command{
		Use:   "blaze",
		Short: "Disk-based inverted-index search engine",
	}
	root.PersistentFlags().StringVar(&indexDir, "index-dir", "index", "directory holding the persisted index artifacts")

	root.AddCommand(buildCmd, searchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

var buildCmd = &cobra.Command{
	Use:   "build <archive_path>",
	Short: "Ingest an archive into a fresh on-disk index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := blaze.NewBuilder(blaze.DefaultBuilderOptions(indexDir))
		return b.Build(args[0])
	},
}

var (
	searchArchive string
	searchOffset  int
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a ranked conjunctive query against the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := blaze.OpenSearcher(indexDir, blaze.DefaultReaderOptions(searchArchive))
		if err != nil {
			return err
		}

		results, err := s.Search(args[0], searchOffset, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%d. %s  score=%.4f\n", searchOffset+i+1, r.URL, r.Score)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchArchive, "archive", "", "original archive path, required only for summarizer lookups")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "pagination offset")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "pagination limit")
}
