package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookrag/internal/chunker"
	"bookrag/internal/embedding"
	"bookrag/internal/indexstore"
	"bookrag/internal/loader"
	"bookrag/internal/logging"
	"bookrag/internal/service"
	"bookrag/internal/structure"
)

var buildInput string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the per-volume vector indexes",
	Long: `Load the book, tag pages with volume and chapter, chunk each chapter, embed
the chunks and write one index per volume. Existing indexes are replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.New(cfg.Logging)
		ctx := cmd.Context()

		unit, err := chunker.ParseUnit(cfg.Chunker.Unit)
		if err != nil {
			return err
		}
		seg, err := chunker.NewSegmenter(cfg.Chunker.Segmenter)
		if err != nil {
			return err
		}
		ch := chunker.New(chunker.Options{
			Unit:          unit,
			MaxSize:       cfg.Chunker.MaxSize,
			Overlap:       cfg.Chunker.Overlap,
			StripHeadings: cfg.Chunker.StripHeadings,
		}, seg)

		emb, err := embedding.New(ctx, cfg.Embedder, logger)
		if err != nil {
			return err
		}

		pages, err := loader.Load(buildInput)
		if err != nil {
			return fmt.Errorf("load %s: %w", buildInput, err)
		}

		builder := service.NewBuilder(emb, indexstore.New(cfg.Index.Dir), logger)
		built, err := builder.BuildPages(ctx, pages, structure.NewAssigner(cfg.Volumes), ch)
		if err != nil {
			return err
		}
		for _, v := range built {
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed → %s (%d chunks)\n", v.Volume, v.Chunks)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildInput, "pdf", "data/book.pdf", "Book to index (PDF, or form-feed separated .txt)")
	rootCmd.AddCommand(buildCmd)
}
