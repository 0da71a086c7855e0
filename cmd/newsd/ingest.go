package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/0-0Dibakar/AI-Powered-News/config"
	"github.com/0-0Dibakar/AI-Powered-News/internal/ingest"
	"github.com/0-0Dibakar/AI-Powered-News/internal/rag"
	"github.com/0-0Dibakar/AI-Powered-News/internal/search"
	"github.com/0-0Dibakar/AI-Powered-News/internal/store"
	"github.com/0-0Dibakar/AI-Powered-News/news/newsapi"
	"github.com/0-0Dibakar/AI-Powered-News/provider"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var categories []string

	var cmd = &cobra.Command{
		Use:   "ingest",
		Short: "Fetch and store current headlines once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			llm, err := provider.NewProvider(provider.OpenAI, cfg.Providers.OpenAI)
			if err != nil {
				return err
			}
			index, err := search.Open(cfg.Ingest.IndexPath)
			if err != nil {
				return err
			}
			defer index.Close()

			ragCfg := cfg.RAG.Normalize()
			embedder := rag.NewEmbedder(llm, ragCfg.MaxInputChars)
			logger := log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
			pipeline := ingest.NewPipeline(newsapi.New(cfg.NewsAPI), st, embedder, index, logger, *cfg)

			if len(categories) == 0 {
				categories = cfg.Ingest.Categories
			}
			stats, err := pipeline.Run(ctx, categories)
			fmt.Printf("fetched=%d stored=%d duplicates=%d failed=%d\n",
				stats.Fetched, stats.Stored, stats.Duplicates, stats.Failed)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "categories to ingest (default all)")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
