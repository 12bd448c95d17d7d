package main

import (
	"context"
	"os"

	"xbrowse/models"
	"xbrowse/repositories"
	"xbrowse/repositories/elasticsearch"
	"xbrowse/repositories/memory"
	"xbrowse/services"
	"xbrowse/services/reference"
	"xbrowse/services/severity"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg         *models.Config
	configPath  string
	fixturePath string
)

var rootCmd = &cobra.Command{
	Use:   "xbrowse",
	Short: "Family-based variant inheritance search",
	Long:  "Searches annotated family variants for de novo, dominant, recessive, x-linked and compound het inheritance.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := models.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = c

		logger, err := models.NewLogger(cfg)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "path to a YAML config file (environment variables override it)")
	f.StringVar(&fixturePath, "fixture", "", "serve variants from a YAML fixture instead of Elasticsearch")
}

// buildEngine wires the datastore selected by flags into a search engine.
// Families are only known up front when a fixture is loaded.
func buildEngine(ctx context.Context) (*services.SearchEngine, *reference.GeneBoundsCache, []models.Family, error) {
	log := zap.L()
	ranker := severity.NewRanker()

	var (
		datastore repositories.Datastore
		source    repositories.Reference
		families  []models.Family
	)

	if fixturePath != "" {
		store, fixtureFamilies, err := memory.LoadFixture(fixturePath, ranker, log)
		if err != nil {
			return nil, nil, nil, err
		}
		datastore, source, families = store, store, fixtureFamilies
		log.Info("datastore: fixture loaded", zap.String("path", fixturePath), zap.Int("families", len(families)))
	} else {
		client, err := elasticsearch.NewClient(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := elasticsearch.NewRepository(client, cfg, log)
		datastore, source = repo, repo
		log.Info("datastore: elasticsearch", zap.String("url", cfg.Elasticsearch.Url))
	}

	cache := reference.NewGeneBoundsCache(source, log)
	if n, err := cache.Refresh(ctx); err != nil {
		log.Warn("reference: initial gene bounds load failed, falling back to lazy lookups", zap.Error(err))
	} else {
		log.Info("reference: gene bounds loaded", zap.Int("genes", n))
	}

	return services.NewSearchEngine(datastore, cache, ranker, cfg, log), cache, families, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("xbrowse: command failed", zap.Error(err), zap.String("stack", eris.ToString(err, true)))
		os.Exit(1)
	}
}
