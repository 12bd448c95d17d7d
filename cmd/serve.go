package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"xbrowse/mvc"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "serve"))

	log.Info("serve: using",
		zap.Bool("debug", cfg.Debug),
		zap.String("elasticsearchUrl", cfg.Elasticsearch.Url),
		zap.String("variantsIndex", cfg.Elasticsearch.VariantsIndex),
		zap.String("genesIndex", cfg.Elasticsearch.GenesIndex),
		zap.Bool("failOnUnrankedConsequence", cfg.Search.FailOnUnrankedConsequence),
		zap.Bool("strictPopulationFrequencies", cfg.Search.StrictPopulationFrequencies),
		zap.Int("familyConcurrencyLevel", cfg.Search.FamilyConcurrencyLevel),
		zap.String("port", cfg.Api.Port))

	engine, cache, _, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	if err := cache.StartRefresh(cfg.Search.GeneBoundsRefreshAt); err != nil {
		return err
	}
	defer cache.Stop()

	e := mvc.NewServer(engine, cfg, log)

	errs := make(chan error, 1)
	go func() {
		errs <- e.Start(":" + cfg.Api.Port)
	}()

	select {
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	case <-ctx.Done():
		log.Info("serve: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
