package reference

import (
	"context"
	"sync"
	"time"

	"xbrowse/models/constants/chromosome"
	"xbrowse/repositories"

	"github.com/go-co-op/gocron"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type bounds struct {
	start int64
	end   int64
}

// GeneBoundsCache memoizes gene loci in front of a slower reference. When the
// reference can list its genes, the cache can be reloaded wholesale on a
// daily schedule.
type GeneBoundsCache struct {
	source repositories.Reference
	logger *zap.Logger

	mu     sync.RWMutex
	bounds map[string]bounds

	scheduler *gocron.Scheduler
}

func NewGeneBoundsCache(source repositories.Reference, logger *zap.Logger) *GeneBoundsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneBoundsCache{
		source: source,
		logger: logger,
		bounds: map[string]bounds{},
	}
}

func (c *GeneBoundsCache) GetGeneBounds(ctx context.Context, geneId string) (int64, int64, error) {
	c.mu.RLock()
	b, ok := c.bounds[geneId]
	c.mu.RUnlock()
	if ok {
		return b.start, b.end, nil
	}

	start, end, err := c.source.GetGeneBounds(ctx, geneId)
	if err != nil {
		return 0, 0, err
	}

	c.mu.Lock()
	c.bounds[geneId] = bounds{start, end}
	c.mu.Unlock()
	return start, end, nil
}

// Len is the number of cached genes.
func (c *GeneBoundsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bounds)
}

// Refresh replaces the cache with every gene the source lists. Sources that
// cannot list genes just have their cache emptied so entries reload lazily.
func (c *GeneBoundsCache) Refresh(ctx context.Context) (int, error) {
	lister, ok := c.source.(repositories.GeneLister)
	if !ok {
		c.mu.Lock()
		c.bounds = map[string]bounds{}
		c.mu.Unlock()
		return 0, nil
	}

	genes, err := lister.ListGenes(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "reference: list genes")
	}

	fresh := make(map[string]bounds, len(genes))
	for _, g := range genes {
		start, err := chromosome.Xpos(g.Chrom, g.Start)
		if err != nil {
			c.logger.Warn("reference: skipping gene", zap.String("gene", g.GeneId), zap.Error(err))
			continue
		}
		end, err := chromosome.Xpos(g.Chrom, g.End)
		if err != nil {
			c.logger.Warn("reference: skipping gene", zap.String("gene", g.GeneId), zap.Error(err))
			continue
		}
		fresh[g.GeneId] = bounds{start, end}
	}

	c.mu.Lock()
	c.bounds = fresh
	c.mu.Unlock()
	return len(fresh), nil
}

// StartRefresh reloads the cache every day at the given UTC time ("hh:mm:ss").
func (c *GeneBoundsCache) StartRefresh(at string) error {
	s := gocron.NewScheduler(time.UTC)

	_, err := s.Every(1).Days().At(at).Do(func() {
		start := time.Now()
		n, err := c.Refresh(context.Background())
		if err != nil {
			c.logger.Error("reference: gene bounds refresh failed", zap.Error(err))
			return
		}
		c.logger.Info("reference: gene bounds refreshed",
			zap.Int("genes", n),
			zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return eris.Wrapf(err, "reference: schedule refresh at %s", at)
	}

	s.StartAsync()
	c.scheduler = s
	return nil
}

func (c *GeneBoundsCache) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
}
