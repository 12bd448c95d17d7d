package services

import (
	"context"

	"xbrowse/models"
	"xbrowse/models/filters"
	"xbrowse/repositories"
	"xbrowse/services/severity"

	"go.uber.org/zap"
)

// annotatingDatastore resolves consequences on every variant it streams.
// Variants carrying annotations of which none can be ranked are skipped and
// counted; in fail-fast mode the first unranked term ends the stream.
type annotatingDatastore struct {
	inner    repositories.Datastore
	ranker   *severity.Ranker
	failFast bool
	logger   *zap.Logger
}

func (d *annotatingDatastore) GetVariants(ctx context.Context, query repositories.VariantQuery) (repositories.VariantCursor, error) {
	cursor, err := d.inner.GetVariants(ctx, query)
	if err != nil {
		return nil, err
	}
	return d.wrap(cursor), nil
}

func (d *annotatingDatastore) GetVariantsInGene(ctx context.Context, projectId string, familyId string, geneId string, variantFilter *filters.VariantFilter) (repositories.VariantCursor, error) {
	cursor, err := d.inner.GetVariantsInGene(ctx, projectId, familyId, geneId, variantFilter)
	if err != nil {
		return nil, err
	}
	return d.wrap(cursor), nil
}

func (d *annotatingDatastore) GetSingleVariant(ctx context.Context, projectId string, familyId string, xpos int64, ref string, alt string) (*models.Variant, error) {
	v, err := d.inner.GetSingleVariant(ctx, projectId, familyId, xpos, ref, alt)
	if err != nil || v == nil {
		return v, err
	}
	annotated, anomalies, err := d.ranker.AnnotateVariant(*v, d.failFast)
	if err != nil {
		return nil, err
	}
	models.DiagnosticsFrom(ctx).Record(anomalies...)
	return &annotated, nil
}

func (d *annotatingDatastore) wrap(cursor repositories.VariantCursor) repositories.VariantCursor {
	return &annotatingCursor{inner: cursor, datastore: d}
}

type annotatingCursor struct {
	inner     repositories.VariantCursor
	datastore *annotatingDatastore
	current   models.Variant
	err       error
}

func (c *annotatingCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	diagnostics := models.DiagnosticsFrom(ctx)

	for c.inner.Next(ctx) {
		v := c.inner.Variant()
		if len(v.Annotation.VepAnnotations) == 0 {
			c.current = v
			return true
		}

		annotated, anomalies, err := c.datastore.ranker.AnnotateVariant(v, c.datastore.failFast)
		if err != nil {
			c.err = err
			return false
		}
		if len(anomalies) > 0 {
			diagnostics.Record(anomalies...)
			c.datastore.logger.Warn("search: unranked consequence",
				zap.Int64("xpos", v.Xpos),
				zap.String("ref", v.Ref),
				zap.String("alt", v.Alt),
				zap.Int("annotations", len(anomalies)))
		}
		if annotated.Annotation.WorstVepIndex == nil {
			diagnostics.SkipVariant()
			continue
		}

		c.current = annotated
		return true
	}
	return false
}

func (c *annotatingCursor) Variant() models.Variant { return c.current }

func (c *annotatingCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.inner.Err()
}

func (c *annotatingCursor) Close() error { return c.inner.Close() }
