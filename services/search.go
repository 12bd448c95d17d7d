package services

import (
	"context"
	"time"

	"xbrowse/models"
	"xbrowse/models/constants"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"
	"xbrowse/services/filtering"
	"xbrowse/services/genes"
	"xbrowse/services/inheritance"
	"xbrowse/services/population"
	"xbrowse/services/severity"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// SearchEngine is built once at startup and shared by every request.
	SearchEngine struct {
		Datastore repositories.Datastore
		Reference repositories.Reference
		Ranker    *severity.Ranker
		Config    *models.Config
		Logger    *zap.Logger

		inheritance *inheritance.Engine
	}

	FamilySearch struct {
		Family            models.Family              `json:"family"`
		Mode              constants.InheritanceMode  `json:"inheritanceMode"`
		VariantFilter     *filters.VariantFilter     `json:"variantFilter,omitempty"`
		QualityFilter     *filters.QualityFilter     `json:"qualityFilter,omitempty"`
		AlleleCountFilter *filters.AlleleCountFilter `json:"alleleCountFilter,omitempty"`
		BurdenFilter      filters.BurdenFilter       `json:"burdenFilter,omitempty"`
	}

	FamilyResult struct {
		RequestId       string                    `json:"requestId"`
		ProjectId       string                    `json:"projectId"`
		FamilyId        string                    `json:"familyId"`
		Mode            constants.InheritanceMode `json:"inheritanceMode"`
		Variants        []models.Variant          `json:"variants,omitempty"`
		Genes           []genes.GeneVariants      `json:"genes,omitempty"`
		Anomalies       []models.Anomaly          `json:"anomalies,omitempty"`
		SkippedVariants int                       `json:"skippedVariants"`
	}

	CohortSearch struct {
		Cohort        models.Cohort             `json:"cohort"`
		Mode          constants.InheritanceMode `json:"inheritanceMode"`
		VariantFilter *filters.VariantFilter    `json:"variantFilter,omitempty"`
		QualityFilter *filters.QualityFilter    `json:"qualityFilter,omitempty"`
	}

	CohortResult struct {
		RequestId       string                    `json:"requestId"`
		CohortId        string                    `json:"cohortId"`
		Mode            constants.InheritanceMode `json:"inheritanceMode"`
		Genes           map[string][]string       `json:"genes"`
		Anomalies       []models.Anomaly          `json:"anomalies,omitempty"`
		SkippedVariants int                       `json:"skippedVariants"`
	}
)

func NewSearchEngine(datastore repositories.Datastore, reference repositories.Reference, ranker *severity.Ranker, cfg *models.Config, logger *zap.Logger) *SearchEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ranker == nil {
		ranker = severity.NewRanker()
	}

	se := &SearchEngine{
		Datastore: datastore,
		Reference: reference,
		Ranker:    ranker,
		Config:    cfg,
		Logger:    logger,
	}
	annotated := &annotatingDatastore{inner: datastore, ranker: ranker, failFast: cfg.Search.FailOnUnrankedConsequence, logger: logger}
	se.inheritance = inheritance.NewEngine(annotated, reference, se.frequencyPolicy(), logger)
	return se
}

func (se *SearchEngine) frequencyPolicy() filtering.FrequencyPolicy {
	if se.Config.Search.StrictPopulationFrequencies {
		return filtering.Strict
	}
	return filtering.Permissive
}

// Validate checks every filter of the request before any data is read.
func (fs *FamilySearch) Validate() error {
	if _, err := im.CastToInheritanceMode(string(fs.Mode)); err != nil {
		return err
	}
	if fs.VariantFilter != nil {
		if err := fs.VariantFilter.Validate(); err != nil {
			return err
		}
	}
	if fs.QualityFilter != nil {
		if err := fs.QualityFilter.Validate(); err != nil {
			return err
		}
	}
	if fs.AlleleCountFilter != nil {
		if err := fs.AlleleCountFilter.Validate(); err != nil {
			return err
		}
	}
	return fs.BurdenFilter.Validate()
}

// SearchFamily runs one inheritance search. Gene based modes, and any mode
// with a burden filter, report genes; the others report variants.
func (se *SearchEngine) SearchFamily(ctx context.Context, fs FamilySearch) (*FamilyResult, error) {
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	mode, _ := im.CastToInheritanceMode(string(fs.Mode))

	requestId := uuid.NewString()
	diagnostics := models.NewDiagnostics(requestId)
	ctx = models.WithDiagnostics(ctx, diagnostics)
	logger := se.Logger.With(
		zap.String("requestId", requestId),
		zap.String("family", fs.Family.FamilyId),
		zap.String("mode", string(mode)))

	start := time.Now()
	result := &FamilyResult{
		RequestId: requestId,
		ProjectId: fs.Family.ProjectId,
		FamilyId:  fs.Family.FamilyId,
		Mode:      mode,
	}

	if im.IsGeneBased(mode) || len(fs.BurdenFilter) > 0 {
		stream, err := se.inheritance.GetGenes(ctx, &fs.Family, mode, fs.VariantFilter, fs.QualityFilter, fs.AlleleCountFilter)
		if err != nil {
			logger.Error("search: family genes failed", zap.Error(err))
			return nil, err
		}
		if len(fs.BurdenFilter) > 0 {
			stream = genes.GetGenesWithBurden(stream, fs.QualityFilter, fs.Family.IndivIds(), fs.BurdenFilter)
		}
		result.Genes = stream
	} else {
		cursor, err := se.inheritance.GetVariants(ctx, &fs.Family, mode, fs.VariantFilter, fs.QualityFilter, fs.AlleleCountFilter)
		if err != nil {
			logger.Error("search: family variants failed", zap.Error(err))
			return nil, err
		}
		variants, err := repositories.Collect(ctx, cursor)
		if err != nil {
			logger.Error("search: reading variants failed", zap.Error(err))
			return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: read variants", fs.Family.FamilyId)
		}
		result.Variants = variants
	}

	result.Anomalies = diagnostics.Anomalies()
	result.SkippedVariants = diagnostics.SkippedVariants()

	logger.Info("search: family done",
		zap.Int("variants", len(result.Variants)),
		zap.Int("genes", len(result.Genes)),
		zap.Int("anomalies", len(result.Anomalies)),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

// SearchFamilies runs family searches in parallel, at most
// FamilyConcurrencyLevel at a time. The first failure cancels the rest.
func (se *SearchEngine) SearchFamilies(ctx context.Context, searches []FamilySearch) ([]*FamilyResult, error) {
	results := make([]*FamilyResult, len(searches))

	g, gctx := errgroup.WithContext(ctx)
	if limit := se.Config.Search.FamilyConcurrencyLevel; limit > 0 {
		g.SetLimit(limit)
	}

	for i := range searches {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := se.SearchFamily(gctx, searches[i])
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchCohortGenes finds, gene by gene, the cohort members whose genotypes
// fit the mode. Cohorts are stored in the datastore under their cohort id.
func (se *SearchEngine) SearchCohortGenes(ctx context.Context, cs CohortSearch) (*CohortResult, error) {
	mode, err := im.CastToInheritanceMode(string(cs.Mode))
	if err != nil {
		return nil, err
	}
	if cs.VariantFilter != nil {
		if err := cs.VariantFilter.Validate(); err != nil {
			return nil, err
		}
	}
	if cs.QualityFilter != nil {
		if err := cs.QualityFilter.Validate(); err != nil {
			return nil, err
		}
	}

	requestId := uuid.NewString()
	diagnostics := models.NewDiagnostics(requestId)
	ctx = models.WithDiagnostics(ctx, diagnostics)

	result := &CohortResult{RequestId: requestId, CohortId: cs.Cohort.CohortId, Mode: mode, Genes: map[string][]string{}}
	if len(cs.Cohort.IndivIds) == 0 {
		return result, nil
	}

	cursor, err := se.annotated().GetVariants(ctx, repositories.VariantQuery{
		ProjectId:        cs.Cohort.ProjectId,
		FamilyId:         cs.Cohort.CohortId,
		VariantFilter:    cs.VariantFilter,
		QualityFilter:    cs.QualityFilter,
		IndivsToConsider: cs.Cohort.IndivIds,
	})
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "cohort %s: query variants", cs.Cohort.CohortId)
	}

	policy := se.frequencyPolicy()
	filtered := repositories.NewFilterCursor(cursor, func(v models.Variant) (models.Variant, bool) {
		verdict := filtering.Passes(&v, cs.VariantFilter, policy)
		diagnostics.Record(verdict.Anomalies...)
		return v, verdict.Passed
	})

	byGene, err := genes.GetIndividualsWithInheritanceInGenes(ctx, filtered, &cs.Cohort, mode, cs.QualityFilter, se.Reference)
	if err != nil {
		se.Logger.Error("search: cohort genes failed", zap.String("requestId", requestId), zap.Error(err))
		return nil, err
	}

	result.Genes = byGene
	result.Anomalies = diagnostics.Anomalies()
	result.SkippedVariants = diagnostics.SkippedVariants()

	se.Logger.Info("search: cohort done",
		zap.String("requestId", requestId),
		zap.String("cohort", cs.Cohort.CohortId),
		zap.Int("genes", len(byGene)))

	return result, nil
}

// CompareCohortToControls runs the same cohort gene search over a case and a
// control cohort and hands the per-gene counts to the tester.
func (se *SearchEngine) CompareCohortToControls(ctx context.Context, cases CohortSearch, controls models.Cohort, tester population.FisherTester) ([]population.GeneComparison, error) {
	caseResult, err := se.SearchCohortGenes(ctx, cases)
	if err != nil {
		return nil, err
	}

	controlSearch := cases
	controlSearch.Cohort = controls
	controlResult, err := se.SearchCohortGenes(ctx, controlSearch)
	if err != nil {
		return nil, err
	}

	counter := cohortControls{hits: controlResult.Genes, size: len(controls.IndivIds)}
	return population.CompareToControls(ctx, caseResult.Genes, len(cases.Cohort.IndivIds), counter, tester)
}

// SearchFamilyGene lists every variant the family carries in one gene, with
// genotypes failing the quality gate masked as no-calls.
func (se *SearchEngine) SearchFamilyGene(ctx context.Context, family models.Family, geneId string, vf *filters.VariantFilter, qf *filters.QualityFilter) ([]models.Variant, error) {
	cursor, err := se.annotated().GetVariantsInGene(ctx, family.ProjectId, family.FamilyId, geneId, vf)
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: gene %s", family.FamilyId, geneId)
	}

	var restricted filters.VariantFilter
	if vf != nil {
		restricted = *vf
	}
	restricted = restricted.AddGene(geneId)

	diagnostics := models.DiagnosticsFrom(ctx)
	policy := se.frequencyPolicy()
	masked := repositories.NewFilterCursor(cursor, func(v models.Variant) (models.Variant, bool) {
		verdict := filtering.Passes(&v, &restricted, policy)
		diagnostics.Record(verdict.Anomalies...)
		if !verdict.Passed {
			return v, false
		}
		return filtering.FilterGenotypesForQuality(v, qf), true
	})
	variants, err := repositories.Collect(ctx, masked)
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: gene %s", family.FamilyId, geneId)
	}
	return variants, nil
}

// GetFamilyVariant looks a single variant up; nil means the family does not
// carry it.
func (se *SearchEngine) GetFamilyVariant(ctx context.Context, projectId string, familyId string, xpos int64, ref string, alt string) (*models.Variant, error) {
	v, err := se.annotated().GetSingleVariant(ctx, projectId, familyId, xpos, ref, alt)
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: variant %d", familyId, xpos)
	}
	return v, nil
}

func (se *SearchEngine) annotated() *annotatingDatastore {
	return &annotatingDatastore{
		inner:    se.Datastore,
		ranker:   se.Ranker,
		failFast: se.Config.Search.FailOnUnrankedConsequence,
		logger:   se.Logger,
	}
}

type cohortControls struct {
	hits map[string][]string
	size int
}

func (c cohortControls) ControlHits(ctx context.Context, geneId string) (int, error) {
	return len(c.hits[geneId]), nil
}

func (c cohortControls) Size() int { return c.size }
