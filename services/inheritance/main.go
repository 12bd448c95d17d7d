package inheritance

import (
	"context"

	"xbrowse/models"
	"xbrowse/models/constants"
	as "xbrowse/models/constants/affected-status"
	"xbrowse/models/constants/chromosome"
	gr "xbrowse/models/constants/genotype-requirement"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"
	"xbrowse/services/filtering"

	"go.uber.org/zap"
)

// Engine matches family variants against inheritance modes. It holds no
// per-search state; diagnostics travel with the request context.
type Engine struct {
	datastore repositories.Datastore
	reference repositories.Reference
	policy    filtering.FrequencyPolicy
	logger    *zap.Logger
}

func NewEngine(datastore repositories.Datastore, reference repositories.Reference, policy filtering.FrequencyPolicy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{datastore: datastore, reference: reference, policy: policy, logger: logger}
}

// GenotypeFilterForMode derives the storage-level genotype class filter for a
// mode from the family's affected statuses. Individuals of unknown status
// are left unconstrained.
func GenotypeFilterForMode(mode constants.InheritanceMode, family *models.Family) (filters.GenotypeFilter, error) {
	var affectedReq, unaffectedReq constants.GenotypeRequirement

	switch mode {
	case im.DeNovo:
		affectedReq, unaffectedReq = gr.HasAlt, gr.RefRef
	case im.Dominant:
		affectedReq = gr.HasAlt
	case im.HomozygousRecessive, im.XLinkedRecessive:
		affectedReq, unaffectedReq = gr.AltAlt, gr.HasRef
	case im.CompoundHet:
		affectedReq = gr.RefAlt
	case im.Recessive:
		return nil, searcherr.New(searcherr.InvalidFilterSpec, "%s is a union of modes and has no single genotype filter", mode)
	default:
		return nil, searcherr.New(searcherr.UnknownInheritanceMode, "unknown inheritance mode %q", mode)
	}

	gf := filters.GenotypeFilter{}
	for indivId, status := range family.AffectedStatusMap() {
		switch {
		case status == as.Affected && affectedReq != "":
			gf[indivId] = affectedReq
		case status == as.Unaffected && unaffectedReq != "":
			gf[indivId] = unaffectedReq
		}
	}
	return gf, nil
}

// GetVariants streams the family's variants that fit a single-variant mode.
// The datastore narrows by genotype class; the stream then re-applies the
// variant filter, the quality gate over every family member and the
// optional allele count filter, and labels what survives with the mode.
func (e *Engine) GetVariants(ctx context.Context, family *models.Family, mode constants.InheritanceMode, vf *filters.VariantFilter, qf *filters.QualityFilter, acf *filters.AlleleCountFilter) (repositories.VariantCursor, error) {
	if _, err := im.CastToInheritanceMode(string(mode)); err != nil {
		return nil, err
	}
	if im.IsGeneBased(mode) {
		return nil, searcherr.New(searcherr.InvalidFilterSpec, "%s is gene based; use GetGenes", mode)
	}
	return e.variantsForGenotypeFilter(ctx, family, mode, vf, qf, acf)
}

func (e *Engine) variantsForGenotypeFilter(ctx context.Context, family *models.Family, mode constants.InheritanceMode, vf *filters.VariantFilter, qf *filters.QualityFilter, acf *filters.AlleleCountFilter) (repositories.VariantCursor, error) {
	if len(family.Individuals) == 0 {
		return repositories.NewSliceCursor(nil), nil
	}

	gf, err := GenotypeFilterForMode(mode, family)
	if err != nil {
		return nil, err
	}

	indivIds := family.IndivIds()
	inner, err := e.datastore.GetVariants(ctx, repositories.VariantQuery{
		ProjectId:        family.ProjectId,
		FamilyId:         family.FamilyId,
		GenotypeFilter:   gf,
		VariantFilter:    vf,
		QualityFilter:    qf,
		IndivsToConsider: indivIds,
	})
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: query variants", family.FamilyId)
	}

	diagnostics := models.DiagnosticsFrom(ctx)
	statuses := family.AffectedStatusMap()

	return repositories.NewFilterCursor(inner, func(v models.Variant) (models.Variant, bool) {
		if !filtering.PassesGenotypeFilter(&v, gf) {
			return v, false
		}
		verdict := filtering.Passes(&v, vf, e.policy)
		if len(verdict.Anomalies) > 0 {
			diagnostics.Record(verdict.Anomalies...)
			for _, a := range verdict.Anomalies {
				e.logger.Warn("inheritance: frequency lookup failed",
					zap.String("family", family.FamilyId),
					zap.Int64("xpos", v.Xpos),
					zap.String("detail", a.Detail))
			}
		}
		if !verdict.Passed {
			return v, false
		}
		if !filtering.PassesQualityForIndividuals(&v, qf, indivIds) {
			return v, false
		}
		if !filtering.PassesAlleleCount(&v, acf, statuses) {
			return v, false
		}
		if mode == im.XLinkedRecessive && !chromosome.IsXChromosome(v.Chr()) {
			return v, false
		}
		return v.WithInheritance(mode), true
	}), nil
}
