package genes

import (
	"context"

	"xbrowse/models"
	"xbrowse/models/constants"
	"xbrowse/models/constants/chromosome"
	gc "xbrowse/models/constants/genotype-class"
	gr "xbrowse/models/constants/genotype-requirement"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"
	"xbrowse/services/filtering"

	"github.com/samber/lo"
)

// CohortGeneVariation indexes the genotypes of a cohort across one gene's
// variants. Quality failures are masked as no-calls. When the share of het
// or hom-alt calls on any variant exceeds the configured ratio, the whole
// gene is treated as a systematic artifact and its variant list discarded.
type CohortGeneVariation struct {
	GeneId    string
	Variants  []models.Variant
	Discarded bool

	indivIds []string
}

func NewCohortGeneVariation(geneId string, variants []models.Variant, indivIds []string, q *filters.QualityFilter) *CohortGeneVariation {
	cgv := &CohortGeneVariation{GeneId: geneId, indivIds: indivIds}

	masked := make([]models.Variant, 0, len(variants))
	for _, v := range variants {
		masked = append(masked, filtering.FilterGenotypesForQuality(v, q))
	}

	if q != nil && len(indivIds) > 0 {
		for i := range masked {
			if exceedsRatio(&masked[i], indivIds, gc.RefAlt, q.HetRatio) ||
				exceedsRatio(&masked[i], indivIds, gc.AltAlt, q.HomAltRatio) {
				cgv.Discarded = true
				return cgv
			}
		}
	}

	cgv.Variants = masked
	return cgv
}

// exceedsRatio compares the share of the cohort carrying class against ratio.
// The denominator is the whole cohort, called or not.
func exceedsRatio(v *models.Variant, indivIds []string, class constants.GenotypeClass, ratio *float64) bool {
	if ratio == nil {
		return false
	}
	count := lo.CountBy(indivIds, func(indivId string) bool {
		g := v.GetGenotype(indivId)
		return g != nil && g.Class() == class
	})
	return float64(count)/float64(len(indivIds)) > *ratio
}

// IndividualsWithGenotype lists, in cohort order, the individuals admitted by
// req on at least minVariants distinct variants of the gene.
func (c *CohortGeneVariation) IndividualsWithGenotype(req constants.GenotypeRequirement, minVariants int) []string {
	return lo.Filter(c.indivIds, func(indivId string, _ int) bool {
		hits := lo.CountBy(c.Variants, func(v models.Variant) bool {
			g := v.GetGenotype(indivId)
			return g != nil && gr.Admits(req, g.Class())
		})
		return hits >= minVariants
	})
}

// IndividualsWithInheritance applies the family inheritance predicates to a
// cohort, where every individual stands in as an affected proband.
func (c *CohortGeneVariation) IndividualsWithInheritance(mode constants.InheritanceMode, onX bool) ([]string, error) {
	switch mode {
	case im.Dominant:
		return c.IndividualsWithGenotype(gr.HasAlt, 1), nil
	case im.HomozygousRecessive:
		return c.IndividualsWithGenotype(gr.AltAlt, 1), nil
	case im.XLinkedRecessive:
		if !onX {
			return nil, nil
		}
		return c.IndividualsWithGenotype(gr.AltAlt, 1), nil
	case im.CompoundHet:
		return c.IndividualsWithGenotype(gr.RefAlt, 2), nil
	case im.Recessive:
		found := map[string]bool{}
		for _, sub := range []constants.InheritanceMode{im.HomozygousRecessive, im.CompoundHet, im.XLinkedRecessive} {
			ids, _ := c.IndividualsWithInheritance(sub, onX)
			for _, id := range ids {
				found[id] = true
			}
		}
		return lo.Filter(c.indivIds, func(indivId string, _ int) bool { return found[indivId] }), nil
	case im.DeNovo:
		return nil, searcherr.New(searcherr.InvalidFilterSpec, "%s needs a pedigree and cannot run over a cohort", mode)
	default:
		return nil, searcherr.New(searcherr.UnknownInheritanceMode, "unknown inheritance mode %q", mode)
	}
}

// GetIndividualsWithInheritanceInGenes runs a cohort gene search over a
// variant stream and returns, per gene, the individuals matching mode. Genes
// with no matching individual are left out.
func GetIndividualsWithInheritanceInGenes(ctx context.Context, cursor repositories.VariantCursor, cohort *models.Cohort, mode constants.InheritanceMode, q *filters.QualityFilter, reference repositories.Reference) (map[string][]string, error) {
	variants, err := repositories.Collect(ctx, cursor)
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "cohort %s: read variants", cohort.CohortId)
	}

	result := map[string][]string{}
	if len(cohort.IndivIds) == 0 {
		return result, nil
	}

	for _, gv := range VariantsToGeneStream(variants) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		onX := false
		if mode == im.XLinkedRecessive || mode == im.Recessive {
			onX = GeneOnX(ctx, gv, reference)
		}

		cgv := NewCohortGeneVariation(gv.GeneId, gv.Variants, cohort.IndivIds, q)
		if cgv.Discarded {
			continue
		}
		indivIds, err := cgv.IndividualsWithInheritance(mode, onX)
		if err != nil {
			return nil, err
		}
		if len(indivIds) > 0 {
			result[gv.GeneId] = indivIds
		}
	}
	return result, nil
}

// GeneOnX resolves the gene's chromosome through the reference. Without a
// reference, or when it does not know the gene, the gene's first variant
// decides and the failed lookup is recorded as an anomaly.
func GeneOnX(ctx context.Context, gv GeneVariants, reference repositories.Reference) bool {
	if reference != nil {
		start, _, err := reference.GetGeneBounds(ctx, gv.GeneId)
		if err == nil {
			return chromosome.IsXChromosome(chromosome.ChrFromXpos(start))
		}
		wrapped := searcherr.Classify(searcherr.DatastoreFailure, err, "gene %s: bounds", gv.GeneId)
		kind, _ := searcherr.KindOf(wrapped)
		models.DiagnosticsFrom(ctx).Record(models.Anomaly{Kind: kind, Detail: wrapped.Error()})
	}
	if len(gv.Variants) == 0 {
		return false
	}
	return chromosome.IsXChromosome(gv.Variants[0].Chr())
}
