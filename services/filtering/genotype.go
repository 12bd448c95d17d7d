package filtering

import (
	"xbrowse/models"
	gr "xbrowse/models/constants/genotype-requirement"
	"xbrowse/models/filters"
)

// PassesQuality applies the quality gate to a single genotype. Every
// configured check must hold; a genotype that is absent fails outright.
func PassesQuality(g *models.Genotype, q *filters.QualityFilter) bool {
	if g == nil {
		return false
	}
	if q == nil {
		return true
	}

	if q.VcfFilter != nil && g.Filter != *q.VcfFilter {
		return false
	}
	if q.MinGq != nil && g.Gq != nil && *g.Gq < *q.MinGq {
		return false
	}

	// allele balance only means something for het calls
	if g.NumAlt != nil && *g.NumAlt == 1 && g.Ab != nil {
		abPercent := *g.Ab * 100
		if q.MinAb != nil && abPercent < float64(*q.MinAb) {
			return false
		}
		if q.MaxAb != nil && abPercent > float64(*q.MaxAb) {
			return false
		}
	}

	if q.MinDp != nil && g.Dp != nil && *g.Dp < *q.MinDp {
		return false
	}
	return true
}

// PassesQualityForIndividuals reports whether every listed individual's
// genotype for v passes the gate.
func PassesQualityForIndividuals(v *models.Variant, q *filters.QualityFilter, indivIds []string) bool {
	if q == nil {
		return true
	}
	for _, indivId := range indivIds {
		if !PassesQuality(v.GetGenotype(indivId), q) {
			return false
		}
	}
	return true
}

// FilterGenotypesForQuality returns a copy of v in which every genotype that
// fails the gate is masked as a no-call. v itself is left untouched.
func FilterGenotypesForQuality(v models.Variant, q *filters.QualityFilter) models.Variant {
	out := v.Clone()
	if q == nil {
		return out
	}
	for indivId, g := range out.Genotypes {
		if !PassesQuality(&g, q) {
			g.NumAlt = nil
			out.Genotypes[indivId] = g
		}
	}
	return out
}

// PassesGenotypeFilter reports whether every constrained individual's
// genotype class is admitted. An individual with no genotype fails.
func PassesGenotypeFilter(v *models.Variant, gf filters.GenotypeFilter) bool {
	for indivId, req := range gf {
		g := v.GetGenotype(indivId)
		if g == nil || !gr.Admits(req, g.Class()) {
			return false
		}
	}
	return true
}
