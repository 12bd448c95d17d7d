package inheritance

import (
	"context"

	"xbrowse/models"
	"xbrowse/models/constants"
	as "xbrowse/models/constants/affected-status"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"
	"xbrowse/services/genes"

	"go.uber.org/zap"
)

// IsCompoundHetPair reports whether two variants can act jointly as a
// compound het in the family: no unaffected individual may be hom-alt for
// either of them, nor het for both.
func IsCompoundHetPair(a *models.Variant, b *models.Variant, family *models.Family) bool {
	for _, indivId := range family.IndivIdsWithStatus(as.Unaffected) {
		numAltA := numAlt(a, indivId)
		numAltB := numAlt(b, indivId)
		if numAltA == 2 || numAltB == 2 {
			return false
		}
		if numAltA == 1 && numAltB == 1 {
			return false
		}
	}
	return true
}

// numAlt returns -1 for a missing genotype.
func numAlt(v *models.Variant, indivId string) int {
	g := v.GetGenotype(indivId)
	if g == nil || g.NumAlt == nil {
		return -1
	}
	return *g.NumAlt
}

// GetCompoundHetGenes pairs up, gene by gene, the variants that are het in
// every affected individual. Variants taking part in at least one valid pair
// are reported under that gene; genes with fewer than two are dropped. The
// allele count filter, when set, narrows the candidates before pairing.
func (e *Engine) GetCompoundHetGenes(ctx context.Context, family *models.Family, vf *filters.VariantFilter, qf *filters.QualityFilter, acf *filters.AlleleCountFilter) ([]genes.GeneVariants, error) {
	cursor, err := e.variantsForGenotypeFilter(ctx, family, im.CompoundHet, vf, qf, acf)
	if err != nil {
		return nil, err
	}
	candidates, err := repositories.Collect(ctx, cursor)
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: compound het candidates", family.FamilyId)
	}

	var out []genes.GeneVariants
	for _, gv := range genes.VariantsToGeneStream(candidates) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		paired := make([]bool, len(gv.Variants))
		for i := 0; i < len(gv.Variants); i++ {
			for j := i + 1; j < len(gv.Variants); j++ {
				if IsCompoundHetPair(&gv.Variants[i], &gv.Variants[j], family) {
					paired[i], paired[j] = true, true
				}
			}
		}

		var kept []models.Variant
		for i, v := range gv.Variants {
			if paired[i] {
				kept = append(kept, v)
			}
		}
		if len(kept) < 2 {
			continue
		}
		out = append(out, genes.GeneVariants{GeneId: gv.GeneId, Variants: kept})
	}

	e.logger.Debug("inheritance: compound het genes",
		zap.String("family", family.FamilyId),
		zap.Int("candidates", len(candidates)),
		zap.Int("genes", len(out)))

	return out, nil
}

// GetRecessiveGenes unites homozygous recessive genes, compound het genes
// and, for genes located on chrX, x-linked recessive genes. A variant found
// by several modes appears once and carries every label.
func (e *Engine) GetRecessiveGenes(ctx context.Context, family *models.Family, vf *filters.VariantFilter, qf *filters.QualityFilter, acf *filters.AlleleCountFilter) ([]genes.GeneVariants, error) {
	homRec, err := e.singleVariantGenes(ctx, family, im.HomozygousRecessive, vf, qf, acf)
	if err != nil {
		return nil, err
	}

	compoundHet, err := e.GetCompoundHetGenes(ctx, family, vf, qf, acf)
	if err != nil {
		return nil, err
	}

	xLinked, err := e.singleVariantGenes(ctx, family, im.XLinkedRecessive, vf, qf, acf)
	if err != nil {
		return nil, err
	}
	var xLinkedOnX []genes.GeneVariants
	for _, gv := range xLinked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if genes.GeneOnX(ctx, gv, e.reference) {
			xLinkedOnX = append(xLinkedOnX, gv)
		}
	}

	return genes.CombineGeneStreams(homRec, compoundHet, xLinkedOnX), nil
}

// GetGenes groups the results of any mode by gene. Single-variant modes are
// grouped by their variants' coding genes.
func (e *Engine) GetGenes(ctx context.Context, family *models.Family, mode constants.InheritanceMode, vf *filters.VariantFilter, qf *filters.QualityFilter, acf *filters.AlleleCountFilter) ([]genes.GeneVariants, error) {
	mode, err := im.CastToInheritanceMode(string(mode))
	if err != nil {
		return nil, err
	}

	switch mode {
	case im.CompoundHet:
		return e.GetCompoundHetGenes(ctx, family, vf, qf, acf)
	case im.Recessive:
		return e.GetRecessiveGenes(ctx, family, vf, qf, acf)
	default:
		return e.singleVariantGenes(ctx, family, mode, vf, qf, acf)
	}
}

func (e *Engine) singleVariantGenes(ctx context.Context, family *models.Family, mode constants.InheritanceMode, vf *filters.VariantFilter, qf *filters.QualityFilter, acf *filters.AlleleCountFilter) ([]genes.GeneVariants, error) {
	cursor, err := e.variantsForGenotypeFilter(ctx, family, mode, vf, qf, acf)
	if err != nil {
		return nil, err
	}
	variants, err := repositories.Collect(ctx, cursor)
	if err != nil {
		return nil, searcherr.Classify(searcherr.DatastoreFailure, err, "family %s: %s variants", family.FamilyId, mode)
	}
	return genes.VariantsToGeneStream(variants), nil
}
