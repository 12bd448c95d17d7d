package genes

import (
	"xbrowse/models"
	"xbrowse/models/constants/burden"
	"xbrowse/models/filters"
	"xbrowse/services/filtering"

	. "github.com/ahmetb/go-linq"
)

// GeneVariants is one entry of a gene stream: a gene and its variants,
// unique by tuple and ordered by xpos.
type GeneVariants struct {
	GeneId   string           `json:"geneId"`
	Variants []models.Variant `json:"variants"`
}

// VariantsToGeneStream groups variants under each of their coding genes.
// Genes keep the order in which they are first seen.
func VariantsToGeneStream(variants []models.Variant) []GeneVariants {
	var (
		order  []string
		byGene = map[string][]models.Variant{}
	)
	for _, v := range variants {
		for _, geneId := range v.Annotation.CodingGeneIds {
			if _, seen := byGene[geneId]; !seen {
				order = append(order, geneId)
			}
			byGene[geneId] = append(byGene[geneId], v)
		}
	}

	stream := make([]GeneVariants, 0, len(order))
	for _, geneId := range order {
		stream = append(stream, GeneVariants{GeneId: geneId, Variants: mergeVariants(byGene[geneId])})
	}
	return stream
}

// CombineGeneStreams merges streams gene by gene. A variant reported by more
// than one stream appears once, carrying the union of its labels.
func CombineGeneStreams(streams ...[]GeneVariants) []GeneVariants {
	var (
		order  []string
		byGene = map[string][]models.Variant{}
	)
	From(streams).SelectManyT(func(s []GeneVariants) Query {
		return From(s)
	}).ForEachT(func(gv GeneVariants) {
		if _, seen := byGene[gv.GeneId]; !seen {
			order = append(order, gv.GeneId)
		}
		byGene[gv.GeneId] = append(byGene[gv.GeneId], gv.Variants...)
	})

	combined := make([]GeneVariants, 0, len(order))
	for _, geneId := range order {
		combined = append(combined, GeneVariants{GeneId: geneId, Variants: mergeVariants(byGene[geneId])})
	}
	return combined
}

// GetGenesWithBurden keeps, per gene, the variants whose genotypes pass the
// quality gate for every individual of interest. When a burden filter is
// given, a gene survives only if each configured individual's aggregate
// alternate allele count falls in its class. Genes left empty are dropped.
func GetGenesWithBurden(stream []GeneVariants, q *filters.QualityFilter, indivsOfInterest []string, burdenFilter filters.BurdenFilter) []GeneVariants {
	var out []GeneVariants
	for _, gv := range stream {
		var kept []models.Variant
		From(gv.Variants).WhereT(func(v models.Variant) bool {
			return filtering.PassesQualityForIndividuals(&v, q, indivsOfInterest)
		}).ToSlice(&kept)

		if len(kept) == 0 {
			continue
		}
		if !burdenHolds(kept, burdenFilter) {
			continue
		}
		out = append(out, GeneVariants{GeneId: gv.GeneId, Variants: kept})
	}
	return out
}

func burdenHolds(variants []models.Variant, burdenFilter filters.BurdenFilter) bool {
	for indivId, class := range burdenFilter {
		if !burden.Holds(class, aggregateAltCount(variants, indivId)) {
			return false
		}
	}
	return true
}

func aggregateAltCount(variants []models.Variant, indivId string) int {
	aac := 0
	for i := range variants {
		g := variants[i].GetGenotype(indivId)
		if g == nil || g.NumAlt == nil {
			continue
		}
		aac += *g.NumAlt
	}
	return aac
}

// mergeVariants dedups by unique tuple, unions inheritance labels and
// orders the result by position.
func mergeVariants(variants []models.Variant) []models.Variant {
	index := map[models.UniqueTuple]int{}
	var merged []models.Variant
	for _, v := range variants {
		tuple := v.UniqueTuple()
		if i, ok := index[tuple]; ok {
			merged[i] = merged[i].WithInheritance(v.Inheritance...)
			continue
		}
		index[tuple] = len(merged)
		merged = append(merged, v)
	}

	var sorted []models.Variant
	From(merged).OrderByT(func(v models.Variant) int64 {
		return v.Xpos
	}).ThenByT(func(v models.Variant) string {
		return v.Ref
	}).ThenByT(func(v models.Variant) string {
		return v.Alt
	}).ToSlice(&sorted)
	return sorted
}
