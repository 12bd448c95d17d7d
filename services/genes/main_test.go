package genes

import (
	"context"
	"testing"

	"xbrowse/models"
	"xbrowse/models/constants"
	"xbrowse/models/constants/burden"
	"xbrowse/models/constants/chromosome"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"
	"xbrowse/repositories/memory"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func float64Ptr(f float64) *float64 { return &f }

func variant(chrom string, pos int64, codingGenes []string, numAlts map[string]int) models.Variant {
	xpos, _ := chromosome.Xpos(chrom, pos)
	v := models.Variant{
		Xpos:       xpos,
		Ref:        "C",
		Alt:        "T",
		Annotation: models.Annotation{CodingGeneIds: codingGenes},
		Genotypes:  map[string]models.Genotype{},
	}
	for indivId, numAlt := range numAlts {
		v.Genotypes[indivId] = models.Genotype{NumAlt: intPtr(numAlt), Gq: intPtr(99)}
	}
	return v
}

func TestVariantsToGeneStream(t *testing.T) {
	a := variant("1", 300, []string{"G2", "G1"}, nil)
	b := variant("1", 100, []string{"G1"}, nil)
	c := variant("1", 200, nil, nil)

	stream := VariantsToGeneStream([]models.Variant{a, b, c, b})

	assert.Len(t, stream, 2)
	assert.Equal(t, "G2", stream[0].GeneId)
	assert.Equal(t, "G1", stream[1].GeneId)

	// deduped and ordered by position
	assert.Len(t, stream[1].Variants, 2)
	assert.Equal(t, b.Xpos, stream[1].Variants[0].Xpos)
	assert.Equal(t, a.Xpos, stream[1].Variants[1].Xpos)
}

func TestCombineGeneStreams(t *testing.T) {
	shared := variant("1", 100, []string{"G1"}, nil)
	first := []GeneVariants{{GeneId: "G1", Variants: []models.Variant{shared.WithInheritance(im.HomozygousRecessive)}}}
	second := []GeneVariants{
		{GeneId: "G2", Variants: []models.Variant{variant("2", 100, []string{"G2"}, nil)}},
		{GeneId: "G1", Variants: []models.Variant{
			variant("1", 50, []string{"G1"}, nil),
			shared.WithInheritance(im.XLinkedRecessive),
		}},
	}

	combined := CombineGeneStreams(first, nil, second)

	assert.Len(t, combined, 2)
	assert.Equal(t, "G1", combined[0].GeneId)
	assert.Equal(t, "G2", combined[1].GeneId)

	g1 := combined[0].Variants
	assert.Len(t, g1, 2)
	assert.Equal(t, int64(50), g1[0].Pos())
	assert.Equal(t, []constants.InheritanceMode{im.HomozygousRecessive, im.XLinkedRecessive}, g1[1].Inheritance)

	assert.Empty(t, CombineGeneStreams())
}

func TestGetGenesWithBurden(t *testing.T) {
	stream := []GeneVariants{
		{GeneId: "G1", Variants: []models.Variant{
			variant("1", 100, []string{"G1"}, map[string]int{"proband": 1, "mother": 1}),
			variant("1", 200, []string{"G1"}, map[string]int{"proband": 1, "mother": 0}),
		}},
		{GeneId: "G2", Variants: []models.Variant{
			variant("2", 100, []string{"G2"}, map[string]int{"proband": 1, "mother": 0}),
		}},
	}
	indivs := []string{"proband", "mother"}

	t.Run("should keep genes whose burden falls in every class", func(t *testing.T) {
		out := GetGenesWithBurden(stream, nil, indivs, filters.BurdenFilter{"proband": burden.AtLeast2})
		assert.Len(t, out, 1)
		assert.Equal(t, "G1", out[0].GeneId)

		out = GetGenesWithBurden(stream, nil, indivs, filters.BurdenFilter{"proband": burden.AtLeast1, "mother": burden.None})
		assert.Len(t, out, 1)
		assert.Equal(t, "G2", out[0].GeneId)

		out = GetGenesWithBurden(stream, nil, indivs, filters.BurdenFilter{"mother": burden.LessThan2})
		assert.Len(t, out, 2)
	})

	t.Run("should count only variants passing quality", func(t *testing.T) {
		low := stream[0].Variants[1].WithGenotype("proband", models.Genotype{NumAlt: intPtr(1), Gq: intPtr(5)})
		gated := []GeneVariants{{GeneId: "G1", Variants: []models.Variant{stream[0].Variants[0], low}}}

		out := GetGenesWithBurden(gated, &filters.QualityFilter{MinGq: intPtr(20)}, indivs, filters.BurdenFilter{"proband": burden.AtLeast2})
		assert.Empty(t, out)

		out = GetGenesWithBurden(gated, &filters.QualityFilter{MinGq: intPtr(20)}, indivs, nil)
		assert.Len(t, out, 1)
		assert.Len(t, out[0].Variants, 1)
	})

	t.Run("should drop genes left empty", func(t *testing.T) {
		out := GetGenesWithBurden(stream, &filters.QualityFilter{MinGq: intPtr(100)}, indivs, nil)
		assert.Empty(t, out)
	})
}

func TestCohortGeneVariation(t *testing.T) {
	cohort := []string{"a", "b", "c", "d"}

	t.Run("should discard genes over the het ratio", func(t *testing.T) {
		variants := []models.Variant{
			variant("1", 100, []string{"G1"}, map[string]int{"a": 1, "b": 1, "c": 1, "d": 0}),
		}
		q := &filters.QualityFilter{HetRatio: float64Ptr(0.5)}
		assert.True(t, NewCohortGeneVariation("G1", variants, cohort, q).Discarded)

		// exactly at the ratio is kept
		variants[0] = variants[0].WithGenotype("c", models.Genotype{NumAlt: intPtr(0), Gq: intPtr(99)})
		cgv := NewCohortGeneVariation("G1", variants, cohort, q)
		assert.False(t, cgv.Discarded)
		assert.Len(t, cgv.Variants, 1)
	})

	t.Run("should discard genes over the hom-alt ratio", func(t *testing.T) {
		variants := []models.Variant{
			variant("1", 100, []string{"G1"}, map[string]int{"a": 2, "b": 2}),
		}
		q := &filters.QualityFilter{HomAltRatio: float64Ptr(0.25)}
		assert.True(t, NewCohortGeneVariation("G1", variants, cohort, q).Discarded)
	})

	t.Run("should mask quality failures before counting", func(t *testing.T) {
		v := variant("1", 100, []string{"G1"}, map[string]int{"a": 1, "b": 1, "c": 1})
		v = v.WithGenotype("c", models.Genotype{NumAlt: intPtr(1), Gq: intPtr(5)})
		q := &filters.QualityFilter{MinGq: intPtr(20), HetRatio: float64Ptr(0.5)}

		cgv := NewCohortGeneVariation("G1", []models.Variant{v}, cohort, q)
		assert.False(t, cgv.Discarded)
		assert.Equal(t, []string{"a", "b"}, cgv.IndividualsWithGenotype("ref_alt", 1))
	})

	t.Run("should match individuals per mode", func(t *testing.T) {
		variants := []models.Variant{
			variant("1", 100, []string{"G1"}, map[string]int{"a": 1, "b": 2, "c": 0}),
			variant("1", 200, []string{"G1"}, map[string]int{"a": 1, "b": 0, "d": 1}),
		}
		cgv := NewCohortGeneVariation("G1", variants, cohort, nil)

		cases := []struct {
			mode     constants.InheritanceMode
			onX      bool
			expected []string
		}{
			{im.Dominant, false, []string{"a", "b", "d"}},
			{im.HomozygousRecessive, false, []string{"b"}},
			{im.XLinkedRecessive, false, nil},
			{im.XLinkedRecessive, true, []string{"b"}},
			{im.CompoundHet, false, []string{"a"}},
			{im.Recessive, false, []string{"a", "b"}},
		}
		for _, tc := range cases {
			ids, err := cgv.IndividualsWithInheritance(tc.mode, tc.onX)
			assert.Nil(t, err)
			assert.Equal(t, tc.expected, ids, "%s onX=%v", tc.mode, tc.onX)
		}

		_, err := cgv.IndividualsWithInheritance(im.DeNovo, false)
		assert.True(t, searcherr.IsKind(err, searcherr.InvalidFilterSpec))

		_, err = cgv.IndividualsWithInheritance("made_up", false)
		assert.True(t, searcherr.IsKind(err, searcherr.UnknownInheritanceMode))
	})
}

func TestGetIndividualsWithInheritanceInGenes(t *testing.T) {
	ctx := context.Background()
	cohort := &models.Cohort{ProjectId: "P1", CohortId: "C1", IndivIds: []string{"a", "b", "c"}}

	variants := []models.Variant{
		variant("1", 100, []string{"G1"}, map[string]int{"a": 2, "b": 0, "c": 0}),
		variant("X", 100, []string{"GX"}, map[string]int{"a": 0, "b": 2, "c": 0}),
		variant("2", 100, []string{"G2"}, map[string]int{"a": 0, "b": 0, "c": 1}),
	}

	ref := memory.New()
	ref.AddGenes(
		repositories.Gene{GeneId: "G1", Chrom: "1", Start: 1, End: 1000},
		repositories.Gene{GeneId: "GX", Chrom: "X", Start: 1, End: 1000},
		repositories.Gene{GeneId: "G2", Chrom: "2", Start: 1, End: 1000},
	)

	t.Run("should map genes to matching individuals", func(t *testing.T) {
		byGene, err := GetIndividualsWithInheritanceInGenes(ctx, repositories.NewSliceCursor(variants), cohort, im.Recessive, nil, ref)
		assert.Nil(t, err)
		assert.Equal(t, map[string][]string{"G1": {"a"}, "GX": {"b"}}, byGene)
	})

	t.Run("should fall back to variant positions without a reference", func(t *testing.T) {
		byGene, err := GetIndividualsWithInheritanceInGenes(ctx, repositories.NewSliceCursor(variants), cohort, im.XLinkedRecessive, nil, nil)
		assert.Nil(t, err)
		assert.Equal(t, map[string][]string{"GX": {"b"}}, byGene)
	})

	t.Run("should return nothing for an empty cohort", func(t *testing.T) {
		empty := &models.Cohort{CohortId: "C0"}
		byGene, err := GetIndividualsWithInheritanceInGenes(ctx, repositories.NewSliceCursor(variants), empty, im.Dominant, nil, ref)
		assert.Nil(t, err)
		assert.Empty(t, byGene)
	})

	t.Run("should record unknown genes and fall back to variant positions", func(t *testing.T) {
		partial := memory.New()
		partial.AddGenes(repositories.Gene{GeneId: "G1", Chrom: "1", Start: 1, End: 1000})
		diagnostics := models.NewDiagnostics("test")

		byGene, err := GetIndividualsWithInheritanceInGenes(models.WithDiagnostics(ctx, diagnostics),
			repositories.NewSliceCursor(variants), cohort, im.XLinkedRecessive, nil, partial)
		assert.Nil(t, err)
		assert.Equal(t, map[string][]string{"GX": {"b"}}, byGene)

		anomalies := diagnostics.Anomalies()
		assert.Len(t, anomalies, 2)
		for _, a := range anomalies {
			assert.Equal(t, searcherr.DatastoreFailure, a.Kind)
		}
	})
}
