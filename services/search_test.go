package services

import (
	"context"
	"testing"

	"xbrowse/models"
	"xbrowse/models/constants"
	as "xbrowse/models/constants/affected-status"
	"xbrowse/models/constants/burden"
	"xbrowse/models/constants/chromosome"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"
	"xbrowse/repositories/memory"
	"xbrowse/services/severity"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var ranker = severity.NewRanker()

func intPtr(i int) *int { return &i }

func variant(chrom string, pos int64, geneId string, consequence string, numAlts map[string]int) models.Variant {
	xpos, _ := chromosome.Xpos(chrom, pos)
	v := models.Variant{
		Xpos: xpos,
		Ref:  "A",
		Alt:  "G",
		Annotation: models.Annotation{
			VepAnnotations: []models.VepAnnotation{{GeneId: geneId, Consequence: consequence}},
		},
		Genotypes: map[string]models.Genotype{},
	}
	for indivId, numAlt := range numAlts {
		v.Genotypes[indivId] = models.Genotype{NumAlt: intPtr(numAlt), Gq: intPtr(99), Filter: "pass"}
	}
	annotated, _, _ := ranker.AnnotateVariant(v, false)
	return annotated
}

func trio(familyId string) models.Family {
	return models.Family{
		ProjectId: "P1",
		FamilyId:  familyId,
		Individuals: []models.Individual{
			{Id: "proband", AffectedStatus: as.Affected},
			{Id: "mother", AffectedStatus: as.Unaffected},
			{Id: "father", AffectedStatus: as.Unaffected},
		},
	}
}

func testConfig() *models.Config {
	cfg := &models.Config{}
	cfg.Search.FamilyConcurrencyLevel = 2
	return cfg
}

func newTestEngine(cfg *models.Config) (*SearchEngine, *memory.Datastore) {
	ds := memory.New()
	ds.AddGenes(
		repositories.Gene{GeneId: "G1", Chrom: "1", Start: 1, End: 1000},
		repositories.Gene{GeneId: "G3", Chrom: "2", Start: 1, End: 1000},
		repositories.Gene{GeneId: "G5", Chrom: "3", Start: 1, End: 1000},
	)
	ds.AddFamilyVariants("P1", "F1",
		variant("1", 100, "G1", "missense_variant", map[string]int{"proband": 1, "mother": 1, "father": 0}),
		variant("1", 200, "G1", "stop_gained", map[string]int{"proband": 1, "mother": 0, "father": 1}),
		variant("2", 100, "G3", "frameshift_variant", map[string]int{"proband": 2, "mother": 1, "father": 1}),
		variant("3", 100, "G5", "missense_variant", map[string]int{"proband": 1, "mother": 0, "father": 0}),
		variant("4", 100, "G6", "made_up_variant", map[string]int{"proband": 1, "mother": 0, "father": 0}),
	)
	ds.AddFamilyVariants("P1", "F2",
		variant("3", 100, "G5", "missense_variant", map[string]int{"proband": 1, "mother": 0, "father": 1}),
	)
	ds.AddFamilyVariants("P1", "CASES",
		variant("1", 100, "G1", "missense_variant", map[string]int{"a": 2, "b": 1, "c": 0}),
		variant("2", 100, "G3", "missense_variant", map[string]int{"a": 0, "b": 0, "c": 1}),
	)
	ds.AddFamilyVariants("P1", "CONTROLS",
		variant("1", 100, "G1", "missense_variant", map[string]int{"x": 1, "y": 0}),
	)
	return NewSearchEngine(ds, ds, nil, cfg, zap.NewNop()), ds
}

func TestSearchFamily(t *testing.T) {
	engine, _ := newTestEngine(testConfig())
	ctx := context.Background()

	t.Run("should report de novo variants and skip unrankable ones", func(t *testing.T) {
		result, err := engine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.DeNovo})
		assert.Nil(t, err)
		assert.NotEmpty(t, result.RequestId)
		assert.Equal(t, "F1", result.FamilyId)
		assert.Len(t, result.Variants, 1)
		assert.Empty(t, result.Genes)
		assert.Equal(t, 1, result.SkippedVariants)
		assert.Len(t, result.Anomalies, 1)
		assert.Equal(t, searcherr.UnrankedConsequence, result.Anomalies[0].Kind)
	})

	t.Run("should report recessive genes", func(t *testing.T) {
		result, err := engine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.Recessive})
		assert.Nil(t, err)
		assert.Empty(t, result.Variants)

		var ids []string
		for _, gv := range result.Genes {
			ids = append(ids, gv.GeneId)
		}
		assert.ElementsMatch(t, []string{"G1", "G3"}, ids)
	})

	t.Run("should report genes when a burden filter is given", func(t *testing.T) {
		result, err := engine.SearchFamily(ctx, FamilySearch{
			Family:       trio("F1"),
			Mode:         im.Dominant,
			BurdenFilter: filters.BurdenFilter{"proband": burden.AtLeast2},
		})
		assert.Nil(t, err)

		var ids []string
		for _, gv := range result.Genes {
			ids = append(ids, gv.GeneId)
		}
		assert.ElementsMatch(t, []string{"G1", "G3"}, ids)
	})

	t.Run("should reject bad requests before reading data", func(t *testing.T) {
		_, err := engine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: "made_up"})
		assert.True(t, searcherr.IsKind(err, searcherr.UnknownInheritanceMode))

		_, err = engine.SearchFamily(ctx, FamilySearch{
			Family:        trio("F1"),
			Mode:          im.Dominant,
			QualityFilter: &filters.QualityFilter{MinAb: intPtr(150)},
		})
		assert.True(t, searcherr.IsKind(err, searcherr.InvalidFilterSpec))

		_, err = engine.SearchFamily(ctx, FamilySearch{
			Family:       trio("F1"),
			Mode:         im.Dominant,
			BurdenFilter: filters.BurdenFilter{"proband": constants.BurdenClass("lots")},
		})
		assert.True(t, searcherr.IsKind(err, searcherr.InvalidFilterSpec))
	})

	t.Run("should stop at the first unranked consequence in fail-fast mode", func(t *testing.T) {
		cfg := testConfig()
		cfg.Search.FailOnUnrankedConsequence = true
		strict, _ := newTestEngine(cfg)

		_, err := strict.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.DeNovo})
		assert.True(t, searcherr.IsKind(err, searcherr.UnrankedConsequence))
	})

	t.Run("should apply the strict frequency policy", func(t *testing.T) {
		vf := &filters.VariantFilter{RefFreqs: []filters.RefFreq{{Population: "exac", MaxFreq: 0.01}}}

		permissive, err := engine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.DeNovo, VariantFilter: vf})
		assert.Nil(t, err)
		assert.Len(t, permissive.Variants, 1)

		cfg := testConfig()
		cfg.Search.StrictPopulationFrequencies = true
		strictEngine, _ := newTestEngine(cfg)
		strict, err := strictEngine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.DeNovo, VariantFilter: vf})
		assert.Nil(t, err)
		assert.Empty(t, strict.Variants)
	})
}

func TestSearchFamilyAlleleCounts(t *testing.T) {
	engine, _ := newTestEngine(testConfig())
	ctx := context.Background()
	acf := &filters.AlleleCountFilter{AffectedGte: intPtr(2)}

	t.Run("should apply the allele count filter alongside a burden filter", func(t *testing.T) {
		result, err := engine.SearchFamily(ctx, FamilySearch{
			Family:            trio("F1"),
			Mode:              im.Dominant,
			AlleleCountFilter: acf,
			BurdenFilter:      filters.BurdenFilter{"proband": burden.AtLeast1},
		})
		assert.Nil(t, err)
		assert.Len(t, result.Genes, 1)
		assert.Equal(t, "G3", result.Genes[0].GeneId)
		for _, v := range result.Genes[0].Variants {
			assert.Equal(t, 2, *v.Genotypes["proband"].NumAlt)
		}
	})

	t.Run("should apply the allele count filter to compound hets", func(t *testing.T) {
		result, err := engine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.CompoundHet})
		assert.Nil(t, err)
		assert.Len(t, result.Genes, 1)

		result, err = engine.SearchFamily(ctx, FamilySearch{Family: trio("F1"), Mode: im.CompoundHet, AlleleCountFilter: acf})
		assert.Nil(t, err)
		assert.Empty(t, result.Genes)
	})
}

// rawVariant leaves the derived annotation fields empty, as a datastore
// holding only vep output would.
func rawVariant(chrom string, pos int64, geneId string, consequence string, numAlts map[string]int) models.Variant {
	xpos, _ := chromosome.Xpos(chrom, pos)
	v := models.Variant{
		Xpos: xpos,
		Ref:  "C",
		Alt:  "T",
		Annotation: models.Annotation{
			VepAnnotations: []models.VepAnnotation{{GeneId: geneId, Consequence: consequence}},
		},
		Genotypes: map[string]models.Genotype{},
	}
	for indivId, numAlt := range numAlts {
		v.Genotypes[indivId] = models.Genotype{NumAlt: intPtr(numAlt), Gq: intPtr(99), Filter: "pass"}
	}
	return v
}

func TestSearchRawRecords(t *testing.T) {
	engine, ds := newTestEngine(testConfig())
	ctx := context.Background()
	deNovo := map[string]int{"proband": 1, "mother": 0, "father": 0}
	ds.AddFamilyVariants("P1", "F3",
		rawVariant("3", 100, "G5", "missense_variant", deNovo),
		rawVariant("5", 100, "G7", "intron_variant&synonymous_variant", deNovo),
	)

	search := func(vf *filters.VariantFilter) []models.Variant {
		result, err := engine.SearchFamily(ctx, FamilySearch{Family: trio("F3"), Mode: im.DeNovo, VariantFilter: vf})
		assert.Nil(t, err)
		return result.Variants
	}

	t.Run("should annotate raw records", func(t *testing.T) {
		variants := search(nil)
		assert.Len(t, variants, 2)
		assert.Equal(t, "missense_variant", variants[0].Annotation.VepConsequence)
		assert.Equal(t, "synonymous_variant", variants[1].Annotation.VepConsequence)
	})

	t.Run("should filter raw records by consequence", func(t *testing.T) {
		variants := search(&filters.VariantFilter{SoAnnotations: []string{"missense_variant"}})
		assert.Len(t, variants, 1)
		assert.Equal(t, []string{"G5"}, variants[0].Annotation.CodingGeneIds)

		// a raw term that is not the worst consequence passes storage but not the exact check
		assert.Empty(t, search(&filters.VariantFilter{SoAnnotations: []string{"intron_variant"}}))
	})

	t.Run("should filter raw records by gene", func(t *testing.T) {
		variants := search(&filters.VariantFilter{Genes: []string{"G5"}})
		assert.Len(t, variants, 1)
		assert.Equal(t, "missense_variant", variants[0].Annotation.VepConsequence)
	})

	t.Run("should list raw records in a gene", func(t *testing.T) {
		variants, err := engine.SearchFamilyGene(ctx, trio("F3"), "G5", nil, nil)
		assert.Nil(t, err)
		assert.Len(t, variants, 1)

		variants, err = engine.SearchFamilyGene(ctx, trio("F3"), "G5", &filters.VariantFilter{SoAnnotations: []string{"stop_gained"}}, nil)
		assert.Nil(t, err)
		assert.Empty(t, variants)
	})
}

func TestSearchFamilies(t *testing.T) {
	engine, _ := newTestEngine(testConfig())
	ctx := context.Background()

	t.Run("should keep results in request order", func(t *testing.T) {
		results, err := engine.SearchFamilies(ctx, []FamilySearch{
			{Family: trio("F2"), Mode: im.Dominant},
			{Family: trio("F1"), Mode: im.Dominant},
			{Family: trio("F3"), Mode: im.Dominant},
		})
		assert.Nil(t, err)
		assert.Len(t, results, 3)
		assert.Equal(t, "F2", results[0].FamilyId)
		assert.Len(t, results[0].Variants, 1)
		assert.Equal(t, "F1", results[1].FamilyId)
		assert.Len(t, results[1].Variants, 4)
		assert.Empty(t, results[2].Variants)

		// each search gets its own diagnostics
		assert.Equal(t, 0, results[0].SkippedVariants)
		assert.Equal(t, 1, results[1].SkippedVariants)
		assert.NotEqual(t, results[0].RequestId, results[1].RequestId)
	})

	t.Run("should fail on the first bad search", func(t *testing.T) {
		_, err := engine.SearchFamilies(ctx, []FamilySearch{
			{Family: trio("F1"), Mode: im.Dominant},
			{Family: trio("F2"), Mode: "made_up"},
		})
		assert.True(t, searcherr.IsKind(err, searcherr.UnknownInheritanceMode))
	})
}

func TestSearchCohortGenes(t *testing.T) {
	engine, _ := newTestEngine(testConfig())
	ctx := context.Background()
	cases := models.Cohort{ProjectId: "P1", CohortId: "CASES", IndivIds: []string{"a", "b", "c"}}

	t.Run("should map genes to individuals", func(t *testing.T) {
		result, err := engine.SearchCohortGenes(ctx, CohortSearch{Cohort: cases, Mode: im.Dominant})
		assert.Nil(t, err)
		assert.Equal(t, map[string][]string{"G1": {"a", "b"}, "G3": {"c"}}, result.Genes)

		result, err = engine.SearchCohortGenes(ctx, CohortSearch{Cohort: cases, Mode: im.Recessive})
		assert.Nil(t, err)
		assert.Equal(t, map[string][]string{"G1": {"a"}}, result.Genes)
	})

	t.Run("should reject modes a cohort cannot answer", func(t *testing.T) {
		_, err := engine.SearchCohortGenes(ctx, CohortSearch{Cohort: cases, Mode: im.DeNovo})
		assert.True(t, searcherr.IsKind(err, searcherr.InvalidFilterSpec))

		_, err = engine.SearchCohortGenes(ctx, CohortSearch{Cohort: cases, Mode: "made_up"})
		assert.True(t, searcherr.IsKind(err, searcherr.UnknownInheritanceMode))
	})

	t.Run("should compare cases to controls", func(t *testing.T) {
		controls := models.Cohort{ProjectId: "P1", CohortId: "CONTROLS", IndivIds: []string{"x", "y"}}
		rows, err := engine.CompareCohortToControls(ctx, CohortSearch{Cohort: cases, Mode: im.Dominant}, controls, constantTester{})
		assert.Nil(t, err)
		assert.Len(t, rows, 2)

		for _, row := range rows {
			switch row.GeneId {
			case "G1":
				assert.Equal(t, 2, row.SampleHits)
				assert.Equal(t, 1, row.ControlHits)
				assert.Equal(t, 2, row.ControlSize)
			case "G3":
				assert.Equal(t, 1, row.SampleHits)
				assert.Equal(t, 0, row.ControlHits)
			}
		}
	})
}

type constantTester struct{}

func (constantTester) TwoSidedPValue(sampleHits int, sampleMisses int, controlHits int, controlMisses int) (float64, error) {
	return 0.5, nil
}

func TestFamilyLookups(t *testing.T) {
	engine, _ := newTestEngine(testConfig())
	ctx := context.Background()

	t.Run("should list a family's variants in one gene", func(t *testing.T) {
		variants, err := engine.SearchFamilyGene(ctx, trio("F1"), "G1", nil, &filters.QualityFilter{MinGq: intPtr(100)})
		assert.Nil(t, err)
		assert.Len(t, variants, 2)

		// failing genotypes are masked rather than dropped
		assert.Nil(t, variants[0].Genotypes["proband"].NumAlt)
	})

	t.Run("should look up a single variant", func(t *testing.T) {
		xpos, _ := chromosome.Xpos("3", 100)
		v, err := engine.GetFamilyVariant(ctx, "P1", "F1", xpos, "A", "G")
		assert.Nil(t, err)
		assert.NotNil(t, v)
		assert.Equal(t, "missense_variant", v.Annotation.VepConsequence)

		v, err = engine.GetFamilyVariant(ctx, "P1", "F1", xpos, "A", "C")
		assert.Nil(t, err)
		assert.Nil(t, v)
	})
}
