package memory

import (
	"context"
	"testing"

	"xbrowse/models"
	"xbrowse/models/constants/chromosome"
	gr "xbrowse/models/constants/genotype-requirement"
	"xbrowse/models/filters"
	"xbrowse/repositories"
	"xbrowse/services/severity"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func loadTrio(t *testing.T) (*Datastore, []models.Family) {
	ds, families, err := LoadFixture("testdata/trio.yml", severity.NewRanker(), zap.NewNop())
	assert.Nil(t, err)
	return ds, families
}

func TestLoadFixture(t *testing.T) {
	ds, families := loadTrio(t)

	t.Run("should load families", func(t *testing.T) {
		assert.Len(t, families, 1)
		assert.Equal(t, "F1", families[0].FamilyId)
		assert.Equal(t, []string{"proband", "mother", "father"}, families[0].IndivIds())
	})

	t.Run("should compute xpos and annotate variants", func(t *testing.T) {
		variants, err := repositories.Collect(context.Background(), mustQuery(t, ds, repositories.VariantQuery{ProjectId: "P1", FamilyId: "F1"}))
		assert.Nil(t, err)
		assert.Len(t, variants, 3)

		// sorted by xpos
		first := variants[0]
		expected, _ := chromosome.Xpos("1", 100)
		assert.Equal(t, expected, first.Xpos)
		assert.Equal(t, "stop_gained", first.Annotation.VepConsequence)

		second := variants[1]
		assert.Equal(t, "missense_variant", second.Annotation.VepConsequence)
		assert.Equal(t, []string{"ENSG00000001"}, second.Annotation.CodingGeneIds)

		third := variants[2]
		assert.Equal(t, "chrX", third.Chr())
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, _, err := LoadFixture("testdata/absent.yml", severity.NewRanker(), zap.NewNop())
		assert.NotNil(t, err)
	})
}

func mustQuery(t *testing.T, ds *Datastore, q repositories.VariantQuery) repositories.VariantCursor {
	cursor, err := ds.GetVariants(context.Background(), q)
	assert.Nil(t, err)
	return cursor
}

func TestDatastore(t *testing.T) {
	ds, _ := loadTrio(t)
	ctx := context.Background()

	t.Run("should apply genotype filters", func(t *testing.T) {
		variants, err := repositories.Collect(ctx, mustQuery(t, ds, repositories.VariantQuery{
			ProjectId:      "P1",
			FamilyId:       "F1",
			GenotypeFilter: filters.GenotypeFilter{"proband": gr.AltAlt},
		}))
		assert.Nil(t, err)
		assert.Len(t, variants, 1)
	})

	t.Run("should apply basic variant filters", func(t *testing.T) {
		variants, err := repositories.Collect(ctx, mustQuery(t, ds, repositories.VariantQuery{
			ProjectId:     "P1",
			FamilyId:      "F1",
			VariantFilter: &filters.VariantFilter{SoAnnotations: []string{"missense_variant", "frameshift_variant"}},
		}))
		assert.Nil(t, err)
		assert.Len(t, variants, 2)
	})

	t.Run("should return nothing for an unknown family", func(t *testing.T) {
		variants, err := repositories.Collect(ctx, mustQuery(t, ds, repositories.VariantQuery{ProjectId: "P1", FamilyId: "F9"}))
		assert.Nil(t, err)
		assert.Empty(t, variants)
	})

	t.Run("should restrict to a gene", func(t *testing.T) {
		cursor, err := ds.GetVariantsInGene(ctx, "P1", "F1", "ENSG0000000X", nil)
		assert.Nil(t, err)
		variants, err := repositories.Collect(ctx, cursor)
		assert.Nil(t, err)
		assert.Len(t, variants, 1)
	})

	t.Run("should look up single variants", func(t *testing.T) {
		xpos, _ := chromosome.Xpos("1", 200)
		v, err := ds.GetSingleVariant(ctx, "P1", "F1", xpos, "A", "G")
		assert.Nil(t, err)
		assert.NotNil(t, v)

		v, err = ds.GetSingleVariant(ctx, "P1", "F1", xpos, "A", "T")
		assert.Nil(t, err)
		assert.Nil(t, v)
	})

	t.Run("should hand out copies", func(t *testing.T) {
		xpos, _ := chromosome.Xpos("1", 200)
		v, _ := ds.GetSingleVariant(ctx, "P1", "F1", xpos, "A", "G")
		v.Genotypes["proband"] = models.Genotype{}

		again, _ := ds.GetSingleVariant(ctx, "P1", "F1", xpos, "A", "G")
		assert.NotNil(t, again.Genotypes["proband"].NumAlt)
	})

	t.Run("should resolve gene bounds", func(t *testing.T) {
		start, end, err := ds.GetGeneBounds(ctx, "ENSG0000000X")
		assert.Nil(t, err)
		assert.Equal(t, "chrX", chromosome.ChrFromXpos(start))
		assert.Equal(t, int64(450), end-start)

		_, _, err = ds.GetGeneBounds(ctx, "ENSG_UNKNOWN")
		assert.NotNil(t, err)
	})

	t.Run("should list genes by id", func(t *testing.T) {
		genes, err := ds.ListGenes(ctx)
		assert.Nil(t, err)
		assert.Len(t, genes, 2)
		assert.Equal(t, "ENSG00000001", genes[0].GeneId)
		assert.Equal(t, "GENEX", genes[1].Symbol)
	})
}

func TestDatastoreRawRecords(t *testing.T) {
	ds := New()
	ctx := context.Background()

	xpos, _ := chromosome.Xpos("3", 100)
	ds.AddFamilyVariants("P1", "F1", models.Variant{
		Xpos: xpos,
		Ref:  "C",
		Alt:  "T",
		Annotation: models.Annotation{
			VepAnnotations: []models.VepAnnotation{{GeneId: "G5", Consequence: "intron_variant&missense_variant"}},
		},
	})

	t.Run("should narrow raw records by consequence", func(t *testing.T) {
		variants, err := repositories.Collect(ctx, mustQuery(t, ds, repositories.VariantQuery{
			ProjectId:     "P1",
			FamilyId:      "F1",
			VariantFilter: &filters.VariantFilter{SoAnnotations: []string{"missense_variant"}},
		}))
		assert.Nil(t, err)
		assert.Len(t, variants, 1)

		variants, err = repositories.Collect(ctx, mustQuery(t, ds, repositories.VariantQuery{
			ProjectId:     "P1",
			FamilyId:      "F1",
			VariantFilter: &filters.VariantFilter{SoAnnotations: []string{"stop_gained"}},
		}))
		assert.Nil(t, err)
		assert.Empty(t, variants)
	})

	t.Run("should find raw records in a gene", func(t *testing.T) {
		cursor, err := ds.GetVariantsInGene(ctx, "P1", "F1", "G5", nil)
		assert.Nil(t, err)
		variants, err := repositories.Collect(ctx, cursor)
		assert.Nil(t, err)
		assert.Len(t, variants, 1)

		cursor, err = ds.GetVariantsInGene(ctx, "P1", "F1", "G6", nil)
		assert.Nil(t, err)
		variants, err = repositories.Collect(ctx, cursor)
		assert.Nil(t, err)
		assert.Empty(t, variants)
	})
}
