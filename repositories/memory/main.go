package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"xbrowse/models"
	"xbrowse/models/constants/chromosome"
	"xbrowse/models/filters"
	"xbrowse/repositories"
	"xbrowse/services/filtering"
)

type familyKey struct {
	projectId string
	familyId  string
}

// Datastore keeps variants per family in memory. It evaluates genotype class
// filters and the basic variant filter fields, the same narrowing a search
// index performs, and leaves quality gating and the exact variant filter to
// the caller. Stored variants may be raw or already annotated.
type Datastore struct {
	mu       sync.RWMutex
	variants map[familyKey][]models.Variant
	genes    map[string]repositories.Gene
}

func New() *Datastore {
	return &Datastore{
		variants: map[familyKey][]models.Variant{},
		genes:    map[string]repositories.Gene{},
	}
}

func (d *Datastore) AddFamilyVariants(projectId string, familyId string, variants ...models.Variant) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := familyKey{projectId, familyId}
	for _, v := range variants {
		d.variants[key] = append(d.variants[key], v.Clone())
	}
	sort.SliceStable(d.variants[key], func(i, j int) bool {
		return d.variants[key][i].Xpos < d.variants[key][j].Xpos
	})
}

func (d *Datastore) AddGenes(genes ...repositories.Gene) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range genes {
		d.genes[g.GeneId] = g
	}
}

func (d *Datastore) GetVariants(ctx context.Context, query repositories.VariantQuery) (repositories.VariantCursor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matches []models.Variant
	for _, v := range d.variants[familyKey{query.ProjectId, query.FamilyId}] {
		if !filtering.PassesGenotypeFilter(&v, query.GenotypeFilter) {
			continue
		}
		if ok, _ := filtering.PassesStoredBasics(&v, query.VariantFilter); !ok {
			continue
		}
		matches = append(matches, v.Clone())
	}
	return repositories.NewSliceCursor(matches), nil
}

func (d *Datastore) GetVariantsInGene(ctx context.Context, projectId string, familyId string, geneId string, variantFilter *filters.VariantFilter) (repositories.VariantCursor, error) {
	var restricted filters.VariantFilter
	if variantFilter != nil {
		restricted = *variantFilter
	}
	restricted = restricted.AddGene(geneId)

	return d.GetVariants(ctx, repositories.VariantQuery{
		ProjectId:     projectId,
		FamilyId:      familyId,
		VariantFilter: &restricted,
	})
}

func (d *Datastore) GetSingleVariant(ctx context.Context, projectId string, familyId string, xpos int64, ref string, alt string) (*models.Variant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	want := models.UniqueTuple{Xpos: xpos, Ref: ref, Alt: alt}
	for _, v := range d.variants[familyKey{projectId, familyId}] {
		if v.UniqueTuple() == want {
			found := v.Clone()
			return &found, nil
		}
	}
	return nil, nil
}

func (d *Datastore) GetGeneBounds(ctx context.Context, geneId string) (int64, int64, error) {
	d.mu.RLock()
	gene, ok := d.genes[geneId]
	d.mu.RUnlock()
	if !ok {
		return 0, 0, fmt.Errorf("gene %s not found", geneId)
	}

	start, err := chromosome.Xpos(gene.Chrom, gene.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := chromosome.Xpos(gene.Chrom, gene.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (d *Datastore) ListGenes(ctx context.Context) ([]repositories.Gene, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	genes := make([]repositories.Gene, 0, len(d.genes))
	for _, g := range d.genes {
		genes = append(genes, g)
	}
	sort.Slice(genes, func(i, j int) bool { return genes[i].GeneId < genes[j].GeneId })
	return genes, nil
}
