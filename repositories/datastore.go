package repositories

import (
	"context"

	"xbrowse/models"
	"xbrowse/models/filters"
)

// VariantCursor is a lazily pulled, single-pass stream of variants.
// Restarting a stream means querying the datastore again.
type VariantCursor interface {
	Next(ctx context.Context) bool
	Variant() models.Variant
	Err() error
	Close() error
}

type VariantQuery struct {
	ProjectId        string
	FamilyId         string
	GenotypeFilter   filters.GenotypeFilter
	VariantFilter    *filters.VariantFilter
	QualityFilter    *filters.QualityFilter
	IndivsToConsider []string
}

// Datastore supplies annotated variants with per-individual genotypes.
// Implementations own their connection's concurrency discipline.
type Datastore interface {
	GetVariants(ctx context.Context, query VariantQuery) (VariantCursor, error)
	GetVariantsInGene(ctx context.Context, projectId string, familyId string, geneId string, variantFilter *filters.VariantFilter) (VariantCursor, error)
	GetSingleVariant(ctx context.Context, projectId string, familyId string, xpos int64, ref string, alt string) (*models.Variant, error)
}

type Gene struct {
	GeneId string `json:"geneId" yaml:"geneId" mapstructure:"geneId"`
	Symbol string `json:"name" yaml:"symbol" mapstructure:"name"`
	Chrom  string `json:"chrom" yaml:"chrom" mapstructure:"chrom"`
	Start  int64  `json:"start" yaml:"start" mapstructure:"start"`
	End    int64  `json:"end" yaml:"end" mapstructure:"end"`
}

// Reference resolves gene loci.
type Reference interface {
	GetGeneBounds(ctx context.Context, geneId string) (startXpos int64, endXpos int64, err error)
}

// GeneLister is implemented by references that can enumerate every gene,
// which lets callers cache bounds wholesale.
type GeneLister interface {
	ListGenes(ctx context.Context) ([]Gene, error)
}
