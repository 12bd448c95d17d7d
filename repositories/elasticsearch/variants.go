package elasticsearch

import (
	"context"
	"fmt"

	"xbrowse/models"
	"xbrowse/models/constants"
	gr "xbrowse/models/constants/genotype-requirement"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"

	"github.com/Jeffail/gabs"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// variantSort orders hits by unique tuple so search_after paging is stable.
var variantSort = []map[string]interface{}{
	{"xpos": map[string]interface{}{"order": "asc"}},
	{"ref.keyword": map[string]interface{}{"order": "asc"}},
	{"alt.keyword": map[string]interface{}{"order": "asc"}},
}

// BuildVariantQuery translates a datastore query into an ES bool filter.
// The result narrows to a superset of what the in-process filters accept;
// quality and annotation edge cases are left to the caller.
func BuildVariantQuery(query repositories.VariantQuery, size int, searchAfter []interface{}) map[string]interface{} {
	mustMap := []map[string]interface{}{
		{"term": map[string]interface{}{"projectId.keyword": query.ProjectId}},
		{"term": map[string]interface{}{"familyId.keyword": query.FamilyId}},
	}

	for indivId, req := range query.GenotypeFilter {
		mustMap = append(mustMap, genotypeClause(indivId, req))
	}

	if vf := query.VariantFilter; vf != nil {
		mustMap = append(mustMap, variantFilterClauses(vf)...)
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
				},
			},
		},
		"size": size,
		"sort": variantSort,
	}
	if len(searchAfter) > 0 {
		body["search_after"] = searchAfter
	}
	return body
}

func genotypeClause(indivId string, req constants.GenotypeRequirement) map[string]interface{} {
	field := fmt.Sprintf("genotypes.%s.numAlt", indivId)

	switch req {
	case gr.RefRef:
		return map[string]interface{}{"term": map[string]interface{}{field: 0}}
	case gr.RefAlt:
		return map[string]interface{}{"term": map[string]interface{}{field: 1}}
	case gr.AltAlt:
		return map[string]interface{}{"term": map[string]interface{}{field: 2}}
	case gr.HasAlt:
		return map[string]interface{}{"range": map[string]interface{}{field: map[string]interface{}{"gte": 1}}}
	case gr.HasRef:
		return map[string]interface{}{"range": map[string]interface{}{field: map[string]interface{}{"gte": 0, "lte": 1}}}
	default:
		return map[string]interface{}{"exists": map[string]interface{}{"field": field}}
	}
}

func variantFilterClauses(vf *filters.VariantFilter) []map[string]interface{} {
	var clauses []map[string]interface{}

	if len(vf.VariantTypes) > 0 {
		types := make([]string, 0, len(vf.VariantTypes))
		for _, t := range vf.VariantTypes {
			types = append(types, string(t))
		}
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{"variantType.keyword": types},
		})
	}

	// documents may hold raw vep entries only; the exact check runs after
	// annotation, so these clauses accept either form
	if len(vf.SoAnnotations) > 0 {
		clauses = append(clauses, anyOf(
			map[string]interface{}{"terms": map[string]interface{}{"annotation.vepConsequence.keyword": vf.SoAnnotations}},
			// analyzed text, so '&'-joined consequences match term by term
			map[string]interface{}{"terms": map[string]interface{}{"annotation.vepAnnotation.consequence": vf.SoAnnotations}},
		))
	}

	if len(vf.Genes) > 0 {
		clauses = append(clauses, anyOf(
			map[string]interface{}{"terms": map[string]interface{}{"annotation.codingGeneIds.keyword": vf.Genes}},
			map[string]interface{}{"terms": map[string]interface{}{"annotation.vepAnnotation.gene.keyword": vf.Genes}},
		))
	}

	if len(vf.Locations) > 0 {
		ranges := make([]map[string]interface{}, 0, len(vf.Locations))
		for _, loc := range vf.Locations {
			ranges = append(ranges, map[string]interface{}{
				"range": map[string]interface{}{
					"xpos": map[string]interface{}{"gte": loc.Start, "lte": loc.End},
				},
			})
		}
		clauses = append(clauses, map[string]interface{}{
			"bool": map[string]interface{}{"should": ranges, "minimum_should_match": 1},
		})
	}

	// an absent frequency may still pass under the permissive policy
	for _, rf := range vf.RefFreqs {
		field := fmt.Sprintf("annotation.freqs.%s", rf.Population)
		clauses = append(clauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"range": map[string]interface{}{field: map[string]interface{}{"lte": rf.MaxFreq}}},
					{"bool": map[string]interface{}{
						"must_not": []map[string]interface{}{
							{"exists": map[string]interface{}{"field": field}},
						},
					}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	return clauses
}

func (r *Repository) GetVariants(ctx context.Context, query repositories.VariantQuery) (repositories.VariantCursor, error) {
	return &variantCursor{repo: r, query: query}, nil
}

func (r *Repository) GetVariantsInGene(ctx context.Context, projectId string, familyId string, geneId string, variantFilter *filters.VariantFilter) (repositories.VariantCursor, error) {
	var restricted filters.VariantFilter
	if variantFilter != nil {
		restricted = *variantFilter
	}
	restricted = restricted.AddGene(geneId)

	return r.GetVariants(ctx, repositories.VariantQuery{
		ProjectId:     projectId,
		FamilyId:      familyId,
		VariantFilter: &restricted,
	})
}

func (r *Repository) GetSingleVariant(ctx context.Context, projectId string, familyId string, xpos int64, ref string, alt string) (*models.Variant, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"projectId.keyword": projectId}},
					{"term": map[string]interface{}{"familyId.keyword": familyId}},
					{"term": map[string]interface{}{"xpos": xpos}},
					{"term": map[string]interface{}{"ref.keyword": ref}},
					{"term": map[string]interface{}{"alt.keyword": alt}},
				},
			},
		},
		"size": 1,
	}

	response, err := r.search(ctx, r.cfg.Elasticsearch.VariantsIndex, query)
	if err != nil {
		return nil, err
	}
	docs, err := hits(response)
	if err != nil {
		return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: single variant")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	v, err := decodeVariant(docs[0])
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// variantCursor pages through a query with search_after, fetching a page
// only when the previous one has been consumed.
type variantCursor struct {
	repo  *Repository
	query repositories.VariantQuery

	page        []models.Variant
	searchAfter []interface{}
	exhausted   bool

	current models.Variant
	err     error
}

func (c *variantCursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	for len(c.page) == 0 {
		if c.exhausted {
			return false
		}
		if err := c.fetch(ctx); err != nil {
			c.err = err
			return false
		}
	}
	c.current, c.page = c.page[0], c.page[1:]
	return true
}

func (c *variantCursor) fetch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	size := c.repo.pageSize()
	response, err := c.repo.search(ctx, c.repo.cfg.Elasticsearch.VariantsIndex, BuildVariantQuery(c.query, size, c.searchAfter))
	if err != nil {
		return err
	}

	docs, err := hits(response)
	if err != nil {
		return searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: variants page")
	}
	if len(docs) < size {
		c.exhausted = true
	}
	if len(docs) == 0 {
		return nil
	}

	for _, doc := range docs {
		v, err := decodeVariant(doc)
		if err != nil {
			return err
		}
		c.page = append(c.page, v)
	}

	last := docs[len(docs)-1]
	sortValues, ok := last.Path("sort").Data().([]interface{})
	if !ok {
		c.repo.logger.Warn("elasticsearch: hit without sort values, stopping pagination",
			zap.String("family", c.query.FamilyId))
		c.exhausted = true
		return nil
	}
	c.searchAfter = sortValues
	return nil
}

func (c *variantCursor) Variant() models.Variant { return c.current }
func (c *variantCursor) Err() error              { return c.err }
func (c *variantCursor) Close() error {
	c.page = nil
	c.exhausted = true
	return nil
}

func decodeVariant(hit *gabs.Container) (models.Variant, error) {
	var v models.Variant

	source := hit.Path("_source").Data()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &v,
	})
	if err != nil {
		return v, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: variant decoder")
	}
	if err := decoder.Decode(source); err != nil {
		return v, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: decode variant")
	}
	return v, nil
}

func anyOf(clauses ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{"should": clauses, "minimum_should_match": 1},
	}
}
