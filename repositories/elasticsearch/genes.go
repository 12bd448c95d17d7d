package elasticsearch

import (
	"context"

	"xbrowse/models/constants/chromosome"
	"xbrowse/models/searcherr"
	"xbrowse/repositories"

	"github.com/mitchellh/mapstructure"
)

func (r *Repository) GetGeneBounds(ctx context.Context, geneId string) (int64, int64, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"geneId.keyword": geneId}},
				},
			},
		},
		"size": 1,
	}

	response, err := r.search(ctx, r.cfg.Elasticsearch.GenesIndex, query)
	if err != nil {
		return 0, 0, err
	}
	docs, err := hits(response)
	if err != nil {
		return 0, 0, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: gene %s", geneId)
	}
	if len(docs) == 0 {
		return 0, 0, searcherr.New(searcherr.DatastoreFailure, "elasticsearch: gene %s not found", geneId)
	}

	var gene repositories.Gene
	if err := mapstructure.WeakDecode(docs[0].Path("_source").Data(), &gene); err != nil {
		return 0, 0, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: decode gene %s", geneId)
	}
	return geneXposBounds(gene)
}

// ListGenes pages through the whole genes index ordered by gene id.
func (r *Repository) ListGenes(ctx context.Context) ([]repositories.Gene, error) {
	var (
		genes       []repositories.Gene
		searchAfter []interface{}
		size        = r.pageSize()
	)

	for {
		query := map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"size":  size,
			"sort": []map[string]interface{}{
				{"geneId.keyword": map[string]interface{}{"order": "asc"}},
			},
		}
		if len(searchAfter) > 0 {
			query["search_after"] = searchAfter
		}

		response, err := r.search(ctx, r.cfg.Elasticsearch.GenesIndex, query)
		if err != nil {
			return nil, err
		}
		docs, err := hits(response)
		if err != nil {
			return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: list genes")
		}

		for _, doc := range docs {
			var gene repositories.Gene
			if err := mapstructure.WeakDecode(doc.Path("_source").Data(), &gene); err != nil {
				return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: decode gene")
			}
			genes = append(genes, gene)
		}

		if len(docs) < size {
			return genes, nil
		}
		sortValues, ok := docs[len(docs)-1].Path("sort").Data().([]interface{})
		if !ok {
			return genes, nil
		}
		searchAfter = sortValues
	}
}

func geneXposBounds(gene repositories.Gene) (int64, int64, error) {
	start, err := chromosome.Xpos(gene.Chrom, gene.Start)
	if err != nil {
		return 0, 0, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: gene %s", gene.GeneId)
	}
	end, err := chromosome.Xpos(gene.Chrom, gene.End)
	if err != nil {
		return 0, 0, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: gene %s", gene.GeneId)
	}
	return start, end, nil
}
