package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"xbrowse/models"
	"xbrowse/models/searcherr"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	es7 "github.com/elastic/go-elasticsearch/v7"
	"go.uber.org/zap"
)

// NewClient builds an ES7 client that retries gateway and throttling
// responses with exponential backoff.
func NewClient(cfg *models.Config) (*es7.Client, error) {
	var (
		clusterURLs  = []string{cfg.Elasticsearch.Url}
		retryBackoff = backoff.NewExponentialBackOff()
	)

	esCfg := es7.Config{
		Addresses: clusterURLs,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,

		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	}

	if cfg.Debug {
		// local clusters run with self-signed certificates
		esCfg.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	client, err := es7.NewClient(esCfg)
	if err != nil {
		return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: create client")
	}
	return client, nil
}

// Repository serves variants and gene loci out of Elasticsearch.
type Repository struct {
	es     *es7.Client
	cfg    *models.Config
	logger *zap.Logger
}

func NewRepository(es *es7.Client, cfg *models.Config, logger *zap.Logger) *Repository {
	return &Repository{es: es, cfg: cfg, logger: logger}
}

func (r *Repository) pageSize() int {
	if r.cfg.Elasticsearch.PageSize > 0 {
		return r.cfg.Elasticsearch.PageSize
	}
	return 1000
}

// search runs one query against an index and returns the parsed response.
func (r *Repository) search(ctx context.Context, index string, query map[string]interface{}) (*gabs.Container, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: encode query")
	}

	if r.cfg.Debug {
		r.logger.Debug("elasticsearch: outbound query", zap.String("index", index), zap.String("body", buf.String()))
	}

	start := time.Now()
	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(index),
		r.es.Search.WithBody(&buf),
		r.es.Search.WithTrackTotalHits(false),
	)
	if err != nil {
		return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: search %s", index)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: read response")
	}
	if res.IsError() {
		return nil, searcherr.New(searcherr.DatastoreFailure, "elasticsearch: search %s returned %s", index, res.Status())
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, searcherr.Wrap(searcherr.DatastoreFailure, err, "elasticsearch: parse response")
	}

	r.logger.Debug("elasticsearch: query done",
		zap.String("index", index),
		zap.Duration("took", time.Since(start)))

	return parsed, nil
}

// hits returns the hit containers of a search response.
func hits(response *gabs.Container) ([]*gabs.Container, error) {
	if !response.ExistsP("hits.hits") {
		return nil, nil
	}
	children, err := response.Path("hits.hits").Children()
	if err != nil {
		return nil, fmt.Errorf("unexpected hits shape: %w", err)
	}
	return children, nil
}
