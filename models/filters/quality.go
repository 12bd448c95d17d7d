package filters

import (
	"encoding/json"

	"xbrowse/models/searcherr"
)

// QualityFilter gates individual genotypes. Allele balance bounds are
// percentages and only apply to heterozygous calls.
type QualityFilter struct {
	VcfFilter *string `mapstructure:"vcf_filter"`
	MinGq     *int    `mapstructure:"min_gq"`
	MinAb     *int    `mapstructure:"min_ab"`
	MaxAb     *int    `mapstructure:"max_ab"`
	MinDp     *int    `mapstructure:"min_dp"`

	// cohort-level artifact suppression, see CohortGeneVariation
	HetRatio    *float64 `mapstructure:"het_ratio"`
	HomAltRatio *float64 `mapstructure:"hom_alt_ratio"`
}

func (q *QualityFilter) Validate() error {
	if q.MinGq != nil && *q.MinGq < 0 {
		return searcherr.New(searcherr.InvalidFilterSpec, "min_gq must not be negative")
	}
	if q.MinDp != nil && *q.MinDp < 0 {
		return searcherr.New(searcherr.InvalidFilterSpec, "min_dp must not be negative")
	}
	for name, ab := range map[string]*int{"min_ab": q.MinAb, "max_ab": q.MaxAb} {
		if ab != nil && (*ab < 0 || *ab > 100) {
			return searcherr.New(searcherr.InvalidFilterSpec, "%s must be a percentage, got %d", name, *ab)
		}
	}
	if q.MinAb != nil && q.MaxAb != nil && *q.MinAb > *q.MaxAb {
		return searcherr.New(searcherr.InvalidFilterSpec, "min_ab %d exceeds max_ab %d", *q.MinAb, *q.MaxAb)
	}
	for name, ratio := range map[string]*float64{"het_ratio": q.HetRatio, "hom_alt_ratio": q.HomAltRatio} {
		if ratio != nil && (*ratio < 0 || *ratio > 1) {
			return searcherr.New(searcherr.InvalidFilterSpec, "%s must be within [0,1], got %v", name, *ratio)
		}
	}
	return nil
}

func (q *QualityFilter) ToJSON() map[string]interface{} {
	out := map[string]interface{}{}
	if q.VcfFilter != nil {
		out["vcf_filter"] = *q.VcfFilter
	}
	if q.MinGq != nil {
		out["min_gq"] = *q.MinGq
	}
	if q.MinAb != nil {
		out["min_ab"] = *q.MinAb
	}
	if q.MaxAb != nil {
		out["max_ab"] = *q.MaxAb
	}
	if q.MinDp != nil {
		out["min_dp"] = *q.MinDp
	}
	if q.HetRatio != nil {
		out["het_ratio"] = *q.HetRatio
	}
	if q.HomAltRatio != nil {
		out["hom_alt_ratio"] = *q.HomAltRatio
	}
	return out
}

func QualityFilterFromJSON(raw map[string]interface{}) (*QualityFilter, error) {
	var q QualityFilter
	if err := decodeStrict(raw, &q); err != nil {
		return nil, searcherr.New(searcherr.InvalidFilterSpec, "quality filter: %v", err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (q *QualityFilter) UnmarshalJSON(data []byte) error {
	raw, err := bytesToMap(data)
	if err != nil {
		return searcherr.New(searcherr.InvalidFilterSpec, "quality filter: %v", err)
	}
	parsed, err := QualityFilterFromJSON(raw)
	if err != nil {
		return err
	}
	*q = *parsed
	return nil
}

func (q QualityFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.ToJSON())
}
