package filters

import (
	"encoding/json"

	"xbrowse/models/searcherr"
)

// AlleleCountFilter bounds the summed alternate allele count across the
// affected and unaffected members of a family. Bounds are inclusive.
type AlleleCountFilter struct {
	AffectedGte   *int `mapstructure:"affected_gte"`
	AffectedLte   *int `mapstructure:"affected_lte"`
	UnaffectedGte *int `mapstructure:"unaffected_gte"`
	UnaffectedLte *int `mapstructure:"unaffected_lte"`
}

func (f *AlleleCountFilter) Validate() error {
	if f.AffectedGte != nil && f.AffectedLte != nil && *f.AffectedGte > *f.AffectedLte {
		return searcherr.New(searcherr.InvalidFilterSpec, "affected_gte %d exceeds affected_lte %d", *f.AffectedGte, *f.AffectedLte)
	}
	if f.UnaffectedGte != nil && f.UnaffectedLte != nil && *f.UnaffectedGte > *f.UnaffectedLte {
		return searcherr.New(searcherr.InvalidFilterSpec, "unaffected_gte %d exceeds unaffected_lte %d", *f.UnaffectedGte, *f.UnaffectedLte)
	}
	return nil
}

func (f *AlleleCountFilter) ToJSON() map[string]interface{} {
	out := map[string]interface{}{}
	for key, bound := range map[string]*int{
		"affected_gte":   f.AffectedGte,
		"affected_lte":   f.AffectedLte,
		"unaffected_gte": f.UnaffectedGte,
		"unaffected_lte": f.UnaffectedLte,
	} {
		if bound != nil {
			out[key] = *bound
		}
	}
	return out
}

func AlleleCountFilterFromJSON(raw map[string]interface{}) (*AlleleCountFilter, error) {
	var f AlleleCountFilter
	if err := decodeStrict(raw, &f); err != nil {
		return nil, searcherr.New(searcherr.InvalidFilterSpec, "allele count filter: %v", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *AlleleCountFilter) UnmarshalJSON(data []byte) error {
	raw, err := bytesToMap(data)
	if err != nil {
		return searcherr.New(searcherr.InvalidFilterSpec, "allele count filter: %v", err)
	}
	parsed, err := AlleleCountFilterFromJSON(raw)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}

func (f AlleleCountFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToJSON())
}
