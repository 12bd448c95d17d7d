package filters

import (
	"encoding/json"
	"fmt"

	"xbrowse/models/constants"
	soTerm "xbrowse/models/constants/so-term"
	vt "xbrowse/models/constants/variant-type"
	"xbrowse/models/searcherr"
)

// VariantFilter is a declarative variant-level predicate. Empty fields are
// unconstrained.
type VariantFilter struct {
	VariantTypes  []constants.VariantType
	SoAnnotations []string
	Annotations   map[string][]interface{}
	RefFreqs      []RefFreq
	Locations     []Location
	Genes         []string
}

type RefFreq struct {
	Population string
	MaxFreq    float64
}

// Location is an inclusive xpos interval.
type Location struct {
	Start int64
	End   int64
}

// AddGene returns a copy of the filter restricted to one more gene.
func (f VariantFilter) AddGene(geneId string) VariantFilter {
	out := f
	out.Genes = append(append([]string(nil), f.Genes...), geneId)
	return out
}

func (f *VariantFilter) Validate() error {
	for _, t := range f.VariantTypes {
		if _, err := vt.CastToVariantType(string(t)); err != nil {
			return searcherr.New(searcherr.InvalidFilterSpec, "variant_types: %v", err)
		}
	}
	for _, term := range f.SoAnnotations {
		if term == "" || !soTerm.IsKnown(term) {
			return searcherr.New(searcherr.InvalidFilterSpec, "so_annotations: unknown consequence %q", term)
		}
	}
	for key := range f.Annotations {
		if key == "" {
			return searcherr.New(searcherr.InvalidFilterSpec, "annotations: empty key")
		}
	}
	for _, rf := range f.RefFreqs {
		if rf.Population == "" {
			return searcherr.New(searcherr.InvalidFilterSpec, "ref_freqs: empty population")
		}
		if rf.MaxFreq < 0 || rf.MaxFreq > 1 {
			return searcherr.New(searcherr.InvalidFilterSpec, "ref_freqs: %s ceiling %v outside [0,1]", rf.Population, rf.MaxFreq)
		}
	}
	for _, loc := range f.Locations {
		if loc.End < loc.Start {
			return searcherr.New(searcherr.InvalidFilterSpec, "locations: interval [%d,%d] is inverted", loc.Start, loc.End)
		}
	}
	return nil
}

// ToJSON renders the filter in the request layer's dictionary shape.
func (f *VariantFilter) ToJSON() map[string]interface{} {
	out := map[string]interface{}{}
	if len(f.VariantTypes) > 0 {
		types := make([]interface{}, 0, len(f.VariantTypes))
		for _, t := range f.VariantTypes {
			types = append(types, string(t))
		}
		out["variant_types"] = types
	}
	if len(f.SoAnnotations) > 0 {
		out["so_annotations"] = stringsToInterfaces(f.SoAnnotations)
	}
	if len(f.Annotations) > 0 {
		annotations := make(map[string]interface{}, len(f.Annotations))
		for key, values := range f.Annotations {
			annotations[key] = append([]interface{}(nil), values...)
		}
		out["annotations"] = annotations
	}
	if len(f.RefFreqs) > 0 {
		freqs := make([]interface{}, 0, len(f.RefFreqs))
		for _, rf := range f.RefFreqs {
			freqs = append(freqs, []interface{}{rf.Population, rf.MaxFreq})
		}
		out["ref_freqs"] = freqs
	}
	if len(f.Locations) > 0 {
		locations := make([]interface{}, 0, len(f.Locations))
		for _, loc := range f.Locations {
			locations = append(locations, []interface{}{loc.Start, loc.End})
		}
		out["locations"] = locations
	}
	if len(f.Genes) > 0 {
		out["genes"] = stringsToInterfaces(f.Genes)
	}
	return out
}

type variantFilterDocument struct {
	VariantTypes  []string                 `mapstructure:"variant_types"`
	SoAnnotations []string                 `mapstructure:"so_annotations"`
	Annotations   map[string][]interface{} `mapstructure:"annotations"`
	RefFreqs      [][]interface{}          `mapstructure:"ref_freqs"`
	Locations     [][]interface{}          `mapstructure:"locations"`
	Genes         []string                 `mapstructure:"genes"`
}

// VariantFilterFromJSON is the inverse of ToJSON. The result is validated.
func VariantFilterFromJSON(raw map[string]interface{}) (*VariantFilter, error) {
	var doc variantFilterDocument
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, searcherr.New(searcherr.InvalidFilterSpec, "variant filter: %v", err)
	}

	f := &VariantFilter{}
	for _, t := range doc.VariantTypes {
		f.VariantTypes = append(f.VariantTypes, constants.VariantType(t))
	}
	if len(doc.SoAnnotations) > 0 {
		f.SoAnnotations = doc.SoAnnotations
	}
	if len(doc.Annotations) > 0 {
		f.Annotations = doc.Annotations
	}
	for _, pair := range doc.RefFreqs {
		if len(pair) != 2 {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "ref_freqs: expected [population, max_freq], got %v", pair)
		}
		population, ok := pair[0].(string)
		if !ok {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "ref_freqs: population must be a string, got %T", pair[0])
		}
		maxFreq, err := toFloat64(pair[1])
		if err != nil {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "ref_freqs: %v", err)
		}
		f.RefFreqs = append(f.RefFreqs, RefFreq{Population: population, MaxFreq: maxFreq})
	}
	for _, pair := range doc.Locations {
		if len(pair) != 2 {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "locations: expected [start, end], got %v", pair)
		}
		start, startErr := toInt64(pair[0])
		end, endErr := toInt64(pair[1])
		if startErr != nil || endErr != nil {
			return nil, searcherr.New(searcherr.InvalidFilterSpec, "locations: bounds must be integers, got %v", pair)
		}
		f.Locations = append(f.Locations, Location{Start: start, End: end})
	}
	if len(doc.Genes) > 0 {
		f.Genes = doc.Genes
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f VariantFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToJSON())
}

func (f *VariantFilter) UnmarshalJSON(data []byte) error {
	raw, err := bytesToMap(data)
	if err != nil {
		return searcherr.New(searcherr.InvalidFilterSpec, "variant filter: %v", err)
	}
	parsed, err := VariantFilterFromJSON(raw)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}

func (l Location) String() string {
	return fmt.Sprintf("[%d,%d]", l.Start, l.End)
}

func stringsToInterfaces(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
