package filtering

import (
	"fmt"
	"strings"

	"xbrowse/models"
	"xbrowse/models/filters"
	"xbrowse/models/searcherr"

	"github.com/samber/lo"
)

type FailedField string

const (
	FieldNone          FailedField = ""
	FieldVariantTypes  FailedField = "variant_types"
	FieldSoAnnotations FailedField = "so_annotations"
	FieldLocations     FailedField = "locations"
	FieldGenes         FailedField = "genes"
	FieldRefFreqs      FailedField = "ref_freqs"
	FieldAnnotations   FailedField = "annotations"
)

// FrequencyPolicy decides what a missing population frequency means.
type FrequencyPolicy int

const (
	// Permissive treats a missing frequency as 0, so the variant passes.
	Permissive FrequencyPolicy = iota
	// Strict fails the variant when a configured population is missing.
	Strict
)

type Verdict struct {
	Passed    bool
	Field     FailedField
	Anomalies []models.Anomaly
}

// PassesBasics checks the fields a datastore can evaluate on its own, in a
// fixed order, and names the first one that fails.
func PassesBasics(v *models.Variant, f *filters.VariantFilter) (bool, FailedField) {
	if f == nil {
		return true, FieldNone
	}

	if len(f.VariantTypes) > 0 && !lo.Contains(f.VariantTypes, v.VariantType()) {
		return false, FieldVariantTypes
	}

	if len(f.SoAnnotations) > 0 && !lo.Contains(f.SoAnnotations, v.Annotation.VepConsequence) {
		return false, FieldSoAnnotations
	}

	if len(f.Locations) > 0 {
		inside := lo.ContainsBy(f.Locations, func(loc filters.Location) bool {
			return v.Xpos >= loc.Start && v.Xpos <= loc.End
		})
		if !inside {
			return false, FieldLocations
		}
	}

	if len(f.Genes) > 0 && len(lo.Intersect(f.Genes, v.Annotation.CodingGeneIds)) == 0 {
		return false, FieldGenes
	}

	return true, FieldNone
}

// PassesStoredBasics is the datastore-side form of PassesBasics. Stored
// records may not carry the derived consequence and coding genes yet, so the
// consequence and gene checks also accept a match on any raw VEP entry. It
// never rejects a variant PassesBasics would accept once annotated.
func PassesStoredBasics(v *models.Variant, f *filters.VariantFilter) (bool, FailedField) {
	if f == nil {
		return true, FieldNone
	}

	if len(f.VariantTypes) > 0 && !lo.Contains(f.VariantTypes, v.VariantType()) {
		return false, FieldVariantTypes
	}

	if len(f.SoAnnotations) > 0 && !lo.Contains(f.SoAnnotations, v.Annotation.VepConsequence) {
		raw := lo.FlatMap(v.Annotation.VepAnnotations, func(a models.VepAnnotation, _ int) []string {
			return strings.Split(a.Consequence, "&")
		})
		if len(lo.Intersect(f.SoAnnotations, raw)) == 0 {
			return false, FieldSoAnnotations
		}
	}

	if len(f.Locations) > 0 {
		inside := lo.ContainsBy(f.Locations, func(loc filters.Location) bool {
			return v.Xpos >= loc.Start && v.Xpos <= loc.End
		})
		if !inside {
			return false, FieldLocations
		}
	}

	if len(f.Genes) > 0 && len(lo.Intersect(f.Genes, v.Annotation.CodingGeneIds)) == 0 {
		raw := lo.Map(v.Annotation.VepAnnotations, func(a models.VepAnnotation, _ int) string { return a.GeneId })
		if len(lo.Intersect(f.Genes, raw)) == 0 {
			return false, FieldGenes
		}
	}

	return true, FieldNone
}

// Passes extends PassesBasics with population frequency ceilings and the
// free-form annotation constraints.
func Passes(v *models.Variant, f *filters.VariantFilter, policy FrequencyPolicy) Verdict {
	if ok, field := PassesBasics(v, f); !ok {
		return Verdict{Field: field}
	}
	if f == nil {
		return Verdict{Passed: true}
	}

	var anomalies []models.Anomaly
	tuple := v.UniqueTuple()
	for _, rf := range f.RefFreqs {
		freq, ok := v.Annotation.Freqs[rf.Population]
		if !ok {
			anomalies = append(anomalies, models.Anomaly{
				Kind:    searcherr.PopulationFrequencyLookupFailure,
				Detail:  fmt.Sprintf("no %s frequency", rf.Population),
				Variant: &tuple,
			})
			if policy == Strict {
				return Verdict{Field: FieldRefFreqs, Anomalies: anomalies}
			}
			freq = 0
		}
		if freq > rf.MaxFreq {
			return Verdict{Field: FieldRefFreqs, Anomalies: anomalies}
		}
	}

	for key, allowed := range f.Annotations {
		value, ok := v.Annotation.Extras[key]
		if !ok || !lo.ContainsBy(allowed, func(a interface{}) bool { return sameValue(a, value) }) {
			return Verdict{Field: FieldAnnotations, Anomalies: anomalies}
		}
	}

	return Verdict{Passed: true, Anomalies: anomalies}
}

// sameValue compares annotation values, treating all numeric kinds alike so
// that values decoded from JSON match integers supplied in code.
func sameValue(a interface{}, b interface{}) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	if aNum != bNum {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func asFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
