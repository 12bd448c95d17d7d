package filtering

import (
	"xbrowse/models"
	"xbrowse/models/constants"
	as "xbrowse/models/constants/affected-status"
	"xbrowse/models/filters"
)

// AlleleCounts sums num_alt per affected status, skipping no-calls.
func AlleleCounts(v *models.Variant, affectedStatusMap map[string]constants.AffectedStatus) (affected int, unaffected int) {
	for indivId, status := range affectedStatusMap {
		g := v.GetGenotype(indivId)
		if g == nil || g.NumAlt == nil {
			continue
		}
		switch status {
		case as.Affected:
			affected += *g.NumAlt
		case as.Unaffected:
			unaffected += *g.NumAlt
		}
	}
	return affected, unaffected
}

func PassesAlleleCount(v *models.Variant, f *filters.AlleleCountFilter, affectedStatusMap map[string]constants.AffectedStatus) bool {
	if f == nil {
		return true
	}
	affected, unaffected := AlleleCounts(v, affectedStatusMap)

	if f.AffectedGte != nil && affected < *f.AffectedGte {
		return false
	}
	if f.AffectedLte != nil && affected > *f.AffectedLte {
		return false
	}
	if f.UnaffectedGte != nil && unaffected < *f.UnaffectedGte {
		return false
	}
	if f.UnaffectedLte != nil && unaffected > *f.UnaffectedLte {
		return false
	}
	return true
}
