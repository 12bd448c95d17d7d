package filters

import (
	"xbrowse/models/constants"
)

// GenotypeFilter is the storage-level genotype class filter: every listed
// individual must carry a genotype the requirement admits.
type GenotypeFilter map[string]constants.GenotypeRequirement

func (g GenotypeFilter) IndivIds() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	return ids
}
