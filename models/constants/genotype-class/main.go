package genotypeClass

import (
	"fmt"
	"strings"

	"xbrowse/models/constants"
)

const (
	RefRef  constants.GenotypeClass = "ref_ref"
	RefAlt  constants.GenotypeClass = "ref_alt"
	AltAlt  constants.GenotypeClass = "alt_alt"
	Missing constants.GenotypeClass = "missing"
)

// FromNumAlt maps an alternate allele count onto its class; nil is a no-call.
func FromNumAlt(numAlt *int) constants.GenotypeClass {
	if numAlt == nil {
		return Missing
	}
	switch *numAlt {
	case 0:
		return RefRef
	case 1:
		return RefAlt
	case 2:
		return AltAlt
	default:
		return Missing
	}
}

func CastToGenotypeClass(text string) (constants.GenotypeClass, error) {
	switch strings.ToLower(text) {
	case "ref_ref":
		return RefRef, nil
	case "ref_alt":
		return RefAlt, nil
	case "alt_alt":
		return AltAlt, nil
	case "missing", "":
		return Missing, nil
	default:
		return Missing, fmt.Errorf("unable to parse genotype class %q", text)
	}
}
