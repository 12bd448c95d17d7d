package genotypeRequirement

import (
	"fmt"
	"strings"

	"xbrowse/models/constants"
	gc "xbrowse/models/constants/genotype-class"
)

const (
	RefRef     constants.GenotypeRequirement = "ref_ref"
	RefAlt     constants.GenotypeRequirement = "ref_alt"
	AltAlt     constants.GenotypeRequirement = "alt_alt"
	HasAlt     constants.GenotypeRequirement = "has_alt"
	HasRef     constants.GenotypeRequirement = "has_ref"
	NotMissing constants.GenotypeRequirement = "not_missing"
)

// Admits reports whether a genotype of the given class satisfies the requirement.
// A missing genotype satisfies none of them.
func Admits(req constants.GenotypeRequirement, class constants.GenotypeClass) bool {
	switch req {
	case RefRef:
		return class == gc.RefRef
	case RefAlt:
		return class == gc.RefAlt
	case AltAlt:
		return class == gc.AltAlt
	case HasAlt:
		return class == gc.RefAlt || class == gc.AltAlt
	case HasRef:
		return class == gc.RefRef || class == gc.RefAlt
	case NotMissing:
		return class != gc.Missing
	default:
		return false
	}
}

func CastToGenotypeRequirement(text string) (constants.GenotypeRequirement, error) {
	switch req := constants.GenotypeRequirement(strings.ToLower(text)); req {
	case RefRef, RefAlt, AltAlt, HasAlt, HasRef, NotMissing:
		return req, nil
	default:
		return "", fmt.Errorf("unable to parse genotype requirement %q", text)
	}
}
