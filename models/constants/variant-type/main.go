package variantType

import (
	"fmt"
	"strings"

	"xbrowse/models/constants"
)

const (
	Snp   constants.VariantType = "snp"
	Indel constants.VariantType = "indel"
	Sv    constants.VariantType = "sv"
)

// FromAlleles derives the variant type the way the loaders did: symbolic alts
// are structural, single base substitutions are snps, the rest are indels.
func FromAlleles(ref string, alt string) constants.VariantType {
	if strings.HasPrefix(alt, "<") {
		return Sv
	}
	if len(ref) == 1 && len(alt) == 1 {
		return Snp
	}
	return Indel
}

func CastToVariantType(text string) (constants.VariantType, error) {
	switch vt := constants.VariantType(strings.ToLower(text)); vt {
	case Snp, Indel, Sv:
		return vt, nil
	default:
		return "", fmt.Errorf("unable to parse variant type %q", text)
	}
}
