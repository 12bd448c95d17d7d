package inheritanceMode

import (
	"strings"

	"xbrowse/models/constants"
	"xbrowse/models/searcherr"
)

const (
	DeNovo              constants.InheritanceMode = "de_novo"
	Dominant            constants.InheritanceMode = "dominant"
	HomozygousRecessive constants.InheritanceMode = "homozygous_recessive"
	XLinkedRecessive    constants.InheritanceMode = "x_linked_recessive"
	CompoundHet         constants.InheritanceMode = "compound_het"
	Recessive           constants.InheritanceMode = "recessive"
)

func All() []constants.InheritanceMode {
	return []constants.InheritanceMode{DeNovo, Dominant, HomozygousRecessive, XLinkedRecessive, CompoundHet, Recessive}
}

func CastToInheritanceMode(text string) (constants.InheritanceMode, error) {
	mode := constants.InheritanceMode(strings.ToLower(strings.TrimSpace(text)))
	for _, known := range All() {
		if mode == known {
			return mode, nil
		}
	}
	return "", searcherr.New(searcherr.UnknownInheritanceMode, "unknown inheritance mode %q", text)
}

// IsGeneBased reports whether results for the mode are grouped by gene
// rather than streamed variant by variant.
func IsGeneBased(mode constants.InheritanceMode) bool {
	return mode == CompoundHet || mode == Recessive
}
