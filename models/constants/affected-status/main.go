package affectedStatus

import (
	"strings"

	"xbrowse/models/constants"
)

const (
	Affected   constants.AffectedStatus = "affected"
	Unaffected constants.AffectedStatus = "unaffected"
	Unknown    constants.AffectedStatus = "unknown"
)

// CastToAffectedStatus accepts the pedigree spellings (A/N/U) as well as the long names.
func CastToAffectedStatus(text string) constants.AffectedStatus {
	switch strings.ToLower(text) {
	case "affected", "a", "2":
		return Affected
	case "unaffected", "n", "1":
		return Unaffected
	default:
		return Unknown
	}
}
