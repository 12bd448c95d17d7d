package sex

import (
	"strings"

	"xbrowse/models/constants"
)

const (
	Male    constants.Sex = "male"
	Female  constants.Sex = "female"
	Unknown constants.Sex = "unknown"
)

func CastToSex(text string) constants.Sex {
	switch strings.ToLower(text) {
	case "male", "m", "1":
		return Male
	case "female", "f", "2":
		return Female
	default:
		return Unknown
	}
}
