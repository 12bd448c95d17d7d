package burden

import (
	"fmt"
	"strings"

	"xbrowse/models/constants"
)

const (
	None      constants.BurdenClass = "none"
	AtLeast1  constants.BurdenClass = "at_least_1"
	AtLeast2  constants.BurdenClass = "at_least_2"
	LessThan2 constants.BurdenClass = "less_than_2"
)

// Holds reports whether an aggregate alternate allele count falls in the class.
func Holds(class constants.BurdenClass, aac int) bool {
	switch class {
	case None:
		return aac == 0
	case AtLeast1:
		return aac >= 1
	case AtLeast2:
		return aac >= 2
	case LessThan2:
		return aac <= 1
	default:
		return false
	}
}

func CastToBurdenClass(text string) (constants.BurdenClass, error) {
	switch class := constants.BurdenClass(strings.ToLower(text)); class {
	case None, AtLeast1, AtLeast2, LessThan2:
		return class, nil
	default:
		return "", fmt.Errorf("unable to parse burden class %q", text)
	}
}
