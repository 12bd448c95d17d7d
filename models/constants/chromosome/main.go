package chromosome

import (
	"fmt"
	"strconv"
	"strings"
)

// XposMultiplier separates the chromosome index from the offset in an xpos.
const XposMultiplier int64 = 1e9

var humanChromosomes = ValidListOfHumanChromosomes()

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 23; i++ {
		humChroms = append(humChroms, fmt.Sprint(i))
	}
	humChroms = append(humChroms, "X")
	humChroms = append(humChroms, "Y")
	humChroms = append(humChroms, "M")
	return humChroms
}

func IsValidHumanChromosome(text string) bool {
	return chromIndex(text) >= 0
}

// Xpos encodes a chromosome and 1-based position into a single sortable integer.
func Xpos(chrom string, pos int64) (int64, error) {
	idx := chromIndex(chrom)
	if idx < 0 {
		return 0, fmt.Errorf("invalid chromosome %q", chrom)
	}
	return int64(idx+1)*XposMultiplier + pos, nil
}

// ChrFromXpos returns the "chr"-prefixed chromosome name, or "" for an out of range xpos.
func ChrFromXpos(xpos int64) string {
	idx := int(xpos/XposMultiplier) - 1
	if idx < 0 || idx >= len(humanChromosomes) {
		return ""
	}
	return "chr" + humanChromosomes[idx]
}

func PosFromXpos(xpos int64) int64 {
	return xpos % XposMultiplier
}

func IsXChromosome(name string) bool {
	return strings.Contains(strings.ToLower(name), "x")
}

func chromIndex(text string) int {
	normalized := strings.ToUpper(strings.TrimPrefix(strings.ToLower(text), "chr"))
	if normalized == "MT" {
		normalized = "M"
	}

	// autosomes 1-22
	if chromNumber, err := strconv.Atoi(normalized); err == nil {
		if chromNumber > 0 && chromNumber < 23 {
			return chromNumber - 1
		}
		return -1
	}
	for i, c := range humanChromosomes {
		if c == normalized {
			return i
		}
	}
	return -1
}
