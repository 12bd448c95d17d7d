package population

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapControls struct {
	hits map[string]int
	size int
}

func (c mapControls) ControlHits(ctx context.Context, geneId string) (int, error) {
	if geneId == "broken" {
		return 0, errors.New("lookup failed")
	}
	return c.hits[geneId], nil
}

func (c mapControls) Size() int { return c.size }

// ratioTester stands in for a real Fisher test: the smaller the sample's
// share relative to the controls', the larger the "p-value".
type ratioTester struct{}

func (ratioTester) TwoSidedPValue(sampleHits int, sampleMisses int, controlHits int, controlMisses int) (float64, error) {
	sample := float64(sampleHits) / float64(sampleHits+sampleMisses)
	control := float64(controlHits) / float64(controlHits+controlMisses)
	return 1 - (sample - control), nil
}

func TestCompareToControls(t *testing.T) {
	ctx := context.Background()
	controls := mapControls{hits: map[string]int{"G1": 1, "G2": 5}, size: 10}

	t.Run("should build the table and sort by p-value", func(t *testing.T) {
		rows, err := CompareToControls(ctx, map[string][]string{
			"G1": {"a", "b", "c"},
			"G2": {"a"},
			"G3": {"b", "c"},
		}, 4, controls, ratioTester{})
		assert.Nil(t, err)
		assert.Len(t, rows, 3)

		assert.Equal(t, "G1", rows[0].GeneId)
		assert.Equal(t, 3, rows[0].SampleHits)
		assert.Equal(t, 4, rows[0].SampleSize)
		assert.Equal(t, 1, rows[0].ControlHits)
		assert.Equal(t, 10, rows[0].ControlSize)

		assert.Equal(t, "G3", rows[1].GeneId)
		assert.Equal(t, "G2", rows[2].GeneId)
	})

	t.Run("should break p-value ties by gene", func(t *testing.T) {
		rows, err := CompareToControls(ctx, map[string][]string{"B": {"a"}, "A": {"a"}}, 2, controls, ratioTester{})
		assert.Nil(t, err)
		assert.Equal(t, "A", rows[0].GeneId)
		assert.Equal(t, "B", rows[1].GeneId)
	})

	t.Run("should surface lookup failures", func(t *testing.T) {
		_, err := CompareToControls(ctx, map[string][]string{"broken": {"a"}}, 2, controls, ratioTester{})
		assert.NotNil(t, err)
	})

	t.Run("should return nothing for no genes", func(t *testing.T) {
		rows, err := CompareToControls(ctx, nil, 2, controls, ratioTester{})
		assert.Nil(t, err)
		assert.Empty(t, rows)
	})
}
