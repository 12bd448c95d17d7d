package population

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// FisherTester computes a two-sided Fisher's exact p-value for a 2x2 table of
// sample and control hit counts.
type FisherTester interface {
	TwoSidedPValue(sampleHits int, sampleMisses int, controlHits int, controlMisses int) (float64, error)
}

// ControlCounter reports how many control individuals carry a qualifying
// variant in a gene, out of Size controls.
type ControlCounter interface {
	ControlHits(ctx context.Context, geneId string) (int, error)
	Size() int
}

type GeneComparison struct {
	GeneId      string  `json:"geneId"`
	SampleHits  int     `json:"sampleHits"`
	SampleSize  int     `json:"sampleSize"`
	ControlHits int     `json:"controlHits"`
	ControlSize int     `json:"controlSize"`
	PValue      float64 `json:"pValue"`
}

const lookupConcurrency = 8

// CompareToControls builds the hit table for every gene of a cohort gene
// search and asks the tester for its p-value. Rows come back most
// significant first.
func CompareToControls(ctx context.Context, cohortGenes map[string][]string, cohortSize int, controls ControlCounter, tester FisherTester) ([]GeneComparison, error) {
	var (
		mu   sync.Mutex
		rows = make([]GeneComparison, 0, len(cohortGenes))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for geneId, indivIds := range cohortGenes {
		geneId, sampleHits := geneId, len(indivIds)
		g.Go(func() error {
			controlHits, err := controls.ControlHits(gctx, geneId)
			if err != nil {
				return eris.Wrapf(err, "population: control hits for %s", geneId)
			}

			pValue, err := tester.TwoSidedPValue(sampleHits, cohortSize-sampleHits, controlHits, controls.Size()-controlHits)
			if err != nil {
				return eris.Wrapf(err, "population: fisher test for %s", geneId)
			}

			mu.Lock()
			rows = append(rows, GeneComparison{
				GeneId:      geneId,
				SampleHits:  sampleHits,
				SampleSize:  cohortSize,
				ControlHits: controlHits,
				ControlSize: controls.Size(),
				PValue:      pValue,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PValue != rows[j].PValue {
			return rows[i].PValue < rows[j].PValue
		}
		return rows[i].GeneId < rows[j].GeneId
	})
	return rows, nil
}
