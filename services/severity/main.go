package severity

import (
	"fmt"
	"strings"

	"xbrowse/models"
	soTerm "xbrowse/models/constants/so-term"
	"xbrowse/models/searcherr"

	"github.com/samber/lo"
)

// Ranker is a total order over SO consequence terms. Noncoding and NMD
// transcripts are pushed behind every unpenalized term by adding the table
// size (once or twice) to their rank.
type Ranker struct {
	order     []string
	positions map[string]int
}

func NewRanker() *Ranker {
	return &Ranker{order: soTerm.SEVERITY_ORDER, positions: soTerm.Positions()}
}

func (r *Ranker) Size() int {
	return len(r.order)
}

func (r *Ranker) Rank(term string) (int, error) {
	pos, ok := r.positions[term]
	if !ok {
		return 0, searcherr.New(searcherr.UnrankedConsequence, "consequence %q is not in the severity table", term)
	}
	return pos, nil
}

// WorstTerm returns the most severe of the given terms. Unranked terms are ignored.
func (r *Ranker) WorstTerm(terms []string) (string, error) {
	present := lo.SliceToMap(terms, func(t string) (string, struct{}) { return t, struct{}{} })
	for _, term := range r.order {
		if _, ok := present[term]; ok {
			return term, nil
		}
	}
	return "", searcherr.New(searcherr.NoRankedTerm, "none of %v is in the severity table", terms)
}

// ResolveConsequence reduces an '&'-joined VEP consequence to its worst term.
func (r *Ranker) ResolveConsequence(raw string) (string, error) {
	if !strings.Contains(raw, "&") {
		if _, err := r.Rank(raw); err != nil {
			return "", err
		}
		return raw, nil
	}
	term, err := r.WorstTerm(strings.Split(raw, "&"))
	if err != nil {
		return "", searcherr.New(searcherr.UnrankedConsequence, "consequence %q has no ranked term", raw)
	}
	return term, nil
}

func (r *Ranker) adjustedRank(a *models.VepAnnotation) (int, error) {
	term, err := r.ResolveConsequence(a.Consequence)
	if err != nil {
		return 0, err
	}
	rank := r.positions[term]
	if a.IsNc {
		rank += r.Size()
	}
	if a.IsNmd {
		rank += 2 * r.Size()
	}
	return rank, nil
}

// WorstAnnotationIndex returns the index of the most severe annotation,
// optionally restricted to geneId ("" means any gene). Ties go to the first
// occurrence; the canonical flag plays no part. Annotations with unranked
// consequences are skipped and reported.
func (r *Ranker) WorstAnnotationIndex(annotations []models.VepAnnotation, geneId string) (int, bool, []models.Anomaly) {
	worstIndex, worstRank := -1, 0
	var anomalies []models.Anomaly
	for i := range annotations {
		if geneId != "" && annotations[i].GeneId != geneId {
			continue
		}
		rank, err := r.adjustedRank(&annotations[i])
		if err != nil {
			anomalies = append(anomalies, models.Anomaly{
				Kind:   searcherr.UnrankedConsequence,
				Detail: fmt.Sprintf("annotation %d (%s): %q", i, annotations[i].TranscriptId, annotations[i].Consequence),
			})
			continue
		}
		if worstIndex < 0 || rank < worstRank {
			worstIndex, worstRank = i, rank
		}
	}
	return worstIndex, worstIndex >= 0, anomalies
}

// WorstAnnotationIndexStrict is the fail-fast flavour: the first unranked
// consequence aborts with UnrankedConsequence.
func (r *Ranker) WorstAnnotationIndexStrict(annotations []models.VepAnnotation, geneId string) (int, bool, error) {
	idx, found, anomalies := r.WorstAnnotationIndex(annotations, geneId)
	if len(anomalies) > 0 {
		return 0, false, searcherr.New(searcherr.UnrankedConsequence, "%s", anomalies[0].Detail)
	}
	return idx, found, nil
}

func (r *Ranker) IsCodingAnnotation(a models.VepAnnotation) bool {
	term, err := r.ResolveConsequence(a.Consequence)
	if err != nil {
		return false
	}
	return r.positions[term] <= r.positions[soTerm.CodingSequenceVariant]
}

// CodingGeneIds returns the distinct genes with at least one coding
// annotation, in order of first appearance.
func (r *Ranker) CodingGeneIds(annotations []models.VepAnnotation) []string {
	coding := lo.Filter(annotations, func(a models.VepAnnotation, _ int) bool {
		return a.GeneId != "" && r.IsCodingAnnotation(a)
	})
	return lo.Uniq(lo.Map(coding, func(a models.VepAnnotation, _ int) string { return a.GeneId }))
}

// AnnotateVariant resolves every annotation's consequence and fills in the
// derived annotation fields on a copy of v. With failFast unset, unranked
// consequences are left as they are and reported as anomalies.
func (r *Ranker) AnnotateVariant(v models.Variant, failFast bool) (models.Variant, []models.Anomaly, error) {
	out := v.Clone()
	tuple := v.UniqueTuple()
	var anomalies []models.Anomaly

	for i := range out.Annotation.VepAnnotations {
		a := &out.Annotation.VepAnnotations[i]
		term, err := r.ResolveConsequence(a.Consequence)
		if err != nil {
			if failFast {
				return v, nil, searcherr.New(searcherr.UnrankedConsequence, "variant %d %s>%s: %v", v.Xpos, v.Ref, v.Alt, err)
			}
			anomalies = append(anomalies, models.Anomaly{
				Kind:    searcherr.UnrankedConsequence,
				Detail:  fmt.Sprintf("annotation %d (%s): %q", i, a.TranscriptId, a.Consequence),
				Variant: &tuple,
			})
			continue
		}
		a.Consequence = term
	}

	out.Annotation.WorstVepIndex = nil
	out.Annotation.VepConsequence = ""
	if idx, found, _ := r.WorstAnnotationIndex(out.Annotation.VepAnnotations, ""); found {
		out.Annotation.WorstVepIndex = &idx
		out.Annotation.VepConsequence = out.Annotation.VepAnnotations[idx].Consequence
	}
	out.Annotation.CodingGeneIds = r.CodingGeneIds(out.Annotation.VepAnnotations)
	out.Annotation.GeneIds = lo.Uniq(lo.FilterMap(out.Annotation.VepAnnotations, func(a models.VepAnnotation, _ int) (string, bool) {
		return a.GeneId, a.GeneId != ""
	}))

	return out, anomalies, nil
}
