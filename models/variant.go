package models

import (
	"xbrowse/models/constants"
	"xbrowse/models/constants/chromosome"
	gc "xbrowse/models/constants/genotype-class"
	vt "xbrowse/models/constants/variant-type"
)

type Variant struct {
	Xpos int64  `json:"xpos" yaml:"xpos"`
	Ref  string `json:"ref" yaml:"ref"`
	Alt  string `json:"alt" yaml:"alt"`

	Annotation Annotation          `json:"annotation" yaml:"annotation"`
	Genotypes  map[string]Genotype `json:"genotypes" yaml:"genotypes"`

	Inheritance []constants.InheritanceMode `json:"inheritance,omitempty" yaml:"inheritance,omitempty"`
}

// UniqueTuple identifies a variant across streams.
type UniqueTuple struct {
	Xpos int64
	Ref  string
	Alt  string
}

type Annotation struct {
	VepAnnotations []VepAnnotation `json:"vepAnnotation" yaml:"vepAnnotation"`
	WorstVepIndex  *int            `json:"worstVepIndex,omitempty" yaml:"worstVepIndex,omitempty"`
	VepConsequence string          `json:"vepConsequence" yaml:"vepConsequence"`
	CodingGeneIds  []string        `json:"codingGeneIds" yaml:"codingGeneIds"`
	GeneIds        []string        `json:"geneIds" yaml:"geneIds"`

	Freqs  map[string]float64     `json:"freqs" yaml:"freqs"`
	Extras map[string]interface{} `json:"extras,omitempty" yaml:"extras,omitempty"`
}

type VepAnnotation struct {
	GeneId          string `json:"gene" yaml:"gene"`
	TranscriptId    string `json:"feature,omitempty" yaml:"feature,omitempty"`
	Consequence     string `json:"consequence" yaml:"consequence"`
	Canonical       bool   `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	IsNc            bool   `json:"isNc,omitempty" yaml:"isNc,omitempty"`
	IsNmd           bool   `json:"isNmd,omitempty" yaml:"isNmd,omitempty"`
	ProteinPosition string `json:"proteinPosition,omitempty" yaml:"proteinPosition,omitempty"`
	HgvsC           string `json:"hgvsc,omitempty" yaml:"hgvsc,omitempty"`
	HgvsP           string `json:"hgvsp,omitempty" yaml:"hgvsp,omitempty"`
}

type Genotype struct {
	NumAlt  *int     `json:"numAlt" yaml:"numAlt"` // nil = no call
	Gq      *int     `json:"gq,omitempty" yaml:"gq,omitempty"`
	Ab      *float64 `json:"ab,omitempty" yaml:"ab,omitempty"` // fraction, only meaningful for hets
	Dp      *int     `json:"dp,omitempty" yaml:"dp,omitempty"`
	Filter  string   `json:"filter" yaml:"filter"`
	Alleles []string `json:"alleles,omitempty" yaml:"alleles,omitempty"`
}

func (v *Variant) UniqueTuple() UniqueTuple {
	return UniqueTuple{Xpos: v.Xpos, Ref: v.Ref, Alt: v.Alt}
}

func (v *Variant) Chr() string {
	return chromosome.ChrFromXpos(v.Xpos)
}

func (v *Variant) Pos() int64 {
	return chromosome.PosFromXpos(v.Xpos)
}

func (v *Variant) VariantType() constants.VariantType {
	return vt.FromAlleles(v.Ref, v.Alt)
}

// GetGenotype returns nil when the individual has no genotype for the variant.
func (v *Variant) GetGenotype(indivId string) *Genotype {
	g, ok := v.Genotypes[indivId]
	if !ok {
		return nil
	}
	return &g
}

// Clone returns a copy that shares nothing mutable with the receiver.
func (v Variant) Clone() Variant {
	out := v
	out.Annotation = v.Annotation.clone()
	if v.Genotypes != nil {
		out.Genotypes = make(map[string]Genotype, len(v.Genotypes))
		for id, g := range v.Genotypes {
			out.Genotypes[id] = g.Clone()
		}
	}
	out.Inheritance = append([]constants.InheritanceMode(nil), v.Inheritance...)
	return out
}

// WithGenotype returns a copy of the variant with one genotype replaced.
func (v Variant) WithGenotype(indivId string, g Genotype) Variant {
	out := v.Clone()
	if out.Genotypes == nil {
		out.Genotypes = map[string]Genotype{}
	}
	out.Genotypes[indivId] = g
	return out
}

// WithInheritance returns a copy of the variant carrying the extra labels.
func (v Variant) WithInheritance(modes ...constants.InheritanceMode) Variant {
	out := v.Clone()
	for _, mode := range modes {
		if !out.HasInheritance(mode) {
			out.Inheritance = append(out.Inheritance, mode)
		}
	}
	return out
}

func (v *Variant) HasInheritance(mode constants.InheritanceMode) bool {
	for _, m := range v.Inheritance {
		if m == mode {
			return true
		}
	}
	return false
}

func (g *Genotype) Class() constants.GenotypeClass {
	return gc.FromNumAlt(g.NumAlt)
}

func (g Genotype) Clone() Genotype {
	out := g
	out.NumAlt = clonePtr(g.NumAlt)
	out.Gq = clonePtr(g.Gq)
	out.Ab = clonePtr(g.Ab)
	out.Dp = clonePtr(g.Dp)
	out.Alleles = append([]string(nil), g.Alleles...)
	return out
}

func (a Annotation) clone() Annotation {
	out := a
	out.VepAnnotations = append([]VepAnnotation(nil), a.VepAnnotations...)
	out.WorstVepIndex = clonePtr(a.WorstVepIndex)
	out.CodingGeneIds = append([]string(nil), a.CodingGeneIds...)
	out.GeneIds = append([]string(nil), a.GeneIds...)
	if a.Freqs != nil {
		out.Freqs = make(map[string]float64, len(a.Freqs))
		for k, f := range a.Freqs {
			out.Freqs[k] = f
		}
	}
	if a.Extras != nil {
		out.Extras = make(map[string]interface{}, len(a.Extras))
		for k, e := range a.Extras {
			out.Extras[k] = e
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
