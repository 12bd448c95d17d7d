package memory

import (
	"os"

	"xbrowse/models"
	"xbrowse/models/constants/chromosome"
	"xbrowse/repositories"
	"xbrowse/services/severity"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"
)

type fixture struct {
	Genes    []repositories.Gene `yaml:"genes"`
	Families []fixtureFamily     `yaml:"families"`
}

type fixtureFamily struct {
	models.Family `yaml:",inline"`
	Variants      []fixtureVariant `yaml:"variants"`
}

// fixtureVariant accepts either an xpos or a chrom/pos pair.
type fixtureVariant struct {
	models.Variant `yaml:",inline"`
	Chrom          string `yaml:"chrom"`
	Pos            int64  `yaml:"pos"`
}

// LoadFixture builds a datastore from a YAML document listing genes and
// families with their variants. Consequences are resolved with the ranker as
// they are loaded; annotations the ranker cannot place are kept and logged.
func LoadFixture(path string, ranker *severity.Ranker, logger *zap.Logger) (*Datastore, []models.Family, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "fixture: read %s", path)
	}

	var doc fixture
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, eris.Wrapf(err, "fixture: decode %s", path)
	}

	d := New()
	d.AddGenes(doc.Genes...)

	families := make([]models.Family, 0, len(doc.Families))
	for _, ff := range doc.Families {
		variants := make([]models.Variant, 0, len(ff.Variants))
		for _, fv := range ff.Variants {
			v := fv.Variant
			if v.Xpos == 0 && fv.Chrom != "" {
				if v.Xpos, err = chromosome.Xpos(fv.Chrom, fv.Pos); err != nil {
					return nil, nil, eris.Wrapf(err, "fixture: family %s", ff.FamilyId)
				}
			}

			annotated, anomalies, _ := ranker.AnnotateVariant(v, false)
			for _, a := range anomalies {
				logger.Warn("fixture: unranked consequence",
					zap.String("family", ff.FamilyId),
					zap.Int64("xpos", v.Xpos),
					zap.String("detail", a.Detail))
			}
			variants = append(variants, annotated)
		}
		d.AddFamilyVariants(ff.ProjectId, ff.FamilyId, variants...)
		families = append(families, ff.Family)
	}

	return d, families, nil
}
