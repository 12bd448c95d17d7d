package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"xbrowse/models"
	im "xbrowse/models/constants/inheritance-mode"
	"xbrowse/services"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run an inheritance search over fixture families",
	Long: `Run an inheritance search over families loaded from a YAML fixture and
print the results as JSON.

Examples:
  # Recessive genes for one family
  search --fixture families.yml --mode recessive --family F1

  # De novo variants, rare and high quality, for every family
  search --fixture families.yml --mode de_novo \
    --variant-filter '{"ref_freqs": [["1kg_wgs_phase3", 0.01]]}' \
    --quality-filter '{"min_gq": 20}'`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.String("mode", "", "inheritance mode (de_novo, dominant, homozygous_recessive, x_linked_recessive, compound_het, recessive)")
	f.StringSlice("family", nil, "family ids to search (default: every family in the fixture)")
	f.String("variant-filter", "", "variant filter as JSON")
	f.String("quality-filter", "", "genotype quality filter as JSON")
	f.String("allele-count-filter", "", "allele count filter as JSON")
	f.String("burden-filter", "", "gene burden filter as JSON")
	_ = searchCmd.MarkFlagRequired("mode")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if fixturePath == "" {
		return eris.New("search: --fixture is required")
	}

	f := cmd.Flags()
	modeFlag, _ := f.GetString("mode")
	mode, err := im.CastToInheritanceMode(modeFlag)
	if err != nil {
		return err
	}

	request := services.FamilySearch{Mode: mode}
	if err := decodeFlag(cmd, "variant-filter", &request.VariantFilter); err != nil {
		return err
	}
	if err := decodeFlag(cmd, "quality-filter", &request.QualityFilter); err != nil {
		return err
	}
	if err := decodeFlag(cmd, "allele-count-filter", &request.AlleleCountFilter); err != nil {
		return err
	}
	if err := decodeFlag(cmd, "burden-filter", &request.BurdenFilter); err != nil {
		return err
	}

	engine, _, families, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	wanted, _ := f.GetStringSlice("family")
	searches := make([]services.FamilySearch, 0, len(families))
	for _, family := range selectFamilies(families, wanted) {
		s := request
		s.Family = family
		searches = append(searches, s)
	}
	zap.L().Info("search: starting", zap.String("mode", string(mode)), zap.Int("families", len(searches)))

	results, err := engine.SearchFamilies(ctx, searches)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func decodeFlag(cmd *cobra.Command, name string, target interface{}) error {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return eris.Wrapf(err, "search: --%s", name)
	}
	return nil
}

func selectFamilies(families []models.Family, wanted []string) []models.Family {
	if len(wanted) == 0 {
		return families
	}
	keep := map[string]bool{}
	for _, id := range wanted {
		keep[id] = true
	}
	var out []models.Family
	for _, family := range families {
		if keep[family.FamilyId] {
			out = append(out, family)
		}
	}
	return out
}
