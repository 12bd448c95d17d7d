package soTerm

// SEVERITY_ORDER lists Sequence Ontology consequence terms from most to least
// severe. The trailing empty string ranks annotations without a consequence.
var SEVERITY_ORDER = []string{
	"transcript_ablation",
	"splice_donor_variant",
	"splice_acceptor_variant",
	"stop_gained",
	"frameshift_variant",
	"stop_lost",
	"initiator_codon_variant",
	"start_lost",
	"inframe_insertion",
	"inframe_deletion",
	"missense_variant",
	"protein_altering_variant",
	"transcript_amplification",
	"splice_region_variant",
	"incomplete_terminal_codon_variant",
	"synonymous_variant",
	"stop_retained_variant",
	"coding_sequence_variant",
	"mature_miRNA_variant",
	"5_prime_UTR_variant",
	"3_prime_UTR_variant",
	"intron_variant",
	"NMD_transcript_variant",
	"non_coding_exon_variant",
	"non_coding_transcript_exon_variant",
	"nc_transcript_variant",
	"non_coding_transcript_variant",
	"upstream_gene_variant",
	"downstream_gene_variant",
	"TFBS_ablation",
	"TFBS_amplification",
	"TF_binding_site_variant",
	"regulatory_region_variant",
	"regulatory_region_ablation",
	"regulatory_region_amplification",
	"feature_elongation",
	"feature_truncation",
	"intergenic_variant",
	"",
}

const CodingSequenceVariant = "coding_sequence_variant"

var severityPositions = func() map[string]int {
	positions := make(map[string]int, len(SEVERITY_ORDER))
	for i, term := range SEVERITY_ORDER {
		positions[term] = i
	}
	return positions
}()

// Positions returns a fresh term -> index map over SEVERITY_ORDER.
func Positions() map[string]int {
	positions := make(map[string]int, len(severityPositions))
	for term, i := range severityPositions {
		positions[term] = i
	}
	return positions
}

func IsKnown(term string) bool {
	_, ok := severityPositions[term]
	return ok
}
