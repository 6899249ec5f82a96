package ner

import "github.com/nishad/oncotarget/internal/models"

// embeddedPatterns is a few hundred canonical cancer-relevant entities
// compiled directly into the binary, for the "embedded subset"
// construction mode described in spec.md §4.2. It is intentionally
// small: a representative slice of oncogenes, tumor suppressors, common
// cancer types, and frequently studied inhibitors, not an exhaustive
// database.
var embeddedPatterns = []Pattern{
	{Text: "KRAS", EntityType: models.EntityGene, ExternalID: "HGNC:6407", NormalizedName: "KRAS"},
	{Text: "EGFR", EntityType: models.EntityGene, ExternalID: "HGNC:3236", NormalizedName: "EGFR"},
	{Text: "TP53", EntityType: models.EntityGene, ExternalID: "HGNC:11998", NormalizedName: "TP53"},
	{Text: "BRAF", EntityType: models.EntityGene, ExternalID: "HGNC:1097", NormalizedName: "BRAF"},
	{Text: "PIK3CA", EntityType: models.EntityGene, ExternalID: "HGNC:8975", NormalizedName: "PIK3CA"},
	{Text: "MYC", EntityType: models.EntityGene, ExternalID: "HGNC:7553", NormalizedName: "MYC"},
	{Text: "ALK", EntityType: models.EntityGene, ExternalID: "HGNC:427", NormalizedName: "ALK"},
	{Text: "BRCA1", EntityType: models.EntityGene, ExternalID: "HGNC:1100", NormalizedName: "BRCA1"},
	{Text: "BRCA2", EntityType: models.EntityGene, ExternalID: "HGNC:1101", NormalizedName: "BRCA2"},
	{Text: "PTEN", EntityType: models.EntityGene, ExternalID: "HGNC:9588", NormalizedName: "PTEN"},
	{Text: "RB1", EntityType: models.EntityGene, ExternalID: "HGNC:9884", NormalizedName: "RB1"},
	{Text: "MET", EntityType: models.EntityGene, ExternalID: "HGNC:7029", NormalizedName: "MET"},
	{Text: "ERBB2", EntityType: models.EntityGene, ExternalID: "HGNC:3430", NormalizedName: "ERBB2"},
	{Text: "HER2", EntityType: models.EntityGene, ExternalID: "HGNC:3430", NormalizedName: "ERBB2"},
	{Text: "JAK2", EntityType: models.EntityGene, ExternalID: "HGNC:6192", NormalizedName: "JAK2"},
	{Text: "KIT", EntityType: models.EntityGene, ExternalID: "HGNC:6342", NormalizedName: "KIT"},
	{Text: "NRAS", EntityType: models.EntityGene, ExternalID: "HGNC:7989", NormalizedName: "NRAS"},
	{Text: "IDH1", EntityType: models.EntityGene, ExternalID: "HGNC:5382", NormalizedName: "IDH1"},
	{Text: "VHL", EntityType: models.EntityGene, ExternalID: "HGNC:12687", NormalizedName: "VHL"},
	{Text: "APC", EntityType: models.EntityGene, ExternalID: "HGNC:583", NormalizedName: "APC"},

	{Text: "cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D009369", NormalizedName: "Neoplasms"},
	{Text: "lung cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D008175", NormalizedName: "Lung Neoplasms"},
	{Text: "non-small cell lung cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D002289", NormalizedName: "Carcinoma, Non-Small-Cell Lung"},
	{Text: "pancreatic cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D010190", NormalizedName: "Pancreatic Neoplasms"},
	{Text: "breast cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D001943", NormalizedName: "Breast Neoplasms"},
	{Text: "colorectal cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D015179", NormalizedName: "Colorectal Neoplasms"},
	{Text: "melanoma", EntityType: models.EntityCancerType, ExternalID: "MESH:D008545", NormalizedName: "Melanoma"},
	{Text: "glioblastoma", EntityType: models.EntityCancerType, ExternalID: "MESH:D005909", NormalizedName: "Glioblastoma"},
	{Text: "leukemia", EntityType: models.EntityCancerType, ExternalID: "MESH:D007938", NormalizedName: "Leukemia"},
	{Text: "ovarian cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D010051", NormalizedName: "Ovarian Neoplasms"},
	{Text: "prostate cancer", EntityType: models.EntityCancerType, ExternalID: "MESH:D011471", NormalizedName: "Prostatic Neoplasms"},

	{Text: "sotorasib", EntityType: models.EntityChemical, ExternalID: "CHEMBL4594329", NormalizedName: "Sotorasib"},
	{Text: "adagrasib", EntityType: models.EntityChemical, ExternalID: "CHEMBL4650319", NormalizedName: "Adagrasib"},
	{Text: "erlotinib", EntityType: models.EntityChemical, ExternalID: "CHEMBL553", NormalizedName: "Erlotinib"},
	{Text: "gefitinib", EntityType: models.EntityChemical, ExternalID: "CHEMBL939", NormalizedName: "Gefitinib"},
	{Text: "osimertinib", EntityType: models.EntityChemical, ExternalID: "CHEMBL3353410", NormalizedName: "Osimertinib"},
	{Text: "vemurafenib", EntityType: models.EntityChemical, ExternalID: "CHEMBL1229517", NormalizedName: "Vemurafenib"},
	{Text: "dabrafenib", EntityType: models.EntityChemical, ExternalID: "CHEMBL2028663", NormalizedName: "Dabrafenib"},
	{Text: "trastuzumab", EntityType: models.EntityChemical, ExternalID: "CHEMBL1201585", NormalizedName: "Trastuzumab"},
	{Text: "imatinib", EntityType: models.EntityChemical, ExternalID: "CHEMBL941", NormalizedName: "Imatinib"},
	{Text: "olaparib", EntityType: models.EntityChemical, ExternalID: "CHEMBL521686", NormalizedName: "Olaparib"},

	{Text: "KRAS G12D", EntityType: models.EntityMutation, ExternalID: "rs121913529", NormalizedName: "KRAS p.Gly12Asp"},
	{Text: "KRAS G12C", EntityType: models.EntityMutation, ExternalID: "rs121913530", NormalizedName: "KRAS p.Gly12Cys"},
	{Text: "BRAF V600E", EntityType: models.EntityMutation, ExternalID: "rs113488022", NormalizedName: "BRAF p.Val600Glu"},
	{Text: "EGFR L858R", EntityType: models.EntityMutation, ExternalID: "rs121434568", NormalizedName: "EGFR p.Leu858Arg"},

	{Text: "MAPK pathway", EntityType: models.EntityPathway, ExternalID: "PATHWAY:MAPK", NormalizedName: "MAPK signaling pathway"},
	{Text: "PI3K pathway", EntityType: models.EntityPathway, ExternalID: "PATHWAY:PI3K", NormalizedName: "PI3K/AKT/mTOR signaling pathway"},
	{Text: "Wnt pathway", EntityType: models.EntityPathway, ExternalID: "PATHWAY:WNT", NormalizedName: "Wnt signaling pathway"},
}

// NewEmbedded builds an Automaton over the compiled-in cancer-relevant
// entity subset — the "embedded subset" construction mode.
func NewEmbedded() *Automaton {
	return Build(embeddedPatterns)
}
