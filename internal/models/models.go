// Package models defines the core data entities of the target-discovery
// engine: bibliographic papers, retrieval chunks, canonical biomedical
// entities and their mentions, knowledge-graph facts, and derived target
// scores.
package models

import (
	"time"

	"github.com/nishad/oncotarget/internal/ids"
)

// ParseStatus tracks a Paper's lifecycle through the ingestion pipeline.
type ParseStatus string

const (
	ParseStatusPending ParseStatus = "pending"
	ParseStatusParsed  ParseStatus = "parsed"
	ParseStatusFailed  ParseStatus = "failed"
)

// Paper is a bibliographic record ingested from a literature source.
type Paper struct {
	ID              ids.ID      `json:"id" db:"id"`
	DOI             *string     `json:"doi,omitempty" db:"doi"`
	PMID            *string     `json:"pmid,omitempty" db:"pmid"`
	PMCID           *string     `json:"pmcid,omitempty" db:"pmcid"`
	Title           string      `json:"title" db:"title"`
	Abstract        *string     `json:"abstract,omitempty" db:"abstract"`
	FullText        *string     `json:"full_text,omitempty" db:"full_text"`
	Source          string      `json:"source" db:"source"`
	PublishedAt     *time.Time  `json:"published_at,omitempty" db:"published_at"`
	Authors         []string    `json:"authors,omitempty" db:"-"`
	Journal         *string     `json:"journal,omitempty" db:"journal"`
	Volume          *string     `json:"volume,omitempty" db:"volume"`
	Issue           *string     `json:"issue,omitempty" db:"issue"`
	Pages           *string     `json:"pages,omitempty" db:"pages"`
	ParseStatus     ParseStatus `json:"parse_status" db:"parse_status"`
	IngestedAt      time.Time   `json:"ingested_at" db:"ingested_at"`
	AbstractSimHash *int64      `json:"abstract_simhash,omitempty" db:"abstract_simhash"`
}

// Chunk is a retrieval unit owned exclusively by one Paper.
type Chunk struct {
	ID         ids.ID    `json:"id" db:"id"`
	PaperID    ids.ID    `json:"paper_id" db:"paper_id"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float32 `json:"embedding,omitempty" db:"-"`
	Section    *string   `json:"section,omitempty" db:"section"`
	Page       *int      `json:"page,omitempty" db:"page"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// EntityType enumerates the canonical biomedical concept categories the
// NER layer and knowledge graph recognize.
type EntityType string

const (
	EntityGene       EntityType = "gene"
	EntityDisease    EntityType = "disease"
	EntityChemical   EntityType = "chemical"
	EntityMutation   EntityType = "mutation"
	EntityCancerType EntityType = "cancer_type"
	EntityPathway    EntityType = "pathway"
	EntityProtein    EntityType = "protein"
)

// Entity is a canonical biomedical concept, deduplicated across the
// corpus by (ExternalID, SourceDB).
type Entity struct {
	ID            ids.ID                 `json:"id" db:"id"`
	ExternalID    string                 `json:"external_id" db:"external_id"`
	Name          string                 `json:"name" db:"name"`
	CanonicalName *string                `json:"canonical_name,omitempty" db:"canonical_name"`
	EntityType    EntityType             `json:"entity_type" db:"entity_type"`
	Synonyms      []string               `json:"synonyms,omitempty" db:"-"`
	SourceDB      string                 `json:"source_db" db:"source_db"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" db:"-"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`

	// MentionCountTotal and PaperCount are maintained by the entity
	// aggregator (see aggregate.Aggregator) as running counters, not
	// recomputed per query.
	MentionCountTotal int        `json:"mention_count_total" db:"mention_count_total"`
	PaperCount        int        `json:"paper_count" db:"paper_count"`
	LastSeen          *time.Time `json:"last_seen,omitempty" db:"last_seen"`
}

// EntityMention is the provenance of an Entity occurring in a Chunk's
// text, with byte offsets into Chunk.Content.
type EntityMention struct {
	ID            ids.ID   `json:"id" db:"id"`
	EntityID      ids.ID   `json:"entity_id" db:"entity_id"`
	ChunkID       ids.ID   `json:"chunk_id" db:"chunk_id"`
	PaperID       ids.ID   `json:"paper_id" db:"paper_id"`
	StartOffset   int      `json:"start_offset" db:"start_offset"`
	EndOffset     int      `json:"end_offset" db:"end_offset"`
	Text          string   `json:"text" db:"text"`
	Confidence    *float64 `json:"confidence,omitempty" db:"confidence"`
	ContextBefore *string  `json:"context_before,omitempty" db:"context_before"`
	ContextAfter  *string  `json:"context_after,omitempty" db:"context_after"`
}

// EvidenceType enumerates the kinds of support a KgFact can carry, each
// with a fixed base weight (see ranker.EvidenceBaseWeight).
type EvidenceType string

const (
	EvidenceInVivo         EvidenceType = "in_vivo_experimental"
	EvidenceInVitro        EvidenceType = "in_vitro"
	EvidencePhase3Trial    EvidenceType = "phase_3_trial"
	EvidencePhase1_2Trial  EvidenceType = "phase_1_2_trial"
	EvidenceMLComputation  EvidenceType = "ml_computational"
	EvidenceRuleBased      EvidenceType = "rule_based"
	EvidenceTextMined      EvidenceType = "text_mined"
	EvidenceDatabaseAssert EvidenceType = "database_assertion"
)

// KgFact is an append-only subject-predicate-object assertion with
// evidence and temporal validity. Supersession never rewrites history:
// it sets ValidUntil on the superseded fact and appends a new row.
type KgFact struct {
	ID             ids.ID       `json:"id" db:"id"`
	SubjectID      ids.ID       `json:"subject_id" db:"subject_id"`
	Predicate      string       `json:"predicate" db:"predicate"`
	ObjectID       ids.ID       `json:"object_id" db:"object_id"`
	Confidence     float64      `json:"confidence" db:"confidence"`
	EvidenceType   EvidenceType `json:"evidence_type" db:"evidence_type"`
	EvidenceWeight float64      `json:"evidence_weight" db:"evidence_weight"`
	PMID           *string      `json:"pmid,omitempty" db:"pmid"`
	DOI            *string      `json:"doi,omitempty" db:"doi"`
	DB             *string      `json:"db,omitempty" db:"db"`
	SampleSize     *int         `json:"sample_size,omitempty" db:"sample_size"`
	StudyType      *string      `json:"study_type,omitempty" db:"study_type"`

	// EvidenceCount tracks how many times this triple (or its
	// predecessors, across supersession) has been independently observed
	// — internal/aggregate.Aggregator increments it on every re-merge
	// (spec.md §4.13 step 5).
	EvidenceCount int `json:"evidence_count" db:"evidence_count"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	ValidFrom      time.Time    `json:"valid_from" db:"valid_from"`
	ValidUntil     *time.Time   `json:"valid_until,omitempty" db:"valid_until"`
}

// IsCurrent reports whether the fact has not been superseded.
func (f *KgFact) IsCurrent() bool {
	return f.ValidUntil == nil
}

// ShortlistTier is the categorical verdict attached to a TargetScore.
type ShortlistTier string

const (
	TierPrimary   ShortlistTier = "primary"
	TierSecondary ShortlistTier = "secondary"
	TierExcluded  ShortlistTier = "excluded"
)

// RawComponents holds the nine raw, unnormalized ranker inputs for a
// (gene, cancer) pair. Every field is optional; absence normalizes to 0
// per spec (see ranker.Normalize).
type RawComponents struct {
	MutationFreq           *float64 `json:"mutation_freq,omitempty"`
	CrisprDependency       *float64 `json:"crispr_dependency,omitempty"`
	SurvivalCorrelation    *float64 `json:"survival_correlation,omitempty"`
	ExpressionTumorTPM     *float64 `json:"expression_tumor_tpm,omitempty"`
	ExpressionBaselineTPM  *float64 `json:"expression_baseline_tpm,omitempty"`
	StructuralTractability *float64 `json:"structural_tractability,omitempty"`
	PocketDetectability    *float64 `json:"pocket_detectability,omitempty"`
	InhibitorCount         *int     `json:"inhibitor_count,omitempty"`
	EscapePathwayCount     *int     `json:"escape_pathway_count,omitempty"`
	LiteratureNovelty      *float64 `json:"literature_novelty,omitempty"`

	// HasExperimentalStructure and PredictedStructureConfidence feed the
	// structure-penalty term (§4.11 penalty rule 3).
	HasExperimentalStructure     bool     `json:"has_experimental_structure"`
	PredictedStructureConfidence *float64 `json:"predicted_structure_confidence,omitempty"`
}

// NormalizedComponents holds the nine components after mapping each raw
// input to [0,1] (see ranker.Normalize).
type NormalizedComponents struct {
	MutationFreq           float64 `json:"mutation_freq"`
	CrisprDependency       float64 `json:"crispr_dependency"`
	SurvivalCorrelation    float64 `json:"survival_correlation"`
	ExpressionSpecificity  float64 `json:"expression_specificity"`
	StructuralTractability float64 `json:"structural_tractability"`
	PocketDetectability    float64 `json:"pocket_detectability"`
	NoveltyScore           float64 `json:"novelty_score"`
	PathwayIndependence    float64 `json:"pathway_independence"`
	LiteratureNovelty      float64 `json:"literature_novelty"`
}

// IngestionStage enumerates an ingestion job's pipeline stage, reported
// both in IngestionAudit rows and progress.Event.
type IngestionStage string

const (
	StageSearch   IngestionStage = "search"
	StageUpsert   IngestionStage = "upsert"
	StageEmbed    IngestionStage = "embed"
	StageComplete IngestionStage = "complete"
)

// IngestionAudit is the durable checkpoint row for one ingestion job,
// letting a re-run resume/report idempotently (spec.md §4.7, §6).
type IngestionAudit struct {
	JobID          string         `json:"job_id" db:"job_id"`
	Query          string         `json:"query" db:"query"`
	Gene           string         `json:"gene" db:"gene"`
	Mutation       *string        `json:"mutation,omitempty" db:"mutation"`
	CancerType     string         `json:"cancer_type" db:"cancer_type"`
	Stage          IngestionStage `json:"stage" db:"stage"`
	PapersFound    int            `json:"papers_found" db:"papers_found"`
	PapersInserted int            `json:"papers_inserted" db:"papers_inserted"`
	PapersDuplicate int           `json:"papers_duplicate" db:"papers_duplicate"`
	ChunksInserted int            `json:"chunks_inserted" db:"chunks_inserted"`
	Errors         *string        `json:"errors,omitempty" db:"errors"`
	StartedAt      time.Time      `json:"started_at" db:"started_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}

// TargetScore is a versioned, scored (gene, cancer) pair.
type TargetScore struct {
	GeneID                  ids.ID               `json:"gene_id" db:"gene_id"`
	CancerID                ids.ID               `json:"cancer_id" db:"cancer_id"`
	Raw                     RawComponents        `json:"raw_components" db:"-"`
	Normalized              NormalizedComponents `json:"normalized_components" db:"-"`
	Penalty                 float64              `json:"penalty" db:"penalty"`
	CompositeScore          float64              `json:"composite_score" db:"composite_score"`
	ConfidenceAdjustedScore float64              `json:"confidence_adjusted_score" db:"confidence_adjusted_score"`
	ShortlistTier           ShortlistTier        `json:"shortlist_tier" db:"shortlist_tier"`
	ScoreVersion            int                  `json:"score_version" db:"score_version"`
	IsCurrent               bool                 `json:"is_current" db:"is_current"`
	CreatedAt               time.Time            `json:"created_at" db:"created_at"`
}
