package repository

const schema = `
CREATE TABLE IF NOT EXISTS papers (
	id TEXT PRIMARY KEY,
	doi TEXT UNIQUE,
	pmid TEXT UNIQUE,
	pmcid TEXT,
	title TEXT NOT NULL,
	abstract TEXT,
	full_text TEXT,
	source TEXT NOT NULL,
	published_at TIMESTAMP,
	journal TEXT,
	volume TEXT,
	issue TEXT,
	pages TEXT,
	parse_status TEXT NOT NULL DEFAULT 'pending',
	ingested_at TIMESTAMP NOT NULL,
	abstract_simhash INTEGER
);

CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source);
CREATE INDEX IF NOT EXISTS idx_papers_parse_status ON papers(parse_status);
CREATE INDEX IF NOT EXISTS idx_papers_simhash ON papers(abstract_simhash);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	paper_id TEXT NOT NULL REFERENCES papers(id),
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding BLOB,
	section TEXT,
	page INTEGER,
	created_at TIMESTAMP NOT NULL,
	UNIQUE(paper_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_chunks_paper ON chunks(paper_id);
CREATE INDEX IF NOT EXISTS idx_chunks_needs_embedding ON chunks(paper_id) WHERE embedding IS NULL;

CREATE TABLE IF NOT EXISTS entities (
	id TEXT PRIMARY KEY,
	external_id TEXT NOT NULL,
	name TEXT NOT NULL,
	canonical_name TEXT,
	entity_type TEXT NOT NULL,
	source_db TEXT NOT NULL,
	mention_count_total INTEGER NOT NULL DEFAULT 0,
	paper_count INTEGER NOT NULL DEFAULT 0,
	last_seen TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE(external_id, source_db)
);

CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type);
CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);

CREATE TABLE IF NOT EXISTS entity_mentions (
	id TEXT PRIMARY KEY,
	entity_id TEXT NOT NULL REFERENCES entities(id),
	chunk_id TEXT NOT NULL REFERENCES chunks(id),
	paper_id TEXT NOT NULL REFERENCES papers(id),
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	text TEXT NOT NULL,
	confidence REAL,
	context_before TEXT,
	context_after TEXT
);

CREATE INDEX IF NOT EXISTS idx_mentions_entity ON entity_mentions(entity_id);
CREATE INDEX IF NOT EXISTS idx_mentions_chunk ON entity_mentions(chunk_id);
CREATE INDEX IF NOT EXISTS idx_mentions_paper ON entity_mentions(paper_id);

CREATE TABLE IF NOT EXISTS kg_facts (
	id TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL REFERENCES entities(id),
	predicate TEXT NOT NULL,
	object_id TEXT NOT NULL REFERENCES entities(id),
	confidence REAL NOT NULL,
	evidence_type TEXT NOT NULL,
	evidence_weight REAL NOT NULL,
	pmid TEXT,
	doi TEXT,
	db TEXT,
	sample_size INTEGER,
	study_type TEXT,
	evidence_count INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL,
	valid_from TIMESTAMP NOT NULL,
	valid_until TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_facts_subject_predicate_object ON kg_facts(subject_id, predicate, object_id);
CREATE INDEX IF NOT EXISTS idx_facts_current ON kg_facts(subject_id, object_id) WHERE valid_until IS NULL;

CREATE TABLE IF NOT EXISTS target_scores (
	gene_id TEXT NOT NULL REFERENCES entities(id),
	cancer_id TEXT NOT NULL REFERENCES entities(id),
	penalty REAL NOT NULL,
	composite_score REAL NOT NULL,
	confidence_adjusted_score REAL NOT NULL,
	shortlist_tier TEXT NOT NULL,
	score_version INTEGER NOT NULL,
	is_current BOOLEAN NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (gene_id, cancer_id, score_version)
);

CREATE INDEX IF NOT EXISTS idx_target_scores_current ON target_scores(gene_id, cancer_id) WHERE is_current = 1;
CREATE INDEX IF NOT EXISTS idx_target_scores_tier ON target_scores(shortlist_tier) WHERE is_current = 1;

CREATE TABLE IF NOT EXISTS ingestion_audit (
	job_id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	gene TEXT NOT NULL,
	mutation TEXT,
	cancer_type TEXT NOT NULL,
	stage TEXT NOT NULL,
	papers_found INTEGER NOT NULL DEFAULT 0,
	papers_inserted INTEGER NOT NULL DEFAULT 0,
	papers_duplicate INTEGER NOT NULL DEFAULT 0,
	chunks_inserted INTEGER NOT NULL DEFAULT 0,
	errors TEXT,
	started_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_stage ON ingestion_audit(stage);
`

func (db *DB) createSchema() error {
	_, err := db.Exec(schema)
	return err
}
